package gridkv

/*
GridKV is the inter-node coordination core of a distributed, partitioned
key/value cluster. It is not a complete database: cluster membership, network
transport, replication and the partitioned storage engine are external
collaborators that this module is written against, not implementations it
provides.

The module is organized into the following packages:

* `kv/wire`: the direct wire protocol. Typed, versioned messages are encoded
  into and decoded from caller-supplied byte buffers that may be too small for
  a whole message; a suspended encode or decode resumes at the exact next
  field on a later call. The transaction finish request and the latch
  reference message live here.
* `kv/storage`: the transactional store contract consumed by the coordination
  primitives, with a memory-backed and a badger-backed implementation. All
  transactions are pessimistic with repeatable-read isolation.
* `kv/latch`: a cluster-wide count-down latch whose authoritative count lives
  in the transactional store, plus the registry that creates, resolves and
  removes latches.
* `kv/config`: configuration for selecting and tuning the store backend.
*/

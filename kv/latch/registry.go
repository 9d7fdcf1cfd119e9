package latch

import (
	"sync"

	"github.com/ngaut/log"
	"github.com/pingcap/errors"

	"github.com/gridkv/gridkv/kv/storage"
	"github.com/gridkv/gridkv/kv/wire"
)

// ErrNotFound is returned when a latch reference names no store entry.
var ErrNotFound = errors.New("count down latch not found")

// ErrNonZeroCount is returned when removal is requested for a latch whose
// authoritative count has not reached zero.
var ErrNonZeroCount = errors.New("count down latch has non-zero count")

// Registry is the coordination namespace for count-down latches: it creates
// and removes store entries and hands out the process-local singleton proxy
// for each name. A transmitted latch reference is resolved here, never
// reconstructed from serialized state.
type Registry struct {
	store storage.Store

	mu      sync.Mutex
	latches map[string]*CountDownLatch
}

func NewRegistry(store storage.Store) *Registry {
	return &Registry{
		store:   store,
		latches: make(map[string]*CountDownLatch),
	}
}

// CreateOrGet returns the local proxy for name, creating the store entry with
// initialCount if no entry exists yet. When the entry already exists its
// stored count and auto-delete flag win over the arguments.
func (r *Registry) CreateOrGet(name string, initialCount int32, autoDelete bool) (*CountDownLatch, error) {
	if name == "" {
		panic("latch registry: empty name")
	}
	if initialCount < 0 {
		panic("latch registry: negative initial count")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.latches[name]; ok && !l.Removed() {
		return l, nil
	}

	val, err := r.ensureEntry(name, initialCount, autoDelete)
	if err != nil {
		return nil, err
	}

	l := newCountDownLatch(name, val.Count, initialCount, val.AutoDelete, r.store, r)
	r.latches[name] = l
	return l, nil
}

// ensureEntry creates the store entry if absent and returns the stored value
// either way. Callers hold r.mu.
func (r *Registry) ensureEntry(name string, initialCount int32, autoDelete bool) (latchValue, error) {
	txn, err := r.store.Begin()
	if err != nil {
		return latchValue{}, errors.Annotatef(err, "latch %s: begin", name)
	}
	defer txn.Rollback()

	key := latchKey(name)

	raw, err := txn.Get(key)
	if err == storage.ErrNotFound {
		val := latchValue{Count: initialCount, AutoDelete: autoDelete}
		if err := txn.Put(key, encodeValue(val)); err != nil {
			return latchValue{}, errors.Annotatef(err, "latch %s: write", name)
		}
		if err := txn.Commit(); err != nil {
			return latchValue{}, errors.Annotatef(err, "latch %s: commit", name)
		}
		return val, nil
	}
	if err != nil {
		return latchValue{}, errors.Annotatef(err, "latch %s: read", name)
	}

	val, err := decodeValue(raw)
	if err != nil {
		return latchValue{}, errors.Annotatef(err, "latch %s", name)
	}
	if err := txn.Commit(); err != nil {
		return latchValue{}, errors.Annotatef(err, "latch %s: commit", name)
	}
	return val, nil
}

// Resolve returns the local proxy for an existing latch. Unlike CreateOrGet
// it never creates the store entry; resolving a name with no entry is an
// error. This is the second phase of decoding a transmitted latch reference.
func (r *Registry) Resolve(name string) (*CountDownLatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.latches[name]; ok {
		return l, nil
	}

	txn, err := r.store.Begin()
	if err != nil {
		return nil, errors.Annotatef(err, "latch %s: begin", name)
	}
	defer txn.Rollback()

	raw, err := txn.Get(latchKey(name))
	if err == storage.ErrNotFound {
		return nil, errors.Annotatef(ErrNotFound, "latch %s", name)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "latch %s: read", name)
	}

	val, err := decodeValue(raw)
	if err != nil {
		return nil, errors.Annotatef(err, "latch %s", name)
	}
	if err := txn.Commit(); err != nil {
		return nil, errors.Annotatef(err, "latch %s: commit", name)
	}

	l := newCountDownLatch(name, val.Count, val.Count, val.AutoDelete, r.store, r)
	r.latches[name] = l
	return l, nil
}

// ResolveRef resolves a decoded wire reference to the local proxy.
func (r *Registry) ResolveRef(ref *wire.LatchRef) (*CountDownLatch, error) {
	return r.Resolve(ref.Name())
}

// Remove deletes the named store entry. The authoritative count must be zero;
// removal of a still-counting latch fails with ErrNonZeroCount. The local
// proxy, if any, is marked removed.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(name)
}

func (r *Registry) removeLocked(name string) error {
	txn, err := r.store.Begin()
	if err != nil {
		return errors.Annotatef(err, "latch %s: begin", name)
	}
	defer txn.Rollback()

	key := latchKey(name)

	raw, err := txn.Get(key)
	if err == storage.ErrNotFound {
		r.markRemoved(name)
		return nil
	}
	if err != nil {
		return errors.Annotatef(err, "latch %s: read", name)
	}

	val, err := decodeValue(raw)
	if err != nil {
		return errors.Annotatef(err, "latch %s", name)
	}
	if val.Count != 0 {
		return errors.Annotatef(ErrNonZeroCount, "latch %s, count %d", name, val.Count)
	}

	if err := txn.Delete(key); err != nil {
		return errors.Annotatef(err, "latch %s: delete", name)
	}
	if err := txn.Commit(); err != nil {
		return errors.Annotatef(err, "latch %s: commit", name)
	}

	r.markRemoved(name)
	return nil
}

// markRemoved flags the local proxy and drops it from the singleton map so a
// later CreateOrGet starts fresh. Callers hold r.mu.
func (r *Registry) markRemoved(name string) {
	if l, ok := r.latches[name]; ok {
		// A removed entry implies the count reached zero; release local
		// waiters before flagging removal.
		l.OnUpdate(0)
		l.OnRemoved()
		delete(r.latches, name)
	}
}

// NotifyUpdate routes an externally observed authoritative count to the local
// proxy. When the count reached zero and the latch was created with
// auto-delete, the store entry is removed as well.
func (r *Registry) NotifyUpdate(name string, cnt int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.latches[name]
	if !ok {
		return
	}
	l.OnUpdate(cnt)

	if cnt == 0 && l.AutoDelete() {
		if err := r.removeLocked(name); err != nil {
			log.Errorf("failed to auto-delete count down latch %s: %v", name, err)
		}
	}
}

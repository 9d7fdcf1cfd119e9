// Package wire implements the direct wire protocol used between cluster
// nodes: typed, versioned messages encoded field by field into caller-supplied
// byte buffers. Buffers may be smaller than a message; a suspended encode or
// decode session resumes at the exact next field on a later call, so the
// transport can drain and refill its buffers without re-emitting or
// re-consuming anything.
package wire

import (
	"github.com/pingcap/errors"
)

// Direct type tags. One byte per concrete message schema, used by the peer to
// select the matching read sequence. Tags are part of the wire contract and
// must never be reused.
const (
	TypeTxFinish byte = 23
	TypeLatchRef byte = 24
)

// ErrUnknownType is returned when a decoded type tag has no registered
// factory. The session is unusable afterwards and the peer connection should
// be torn down by the transport.
var ErrUnknownType = errors.New("unknown direct message type")

// writeStep encodes one field into buf, returning false when buf cannot hold
// the whole field. readStep is the symmetric decode side. Step order is the
// wire contract: new fields append new positions, existing positions never
// move.
type writeStep func(buf *Buffer) bool

type readStep func(buf *Buffer) bool

// Message is a typed record of the direct wire protocol. Concrete messages
// expose their ordered field steps, envelope positions first.
type Message interface {
	// Type returns the message's direct type tag.
	Type() byte

	writeSteps() []writeStep
	readSteps() []readStep
}

// Registry maps direct type tags to message factories for receiver-side
// dispatch.
type Registry struct {
	factories [256]func() Message
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs a factory for typ. Registering the same tag twice is a
// programming error.
func (r *Registry) Register(typ byte, factory func() Message) {
	if r.factories[typ] != nil {
		panic(errors.Errorf("direct message type %d registered twice", typ))
	}
	r.factories[typ] = factory
}

// New creates an empty message for typ, or ErrUnknownType.
func (r *Registry) New(typ byte) (Message, error) {
	f := r.factories[typ]
	if f == nil {
		return nil, errors.Annotatef(ErrUnknownType, "tag %d", typ)
	}
	return f(), nil
}

// DefaultRegistry returns a registry with every message of this family
// installed.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeTxFinish, func() Message { return new(TxFinishRequest) })
	r.Register(TypeLatchRef, func() Message { return new(LatchRef) })
	return r
}

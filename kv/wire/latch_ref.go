package wire

import "fmt"

// LatchRef transmits a reference to a cluster-shared count-down latch. Only
// the name travels; the receiver resolves it to its process-local proxy
// through a coordination registry after decoding. Full latch state is never
// serialized.
type LatchRef struct {
	name string
}

func NewLatchRef(name string) *LatchRef {
	if name == "" {
		panic("latch ref: empty name")
	}
	return &LatchRef{name: name}
}

// Name returns the latch name to resolve on the receiving side.
func (r *LatchRef) Name() string {
	return r.name
}

// Type implements Message.
func (r *LatchRef) Type() byte {
	return TypeLatchRef
}

func (r *LatchRef) writeSteps() []writeStep {
	return []writeStep{
		func(buf *Buffer) bool { return buf.PutString(r.name) },
	}
}

func (r *LatchRef) readSteps() []readStep {
	return []readStep{
		func(buf *Buffer) bool {
			v, ok := buf.GetString()
			if ok {
				r.name = v
			}
			return ok
		},
	}
}

func (r *LatchRef) String() string {
	return fmt.Sprintf("LatchRef{name=%s}", r.name)
}

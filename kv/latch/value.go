package latch

import (
	"github.com/pingcap/errors"

	"github.com/gridkv/gridkv/kv/wire"
)

// latchKeyPrefix namespaces latch entries inside the shared store.
const latchKeyPrefix = "ds/latch/"

func latchKey(name string) []byte {
	return []byte(latchKeyPrefix + name)
}

// latchValue is the authoritative state kept in the store entry.
type latchValue struct {
	Count      int32
	AutoDelete bool
}

const latchValueSize = 4 + 1

func encodeValue(v latchValue) []byte {
	buf := wire.NewBuffer(make([]byte, latchValueSize))
	buf.PutInt32(v.Count)
	buf.PutBool(v.AutoDelete)
	return buf.Bytes()
}

func decodeValue(raw []byte) (latchValue, error) {
	buf := wire.NewBuffer(raw)
	cnt, ok := buf.GetInt32()
	if !ok {
		return latchValue{}, errors.Errorf("malformed latch value of %d bytes", len(raw))
	}
	autoDel, ok := buf.GetBool()
	if !ok {
		return latchValue{}, errors.Errorf("malformed latch value of %d bytes", len(raw))
	}
	return latchValue{Count: cnt, AutoDelete: autoDel}, nil
}

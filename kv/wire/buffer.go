package wire

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Buffer is a position-tracked window over a caller-supplied byte slice. The
// transport owns the slice; the codec only moves the position. Field
// primitives are all-or-nothing: a Put returns false and leaves the position
// untouched when the remaining space cannot hold the entire field, and the
// read side returns a false completion flag symmetrically. A field is never
// partially emitted or consumed.
type Buffer struct {
	b   []byte
	pos int
}

// NewBuffer wraps b starting at position 0.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Pos returns the current position.
func (b *Buffer) Pos() int {
	return b.pos
}

// Remaining returns the number of bytes left in the window.
func (b *Buffer) Remaining() int {
	return len(b.b) - b.pos
}

// Bytes returns the prefix of the window up to the current position.
func (b *Buffer) Bytes() []byte {
	return b.b[:b.pos]
}

func (b *Buffer) PutByte(v byte) bool {
	if b.Remaining() < 1 {
		return false
	}
	b.b[b.pos] = v
	b.pos++
	return true
}

func (b *Buffer) GetByte() (byte, bool) {
	if b.Remaining() < 1 {
		return 0, false
	}
	v := b.b[b.pos]
	b.pos++
	return v, true
}

func (b *Buffer) PutBool(v bool) bool {
	if v {
		return b.PutByte(1)
	}
	return b.PutByte(0)
}

func (b *Buffer) GetBool() (bool, bool) {
	v, ok := b.GetByte()
	return v != 0, ok
}

func (b *Buffer) PutInt32(v int32) bool {
	if b.Remaining() < 4 {
		return false
	}
	binary.LittleEndian.PutUint32(b.b[b.pos:], uint32(v))
	b.pos += 4
	return true
}

func (b *Buffer) GetInt32() (int32, bool) {
	if b.Remaining() < 4 {
		return 0, false
	}
	v := int32(binary.LittleEndian.Uint32(b.b[b.pos:]))
	b.pos += 4
	return v, true
}

func (b *Buffer) PutInt64(v int64) bool {
	if b.Remaining() < 8 {
		return false
	}
	binary.LittleEndian.PutUint64(b.b[b.pos:], uint64(v))
	b.pos += 8
	return true
}

func (b *Buffer) GetInt64() (int64, bool) {
	if b.Remaining() < 8 {
		return 0, false
	}
	v := int64(binary.LittleEndian.Uint64(b.b[b.pos:]))
	b.pos += 8
	return v, true
}

// PutUUID writes a presence byte followed by the 16 raw UUID bytes. The nil
// UUID is encoded as absent in a single byte.
func (b *Buffer) PutUUID(v uuid.UUID) bool {
	if v == uuid.Nil {
		return b.PutByte(0)
	}
	if b.Remaining() < 1+16 {
		return false
	}
	b.b[b.pos] = 1
	copy(b.b[b.pos+1:], v[:])
	b.pos += 1 + 16
	return true
}

func (b *Buffer) GetUUID() (uuid.UUID, bool) {
	if b.Remaining() < 1 {
		return uuid.Nil, false
	}
	if b.b[b.pos] == 0 {
		b.pos++
		return uuid.Nil, true
	}
	if b.Remaining() < 1+16 {
		return uuid.Nil, false
	}
	var v uuid.UUID
	copy(v[:], b.b[b.pos+1:])
	b.pos += 1 + 16
	return v, true
}

// PutVersion writes a presence byte followed by the fixed 16-byte version
// encoding. The zero version is encoded as absent in a single byte.
func (b *Buffer) PutVersion(v Version) bool {
	if v.IsZero() {
		return b.PutByte(0)
	}
	if b.Remaining() < 1+versionSize {
		return false
	}
	b.b[b.pos] = 1
	p := b.pos + 1
	binary.LittleEndian.PutUint32(b.b[p:], uint32(v.Topology))
	binary.LittleEndian.PutUint64(b.b[p+4:], uint64(v.Order))
	binary.LittleEndian.PutUint32(b.b[p+12:], uint32(v.NodeOrder))
	b.pos += 1 + versionSize
	return true
}

func (b *Buffer) GetVersion() (Version, bool) {
	if b.Remaining() < 1 {
		return Version{}, false
	}
	if b.b[b.pos] == 0 {
		b.pos++
		return Version{}, true
	}
	if b.Remaining() < 1+versionSize {
		return Version{}, false
	}
	p := b.pos + 1
	v := Version{
		Topology:  int32(binary.LittleEndian.Uint32(b.b[p:])),
		Order:     int64(binary.LittleEndian.Uint64(b.b[p+4:])),
		NodeOrder: int32(binary.LittleEndian.Uint32(b.b[p+12:])),
	}
	b.pos += 1 + versionSize
	return v, true
}

// PutString writes an int32 length prefix followed by the string bytes as a
// single atomic field.
func (b *Buffer) PutString(s string) bool {
	if b.Remaining() < 4+len(s) {
		return false
	}
	binary.LittleEndian.PutUint32(b.b[b.pos:], uint32(len(s)))
	copy(b.b[b.pos+4:], s)
	b.pos += 4 + len(s)
	return true
}

func (b *Buffer) GetString() (string, bool) {
	if b.Remaining() < 4 {
		return "", false
	}
	n := int(int32(binary.LittleEndian.Uint32(b.b[b.pos:])))
	if n < 0 || b.Remaining() < 4+n {
		return "", false
	}
	s := string(b.b[b.pos+4 : b.pos+4+n])
	b.pos += 4 + n
	return s, true
}

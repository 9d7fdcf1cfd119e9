package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFinishRequest() *TxFinishRequest {
	return NewTxFinishRequest(
		Version{Topology: 3, Order: 77, NodeOrder: 2},
		uuid.UUID{0xaa, 0xbb},
		Version{Topology: 3, Order: 78, NodeOrder: 2},
		1042,
		true,  // commit
		false, // invalidate
		false, // sys
		true,  // syncCommit
		false, // syncRollback
		9,
	)
}

// encodeWhole runs one session against a buffer large enough for the message.
func encodeWhole(t *testing.T, msg Message) []byte {
	buf := NewBuffer(make([]byte, 256))
	s := NewWriteSession(msg)
	require.True(t, s.Encode(buf))
	return buf.Bytes()
}

// widestField is the largest atomic field encoding of the finish request: a
// present version, one presence byte plus its fixed width.
const widestField = 1 + 16

func TestEncodeChunkedMatchesWhole(t *testing.T) {
	msg := testFinishRequest()
	whole := encodeWhole(t, msg)

	// Re-encode through buffers of every size that can hold the widest
	// field; the concatenation must be byte-identical to the single-shot
	// encoding, with no field re-emitted across the suspensions.
	for size := widestField; size <= len(whole); size++ {
		s := NewWriteSession(testFinishRequest())
		var out []byte
		for i := 0; i < 100; i++ {
			buf := NewBuffer(make([]byte, size))
			done := s.Encode(buf)
			out = append(out, buf.Bytes()...)
			if done {
				break
			}
		}
		assert.Equal(t, whole, out, "chunk size %d", size)
	}
}

func TestDecodeChunked(t *testing.T) {
	msg := testFinishRequest()
	whole := encodeWhole(t, msg)

	// Feed the stream in chunks of every size, down to one byte at a time.
	// Bytes a suspended field left unconsumed are carried over to the next
	// call, the way a transport accumulates its read buffer.
	for size := 1; size <= len(whole); size++ {
		s := NewReadSession(DefaultRegistry())
		var decoded Message
		var pending []byte
		for off := 0; off < len(whole); off += size {
			end := off + size
			if end > len(whole) {
				end = len(whole)
			}
			pending = append(pending, whole[off:end]...)
			buf := NewBuffer(pending)
			done, err := s.Decode(buf)
			require.NoError(t, err)
			pending = pending[buf.Pos():]
			if done {
				decoded = s.Message()
			}
		}
		require.NotNil(t, decoded, "chunk size %d", size)
		assert.Empty(t, pending)

		got := decoded.(*TxFinishRequest)
		assert.Equal(t, msg.XidVersion(), got.XidVersion())
		assert.Equal(t, msg.Commit(), got.Commit())
		assert.Equal(t, msg.CommitVersion(), got.CommitVersion())
		assert.Equal(t, msg.FutureID(), got.FutureID())
		assert.Equal(t, msg.Invalidate(), got.Invalidate())
		assert.Equal(t, msg.SyncCommit(), got.SyncCommit())
		assert.Equal(t, msg.SyncRollback(), got.SyncRollback())
		assert.Equal(t, msg.System(), got.System())
		assert.Equal(t, msg.ThreadID(), got.ThreadID())
		assert.Equal(t, msg.TxSize(), got.TxSize())
	}
}

func TestRollbackRoundTrip(t *testing.T) {
	msg := NewTxFinishRequest(
		Version{Topology: 1, Order: 1, NodeOrder: 1},
		uuid.Nil,
		Version{}, // no commit version on rollback
		0,
		false, true, true, false, true,
		0,
	)
	whole := encodeWhole(t, msg)

	s := NewReadSession(DefaultRegistry())
	done, err := s.Decode(NewBuffer(whole))
	require.NoError(t, err)
	require.True(t, done)

	got := s.Message().(*TxFinishRequest)
	assert.False(t, got.Commit())
	assert.True(t, got.CommitVersion().IsZero())
	assert.Equal(t, uuid.Nil, got.FutureID())
	assert.True(t, got.Invalidate())
	assert.True(t, got.System())
}

func TestZeroLengthBufferSuspends(t *testing.T) {
	s := NewWriteSession(testFinishRequest())
	empty := NewBuffer(nil)
	assert.False(t, s.Encode(empty))
	assert.Equal(t, 0, empty.Pos())

	r := NewReadSession(DefaultRegistry())
	done, err := r.Decode(NewBuffer(nil))
	assert.NoError(t, err)
	assert.False(t, done)
}

func TestCompletedSessionRestarts(t *testing.T) {
	msg := testFinishRequest()
	s := NewWriteSession(msg)

	first := NewBuffer(make([]byte, 256))
	require.True(t, s.Encode(first))

	// A second Encode on the same session must produce a full fresh encoding,
	// not resume past the end of the previous one.
	second := NewBuffer(make([]byte, 256))
	require.True(t, s.Encode(second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestDecodeUnknownType(t *testing.T) {
	s := NewReadSession(DefaultRegistry())
	done, err := s.Decode(NewBuffer([]byte{0xfe}))
	assert.False(t, done)
	require.Error(t, err)
	assert.Equal(t, ErrUnknownType, errors.Cause(err))
}

func TestLatchRefRoundTrip(t *testing.T) {
	whole := encodeWhole(t, NewLatchRef("build-barrier"))

	s := NewReadSession(DefaultRegistry())
	done, err := s.Decode(NewBuffer(whole))
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, "build-barrier", s.Message().(*LatchRef).Name())
}

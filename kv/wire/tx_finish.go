package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// TxFinishRequest is the transaction completion message sent from the
// coordinating node to the participants of a distributed transaction. It only
// carries the completion payload; interpreting the flags against partitioned
// state is the receiving transaction manager's job.
type TxFinishRequest struct {
	envelope

	commit       bool
	commitVer    Version
	futID        uuid.UUID
	invalidate   bool
	syncCommit   bool
	syncRollback bool
	sys          bool
	threadID     int64
	txSize       int32
}

// NewTxFinishRequest builds a finish request. xidVer must be non-zero and
// commitVer must be present exactly when commit is set; violating either is a
// programming error.
func NewTxFinishRequest(
	xidVer Version,
	futID uuid.UUID,
	commitVer Version,
	threadID int64,
	commit bool,
	invalidate bool,
	sys bool,
	syncCommit bool,
	syncRollback bool,
	txSize int32,
) *TxFinishRequest {
	if xidVer.IsZero() {
		panic("tx finish request: zero transaction version")
	}
	if commit == commitVer.IsZero() {
		panic("tx finish request: commit version must be set iff commit flag is set")
	}
	if txSize < 0 {
		panic("tx finish request: negative tx size")
	}

	return &TxFinishRequest{
		envelope:     envelope{xidVer: xidVer},
		commit:       commit,
		commitVer:    commitVer,
		futID:        futID,
		invalidate:   invalidate,
		syncCommit:   syncCommit,
		syncRollback: syncRollback,
		sys:          sys,
		threadID:     threadID,
		txSize:       txSize,
	}
}

// FutureID returns the correlation token matching this message to the
// awaiting operation on the sender.
func (r *TxFinishRequest) FutureID() uuid.UUID {
	return r.futID
}

// ThreadID returns the originating execution context, informational only.
func (r *TxFinishRequest) ThreadID() int64 {
	return r.threadID
}

// CommitVersion returns the commit version, zero when rolling back.
func (r *TxFinishRequest) CommitVersion() Version {
	return r.commitVer
}

// Commit reports whether the transaction's changes are applied (true) or
// discarded (false).
func (r *TxFinishRequest) Commit() bool {
	return r.commit
}

// Invalidate reports whether affected entries are marked invalid instead of
// written or removed directly.
func (r *TxFinishRequest) Invalidate() bool {
	return r.invalidate
}

// SyncCommit reports whether the sender expects a commit acknowledgment.
func (r *TxFinishRequest) SyncCommit() bool {
	return r.syncCommit
}

// SyncRollback reports whether the sender expects a rollback acknowledgment.
func (r *TxFinishRequest) SyncRollback() bool {
	return r.syncRollback
}

// TxSize returns the expected number of entries participating in the
// transaction, a consistency check and pre-allocation hint for the receiver.
func (r *TxFinishRequest) TxSize() int32 {
	return r.txSize
}

// System reports whether the transaction is internal rather than
// user-originated.
func (r *TxFinishRequest) System() bool {
	return r.sys
}

// ReplyRequired reports whether the sender expects an explicit acknowledgment
// for this completion.
func (r *TxFinishRequest) ReplyRequired() bool {
	if r.commit {
		return r.syncCommit
	}
	return r.syncRollback
}

// Type implements Message.
func (r *TxFinishRequest) Type() byte {
	return TypeTxFinish
}

func (r *TxFinishRequest) writeSteps() []writeStep {
	return append(r.envelope.writeSteps(),
		func(buf *Buffer) bool { return buf.PutBool(r.commit) },
		func(buf *Buffer) bool { return buf.PutVersion(r.commitVer) },
		func(buf *Buffer) bool { return buf.PutUUID(r.futID) },
		func(buf *Buffer) bool { return buf.PutBool(r.invalidate) },
		func(buf *Buffer) bool { return buf.PutBool(r.syncCommit) },
		func(buf *Buffer) bool { return buf.PutBool(r.syncRollback) },
		func(buf *Buffer) bool { return buf.PutBool(r.sys) },
		func(buf *Buffer) bool { return buf.PutInt64(r.threadID) },
		func(buf *Buffer) bool { return buf.PutInt32(r.txSize) },
	)
}

func (r *TxFinishRequest) readSteps() []readStep {
	return append(r.envelope.readSteps(),
		func(buf *Buffer) bool {
			v, ok := buf.GetBool()
			if ok {
				r.commit = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetVersion()
			if ok {
				r.commitVer = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetUUID()
			if ok {
				r.futID = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetBool()
			if ok {
				r.invalidate = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetBool()
			if ok {
				r.syncCommit = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetBool()
			if ok {
				r.syncRollback = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetBool()
			if ok {
				r.sys = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetInt64()
			if ok {
				r.threadID = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetInt32()
			if ok {
				r.txSize = v
			}
			return ok
		},
	)
}

func (r *TxFinishRequest) String() string {
	return fmt.Sprintf("TxFinishRequest{xidVer=%s, futId=%s, commit=%v, commitVer=%s, invalidate=%v, "+
		"syncCommit=%v, syncRollback=%v, sys=%v, threadId=%d, txSize=%d}",
		r.xidVer, r.futID, r.commit, r.commitVer, r.invalidate,
		r.syncCommit, r.syncRollback, r.sys, r.threadID, r.txSize)
}

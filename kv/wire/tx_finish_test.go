package wire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReplyRequired(t *testing.T) {
	commit := NewTxFinishRequest(
		Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
		Version{Topology: 1, Order: 2, NodeOrder: 1},
		0, true, false, false, true, false, 0)
	assert.True(t, commit.ReplyRequired())

	rollback := NewTxFinishRequest(
		Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
		Version{},
		0, false, false, false, true, false, 0)
	assert.False(t, rollback.ReplyRequired())

	rollbackSync := NewTxFinishRequest(
		Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
		Version{},
		0, false, false, false, false, true, 0)
	assert.True(t, rollbackSync.ReplyRequired())
}

func TestNewTxFinishRequestPreconditions(t *testing.T) {
	assert.Panics(t, func() {
		NewTxFinishRequest(Version{}, uuid.Nil, Version{}, 0, false, false, false, false, false, 0)
	})

	// Commit version present without the commit flag.
	assert.Panics(t, func() {
		NewTxFinishRequest(
			Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
			Version{Topology: 1, Order: 2, NodeOrder: 1},
			0, false, false, false, false, false, 0)
	})

	// Commit flag without a commit version.
	assert.Panics(t, func() {
		NewTxFinishRequest(
			Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
			Version{},
			0, true, false, false, false, false, 0)
	})

	assert.Panics(t, func() {
		NewTxFinishRequest(
			Version{Topology: 1, Order: 1, NodeOrder: 1}, uuid.Nil,
			Version{Topology: 1, Order: 2, NodeOrder: 1},
			0, true, false, false, false, false, -1)
	})
}

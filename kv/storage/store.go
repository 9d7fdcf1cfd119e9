package storage

import (
	"github.com/pingcap/errors"

	"github.com/gridkv/gridkv/kv/config"
)

// ErrNotFound is returned by Txn.Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// ErrTxnClosed is returned when a transaction is used after Commit or
// Rollback.
var ErrTxnClosed = errors.New("transaction already finished")

// Store is a key-value store offering pessimistic, repeatable-read
// transactions. Implementations must be safe for concurrent use.
type Store interface {
	// Begin opens a pessimistic, repeatable-read transaction.
	Begin() (Txn, error)

	Close() error
}

// Txn is a single-use transaction handle. A transaction locks each key before
// its first read or write of that key and holds the lock until Commit or
// Rollback, so concurrent transactions touching the same keys serialize.
// Repeated reads of a key inside one transaction observe the same value.
//
// Callers must finish every transaction on every exit path; the deferred
// Rollback idiom is safe because Rollback after Commit is a no-op:
//
//	txn, err := store.Begin()
//	...
//	defer txn.Rollback()
//
// A Txn is owned by a single goroutine.
type Txn interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	Put(key, value []byte) error

	Delete(key []byte) error

	// Commit applies the transaction's writes atomically and releases its
	// locks.
	Commit() error

	// Rollback discards the transaction's writes and releases its locks. It
	// returns nil when the transaction is already finished.
	Rollback() error
}

// Open builds the store selected by conf.Backend.
func Open(conf *config.Config) (Store, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	switch conf.Backend {
	case config.BackendMem:
		return NewMemStore(), nil
	case config.BackendBadger:
		return NewBadgerStore(conf)
	}
	panic("unreachable")
}

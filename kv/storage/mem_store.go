package storage

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// MemStore is a Store backed by an in-memory btree. Data is not written to
// disk, nor sent to other nodes. It is intended for tests and single-process
// use.
type MemStore struct {
	mu   sync.RWMutex
	tree *btree.BTree

	locks *lockTable
}

type memItem struct {
	key   []byte
	value []byte
}

func (i memItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(memItem).key) < 0
}

func NewMemStore() *MemStore {
	return &MemStore{
		tree:  btree.New(32),
		locks: newLockTable(),
	}
}

func (s *MemStore) Begin() (Txn, error) {
	return &memTxn{txnBase: newTxnBase(s.locks), store: s}, nil
}

func (s *MemStore) Close() error {
	return nil
}

// Len returns the number of committed keys.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

func (s *MemStore) fetch(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item := s.tree.Get(memItem{key: key})
	if item == nil {
		return nil, false, nil
	}
	return item.(memItem).value, true, nil
}

type memTxn struct {
	txnBase
	store *MemStore
}

func (t *memTxn) Get(key []byte) ([]byte, error) {
	return t.get(key, t.store.fetch)
}

func (t *memTxn) Put(key, value []byte) error {
	return t.put(key, value)
}

func (t *memTxn) Delete(key []byte) error {
	return t.del(key)
}

func (t *memTxn) Commit() error {
	if t.done {
		return ErrTxnClosed
	}

	t.store.mu.Lock()
	for k, w := range t.writes {
		if w.del {
			t.store.tree.Delete(memItem{key: []byte(k)})
		} else {
			t.store.tree.ReplaceOrInsert(memItem{key: []byte(k), value: w.value})
		}
	}
	t.store.mu.Unlock()

	t.finish()
	return nil
}

func (t *memTxn) Rollback() error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

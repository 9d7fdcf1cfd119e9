package storage

import (
	"os"

	"github.com/pingcap/badger"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"

	"github.com/gridkv/gridkv/kv/config"
)

// BadgerStore is a Store backed by a badger database on disk. Badger's native
// transactions are optimistic, so the pessimistic repeatable-read contract is
// provided by the same lock table the memory backend uses, layered above
// badger: reads go through a read-only badger txn, the buffered writes of a
// committing transaction are applied in a single update.
type BadgerStore struct {
	db    *badger.DB
	locks *lockTable
}

func NewBadgerStore(conf *config.Config) (*BadgerStore, error) {
	opts := badger.DefaultOptions
	opts.Dir = conf.DBPath
	opts.ValueDir = conf.DBPath
	opts.SyncWrites = conf.SyncWrites
	opts.ValueThreshold = conf.ValueThreshold

	if err := os.MkdirAll(opts.Dir, os.ModePerm); err != nil {
		return nil, errors.WithStack(err)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Annotatef(err, "open badger at %s", conf.DBPath)
	}
	log.Infof("opened badger store at %s", conf.DBPath)

	return &BadgerStore{db: db, locks: newLockTable()}, nil
}

func (s *BadgerStore) Begin() (Txn, error) {
	return &badgerTxn{txnBase: newTxnBase(s.locks), store: s}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) fetch(key []byte) (value []byte, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.Value()
		if err != nil {
			return err
		}
		value = append([]byte(nil), value...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return value, found, nil
}

type badgerTxn struct {
	txnBase
	store *BadgerStore
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	return t.get(key, t.store.fetch)
}

func (t *badgerTxn) Put(key, value []byte) error {
	return t.put(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	return t.del(key)
}

func (t *badgerTxn) Commit() error {
	if t.done {
		return ErrTxnClosed
	}

	err := t.store.db.Update(func(txn *badger.Txn) error {
		for k, w := range t.writes {
			if w.del {
				if err := txn.Delete([]byte(k)); err != nil {
					return err
				}
			} else if err := txn.Set([]byte(k), w.value); err != nil {
				return err
			}
		}
		return nil
	})

	// The locks are released whether the apply succeeded or not; a failed
	// update leaves committed state untouched.
	t.finish()

	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (t *badgerTxn) Rollback() error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

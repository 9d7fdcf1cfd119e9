package storage

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridkv/gridkv/kv/config"
)

func newBadgerStore(t *testing.T) (Store, func()) {
	dir, err := ioutil.TempDir("", "gridkv-badger")
	require.NoError(t, err)

	conf := config.NewTestConfig()
	conf.Backend = config.BackendBadger
	conf.DBPath = dir

	s, err := Open(conf)
	require.NoError(t, err)

	return s, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, cleanup := newBadgerStore(t)
	defer cleanup()

	_, err := get(t, s, "a")
	assert.Equal(t, ErrNotFound, err)

	put(t, s, "a", "1")
	v, err := get(t, s, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	txn, err := s.Begin()
	require.NoError(t, err)
	defer txn.Rollback()
	require.NoError(t, txn.Delete([]byte("a")))
	require.NoError(t, txn.Commit())

	_, err = get(t, s, "a")
	assert.Equal(t, ErrNotFound, err)
}

func TestBadgerRepeatableRead(t *testing.T) {
	s, cleanup := newBadgerStore(t)
	defer cleanup()

	put(t, s, "a", "1")

	txn, err := s.Begin()
	require.NoError(t, err)
	defer txn.Rollback()

	v, err := txn.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, txn.Put([]byte("a"), []byte("2")))
	v, err = txn.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
	require.NoError(t, txn.Commit())

	v, err = get(t, s, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	conf := config.NewTestConfig()
	conf.Backend = "bolt"
	_, err := Open(conf)
	assert.Error(t, err)
}

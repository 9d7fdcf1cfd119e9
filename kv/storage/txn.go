package storage

// pendingWrite is a buffered Put or Delete, applied on Commit.
type pendingWrite struct {
	value []byte
	del   bool
}

// cachedRead remembers the first observed value of a key so later reads in
// the same transaction repeat it.
type cachedRead struct {
	value []byte
	found bool
}

// txnBase carries the locking, read-caching and write-buffering shared by the
// store backends. The backend supplies the committed-state read on cache miss
// and the atomic apply on commit.
type txnBase struct {
	locks  *lockTable
	reads  map[string]cachedRead
	writes map[string]pendingWrite
	owned  []string
	done   bool
}

func newTxnBase(locks *lockTable) txnBase {
	return txnBase{
		locks:  locks,
		reads:  make(map[string]cachedRead),
		writes: make(map[string]pendingWrite),
	}
}

// lock takes the key's lock if this transaction does not hold it yet,
// blocking while another transaction does.
func (t *txnBase) lock(key string) {
	for _, k := range t.owned {
		if k == key {
			return
		}
	}
	t.locks.wait(key)
	t.owned = append(t.owned, key)
}

// get serves key from this transaction's own writes, then from the read
// cache, and only then from committed state via fetch.
func (t *txnBase) get(key []byte, fetch func([]byte) ([]byte, bool, error)) ([]byte, error) {
	if t.done {
		return nil, ErrTxnClosed
	}
	k := string(key)
	t.lock(k)

	if w, ok := t.writes[k]; ok {
		if w.del {
			return nil, ErrNotFound
		}
		return append([]byte(nil), w.value...), nil
	}

	if c, ok := t.reads[k]; ok {
		if !c.found {
			return nil, ErrNotFound
		}
		return append([]byte(nil), c.value...), nil
	}

	value, found, err := fetch(key)
	if err != nil {
		return nil, err
	}
	t.reads[k] = cachedRead{value: value, found: found}
	if !found {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (t *txnBase) put(key, value []byte) error {
	if t.done {
		return ErrTxnClosed
	}
	k := string(key)
	t.lock(k)
	t.writes[k] = pendingWrite{value: append([]byte(nil), value...)}
	return nil
}

func (t *txnBase) del(key []byte) error {
	if t.done {
		return ErrTxnClosed
	}
	k := string(key)
	t.lock(k)
	t.writes[k] = pendingWrite{del: true}
	return nil
}

// finish marks the transaction done and releases every lock it holds. Safe to
// call once only; callers check done first.
func (t *txnBase) finish() {
	t.done = true
	for _, k := range t.owned {
		t.locks.release(k)
	}
	t.owned = nil
}

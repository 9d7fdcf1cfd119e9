package latch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ngaut/log"
	"github.com/pingcap/errors"

	"github.com/gridkv/gridkv/kv/storage"
)

// ErrNotInitialized is returned to callers that waited out the one-shot
// initialization signal and found no wait handle: the initializing caller
// failed before publishing one.
var ErrNotInitialized = errors.New("count down latch has not been properly initialized")

// CountDownLatch is the process-local proxy of a cluster-shared count-down
// latch. The authoritative count is a value in the transactional store; the
// proxy caches the last observed count and republishes it to local waiters
// through an internal wait handle. Proxies are created through a Registry,
// one singleton per name per process, and are safe for concurrent use.
type CountDownLatch struct {
	name    string
	key     []byte
	initCnt int32
	autoDel bool
	store   storage.Store
	reg     *Registry

	// cnt is the locally cached authoritative count, read atomically.
	cnt     int32
	removed int32

	// internal is created lazily, exactly once, by the initGuard winner.
	mu       sync.Mutex
	internal *waiter

	initGuard int32
	initCh    chan struct{}
}

func newCountDownLatch(name string, cnt, initCnt int32, autoDel bool, store storage.Store, reg *Registry) *CountDownLatch {
	if name == "" {
		panic("count down latch: empty name")
	}
	if cnt < 0 || initCnt < 0 {
		panic("count down latch: negative count")
	}

	return &CountDownLatch{
		name:    name,
		key:     latchKey(name),
		cnt:     cnt,
		initCnt: initCnt,
		autoDel: autoDel,
		store:   store,
		reg:     reg,
		initCh:  make(chan struct{}),
	}
}

func (l *CountDownLatch) Name() string {
	return l.name
}

// Key returns the store key holding the authoritative count.
func (l *CountDownLatch) Key() []byte {
	return l.key
}

// Count returns the last locally observed authoritative count.
func (l *CountDownLatch) Count() int32 {
	return atomic.LoadInt32(&l.cnt)
}

func (l *CountDownLatch) InitialCount() int32 {
	return l.initCnt
}

func (l *CountDownLatch) AutoDelete() bool {
	return l.autoDel
}

// Removed reports whether the store entry backing this proxy is gone. The
// flag is monotonic.
func (l *CountDownLatch) Removed() bool {
	return atomic.LoadInt32(&l.removed) != 0
}

// Await blocks until the latch reaches zero or ctx is done, initializing the
// local wait handle first if needed.
func (l *CountDownLatch) Await(ctx context.Context) error {
	if err := l.initialize(); err != nil {
		return err
	}
	return l.waitHandle().Wait(ctx)
}

// AwaitTimeout reports whether the latch reached zero within d. It has no
// side effect on the shared count.
func (l *CountDownLatch) AwaitTimeout(d time.Duration) (bool, error) {
	if err := l.initialize(); err != nil {
		return false, err
	}
	return l.waitHandle().WaitTimeout(d), nil
}

// CountDown decrements the authoritative count by one and returns the new
// count.
func (l *CountDownLatch) CountDown() (int32, error) {
	return l.countDown(1)
}

// CountDownN decrements the authoritative count by n, saturating at zero, and
// returns the new count. n must be positive.
func (l *CountDownLatch) CountDownN(n int32) (int32, error) {
	if n <= 0 {
		panic("count down latch: decrement must be positive")
	}
	return l.countDown(n)
}

// CountDownAll drops the authoritative count straight to zero.
func (l *CountDownLatch) CountDownAll() error {
	_, err := l.countDown(0)
	return err
}

// countDown runs one decrement transaction. n == 0 means count down to zero.
// The store's pessimistic lock on the entry is the single point of global
// serialization; concurrent decrements from any node linearize there.
func (l *CountDownLatch) countDown(n int32) (int32, error) {
	txn, err := l.store.Begin()
	if err != nil {
		return 0, errors.Annotatef(err, "count down latch %s: begin", l.name)
	}
	defer txn.Rollback()

	raw, err := txn.Get(l.key)
	if err == storage.ErrNotFound {
		log.Debugf("failed to find count down latch with given name: %s", l.name)
		return 0, nil
	}
	if err != nil {
		return 0, errors.Annotatef(err, "count down latch %s: read", l.name)
	}

	val, err := decodeValue(raw)
	if err != nil {
		return 0, errors.Annotatef(err, "count down latch %s", l.name)
	}

	var ret int32
	if n > 0 {
		ret = val.Count - n
		if ret < 0 {
			ret = 0
		}
	}

	val.Count = ret
	if err := txn.Put(l.key, encodeValue(val)); err != nil {
		return 0, errors.Annotatef(err, "count down latch %s: write", l.name)
	}
	if err := txn.Commit(); err != nil {
		return 0, errors.Annotatef(err, "count down latch %s: commit", l.name)
	}

	l.OnUpdate(ret)
	return ret, nil
}

// OnUpdate is invoked when the authoritative count is observed to have
// changed. It refreshes the cached count and drives the wait handle down to
// match; the handle's counter is never raised, so late or out-of-order
// deliveries are harmless.
func (l *CountDownLatch) OnUpdate(cnt int32) {
	if cnt < 0 {
		panic("count down latch: negative count")
	}

	atomic.StoreInt32(&l.cnt, cnt)

	l.mu.Lock()
	if l.internal != nil {
		l.internal.countTo(cnt)
	}
	l.mu.Unlock()
}

// OnRemoved marks the proxy removed. The count must already be zero.
func (l *CountDownLatch) OnRemoved() {
	if l.Count() != 0 {
		panic("count down latch: removed with non-zero count")
	}
	atomic.StoreInt32(&l.removed, 1)
}

// Close asks the registry to remove the named store entry. It is a no-op once
// the latch is removed; local waiters are not affected.
func (l *CountDownLatch) Close() error {
	if l.Removed() {
		return nil
	}
	return l.reg.Remove(l.name)
}

// initialize creates the wait handle exactly once. The compare-and-set winner
// reads the store and publishes the handle before closing the one-shot init
// channel; all other callers block on that channel.
func (l *CountDownLatch) initialize() error {
	if atomic.CompareAndSwapInt32(&l.initGuard, 0, 1) {
		w, err := l.loadInitial()
		if err == nil {
			l.mu.Lock()
			l.internal = w
			l.mu.Unlock()
			log.Debugf("initialized internal latch: %s, count %d", l.name, w.Count())
		}
		close(l.initCh)
		return err
	}

	<-l.initCh

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.internal == nil {
		return errors.Annotatef(ErrNotInitialized, "latch %s", l.name)
	}
	return nil
}

// loadInitial reads the authoritative count inside a transaction. An absent
// entry means the latch already reached zero and was removed; the cached
// count is authoritative then.
func (l *CountDownLatch) loadInitial() (*waiter, error) {
	txn, err := l.store.Begin()
	if err != nil {
		return nil, errors.Annotatef(err, "count down latch %s: begin", l.name)
	}
	defer txn.Rollback()

	raw, err := txn.Get(l.key)
	if err == storage.ErrNotFound {
		log.Debugf("failed to find count down latch with given name: %s", l.name)
		return newWaiter(l.Count()), nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "count down latch %s: read", l.name)
	}

	val, err := decodeValue(raw)
	if err != nil {
		return nil, errors.Annotatef(err, "count down latch %s", l.name)
	}

	// Read-only commit, to release the entry's lock cleanly.
	if err := txn.Commit(); err != nil {
		return nil, errors.Annotatef(err, "count down latch %s: commit", l.name)
	}

	atomic.StoreInt32(&l.cnt, val.Count)
	return newWaiter(val.Count), nil
}

// waitHandle returns the initialized handle. Callers run initialize first.
func (l *CountDownLatch) waitHandle() *waiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.internal
}

package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquire(t *testing.T) {
	l := newLockTable()

	// Acquiring a free key is ok.
	wg := l.acquire("a")
	assert.Nil(t, wg)

	// Can only acquire once.
	wg = l.acquire("a")
	assert.NotNil(t, wg)

	// Release then acquire is ok.
	l.release("a")
	wg = l.acquire("a")
	assert.Nil(t, wg)
}

func TestWaitWakesOnRelease(t *testing.T) {
	l := newLockTable()
	assert.Nil(t, l.acquire("a"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.wait("a")
		l.release("a")
	}()

	l.release("a")
	wg.Wait()
}

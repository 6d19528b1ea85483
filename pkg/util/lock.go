package util

import (
	"sync"

	"github.com/petermattis/goid"
)

// ReentryLock is a mutex that may be re-acquired by the goroutine
// holding it.
type ReentryLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

func NewReentryLock() *ReentryLock {
	lock := &ReentryLock{}
	lock.cond = sync.NewCond(&lock.mu)
	return lock
}

func (lock *ReentryLock) Lock() {
	rid := goid.Get()
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.owner == rid {
		lock.depth++
		return
	}
	for lock.owner != 0 {
		lock.cond.Wait()
	}
	lock.owner = rid
	lock.depth = 1
}

func (lock *ReentryLock) Unlock() {
	rid := goid.Get()
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.depth == 0 || lock.owner != rid {
		panic("unlock of unlocked ReentryLock")
	}
	lock.depth--
	if lock.depth == 0 {
		lock.owner = 0
		lock.cond.Signal()
	}
}

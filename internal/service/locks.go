package service

import (
	"sync"

	"github.com/google/uuid"
)

// DivisionLocks serializes bracket generation, result recording and deletion
// per division. SQLite transactions give atomic commits; this gives the
// mutual exclusion between overlapping mutations on the same tree. One
// instance is shared by every service that mutates brackets.
type DivisionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewDivisionLocks() *DivisionLocks {
	return &DivisionLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the division's mutex and returns the unlock func.
func (d *DivisionLocks) Lock(id uuid.UUID) func() {
	d.mu.Lock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.Mutex{}
		d.locks[id] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}

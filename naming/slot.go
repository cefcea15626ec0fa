package naming

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"gridmap/grid"
	"sync"
)

type Result struct {
	Cell grid.CellIndex
	Name string
	Err  error
}

// Slot holds at most one pending lookup. Submitting a new lookup cancels the pending one and only the result of the
// most recently submitted lookup is ever delivered. Results are delivered one after another, never concurrently.
type Slot struct {
	resolver Resolver

	mutex      *sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	closed     bool

	deliverMutex *sync.Mutex
}

func NewSlot(resolver Resolver) *Slot {
	return &Slot{
		resolver:     resolver,
		mutex:        &sync.Mutex{},
		deliverMutex: &sync.Mutex{},
	}
}

// Submit starts the lookup of the given cell in the background and replaces any pending lookup. The deliver function
// is called with the result unless a newer lookup was submitted or the slot was closed in the meantime.
func (s *Slot) Submit(ctx context.Context, cell grid.CellIndex, deliver func(Result)) {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	generation := s.generation
	s.mutex.Unlock()

	go func() {
		defer cancel()

		name, err := s.resolver.Resolve(lookupCtx, cell)

		s.deliverMutex.Lock()
		defer s.deliverMutex.Unlock()

		if !s.isCurrent(generation) {
			sigolo.Tracef("Drop result of superseded lookup for cell %v", cell)
			return
		}

		deliver(Result{Cell: cell, Name: name, Err: err})
	}()
}

func (s *Slot) isCurrent(generation uint64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return !s.closed && s.generation == generation
}

// Close cancels the pending lookup. Lookups submitted afterwards are ignored.
func (s *Slot) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

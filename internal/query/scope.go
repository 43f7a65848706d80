package query

import (
	"context"
	"sync"
)

// Scope hands out generation tickets to a screen. Beginning a new
// generation cancels the previous one's context, and results carrying an
// old ticket must be discarded by the receiver.
type Scope struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Ticket identifies one generation of a Scope.
type Ticket struct {
	scope *Scope
	gen   uint64
}

// Begin starts a new generation derived from parent.
func (s *Scope) Begin(parent context.Context) (Ticket, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	return Ticket{scope: s, gen: s.gen}, ctx
}

// Current returns the live generation without starting a new one.
func (s *Scope) Current() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket{scope: s, gen: s.gen}
}

// End invalidates the live generation, e.g. when the screen unmounts.
func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// Valid reports whether t is still the live generation of its scope.
func (t Ticket) Valid() bool {
	if t.scope == nil {
		return false
	}
	t.scope.mu.Lock()
	defer t.scope.mu.Unlock()
	return t.gen == t.scope.gen
}

// Generation returns the ticket's generation number.
func (t Ticket) Generation() uint64 {
	return t.gen
}

// Package task runs background work whose results must be dropped once the requester is
// gone. A Scope owns a context, the goroutines started in it and the timers armed in it;
// Close cancels all of them, and any result that completes afterwards is discarded
// instead of being delivered.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/thejerf/abtime"

	"lodgeportal/cli/internal/logging"
)

// Scope groups cancellable tasks and timers. The zero value is not usable; call New.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	clock  abtime.AbstractTime
	logger *pterm.Logger

	// gate is held for reading while a result is delivered and for writing by Close,
	// so no delivery runs after Close returns.
	gate   sync.RWMutex
	closed bool

	mu     sync.Mutex
	timers map[int]abtime.Timer
	wg     sync.WaitGroup
}

// New returns an open Scope derived from parent. A nil clock means real time.
func New(parent context.Context, clock abtime.AbstractTime, logger *pterm.Logger) *Scope {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{
		ctx:    ctx,
		cancel: cancel,
		clock:  clock,
		logger: logger,
		timers: map[int]abtime.Timer{},
	}
}

// Context is canceled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.closed
}

// deliver runs fn unless the scope is closed. fn must not call Close.
func (s *Scope) deliver(fn func()) bool {
	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Go runs fn in a goroutine bound to the scope's context and hands its result to deliver,
// unless the scope was closed in the meantime. It returns false without starting fn when
// the scope is already closed.
func Go[T any](s *Scope, fn func(ctx context.Context) (T, error), deliver func(T, error)) bool {
	if s.Closed() {
		return false
	}
	id := uuid.NewString()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		v, err := fn(s.ctx)
		if !s.deliver(func() { deliver(v, err) }) {
			s.logger.Trace("dropped task result after scope close", s.logger.Args("task", id))
		}
	}()
	return true
}

// AfterFunc calls f once after d unless the scope closes first. id names the timer for
// manual clocks and replaces any pending timer with the same id.
func (s *Scope) AfterFunc(id int, d time.Duration, f func()) {
	if s.Closed() {
		return
	}
	t := s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		// off the clock's goroutine so f may read the clock
		go s.deliver(f)
	}, id)

	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = t
	s.mu.Unlock()
}

// StopTimer cancels the pending timer with the given id, if any.
func (s *Scope) StopTimer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Close cancels the context, stops every timer and waits for running goroutines to
// return. Results produced after Close are dropped. Close is idempotent.
func (s *Scope) Close() {
	s.gate.Lock()
	already := s.closed
	s.closed = true
	s.gate.Unlock()
	if already {
		return
	}

	s.cancel()
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

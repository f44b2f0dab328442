package game

import (
	"sync"
	"time"
)

// Scheduler abstracts one-shot timer scheduling so tests can fire expiries
// deterministically. Real engines use the wall clock.
type Scheduler interface {
	// AfterFunc runs fn once after d and returns a cancel function.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// NewScheduler returns the wall-clock scheduler.
func NewScheduler() Scheduler { return realScheduler{} }

// ManualScheduler queues expiry actions without a clock; tests call Fire to
// run them. Safe for concurrent use.
type ManualScheduler struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]func()
}

// NewManualScheduler returns an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[int]func())}
}

// AfterFunc queues fn, ignoring d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.pending[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, id)
	}
}

// Fire runs and clears every queued action, in scheduling order.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.pending))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.pending[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.pending = make(map[int]func())
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// FireNext runs and clears only the oldest queued action; no-op when empty.
func (s *ManualScheduler) FireNext() {
	s.mu.Lock()
	var fn func()
	for id := 0; id < s.nextID; id++ {
		if f, ok := s.pending[id]; ok {
			fn = f
			delete(s.pending, id)
			break
		}
	}
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending returns the number of queued actions.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// effectRegistry schedules the expiry/reversal of timed effects (freeze,
// letter ban, shield). Every activation registers exactly one reversal;
// reversals are idempotent and generation-guarded so a reset invalidates all
// in-flight timers instead of mutating a reused match.
type effectRegistry struct {
	mu      sync.Mutex
	sched   Scheduler
	gen     uint64
	cancels map[int]func()
	nextID  int
}

func newEffectRegistry(sched Scheduler) *effectRegistry {
	if sched == nil {
		sched = NewScheduler()
	}
	return &effectRegistry{sched: sched, cancels: make(map[int]func())}
}

// schedule registers one expiry action. fn only runs if the registry has not
// been reset since scheduling, and runs at most once.
func (r *effectRegistry) schedule(d time.Duration, fn func()) {
	r.mu.Lock()
	gen := r.gen
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	var once sync.Once
	cancel := r.sched.AfterFunc(d, func() {
		once.Do(func() {
			r.mu.Lock()
			stale := r.gen != gen
			delete(r.cancels, id)
			r.mu.Unlock()
			if stale {
				return
			}
			fn()
		})
	})

	r.mu.Lock()
	if r.gen == gen {
		r.cancels[id] = cancel
	} else {
		// Reset raced the registration; drop the timer immediately.
		r.mu.Unlock()
		cancel()
		return
	}
	r.mu.Unlock()
}

// reset invalidates every pending expiry. Actions already scheduled become
// guarded no-ops even if their timers fire afterwards.
func (r *effectRegistry) reset() {
	r.mu.Lock()
	r.gen++
	cancels := r.cancels
	r.cancels = make(map[int]func())
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

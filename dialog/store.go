// Package dialog holds the per-user workflow context store: the only
// mutable shared state in the orchestration core. Each user owns at most one
// slot across all four workflow kinds; setting a new context silently
// supersedes whatever was there. Contexts expire after a TTL and are evicted
// lazily on read, so an expired context is indistinguishable from no context.
//
// Locking is per user: an outer RWMutex guards only the slot map structure,
// and each slot carries its own mutex, so unrelated users never serialize
// behind one another. Concurrent overlapping turns from the same user
// resolve to last-write-wins; that relaxation is deliberate.
package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/logging"
)

// DefaultTTL is how long a workflow context stays live after creation.
const DefaultTTL = 30 * time.Minute

// Store is the per-user workflow context contract used by the router and
// the media resolver.
type Store interface {
	// Set installs a context for the user, superseding any existing one
	// regardless of kind.
	Set(userID string, wc core.WorkflowContext)
	// Get returns the user's live context. Expired contexts are evicted as
	// a side effect and reported as absent.
	Get(userID string) (core.WorkflowContext, bool)
	// Has reports whether the user has a live context.
	Has(userID string) bool
	// Kind returns the kind of the user's live context.
	Kind(userID string) (core.WorkflowKind, bool)
	// Clear removes the user's context, reporting whether a live one was
	// present.
	Clear(userID string) bool
}

type slot struct {
	mu sync.Mutex
	wc *core.WorkflowContext
}

// InMemoryStore is the volatile Store implementation. State does not
// survive the process, by design.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[string]*slot
	ttl   time.Duration
	now   func() time.Time

	logger logging.Logger
}

// StoreOptions configures an InMemoryStore.
type StoreOptions struct {
	TTL    time.Duration
	Logger logging.Logger
	// Clock overrides time.Now for TTL checks; tests use a fake clock.
	Clock func() time.Time
}

// NewInMemoryStore constructs an empty store with the default TTL.
func NewInMemoryStore(optFns ...func(o *StoreOptions)) *InMemoryStore {
	opts := StoreOptions{
		TTL:    DefaultTTL,
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		slots:  make(map[string]*slot),
		ttl:    opts.TTL,
		now:    opts.Clock,
		logger: opts.Logger,
	}
}

// TTL returns the configured time-to-live.
func (s *InMemoryStore) TTL() time.Duration { return s.ttl }

func (s *InMemoryStore) slotFor(userID string, create bool) *slot {
	s.mu.RLock()
	sl, ok := s.slots[userID]
	s.mu.RUnlock()
	if ok || !create {
		return sl
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok = s.slots[userID]; ok {
		return sl
	}
	sl = &slot{}
	s.slots[userID] = sl
	return sl
}

// cloneContext deep-copies the mutable parts of a context so callers can
// never mutate stored state through a returned value.
func cloneContext(wc *core.WorkflowContext) core.WorkflowContext {
	out := *wc
	out.Candidates = make([]core.Candidate, len(wc.Candidates))
	copy(out.Candidates, wc.Candidates)
	if wc.SelectionRef != nil {
		ref := *wc.SelectionRef
		out.SelectionRef = &ref
	}
	if wc.Granular != nil {
		g := core.GranularSelection{Seasons: make([]core.SeasonSelection, len(wc.Granular.Seasons))}
		copy(g.Seasons, wc.Granular.Seasons)
		out.Granular = &g
	}
	return out
}

// Set implements Store.
func (s *InMemoryStore) Set(userID string, wc core.WorkflowContext) {
	sl := s.slotFor(userID, true)
	stored := cloneContext(&wc)
	sl.mu.Lock()
	sl.wc = &stored
	sl.mu.Unlock()
	s.logger.Debug("workflow context set", "user_id", userID, "kind", string(wc.Kind), "candidates", len(wc.Candidates))
}

// Get implements Store, evicting expired contexts on read.
func (s *InMemoryStore) Get(userID string) (core.WorkflowContext, bool) {
	sl := s.slotFor(userID, false)
	if sl == nil {
		return core.WorkflowContext{}, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.wc == nil {
		return core.WorkflowContext{}, false
	}
	if !sl.wc.Live(s.now(), s.ttl) {
		s.logger.Debug("workflow context expired", "user_id", userID, "kind", string(sl.wc.Kind))
		sl.wc = nil
		return core.WorkflowContext{}, false
	}
	return cloneContext(sl.wc), true
}

// Has implements Store.
func (s *InMemoryStore) Has(userID string) bool {
	_, ok := s.Get(userID)
	return ok
}

// Kind implements Store.
func (s *InMemoryStore) Kind(userID string) (core.WorkflowKind, bool) {
	wc, ok := s.Get(userID)
	if !ok {
		return "", false
	}
	return wc.Kind, true
}

// Clear implements Store. Clearing an expired context reports false, since
// an expired context behaves identically to no context.
func (s *InMemoryStore) Clear(userID string) bool {
	sl := s.slotFor(userID, false)
	if sl == nil {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.wc == nil {
		return false
	}
	live := sl.wc.Live(s.now(), s.ttl)
	sl.wc = nil
	return live
}

// StartSweeper launches a background goroutine that periodically evicts
// expired contexts. Eviction-on-read already guarantees correctness; the
// sweeper only reclaims memory for users who never return. It stops when
// ctx is done.
func (s *InMemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		s.logger.Info("context sweeper started", "interval", interval, "ttl", s.ttl)
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					s.logger.Info("context sweeper evicted expired contexts", "count", n)
				}
			case <-ctx.Done():
				s.logger.Info("context sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (s *InMemoryStore) sweep() int {
	s.mu.RLock()
	users := make([]string, 0, len(s.slots))
	for u := range s.slots {
		users = append(users, u)
	}
	s.mu.RUnlock()

	evicted := 0
	now := s.now()
	for _, u := range users {
		sl := s.slotFor(u, false)
		if sl == nil {
			continue
		}
		sl.mu.Lock()
		if sl.wc != nil && !sl.wc.Live(now, s.ttl) {
			sl.wc = nil
			evicted++
		}
		sl.mu.Unlock()
	}
	return evicted
}

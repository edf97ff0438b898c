package dialog

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/couchbot/couchbot/core"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*InMemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryStore(func(o *StoreOptions) {
		o.TTL = ttl
		o.Clock = clock.Now
	})
	return store, clock
}

func contextAt(kind core.WorkflowKind, createdAt time.Time) core.WorkflowContext {
	return core.WorkflowContext{
		Kind:       kind,
		Query:      "alien",
		Candidates: []core.Candidate{{ExternalID: 1, Title: "Alien"}},
		CreatedAt:  createdAt,
		Active:     true,
	}
}

func TestStore_SingleSlotPerUser(t *testing.T) {
	store, clock := newTestStore(30 * time.Minute)

	store.Set("u1", contextAt(core.WorkflowMovieDownload, clock.Now()))
	store.Set("u1", contextAt(core.WorkflowSeriesDelete, clock.Now()))

	kind, ok := store.Kind("u1")
	if !ok || kind != core.WorkflowSeriesDelete {
		t.Fatalf("second Set should supersede across kinds, got %v %v", kind, ok)
	}

	// Exactly one context exists: clearing once empties the slot.
	if !store.Clear("u1") {
		t.Fatal("Clear should report a live context was removed")
	}
	if store.Has("u1") {
		t.Fatal("no context should remain after Clear")
	}
	if store.Clear("u1") {
		t.Fatal("second Clear should report nothing removed")
	}
}

func TestStore_TTLBoundary(t *testing.T) {
	ttl := 30 * time.Minute
	store, clock := newTestStore(ttl)
	store.Set("u1", contextAt(core.WorkflowMovieDownload, clock.Now()))

	clock.Advance(ttl - time.Second)
	if !store.Has("u1") {
		t.Fatal("context just inside TTL should be live")
	}

	clock.Advance(2 * time.Second)
	if store.Has("u1") {
		t.Fatal("context past TTL should not be live")
	}

	// Expiry eviction happens as a side effect of the read above.
	if store.Clear("u1") {
		t.Fatal("clearing an already-evicted context should report false")
	}
}

func TestStore_ExpiredClearReportsFalse(t *testing.T) {
	store, clock := newTestStore(10 * time.Minute)
	store.Set("u1", contextAt(core.WorkflowMovieDelete, clock.Now()))
	clock.Advance(11 * time.Minute)

	if store.Clear("u1") {
		t.Fatal("expired context must behave identically to no context")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, clock := newTestStore(30 * time.Minute)
	store.Set("u1", contextAt(core.WorkflowSeriesDownload, clock.Now()))

	wc, ok := store.Get("u1")
	if !ok {
		t.Fatal("expected live context")
	}
	wc.Candidates[0].Title = "mutated"
	wc.Query = "mutated"

	again, _ := store.Get("u1")
	if again.Candidates[0].Title != "Alien" || again.Query != "alien" {
		t.Fatal("stored context should be isolated from returned copies")
	}
}

func TestStore_ConcurrentUsersIndependent(t *testing.T) {
	store, clock := newTestStore(30 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			for j := 0; j < 20; j++ {
				store.Set(user, contextAt(core.WorkflowMovieDownload, clock.Now()))
				store.Get(user)
				store.Clear(user)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		if store.Has(fmt.Sprintf("user-%d", i)) {
			t.Fatalf("user-%d should end with no context", i)
		}
	}
}

func TestStore_SameUserLastWriteWins(t *testing.T) {
	store, clock := newTestStore(30 * time.Minute)

	var wg sync.WaitGroup
	kinds := []core.WorkflowKind{
		core.WorkflowMovieDownload,
		core.WorkflowSeriesDownload,
		core.WorkflowMovieDelete,
		core.WorkflowSeriesDelete,
	}
	for _, k := range kinds {
		wg.Add(1)
		go func(k core.WorkflowKind) {
			defer wg.Done()
			store.Set("u1", contextAt(k, clock.Now()))
		}(k)
	}
	wg.Wait()

	// Whichever write landed last, the slot holds exactly one coherent context.
	wc, ok := store.Get("u1")
	if !ok {
		t.Fatal("expected a context after concurrent writes")
	}
	found := false
	for _, k := range kinds {
		if wc.Kind == k {
			found = true
		}
	}
	if !found || len(wc.Candidates) != 1 {
		t.Fatalf("context should be one of the written values, got %+v", wc)
	}
}

func TestStore_Sweep(t *testing.T) {
	store, clock := newTestStore(10 * time.Minute)
	store.Set("stale", contextAt(core.WorkflowMovieDownload, clock.Now()))
	clock.Advance(5 * time.Minute)
	store.Set("fresh", contextAt(core.WorkflowMovieDownload, clock.Now()))
	clock.Advance(6 * time.Minute)

	if n := store.sweep(); n != 1 {
		t.Fatalf("sweep should evict exactly the stale context, got %d", n)
	}
	if !store.Has("fresh") {
		t.Fatal("fresh context should survive the sweep")
	}
}

package feed

import (
	"testing"
	"time"
)

// session wires a store, gate and coordinator the way the client does,
// for end-to-end checks of the load/scroll/merge cycle.
type session struct {
	store *Store
	gate  *Gate
	views *Coordinator
	clock *time.Time
}

func newSession(t *testing.T) *session {
	t.Helper()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)
	g := NewGate(3, time.Second)
	g.now = func() time.Time { return now }
	s := NewStore(nil)
	s.now = g.now
	return &session{store: s, gate: g, views: NewCoordinator(g), clock: &now}
}

// loadFirstPage mimics opening a site: replace the store, request the
// initial scroll, render, and complete the scroll.
func (ss *session) loadFirstPage(groups []*Group, cursor Cursor) []Entry {
	ss.gate.Suppress()
	ss.store.ReplaceAll(groups, cursor)
	ss.views.OnInitialLoad()
	entries := ss.store.View()
	if ss.views.ShouldScroll(len(entries)) {
		ss.views.ScrollCompleted()
	}
	return entries
}

func TestFirstPageRendersAndArmsHistoryGate(t *testing.T) {
	ss := newSession(t)

	g := mkGroup("v1", baseTime, 3,
		mkComment("c1", "v1", baseTime),
		mkComment("c2", "v1", baseTime.Add(5*time.Minute)),
	)
	entries := ss.loadFirstPage([]*Group{g}, Cursor{CurrentPage: 1, TotalPages: 2, HasNext: true})

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (separator + 2 comments)", len(entries))
	}
	if entries[0].Kind != EntryDateSeparator || entries[0].Label != "Today" {
		t.Errorf("entries[0] = %+v, want Today separator", entries[0])
	}
	if entries[1].Comment.ID != "c1" || entries[2].Comment.ID != "c2" {
		t.Errorf("comment order = %s, %s; want c1, c2", entries[1].Comment.ID, entries[2].Comment.ID)
	}
	if ss.gate.Suppressed() {
		t.Error("gate should be armed once the initial scroll completed")
	}
	if ss.views.FirstLoad() {
		t.Error("first load should be over after the initial scroll")
	}
}

func TestScrollUpMergesOlderPageAbove(t *testing.T) {
	ss := newSession(t)

	g := mkGroup("v1", baseTime, 3,
		mkComment("c1", "v1", baseTime),
		mkComment("c2", "v1", baseTime.Add(5*time.Minute)),
	)
	ss.loadFirstPage([]*Group{g}, Cursor{CurrentPage: 1, TotalPages: 2, HasNext: true})

	// Scroll down first, then up toward the top.
	ss.gate.Observe(50, true)
	if !ss.gate.Observe(1, true) {
		t.Fatal("gate should trigger near the top")
	}

	older := mkGroup("v1", baseTime, 3,
		mkComment("c0", "v1", baseTime.Add(-time.Hour)),
	)
	ss.store.MergeOlderPage([]*Group{older}, Cursor{CurrentPage: 2, TotalPages: 2, HasNext: false})
	ss.views.OnOlderMerge()
	ss.gate.FinishFetch()

	entries := ss.store.View()
	var ids []string
	for _, e := range entries {
		if e.Kind == EntryComment {
			ids = append(ids, e.Comment.ID)
		}
	}
	if len(ids) != 3 || ids[0] != "c0" || ids[1] != "c1" || ids[2] != "c2" {
		t.Errorf("comment order = %v, want [c0 c1 c2]", ids)
	}
	if ss.views.ShouldScroll(len(entries)) {
		t.Error("merging history must not move the viewport")
	}
}

func TestRefreshKeepsHistoryPaginationAlive(t *testing.T) {
	ss := newSession(t)

	g := mkGroup("v1", baseTime, 3,
		mkComment("c1", "v1", baseTime),
		mkComment("c2", "v1", baseTime.Add(5*time.Minute)),
	)
	cursor := Cursor{CurrentPage: 1, TotalPages: 2, HasNext: true}
	ss.loadFirstPage([]*Group{g}, cursor)

	// Refresh returns the exact same page: same groups, same view length.
	ss.loadFirstPage([]*Group{g}, cursor)

	if ss.gate.Suppressed() {
		t.Fatal("gate still suppressed after a no-change refresh")
	}
	ss.gate.Observe(50, true)
	if !ss.gate.Observe(1, true) {
		t.Error("history pagination should still trigger after the refresh")
	}
}

func TestExhaustedHistoryStopsTriggering(t *testing.T) {
	ss := newSession(t)

	g := mkGroup("v1", baseTime, 1, mkComment("c1", "v1", baseTime))
	ss.loadFirstPage([]*Group{g}, Cursor{CurrentPage: 1, TotalPages: 1, HasNext: false})

	ss.gate.Observe(50, ss.store.Cursor().HasNext)
	if ss.gate.Observe(0, ss.store.Cursor().HasNext) {
		t.Error("gate must not trigger when there are no more pages")
	}
}

func TestFailedHistoryFetchCanBeRetried(t *testing.T) {
	ss := newSession(t)

	g := mkGroup("v1", baseTime, 3, mkComment("c2", "v1", baseTime))
	ss.loadFirstPage([]*Group{g}, Cursor{CurrentPage: 1, TotalPages: 3, HasNext: true})

	ss.gate.Observe(50, true)
	if !ss.gate.Observe(1, true) {
		t.Fatal("gate should trigger")
	}

	// Fetch fails: the store is untouched, the gate frees the slot.
	ss.gate.FinishFetch()
	if got := len(ss.store.Groups()[0].Comments); got != 1 {
		t.Errorf("comments = %d, want 1 after failed fetch", got)
	}

	// Move the clock past the cooldown; the user scrolls again.
	*ss.clock = ss.clock.Add(2 * time.Second)
	ss.gate.Observe(50, true)
	if !ss.gate.Observe(1, true) {
		t.Error("gate should allow a retry after the cooldown")
	}
}

package feed

import "sync"

// Coordinator arbitrates when the feed view scrolls to the newest entry
// versus holding its position. Three triggers exist: the initial load and a
// local send request a scroll; an older-page merge never does, so loading
// history cannot yank the viewport.
type Coordinator struct {
	mu             sync.Mutex
	gate           *Gate
	autoScroll     bool
	firstLoad      bool
	initialPending bool
	lastViewLen    int
}

// NewCoordinator creates a coordinator that releases the gate's first-load
// suppression once the initial scroll completes. gate may be nil in tests.
func NewCoordinator(gate *Gate) *Coordinator {
	return &Coordinator{gate: gate}
}

// OnInitialLoad records that the first page has populated the store: the
// next render scrolls to the end and first-load handling begins.
func (c *Coordinator) OnInitialLoad() {
	c.mu.Lock()
	c.autoScroll = true
	c.firstLoad = true
	c.initialPending = true
	c.mu.Unlock()
}

// OnLocalAppend records that a locally sent comment was appended: the next
// render scrolls to the end. First-load state is untouched.
func (c *Coordinator) OnLocalAppend() {
	c.mu.Lock()
	c.autoScroll = true
	c.mu.Unlock()
}

// OnOlderMerge records an older-page merge. Deliberately leaves the scroll
// intent alone: history loads must never move the viewport.
func (c *Coordinator) OnOlderMerge() {}

// ShouldScroll is called on every render with the derived view's length.
// It returns true, once, when a scroll was requested and the view size
// changed; the intent flag is consumed. The render after OnInitialLoad is
// eligible even with an unchanged size: a refresh can return a view of
// identical length, and its scroll must still complete or the gate would
// stay suppressed forever.
func (c *Coordinator) ShouldScroll(viewLen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := viewLen != c.lastViewLen
	c.lastViewLen = viewLen
	if c.autoScroll && (changed || c.initialPending) {
		c.autoScroll = false
		c.initialPending = false
		return true
	}
	return false
}

// ScrollCompleted is called after the viewport actually moved. If this was
// the first-load scroll, it ends first-load handling and releases the
// pagination gate; this ordering keeps pagination from firing while the
// initial scroll is still in flight.
func (c *Coordinator) ScrollCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.firstLoad {
		return
	}
	c.firstLoad = false
	if c.gate != nil {
		c.gate.Release()
	}
}

// FirstLoad reports whether the initial scroll has not yet completed.
func (c *Coordinator) FirstLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstLoad
}

package feed

import (
	"sync"
	"time"
)

// Gate decides whether a scroll movement should trigger fetching an older
// page. Scroll telemetry arrives at high frequency, so each trigger must
// pass direction, threshold, suppression, in-flight and cooldown checks
// before a request fires.
//
// The gate starts suppressed: while the view is settling onto its initial
// scroll-to-bottom position, the offset passes near the top and must not
// fire pagination. The scroll coordinator releases the gate once the first
// scroll lands.
type Gate struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	lastOffset  int
	haveOffset  bool
	lastTrigger time.Time
	fetching    bool
	suppressed  bool
}

// NewGate creates a gate with the given near-top threshold (in rows) and
// trigger cooldown.
func NewGate(threshold int, cooldown time.Duration) *Gate {
	return &Gate{
		threshold:  threshold,
		cooldown:   cooldown,
		now:        time.Now,
		suppressed: true,
	}
}

// Observe processes one scroll telemetry sample; it is synchronous and
// cheap. It returns true when a fetch for the next older page should be
// issued, in which case the gate has already marked itself fetching and
// recorded the trigger time. The caller must call FinishFetch when the
// fetch completes, success or failure.
func (g *Gate) Observe(offset int, hasNext bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	up := g.haveOffset && offset < g.lastOffset
	g.haveOffset = true
	g.lastOffset = offset

	if !up || offset >= g.threshold {
		return false
	}
	if g.suppressed || g.fetching || !hasNext {
		return false
	}
	now := g.now()
	if !g.lastTrigger.IsZero() && now.Sub(g.lastTrigger) < g.cooldown {
		return false
	}

	g.fetching = true
	g.lastTrigger = now
	return true
}

// FinishFetch clears the in-flight flag. Always called, on success and on
// failure, so a failed fetch never leaves the gate locked.
func (g *Gate) FinishFetch() {
	g.mu.Lock()
	g.fetching = false
	g.mu.Unlock()
}

// Fetching reports whether an older-page fetch is in flight.
func (g *Gate) Fetching() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetching
}

// Suppress blocks triggering until Release is called. Used while an initial
// load (or refresh) settles the viewport.
func (g *Gate) Suppress() {
	g.mu.Lock()
	g.suppressed = true
	g.mu.Unlock()
}

// Release lifts first-load suppression.
func (g *Gate) Release() {
	g.mu.Lock()
	g.suppressed = false
	g.mu.Unlock()
}

// Suppressed reports whether the gate is currently suppressed.
func (g *Gate) Suppressed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suppressed
}

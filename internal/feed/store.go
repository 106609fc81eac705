package feed

import (
	"sync"
	"time"

	"github.com/fieldscope/siteline/internal/bus"
)

// Store is the single source of truth for one open feed. It holds the
// ordered group list and the pagination cursor, and caches the derived
// chronological view, invalidating it on every mutation.
//
// After the initial ReplaceAll, MergeOlderPage and AppendLocal are the only
// mutation paths. No operation removes a comment or a group. Each mutation
// is one synchronous step under the store lock and publishes a feed.* event.
type Store struct {
	mu     sync.Mutex
	groups []*Group
	cursor Cursor
	bus    *bus.Bus
	now    func() time.Time

	view      []Entry
	viewStale bool
}

// NewStore creates an empty store for a freshly opened feed.
func NewStore(b *bus.Bus) *Store {
	return &Store{
		bus: b,
		now: time.Now,
	}
}

// ReplaceAll installs the first fetched page, discarding anything held.
// Used only for the initial load and manual refresh.
func (s *Store) ReplaceAll(groups []*Group, cursor Cursor) {
	s.mu.Lock()
	s.groups = make([]*Group, 0, len(groups))
	total := 0
	for _, g := range groups {
		cp := cloneGroup(g)
		total += len(cp.Comments)
		s.groups = append(s.groups, cp)
	}
	s.cursor = cursor
	s.viewStale = true
	n := len(s.groups)
	s.mu.Unlock()

	s.publish(bus.KindFeedReplaced, n, total)
}

// MergeOlderPage folds a backward-fetched page into the store. Incoming
// comments represent older history, so they are prepended to their group,
// skipping any comment id already present (pages are expected to be
// gap-free and non-overlapping, but overlaps must not duplicate). Unknown
// groups are appended to the end of the group list. The server's total is
// authoritative; the cursor is replaced from the page result.
// Returns the number of comments actually added.
func (s *Store) MergeOlderPage(groups []*Group, cursor Cursor) int {
	s.mu.Lock()
	added := 0
	for _, in := range groups {
		existing := s.findLocked(in.ID)
		if existing == nil {
			cp := cloneGroup(in)
			s.groups = append(s.groups, cp)
			added += len(cp.Comments)
			continue
		}
		fresh := make([]Comment, 0, len(in.Comments))
		for _, c := range in.Comments {
			if !hasComment(existing.Comments, c.ID) {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) > 0 {
			existing.Comments = append(fresh, existing.Comments...)
			existing.Shown += len(fresh)
			added += len(fresh)
		}
		existing.Total = in.Total
	}
	s.cursor = cursor
	s.viewStale = true
	n := len(s.groups)
	s.mu.Unlock()

	s.publish(bus.KindFeedMerged, n, added)
	return added
}

// AppendLocal appends a locally authored comment whose send already
// succeeded. If no group with the comment's group id exists, desc is
// inserted as a new group (the first comment on a site with no visits).
// The cursor is not touched: local sends do not move pagination.
func (s *Store) AppendLocal(c Comment, desc Group) {
	s.mu.Lock()
	g := s.findLocked(c.GroupID)
	if g == nil {
		cp := cloneGroup(&desc)
		cp.ID = c.GroupID
		cp.Comments = nil
		cp.Shown = 0
		cp.Total = 0
		s.groups = append(s.groups, cp)
		g = cp
	}
	g.Comments = append(g.Comments, c)
	g.Shown++
	g.Total++
	s.viewStale = true
	n := len(s.groups)
	s.mu.Unlock()

	s.publish(bus.KindFeedAppended, n, 1)
}

// Groups returns a deep snapshot of the current group list.
func (s *Store) Groups() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, cloneGroup(g))
	}
	return out
}

// Cursor returns the feed-level pagination cursor.
func (s *Store) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// LatestGroup returns a copy of the most recently created group, the target
// for new comments. Ties on creation time resolve to the later list entry.
func (s *Store) LatestGroup() (Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *Group
	for _, g := range s.groups {
		if latest == nil || !g.CreatedAt.Before(latest.CreatedAt) {
			latest = g
		}
	}
	if latest == nil {
		return Group{}, false
	}
	return *cloneGroup(latest), true
}

// View returns the derived chronological view, rebuilding it only when a
// mutation has invalidated the cache. Repeated calls on an unchanged store
// return the identical slice.
func (s *Store) View() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewStale || s.view == nil {
		s.view = BuildView(s.groups, s.now())
		s.viewStale = false
	}
	return s.view
}

func (s *Store) findLocked(id string) *Group {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (s *Store) publish(kind string, groups, comments int) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   bus.FeedChange{Groups: groups, Comments: comments},
	})
}

func cloneGroup(g *Group) *Group {
	cp := *g
	cp.Comments = make([]Comment, len(g.Comments))
	copy(cp.Comments, g.Comments)
	return &cp
}

func hasComment(comments []Comment, id string) bool {
	for i := range comments {
		if comments[i].ID == id {
			return true
		}
	}
	return false
}

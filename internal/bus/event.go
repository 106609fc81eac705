package bus

import "time"

// Event kinds published by the feed core. Subscribers filter by prefix,
// so "feed." matches every feed mutation.
const (
	KindFeedReplaced      = "feed.replaced"
	KindFeedMerged        = "feed.merged"
	KindFeedAppended      = "feed.appended"
	KindFeedStatusChanged = "feed.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// FeedChange is the payload for feed.* mutation events.
type FeedChange struct {
	Groups   int // groups in the store after the mutation
	Comments int // comments touched by the mutation
}

package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fieldscope/siteline/internal/feed"
)

var baseTime = time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

// fakePoster records calls and returns a scripted echo or error.
type fakePoster struct {
	mu      sync.Mutex
	calls   int
	visitID string
	content string
	echo    feed.Comment
	err     error
	block   chan struct{} // when set, PostComment waits until closed
}

func (f *fakePoster) PostComment(_ context.Context, visitID, content string, _ []feed.Attachment) (feed.Comment, error) {
	f.mu.Lock()
	f.calls++
	f.visitID = visitID
	f.content = content
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return feed.Comment{}, f.err
	}
	return f.echo, nil
}

func (f *fakePoster) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func seededStore(t *testing.T) *feed.Store {
	t.Helper()
	s := feed.NewStore(nil)
	g := &feed.Group{
		ID:        "v1",
		Status:    "open",
		CreatedAt: baseTime,
		Comments: []feed.Comment{
			{ID: "c1", Content: "first", CreatedAt: baseTime, GroupID: "v1"},
			{ID: "c2", Content: "second", CreatedAt: baseTime.Add(5 * time.Minute), GroupID: "v1"},
		},
		Shown: 2,
		Total: 2,
	}
	s.ReplaceAll([]*feed.Group{g}, feed.Cursor{CurrentPage: 1, TotalPages: 1})
	return s
}

func TestSendAppendsEcho(t *testing.T) {
	store := seededStore(t)
	scroll := feed.NewCoordinator(nil)
	scroll.OnInitialLoad()
	_ = scroll.ShouldScroll(3)
	scroll.ScrollCompleted()

	poster := &fakePoster{echo: feed.Comment{
		ID: "c3", Content: "hello", CreatedAt: baseTime.Add(10 * time.Minute), GroupID: "v1",
	}}
	s := NewSender(store, scroll, poster, Identity{UserID: "u1", DisplayName: "Ana Reyes"}, nil)

	echo, err := s.Send(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if echo.ID != "c3" {
		t.Errorf("echo id = %q, want c3", echo.ID)
	}
	if poster.visitID != "v1" {
		t.Errorf("posted visit id = %q, want v1", poster.visitID)
	}

	g := store.Groups()[0]
	if len(g.Comments) != 3 || g.Comments[2].ID != "c3" {
		t.Fatalf("store not appended: %d comments", len(g.Comments))
	}
	if g.Shown != 3 || g.Total != 3 {
		t.Errorf("counters = (%d, %d), want (3, 3)", g.Shown, g.Total)
	}
	// A local send always requests a scroll to the newest entry.
	if !scroll.ShouldScroll(4) {
		t.Error("send did not request auto-scroll")
	}
}

func TestSendRejectsEmpty(t *testing.T) {
	store := seededStore(t)
	poster := &fakePoster{}
	s := NewSender(store, feed.NewCoordinator(nil), poster, Identity{}, nil)

	tests := []string{"", "   ", "\n\t"}
	for _, text := range tests {
		if _, err := s.Send(context.Background(), text, nil); !errors.Is(err, ErrEmptyComment) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyComment", text, err)
		}
	}
	// Validation happens before the network: no call was issued.
	if poster.callCount() != 0 {
		t.Errorf("poster called %d times, want 0", poster.callCount())
	}
}

func TestSendAttachmentsOnlyIsValid(t *testing.T) {
	store := seededStore(t)
	poster := &fakePoster{echo: feed.Comment{ID: "c3", GroupID: "v1", CreatedAt: baseTime.Add(time.Hour)}}
	s := NewSender(store, feed.NewCoordinator(nil), poster, Identity{}, nil)

	atts := []feed.Attachment{{Name: "photo.jpg", MIMEType: "image/jpeg", LocalPath: "/tmp/photo.jpg"}}
	if _, err := s.Send(context.Background(), "", atts); err != nil {
		t.Errorf("Send with attachments only error = %v", err)
	}
	if poster.callCount() != 1 {
		t.Errorf("poster called %d times, want 1", poster.callCount())
	}
}

func TestSendFailureLeavesStoreUntouched(t *testing.T) {
	store := seededStore(t)
	scroll := feed.NewCoordinator(nil)
	poster := &fakePoster{err: errors.New("server returned 500 Internal Server Error")}
	s := NewSender(store, scroll, poster, Identity{}, nil)

	_, err := s.Send(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("Send() should fail")
	}

	g := store.Groups()[0]
	if len(g.Comments) != 2 {
		t.Errorf("failed send mutated the store: %d comments", len(g.Comments))
	}
	if scroll.ShouldScroll(3) {
		t.Error("failed send requested auto-scroll")
	}
	// Flag reset: a retry is possible.
	if s.Sending() {
		t.Error("sending flag stuck after failure")
	}
	if _, err := s.Send(context.Background(), "hello", nil); err == nil {
		t.Error("retry should reach the poster and fail again")
	}
	if poster.callCount() != 2 {
		t.Errorf("poster called %d times, want 2", poster.callCount())
	}
}

func TestSendSingleFlight(t *testing.T) {
	store := seededStore(t)
	block := make(chan struct{})
	poster := &fakePoster{
		echo:  feed.Comment{ID: "c3", GroupID: "v1", CreatedAt: baseTime.Add(time.Hour)},
		block: block,
	}
	s := NewSender(store, feed.NewCoordinator(nil), poster, Identity{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "slow", nil)
		done <- err
	}()

	// Wait for the first send to reach the poster.
	deadline := time.After(time.Second)
	for poster.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first send never reached the poster")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := s.Send(context.Background(), "second", nil); !errors.Is(err, ErrSendInFlight) {
		t.Errorf("concurrent Send() error = %v, want ErrSendInFlight", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if s.Sending() {
		t.Error("sending flag stuck after completion")
	}
}

func TestSendSynthesizesGroupOnEmptyFeed(t *testing.T) {
	store := feed.NewStore(nil)
	store.ReplaceAll(nil, feed.Cursor{CurrentPage: 1, TotalPages: 1})

	poster := &fakePoster{echo: feed.Comment{
		ID: "c1", Content: "first ever", CreatedAt: baseTime, GroupID: "v-served",
	}}
	s := NewSender(store, feed.NewCoordinator(nil), poster, Identity{UserID: "u1", DisplayName: "Ana Reyes"}, nil)

	if _, err := s.Send(context.Background(), "first ever", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	// No visit exists, so none is named in the request.
	if poster.visitID != "" {
		t.Errorf("posted visit id = %q, want empty", poster.visitID)
	}

	groups := store.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 synthesized", len(groups))
	}
	g := groups[0]
	if g.ID != "v-served" {
		t.Errorf("group id = %q, want server-assigned v-served", g.ID)
	}
	if g.Assignee != "Ana Reyes" {
		t.Errorf("assignee = %q, want current user", g.Assignee)
	}
	if g.Shown != 1 || g.Total != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", g.Shown, g.Total)
	}
}

package outbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldscope/siteline/internal/feed"
)

// CommentPoster is the interface for posting a comment to the backend.
// visitID may be empty when the site has no visits yet; the server then
// creates the visit and the echoed comment carries its id.
type CommentPoster interface {
	PostComment(ctx context.Context, visitID, content string, attachments []feed.Attachment) (feed.Comment, error)
}

var (
	// ErrEmptyComment rejects a send with no text and no attachments,
	// before any network call.
	ErrEmptyComment = errors.New("comment has no content and no attachments")

	// ErrSendInFlight rejects a second send while one is pending.
	ErrSendInFlight = errors.New("a send is already in progress")
)

// Identity describes the signed-in user; used to synthesize a visit
// descriptor when sending the very first comment on a site.
type Identity struct {
	UserID      string
	DisplayName string
}

// Sender appends a locally authored comment to the feed store only after
// the network call that created it resolves successfully. On failure the
// store is untouched, so the caller keeps the compose buffer for a retry.
type Sender struct {
	store    *feed.Store
	scroll   *feed.Coordinator
	poster   CommentPoster
	identity Identity
	logger   *zap.Logger

	mu      sync.Mutex
	sending bool
}

// NewSender creates a new send coordinator.
func NewSender(store *feed.Store, scroll *feed.Coordinator, poster CommentPoster, identity Identity, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		store:    store,
		scroll:   scroll,
		poster:   poster,
		identity: identity,
		logger:   logger,
	}
}

// Sending reports whether a send is in flight; the UI disables the send
// action while true.
func (s *Sender) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Send validates, posts, and on success appends the server's echoed comment
// to the store and requests a scroll to the newest entry. The returned
// comment is the server echo; the caller clears its compose buffer only
// when err is nil.
func (s *Sender) Send(ctx context.Context, text string, attachments []feed.Attachment) (feed.Comment, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return feed.Comment{}, ErrEmptyComment
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return feed.Comment{}, ErrSendInFlight
	}
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	target, ok := s.store.LatestGroup()
	visitID := target.ID
	if !ok {
		// First comment on a site with no visits: the server creates the
		// visit, so no id is sent; the descriptor below is only a local
		// placeholder in case the echo omits the new visit id.
		visitID = ""
		target = feed.Group{
			ID:        "local-" + uuid.NewString(),
			Status:    "open",
			Assignee:  s.identity.DisplayName,
			CreatedAt: time.Now(),
		}
	}

	echo, err := s.poster.PostComment(ctx, visitID, text, attachments)
	if err != nil {
		s.logger.Error("send failed", zap.Error(err), zap.String("visit_id", visitID))
		return feed.Comment{}, err
	}

	if echo.GroupID == "" {
		echo.GroupID = target.ID
	}
	s.store.AppendLocal(echo, target)
	s.scroll.OnLocalAppend()

	s.logger.Info("comment sent",
		zap.String("comment_id", echo.ID),
		zap.String("visit_id", echo.GroupID),
		zap.Int("attachments", len(attachments)))
	return echo, nil
}

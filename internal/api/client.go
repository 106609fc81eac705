package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldscope/siteline/internal/feed"
)

// Backend endpoints.
const (
	pathSiteDetails = "/api/site_details"
	pathAddComment  = "/api/add_comment"
)

// Client talks to the site-management backend. It implements the two
// operations the feed consumes: fetching a page of the visit feed and
// posting a comment. No retries and no client-side timeout; the caller's
// context bounds each call.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// NewClient creates a backend client. baseURL has no trailing slash.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// FetchSitePage fetches one page of a site's visit feed, newest page first
// (page 1 holds the most recent comments; higher pages go further back).
func (c *Client) FetchSitePage(ctx context.Context, siteID string, page, pageSize int) (*SitePageResponse, error) {
	body, err := json.Marshal(SitePageRequest{
		Token:    c.token,
		SiteID:   siteID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathSiteDetails, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch site page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch site page: server returned %s", resp.Status)
	}

	var out SitePageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode site page: %w", err)
	}
	if out.Message != MsgSiteFetched {
		return nil, &APIError{Message: out.Message}
	}

	c.logger.Info("site page fetched",
		zap.String("site_id", siteID),
		zap.Int("page", page),
		zap.Int("visits", len(out.SiteVisits)))
	return &out, nil
}

// PostComment sends a comment as a multipart form: fields token, visit_id,
// content, plus one "documents" file part per staged attachment. visitID
// may be empty for the first comment on a site without visits. Implements
// outbox.CommentPoster.
func (c *Client) PostComment(ctx context.Context, visitID, content string, attachments []feed.Attachment) (feed.Comment, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"token":    c.token,
		"visit_id": visitID,
		"content":  content,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return feed.Comment{}, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	for _, att := range attachments {
		if err := writeDocumentPart(w, att); err != nil {
			return feed.Comment{}, err
		}
	}
	if err := w.Close(); err != nil {
		return feed.Comment{}, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAddComment, &buf)
	if err != nil {
		return feed.Comment{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return feed.Comment{}, fmt.Errorf("post comment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return feed.Comment{}, fmt.Errorf("post comment: server returned %s", resp.Status)
	}

	var out AddCommentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return feed.Comment{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Message != MsgCommentAdded {
		return feed.Comment{}, &APIError{Message: out.Message}
	}

	c.logger.Info("comment posted",
		zap.String("comment_id", out.Comment.ID),
		zap.String("visit_id", out.Comment.VisitID))
	return ToFeedComment(out.Comment), nil
}

// writeDocumentPart streams one staged attachment into the form under the
// "documents" field, carrying its real MIME type.
func writeDocumentPart(w *multipart.Writer, att feed.Attachment) error {
	name := att.Name
	if name == "" {
		name = filepath.Base(att.LocalPath)
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="documents"; filename="%s"`, name))
	if att.MIMEType != "" {
		hdr.Set("Content-Type", att.MIMEType)
	}
	part, err := w.CreatePart(hdr)
	if err != nil {
		return fmt.Errorf("create document part: %w", err)
	}

	f, err := os.Open(att.LocalPath)
	if err != nil {
		return fmt.Errorf("open attachment %s: %w", att.LocalPath, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy attachment %s: %w", name, err)
	}
	return nil
}

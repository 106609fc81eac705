package api

import "time"

// Success messages the backend uses as its application-level status. A 2xx
// response carrying any other message is a failure.
const (
	MsgSiteFetched  = "Site details fetched successfully"
	MsgCommentAdded = "Comment added successfully"
)

// APIError is an application-level failure: the transport succeeded but the
// response message was not the expected one.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "api: unexpected response message: " + e.Message
}

// SitePageRequest is the JSON body for the fetch-page operation.
type SitePageRequest struct {
	Token    string `json:"token"`
	SiteID   string `json:"site_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SitePageResponse is one fetched page of a site's visit feed.
type SitePageResponse struct {
	Message    string      `json:"message"`
	Site       Site        `json:"site"`
	SiteVisits []SiteVisit `json:"site_visits"`
	Pagination Pagination  `json:"pagination"`
}

// Site describes the site the feed belongs to.
type Site struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// SiteVisit is a visit with the slice of its comments covered by this page.
type SiteVisit struct {
	Visit         Visit     `json:"visit"`
	Comments      []Comment `json:"comments"`
	TotalComments int       `json:"total_comments_in_visit"`
	CommentsShown int       `json:"comments_shown"`
}

// Visit is the server's visit record.
type Visit struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is the server's comment record.
type Comment struct {
	ID        string     `json:"id"`
	Author    Author     `json:"author"`
	Content   string     `json:"content"`
	Documents []Document `json:"documents"`
	CreatedAt time.Time  `json:"created_at"`
	VisitID   string     `json:"visit_id"`
}

// Author identifies a comment's author.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Document is a server-side attachment. The URL is opaque to the client.
type Document struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Pagination is the feed-level paging state echoed with every page.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
}

// AddCommentResponse is the body returned by the send-comment operation.
type AddCommentResponse struct {
	Message string  `json:"message"`
	Comment Comment `json:"comment"`
}

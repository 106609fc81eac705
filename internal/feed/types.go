package feed

import "time"

// Group is one visit thread inside a site's comment feed. Comments are kept
// in ascending creation-time order. Shown counts the comments held locally
// and always equals len(Comments); Total is the server-side count for the
// visit, so Shown <= Total.
type Group struct {
	ID        string
	Status    string
	Assignee  string
	CreatedAt time.Time
	Comments  []Comment
	Shown     int
	Total     int
}

// Comment is a single feed entry. Immutable once created; comments are only
// appended, never edited or removed.
type Comment struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Content     string
	Attachments []Attachment
	CreatedAt   time.Time
	GroupID     string
}

// Attachment describes a file attached to a comment. A staged attachment
// (compose buffer) has LocalPath set; a server-echoed attachment carries an
// opaque URL instead.
type Attachment struct {
	Name      string
	MIMEType  string
	Size      int64
	LocalPath string
	URL       string
}

// Cursor is the feed-level pagination position. One cursor per feed, updated
// only by page fetches, never by local sends.
type Cursor struct {
	CurrentPage int
	TotalPages  int
	HasNext     bool
}

// EntryKind tags the variants of a derived feed entry.
type EntryKind int

const (
	EntryComment EntryKind = iota
	EntryDateSeparator
)

// Entry is one row of the derived chronological view: either a comment
// annotated with its group's rendering context, or a date separator.
// Entries are rebuilt from the store on every mutation, never mutated.
type Entry struct {
	Kind EntryKind

	// Comment entry fields.
	Comment     Comment
	GroupID     string
	GroupStatus string
	Assignee    string

	// Date separator fields.
	Label      string
	AnchorDate time.Time
}

package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/fieldscope/siteline/internal/feed"
	"github.com/fieldscope/siteline/internal/tui/ui"
)

// FeedView displays the chronological comment feed for a site.
type FeedView struct {
	*tview.TextView
	theme      *ui.Theme
	ownUserID  string
	siteName   string
	lineCount  int
	lastOffset int
	onScroll   func(rowOffset int)
}

// NewFeedView creates a new feed view.
func NewFeedView(theme *ui.Theme) *FeedView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Comments ")
	tv.SetTitleColor(theme.TitleColor)

	fv := &FeedView{TextView: tv, theme: theme, lastOffset: -1}

	// The draw hook runs after input handling has adjusted the scroll
	// position, so it is the one place the current offset is accurate.
	tv.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		row, _ := tv.GetScrollOffset()
		if row != fv.lastOffset {
			fv.lastOffset = row
			if fv.onScroll != nil {
				fv.onScroll(row)
			}
		}
		return tv.GetInnerRect()
	})

	return fv
}

// SetOwnUserID marks which author id renders as the local user.
func (fv *FeedView) SetOwnUserID(id string) {
	fv.ownUserID = id
}

// SetSiteName updates the view title.
func (fv *FeedView) SetSiteName(name string) {
	fv.siteName = name
	if name != "" {
		fv.SetTitle(fmt.Sprintf(" %s ", name))
	}
}

// SetOnScroll sets the callback invoked when the vertical scroll offset changes.
func (fv *FeedView) SetOnScroll(fn func(rowOffset int)) {
	fv.onScroll = fn
}

// Update re-renders the feed from the given entries.
func (fv *FeedView) Update(entries []feed.Entry, now time.Time) {
	fv.render(entries, now)
}

// UpdateHoldingView re-renders after an older-page merge. Merged history is
// inserted above the viewport, so the scroll offset is shifted by the number
// of added lines to keep the previously visible comments in place.
func (fv *FeedView) UpdateHoldingView(entries []feed.Entry, now time.Time) {
	row, _ := fv.GetScrollOffset()
	before := fv.lineCount
	fv.render(entries, now)
	if added := fv.lineCount - before; added > 0 {
		fv.ScrollTo(row+added, 0)
	}
}

func (fv *FeedView) render(entries []feed.Entry, now time.Time) {
	var b strings.Builder
	for _, e := range entries {
		switch e.Kind {
		case feed.EntryDateSeparator:
			fmt.Fprintf(&b, "[%s]── %s ──[-]\n\n", ui.Tag(fv.theme.SeparatorColor), tview.Escape(e.Label))
		case feed.EntryComment:
			fv.writeComment(&b, e, now)
		}
	}
	text := b.String()
	fv.lineCount = strings.Count(text, "\n")
	fv.SetText(text)
}

func (fv *FeedView) writeComment(b *strings.Builder, e feed.Entry, now time.Time) {
	c := e.Comment
	author := c.AuthorName
	if author == "" {
		author = c.AuthorID
	}
	color := fv.theme.AuthorColor
	if fv.ownUserID != "" && c.AuthorID == fv.ownUserID {
		author = "You"
		color = fv.theme.OwnAuthorColor
	}

	fmt.Fprintf(b, "[%s::b]%s[-:-:-] [::d]%s · visit %s[-:-:-]\n%s\n",
		ui.Tag(color),
		tview.Escape(sanitizeForTerminal(author)),
		formatTimestamp(c.CreatedAt, now),
		tview.Escape(e.GroupID),
		tview.Escape(sanitizeForTerminal(c.Content)))

	for _, att := range c.Attachments {
		fmt.Fprintf(b, "  [%s::d]📎 %s (%s)[-:-:-]\n",
			ui.Tag(fv.theme.AttachmentColor),
			tview.Escape(sanitizeForTerminal(att.Name)), formatSize(att.Size))
	}
	b.WriteString("\n")
}

// formatTimestamp renders a short timestamp: clock time for today,
// month/day otherwise.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

package views

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/fieldscope/siteline/internal/feed"
	"github.com/fieldscope/siteline/internal/tui/ui"
)

// Composer is the text input for writing comments, with staged attachments.
type Composer struct {
	*tview.InputField
	theme  *ui.Theme
	staged []feed.Attachment
	onSend func(text string)
}

// NewComposer creates a new comment composer.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetTitle(" Comment (i to focus) ")
	input.SetTitleColor(theme.TitleColor)

	c := &Composer{InputField: input, theme: theme}

	// The input is not cleared here; the send flow resets the composer
	// only once the backend accepted the comment, so a failed send keeps
	// the draft intact.
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			c.onSend(c.GetText())
		}
	})

	return c
}

// SetOnSend sets the callback when a comment is submitted.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// Attach stages a local file for the next send. The file must exist.
func (c *Composer) Attach(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("attachment %s is a directory", path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.staged = append(c.staged, feed.Attachment{
		Name:      filepath.Base(path),
		MIMEType:  mimeType,
		Size:      info.Size(),
		LocalPath: path,
	})
	c.renderTitle()
	return nil
}

// Attachments returns the currently staged attachments.
func (c *Composer) Attachments() []feed.Attachment {
	out := make([]feed.Attachment, len(c.staged))
	copy(out, c.staged)
	return out
}

// Reset clears the draft text and staged attachments.
func (c *Composer) Reset() {
	c.SetText("")
	c.staged = nil
	c.renderTitle()
}

func (c *Composer) renderTitle() {
	if len(c.staged) == 0 {
		c.SetTitle(" Comment (i to focus) ")
		return
	}
	c.SetTitle(fmt.Sprintf(" Comment (%d attachment(s) staged) ", len(c.staged)))
}

package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/fieldscope/siteline/internal/tui/ui"
)

// StatusBar displays persistent profile/feed status.
type StatusBar struct {
	*tview.TextView
	theme    *ui.Theme
	profile  string
	status   string
	page     int
	pages    int
	fetching bool
	flash    string
	flashErr bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetStatus updates the status display.
func (sb *StatusBar) SetStatus(status string) {
	sb.status = status
	sb.render()
}

// SetPage updates the pagination display.
func (sb *StatusBar) SetPage(current, total int) {
	sb.page = current
	sb.pages = total
	sb.render()
}

// SetFetching updates the history-fetch indicator.
func (sb *StatusBar) SetFetching(fetching bool) {
	sb.fetching = fetching
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string, isErr bool) {
	sb.flash = msg
	sb.flashErr = isErr
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	fetchIcon := " "
	if sb.fetching {
		fetchIcon = "[green]~[-]"
	}

	pageInfo := ""
	if sb.pages > 0 {
		pageInfo = fmt.Sprintf(" | page %d/%d", sb.page, sb.pages)
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s %s%s | %s", sb.profile, sb.status, fetchIcon, pageInfo, clock)
	if sb.flash != "" {
		color := sb.theme.FlashInfoColor
		if sb.flashErr {
			color = sb.theme.FlashErrColor
		}
		line += fmt.Sprintf(" | [%s]%s[-]", ui.Tag(color), sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}

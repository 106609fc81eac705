package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/fieldscope/siteline/internal/tui/ui"
)

// SitePrompt asks for a site id to open.
type SitePrompt struct {
	*tview.Flex
	input  *tview.InputField
	onOpen func(siteID string)
}

// NewSitePrompt creates the site entry view.
func NewSitePrompt(theme *ui.Theme) *SitePrompt {
	input := tview.NewInputField().
		SetLabel(" Site ID: ").
		SetFieldWidth(24)
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetTitle(" Open Site ")
	input.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewBox().SetBackgroundColor(theme.BgColor), 0, 1, false).
		AddItem(input, 3, 0, true).
		AddItem(tview.NewBox().SetBackgroundColor(theme.BgColor), 0, 2, false)

	sp := &SitePrompt{Flex: flex, input: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && sp.onOpen != nil {
			if id := input.GetText(); id != "" {
				sp.onOpen(id)
			}
		}
	})

	return sp
}

// SetOnOpen sets the callback when a site id is submitted.
func (sp *SitePrompt) SetOnOpen(fn func(siteID string)) {
	sp.onOpen = fn
}

// Input returns the input field (for focus management).
func (sp *SitePrompt) Input() *tview.InputField {
	return sp.input
}

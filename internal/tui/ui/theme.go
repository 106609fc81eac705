package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor         tcell.Color
	FgColor         tcell.Color
	BorderColor     tcell.Color
	TitleColor      tcell.Color
	SeparatorColor  tcell.Color
	AuthorColor     tcell.Color
	OwnAuthorColor  tcell.Color
	AttachmentColor tcell.Color
	MenuKeyColor    tcell.Color
	FlashInfoColor  tcell.Color
	FlashErrColor   tcell.Color
}

// DefaultTheme returns a dark terminal theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:         tcell.ColorBlack,
		FgColor:         tcell.ColorCadetBlue,
		BorderColor:     tcell.ColorDodgerBlue,
		TitleColor:      tcell.ColorFuchsia,
		SeparatorColor:  tcell.ColorGray,
		AuthorColor:     tcell.ColorAqua,
		OwnAuthorColor:  tcell.ColorOrange,
		AttachmentColor: tcell.ColorPapayaWhip,
		MenuKeyColor:    tcell.ColorDodgerBlue,
		FlashInfoColor:  tcell.ColorNavajoWhite,
		FlashErrColor:   tcell.ColorOrangeRed,
	}
}

// Tag renders a color as a tview dynamic-colors tag value.
func Tag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}

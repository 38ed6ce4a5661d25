package output

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the word-wrap width used when none is given.
const DefaultWrap = 80

// Rich renders full CommonMark through glamour, for text that goes beyond
// the dialect RenderBlocks understands. An empty style picks one based on
// the terminal background.
func Rich(text, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWrap
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

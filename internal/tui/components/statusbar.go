package components

import (
	"sqldash/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// StatusBar renders a status message line between the content and footer.
// Long messages are truncated ANSI-safely so styled text never corrupts
// the layout.
func StatusBar(width int, message string, isError bool) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	if isError {
		style = styles.ErrorText
	}

	maxWidth := width - 4 // padding
	if maxWidth > 0 && lipgloss.Width(message) > maxWidth {
		message = ansi.Truncate(message, maxWidth-1, "…")
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}

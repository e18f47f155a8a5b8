package reports

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Render turns report Markdown into styled terminal output. style is a
// glamour standard style name ("dark", "light", "notty", ...); empty means
// "dark". On any renderer error the Markdown is returned unchanged.
func Render(md, style string, width int) string {
	if style == "" {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		// WithAutoStyle queries the terminal and can block; pick a fixed style.
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

package tui

import (
	"strings"

	"github.com/pablasso/taskloop/internal/tui/styles"
)

// renderStatusBar joins help items with " • " and pads them to width.
func renderStatusBar(width int, items []string) string {
	return styles.StatusBarStyle.Width(width).Render(strings.Join(items, " • "))
}

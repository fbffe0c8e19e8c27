// Package textutil measures and fits text to terminal columns.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// VisualWidth returns the number of terminal columns s occupies.
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most maxWidth columns, ending in Ellipsis when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisualWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// PadRightVisual pads s with spaces to exactly width columns, truncating if wider.
func PadRightVisual(s string, width int) string {
	if VisualWidth(s) >= width {
		return Truncate(s, width)
	}
	return runewidth.FillRight(s, width)
}

// Columns joins cells, each fitted to its width, separated by two spaces.
// A width of 0 leaves the cell as is.
func Columns(cells []string, widths []int) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if i < len(widths) && widths[i] > 0 {
			c = PadRightVisual(c, widths[i])
		}
		out[i] = c
	}
	return strings.TrimRight(strings.Join(out, "  "), " ")
}

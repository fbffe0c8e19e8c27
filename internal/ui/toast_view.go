package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"keyconsole/internal/toast"
	"keyconsole/internal/ui/textutil"
)

// maxToastWidth bounds a toast's message.
const maxToastWidth = 48

// RenderToasts stacks toasts in insertion order, right-aligned to width.
// Returns "" when there are none.
func RenderToasts(toasts []toast.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style, icon := Styles.ToastSuccess, "✓"
		if t.Kind == toast.KindError {
			style, icon = Styles.ToastError, "✗"
		}
		boxes = append(boxes, style.Render(icon+" "+textutil.Truncate(t.Message, maxToastWidth)))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, boxes...)
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}

// overlayBottom appends block at the bottom of a screen of height rows,
// trimming base so the result fits.
func overlayBottom(base, block string, height int) string {
	if block == "" {
		return base
	}
	lines := strings.Split(base, "\n")
	need := lipgloss.Height(block)
	if height > 0 {
		keep := max(0, height-need)
		if len(lines) > keep {
			lines = lines[:keep]
		}
		for len(lines) < keep {
			lines = append(lines, "")
		}
	}
	return strings.Join(append(lines, block), "\n")
}

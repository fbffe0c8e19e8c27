package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"keyconsole/internal/ui/textutil"
)

// closeGlyph is the close button drawn in a dialog header.
const closeGlyph = "✕"

// rect is a screen region in cells.
type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// ModalShell is the open/close container every dialog is built on.
//
// Closed, it renders nothing and holds nothing. Open, it holds a global key
// listener (Escape requests close) and the page scroll lock. Both are
// acquired into a release scope on entering open and released on leaving
// open or on Dispose. Escape, a backdrop click and the close button call
// onClose; only SetOpen changes the state.
type ModalShell struct {
	keys    *KeyListeners
	scroll  *ScrollLock
	onClose func()

	open  bool
	scope releaseScope

	// Geometry of the last Place, for mouse hit-testing.
	box      rect
	closeBtn rect
	closeOff rect // close button relative to the box, from the last Frame
	placed   bool
}

// NewModalShell returns a closed shell. onClose is the caller's close callback.
func NewModalShell(keys *KeyListeners, scroll *ScrollLock, onClose func()) *ModalShell {
	return &ModalShell{keys: keys, scroll: scroll, onClose: onClose}
}

// SetOpen is the only way to open or close the shell.
func (m *ModalShell) SetOpen(open bool) {
	if open == m.open {
		return
	}
	m.open = open
	if open {
		m.scope.add(m.keys.Add(m.handleKey))
		m.scope.add(m.scroll.Acquire())
		return
	}
	m.scope.Close()
	m.placed = false
}

// IsOpen reports the current state.
func (m *ModalShell) IsOpen() bool {
	return m.open
}

// Dispose releases everything the shell holds. Called when the owner goes
// away, open or not.
func (m *ModalShell) Dispose() {
	m.SetOpen(false)
}

func (m *ModalShell) handleKey(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyEsc {
		return false
	}
	m.requestClose()
	return true
}

func (m *ModalShell) requestClose() {
	if m.onClose != nil {
		m.onClose()
	}
}

// HandleMouse closes on a left press on the backdrop or the close button.
// It reports whether the event was handled by the shell.
func (m *ModalShell) HandleMouse(msg tea.MouseMsg) bool {
	if !m.open || !m.placed {
		return false
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	if m.closeBtn.contains(msg.X, msg.Y) || !m.box.contains(msg.X, msg.Y) {
		m.requestClose()
		return true
	}
	return false
}

// Frame renders the dialog box, or "" when closed.
func (m *ModalShell) Frame(p DialogParts) string {
	if !m.open {
		return ""
	}
	box, closeAt := RenderDialog(p)
	m.closeOff = closeAt
	return box
}

// Place centers frame on a width x height screen and records its geometry.
func (m *ModalShell) Place(frame string, width, height int) string {
	if !m.open || frame == "" {
		return ""
	}
	w, h := lipgloss.Width(frame), lipgloss.Height(frame)
	x, y := max(0, (width-w)/2), max(0, (height-h)/2)
	m.box = rect{X: x, Y: y, W: w, H: h}
	m.closeBtn = rect{X: x + m.closeOff.X, Y: y + m.closeOff.Y, W: m.closeOff.W, H: m.closeOff.H}
	m.placed = true

	var b strings.Builder
	b.WriteString(strings.Repeat("\n", y))
	pad := strings.Repeat(" ", x)
	for i, line := range strings.Split(frame, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pad + line)
	}
	return b.String()
}

// Bounds returns the box placed last; ok is false before the first Place.
func (m *ModalShell) Bounds() (x, y, w, h int, ok bool) {
	return m.box.X, m.box.Y, m.box.W, m.box.H, m.placed
}

// CloseButton returns the screen cell of the close button.
func (m *ModalShell) CloseButton() (x, y int, ok bool) {
	return m.closeBtn.X, m.closeBtn.Y, m.placed
}

// DialogParts are the structural pieces of a dialog. They carry no state.
type DialogParts struct {
	Title       string
	Description string
	Body        string
	Footer      string
	Error       string
	Danger      bool
	MinWidth    int
}

// dialogPadding is the horizontal cells between the box edge and content:
// one border plus two padding.
const dialogPadding = 3

// RenderDialog lays out header (title and close button), description, error
// banner, body and footer. It returns the box and the close button's
// position relative to the box's top-left corner.
func RenderDialog(p DialogParts) (string, rect) {
	box, title := Styles.Dialog, Styles.Title
	if p.Danger {
		box, title = Styles.DialogDanger, Styles.TitleWarning
	}

	var sections []string
	if p.Description != "" {
		sections = append(sections, Styles.Muted.Render(p.Description))
	}
	if p.Error != "" {
		sections = append(sections, Styles.Error.Render("! "+p.Error))
	}
	if p.Body != "" {
		sections = append(sections, p.Body)
	}
	if p.Footer != "" {
		sections = append(sections, p.Footer)
	}

	inner := max(p.MinWidth, textutil.VisualWidth(p.Title)+2)
	for _, s := range sections {
		inner = max(inner, lipgloss.Width(s))
	}
	titleCell := title.Render(textutil.PadRightVisual(p.Title, inner-1))
	header := titleCell + Styles.Close.Render(closeGlyph)

	content := strings.Join(append([]string{header}, sections...), "\n\n")
	closeAt := rect{X: dialogPadding + inner - 1, Y: 2, W: 1, H: 1}
	return box.Render(content), closeAt
}

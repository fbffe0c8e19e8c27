package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type shellFixture struct {
	keys   *KeyListeners
	scroll *ScrollLock
	shell  *ModalShell
	closes int
}

func newShellFixture() *shellFixture {
	f := &shellFixture{keys: &KeyListeners{}, scroll: &ScrollLock{}}
	f.shell = NewModalShell(f.keys, f.scroll, func() { f.closes++ })
	return f
}

func (f *shellFixture) place(t *testing.T) {
	t.Helper()
	frame := f.shell.Frame(DialogParts{Title: "Revoke API key?", Body: "Key: kc_live_••••", Footer: "[ Delete ]"})
	if frame == "" {
		t.Fatal("open shell rendered nothing")
	}
	f.shell.Place(frame, 120, 40)
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestModalShell_ClosedHoldsNothing(t *testing.T) {
	f := newShellFixture()
	if f.keys.Len() != 0 || f.scroll.Locked() {
		t.Fatal("closed shell must not hold a listener or the scroll lock")
	}
	if got := f.shell.Frame(DialogParts{Title: "x"}); got != "" {
		t.Errorf("closed shell rendered %q", got)
	}
	if f.keys.Dispatch(keyMsg("esc")) || f.closes != 0 {
		t.Error("Escape on a closed shell must not request close")
	}
}

func TestModalShell_OpenAcquiresAndCloseReleases(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	f.shell.SetOpen(true)
	if f.keys.Len() != 1 || !f.scroll.Locked() {
		t.Fatalf("open: listeners=%d locked=%v", f.keys.Len(), f.scroll.Locked())
	}

	f.shell.SetOpen(false)
	if f.keys.Len() != 0 || f.scroll.Locked() {
		t.Errorf("closed: listeners=%d locked=%v", f.keys.Len(), f.scroll.Locked())
	}
}

func TestModalShell_DisposeWhileOpen(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	f.shell.Dispose()
	if f.keys.Len() != 0 || f.scroll.Locked() {
		t.Error("Dispose must release the listener and the scroll lock")
	}
	f.shell.Dispose()
}

func TestModalShell_EscapeRequestsCloseOnce(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)

	if !f.keys.Dispatch(keyMsg("esc")) {
		t.Fatal("Escape should be consumed by the open shell")
	}
	if f.closes != 1 {
		t.Errorf("onClose called %d times, want 1", f.closes)
	}
	if !f.shell.IsOpen() {
		t.Error("only SetOpen may change the state")
	}
	if f.keys.Dispatch(keyMsg("enter")) {
		t.Error("other keys should pass through")
	}
}

func TestModalShell_BackdropClick(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	f.place(t)

	x, y, w, h, ok := f.shell.Bounds()
	if !ok {
		t.Fatal("expected geometry after Place")
	}
	if f.shell.HandleMouse(press(x+w/2, y+h-2)) {
		t.Error("click inside the box should not be handled by the shell")
	}
	if f.closes != 0 {
		t.Fatalf("inside click closed the dialog")
	}
	if !f.shell.HandleMouse(press(0, 0)) {
		t.Error("backdrop click should be handled")
	}
	if f.closes != 1 {
		t.Errorf("onClose called %d times, want 1", f.closes)
	}
}

func TestModalShell_CloseButtonClick(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	f.place(t)

	x, y, ok := f.shell.CloseButton()
	if !ok {
		t.Fatal("expected close button geometry")
	}
	bx, by, bw, _, _ := f.shell.Bounds()
	if x <= bx || x >= bx+bw || y <= by {
		t.Fatalf("close button (%d,%d) outside the box", x, y)
	}
	if !f.shell.HandleMouse(press(x, y)) {
		t.Error("close button click should be handled")
	}
	if f.closes != 1 {
		t.Errorf("onClose called %d times, want 1", f.closes)
	}
}

func TestModalShell_IgnoresMouseWhenClosed(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	f.place(t)
	f.shell.SetOpen(false)
	if f.shell.HandleMouse(press(0, 0)) || f.closes != 0 {
		t.Error("closed shell must ignore clicks")
	}
}

func TestModalShell_PlaceCentersFrame(t *testing.T) {
	f := newShellFixture()
	f.shell.SetOpen(true)
	frame := f.shell.Frame(DialogParts{Title: "Delete project?", Error: "Network error", Danger: true})
	out := f.shell.Place(frame, 100, 30)

	if !strings.Contains(out, closeGlyph) || !strings.Contains(out, "Network error") {
		t.Errorf("placed dialog missing close glyph or error banner:\n%s", out)
	}
	x, y, w, h, _ := f.shell.Bounds()
	if x != (100-w)/2 || y != (30-h)/2 {
		t.Errorf("box at (%d,%d) size %dx%d not centered", x, y, w, h)
	}
}

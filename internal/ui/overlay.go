package ui

import tea "github.com/charmbracelet/bubbletea"

// Dialog is a View composed on a ModalShell.
type Dialog interface {
	View
	Shell() *ModalShell
	// SetError shows a caller-supplied error and re-enables submission.
	SetError(msg string)
	// Dispose releases the shell and any timers the dialog owns.
	Dispose()
}

// OverlayStack manages open dialogs (topmost receives input first).
type OverlayStack struct {
	Stack []Dialog
}

// Push opens d and adds it to the top of the stack.
func (s *OverlayStack) Push(d Dialog) {
	d.Shell().SetOpen(true)
	s.Stack = append(s.Stack, d)
}

// Remove closes and disposes d wherever it is in the stack.
// It reports whether d was found.
func (s *OverlayStack) Remove(d Dialog) bool {
	for i, o := range s.Stack {
		if o == d {
			s.Stack = append(s.Stack[:i], s.Stack[i+1:]...)
			d.Shell().SetOpen(false)
			d.Dispose()
			return true
		}
	}
	return false
}

// Pop closes, disposes and returns the top dialog.
func (s *OverlayStack) Pop() (Dialog, bool) {
	top, ok := s.Peek()
	if !ok {
		return nil, false
	}
	s.Remove(top)
	return top, true
}

// Peek returns the top dialog without removing it.
func (s *OverlayStack) Peek() (Dialog, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	return s.Stack[len(s.Stack)-1], true
}

// Len returns the number of open dialogs.
func (s *OverlayStack) Len() int {
	return len(s.Stack)
}

// Clear closes and disposes every dialog.
func (s *OverlayStack) Clear() {
	for s.Len() > 0 {
		s.Pop()
	}
}

// UpdateTop passes msg to the top dialog and replaces it with the result.
// Returns the cmd from the dialog's Update. Caller must run the cmd.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	top := &s.Stack[len(s.Stack)-1]
	v, cmd := (*top).Update(msg)
	if d, ok := v.(Dialog); ok {
		*top = d
	}
	return cmd, true
}

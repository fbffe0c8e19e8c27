package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyListeners_NewestFirst(t *testing.T) {
	var l KeyListeners
	var order []string
	l.Add(func(tea.KeyMsg) bool { order = append(order, "first"); return false })
	l.Add(func(tea.KeyMsg) bool { order = append(order, "second"); return true })

	if !l.Dispatch(keyMsg("esc")) {
		t.Fatal("expected the key to be consumed")
	}
	if len(order) != 1 || order[0] != "second" {
		t.Errorf("dispatch order = %v, want [second]", order)
	}
}

func TestKeyListeners_RemoveIdempotent(t *testing.T) {
	var l KeyListeners
	removeA := l.Add(func(tea.KeyMsg) bool { return false })
	l.Add(func(tea.KeyMsg) bool { return false })

	removeA()
	removeA()
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestKeyListeners_ListenerRemovesItself(t *testing.T) {
	var l KeyListeners
	calls := 0
	var remove func()
	remove = l.Add(func(tea.KeyMsg) bool {
		calls++
		remove()
		return true
	})
	l.Dispatch(keyMsg("esc"))
	l.Dispatch(keyMsg("esc"))
	if calls != 1 {
		t.Errorf("listener ran %d times, want 1", calls)
	}
}

func TestScrollLock(t *testing.T) {
	var s ScrollLock
	r1 := s.Acquire()
	r2 := s.Acquire()
	r1()
	r1()
	if !s.Locked() {
		t.Error("second holder should keep the lock")
	}
	r2()
	if s.Locked() {
		t.Error("expected unlocked after every holder released")
	}
}

func TestReleaseScope_LIFO(t *testing.T) {
	var sc releaseScope
	var order []int
	sc.add(func() { order = append(order, 1) })
	sc.add(func() { order = append(order, 2) })
	if !sc.Held() {
		t.Fatal("expected scope to hold releases")
	}
	sc.Close()
	sc.Close()
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("release order = %v, want [2 1]", order)
	}
	if sc.Held() {
		t.Error("scope should be empty after Close")
	}
}

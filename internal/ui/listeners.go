package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyListener handles a key before the page sees it. Returning true consumes it.
type KeyListener func(tea.KeyMsg) bool

// KeyListeners is the app-wide set of global key listeners. The most
// recently added listener runs first.
type KeyListeners struct {
	next      int
	listeners []registeredListener
}

type registeredListener struct {
	id int
	fn KeyListener
}

// Add registers fn and returns its removal func. Removal is idempotent.
func (l *KeyListeners) Add(fn KeyListener) (remove func()) {
	l.next++
	id := l.next
	l.listeners = append(l.listeners, registeredListener{id: id, fn: fn})
	return func() {
		for i, r := range l.listeners {
			if r.id == id {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				return
			}
		}
	}
}

// Dispatch offers msg to the listeners, newest first, until one consumes it.
func (l *KeyListeners) Dispatch(msg tea.KeyMsg) bool {
	for i := len(l.listeners) - 1; i >= 0; i-- {
		if i >= len(l.listeners) {
			continue // a listener removed others
		}
		if l.listeners[i].fn(msg) {
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (l *KeyListeners) Len() int {
	return len(l.listeners)
}

// ScrollLock suspends page scrolling while any holder has it.
type ScrollLock struct {
	holders int
}

// Acquire takes the lock and returns its release func. Release is idempotent.
func (s *ScrollLock) Acquire() (release func()) {
	s.holders++
	var once sync.Once
	return func() {
		once.Do(func() { s.holders-- })
	}
}

// Locked reports whether scrolling is suspended.
func (s *ScrollLock) Locked() bool {
	return s.holders > 0
}

// releaseScope collects release funcs and runs them LIFO on Close.
type releaseScope struct {
	releases []func()
}

func (s *releaseScope) add(release func()) {
	s.releases = append(s.releases, release)
}

// Close releases everything acquired, newest first. Safe to call repeatedly.
func (s *releaseScope) Close() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// Held reports whether the scope holds anything.
func (s *releaseScope) Held() bool {
	return len(s.releases) > 0
}

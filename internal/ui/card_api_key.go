package ui

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/api"
	"keyconsole/internal/timer"
)

// CopiedFor is how long the copied indicator stays on after a copy.
const CopiedFor = 2 * time.Second

// clipboardWriteAll is swapped in tests.
var clipboardWriteAll = clipboard.WriteAll

// APIKeyCard displays one API key with two local toggles: showKey (masked or
// full secret) and copied (on for CopiedFor after a copy, then off again).
// The copied timer fires on a scheduler goroutine, so state is locked and
// notify is called to repaint.
type APIKeyCard struct {
	key    api.APIKey
	sched  timer.Scheduler
	notify func()

	mu      sync.Mutex
	showKey bool
	copied  bool
	timer   timer.Timer
	gen     int // invalidates a timer that fired while being replaced
}

// NewAPIKeyCard creates a masked card for k. notify may be nil.
func NewAPIKeyCard(k api.APIKey, sched timer.Scheduler, notify func()) *APIKeyCard {
	if sched == nil {
		sched = timer.Real()
	}
	return &APIKeyCard{key: k, sched: sched, notify: notify}
}

// Key returns the displayed key.
func (c *APIKeyCard) Key() api.APIKey {
	return c.key
}

// ShowKey reports whether the full secret is displayed.
func (c *APIKeyCard) ShowKey() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showKey
}

// ToggleShow switches between masked and full display.
func (c *APIKeyCard) ToggleShow() {
	c.mu.Lock()
	c.showKey = !c.showKey
	c.mu.Unlock()
}

// Copied reports whether the copied indicator is on.
func (c *APIKeyCard) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

// Copy turns the copied indicator on, restarting its window, and returns a
// command that writes the full secret to the clipboard. Clipboard failures
// are ignored.
func (c *APIKeyCard) Copy() tea.Cmd {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.copied = true
	c.timer = c.sched.AfterFunc(CopiedFor, func() { c.expire(gen) })
	c.mu.Unlock()

	secret := c.key.Key
	return func() tea.Msg {
		_ = clipboardWriteAll(secret)
		return nil
	}
}

func (c *APIKeyCard) expire(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.copied = false
	c.timer = nil
	c.mu.Unlock()

	if c.notify != nil {
		c.notify()
	}
}

// Dispose cancels the copied timer. The card stays usable.
func (c *APIKeyCard) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.copied = false
}

// Secret returns the text currently displayed for the key.
func (c *APIKeyCard) Secret() string {
	if c.ShowKey() {
		return c.key.Key
	}
	return c.key.Masked()
}

// View renders the card; selected highlights it.
func (c *APIKeyCard) View(selected bool) string {
	c.mu.Lock()
	show, copied := c.showKey, c.copied
	c.mu.Unlock()

	secret := c.key.Masked()
	reveal := "v reveal"
	if show {
		secret = c.key.Key
		reveal = "v hide"
	}
	copyHint := Styles.Hint.Render("c copy")
	if copied {
		copyHint = Styles.Status.Render("Copied!")
	}

	created := "unknown"
	if !c.key.CreatedAt.IsZero() {
		created = c.key.CreatedAt.Local().Format("2006-01-02 15:04")
	}

	line1 := Styles.Secret.Render(secret)
	line2 := Styles.Muted.Render("Created "+created) + "  " + Styles.Hint.Render(reveal) + "  " + copyHint

	style := Styles.Card
	if selected {
		style = Styles.CardSelected
	}
	return style.Render(line1 + "\n" + line2)
}

package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"keyconsole/internal/api"
	"keyconsole/internal/timer"
)

var testKey = api.APIKey{ID: "key_1", Key: "kc_live_0123456789abcdef"}

// stubClipboard replaces the clipboard writer for the test.
func stubClipboard(t *testing.T, err error) *[]string {
	t.Helper()
	var mu sync.Mutex
	var writes []string
	prev := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		mu.Lock()
		defer mu.Unlock()
		writes = append(writes, s)
		return err
	}
	t.Cleanup(func() { clipboardWriteAll = prev })
	return &writes
}

func TestAPIKeyCard_ToggleShow(t *testing.T) {
	c := NewAPIKeyCard(testKey, timer.NewFake(), nil)
	if c.ShowKey() || c.Secret() != testKey.Masked() {
		t.Fatal("card must start masked")
	}
	c.ToggleShow()
	if !c.ShowKey() || c.Secret() != testKey.Key {
		t.Error("first toggle should reveal the key")
	}
	c.ToggleShow()
	if c.ShowKey() {
		t.Error("second toggle should mask the key again")
	}
	if strings.Contains(c.View(false), testKey.Key) {
		t.Error("masked view leaked the secret")
	}
}

func TestAPIKeyCard_CopiedForTwoSeconds(t *testing.T) {
	writes := stubClipboard(t, nil)
	clock := timer.NewFake()
	notified := 0
	c := NewAPIKeyCard(testKey, clock, func() { notified++ })

	cmd := c.Copy()
	if !c.Copied() {
		t.Fatal("copied should be on right after Copy")
	}
	if msg := cmd(); msg != nil {
		t.Errorf("clipboard command returned %v, want nil", msg)
	}
	if len(*writes) != 1 || (*writes)[0] != testKey.Key {
		t.Errorf("clipboard writes = %v, want the full secret", *writes)
	}
	if !strings.Contains(c.View(true), "Copied!") {
		t.Error("view should show the copied indicator")
	}

	clock.Advance(1999 * time.Millisecond)
	if !c.Copied() {
		t.Error("copied should still be on at 1999ms")
	}
	clock.Advance(time.Millisecond)
	if c.Copied() {
		t.Error("copied should be off at 2000ms")
	}
	if notified != 1 {
		t.Errorf("notify called %d times, want 1", notified)
	}
}

func TestAPIKeyCard_SecondCopyRestartsWindow(t *testing.T) {
	stubClipboard(t, nil)
	clock := timer.NewFake()
	c := NewAPIKeyCard(testKey, clock, nil)

	c.Copy()
	clock.Advance(1500 * time.Millisecond)
	c.Copy()
	clock.Advance(1000 * time.Millisecond)
	if !c.Copied() {
		t.Error("second copy should restart the 2s window")
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}
	clock.Advance(1000 * time.Millisecond)
	if c.Copied() {
		t.Error("copied should be off 2s after the second copy")
	}
}

func TestAPIKeyCard_ClipboardFailureIgnored(t *testing.T) {
	stubClipboard(t, errors.New("no clipboard"))
	c := NewAPIKeyCard(testKey, timer.NewFake(), nil)
	cmd := c.Copy()
	if msg := cmd(); msg != nil {
		t.Errorf("failure should produce no message, got %v", msg)
	}
	if !c.Copied() {
		t.Error("copied is set regardless of the clipboard outcome")
	}
}

func TestAPIKeyCard_DisposeCancelsTimer(t *testing.T) {
	stubClipboard(t, nil)
	clock := timer.NewFake()
	notified := 0
	c := NewAPIKeyCard(testKey, clock, func() { notified++ })
	c.Copy()
	c.Dispose()
	if clock.Pending() != 0 {
		t.Errorf("pending timers after Dispose = %d", clock.Pending())
	}
	clock.Advance(CopiedFor)
	if notified != 0 || c.Copied() {
		t.Error("disposed card must not fire")
	}
}

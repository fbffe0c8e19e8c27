package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
)

var testProject = api.Project{ProjectID: "proj_123", Name: "Demo project", Description: "Seeded"}

func openShell() *ModalShell {
	s := NewModalShell(&KeyListeners{}, &ScrollLock{}, nil)
	s.SetOpen(true)
	return s
}

// submitted runs cmd and returns the form it emits.
func submitted(t *testing.T, cmd tea.Cmd) action.Form {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(SubmitFormMsg)
	if !ok {
		t.Fatalf("command produced %T, want SubmitFormMsg", cmd())
	}
	return msg.Form
}

func TestDeleteProjectDialog_ExactConfirmation(t *testing.T) {
	d := NewDeleteProjectDialog(openShell(), testProject)
	if d.CanSubmit() {
		t.Fatal("trigger must start disabled")
	}

	cases := []struct {
		typed string
		want  bool
	}{
		{"proj_124", false},
		{"Proj_123", false},
		{"proj_123 ", false},
		{"proj_12", false},
		{"proj_123", true},
	}
	for _, tc := range cases {
		d.SetConfirmation(tc.typed)
		if got := d.CanSubmit(); got != tc.want {
			t.Errorf("CanSubmit(%q) = %v, want %v", tc.typed, got, tc.want)
		}
	}
}

func TestDeleteProjectDialog_LongProjectID(t *testing.T) {
	p := testProject
	p.ProjectID = "proj_" + strings.Repeat("x", 300)
	d := NewDeleteProjectDialog(openShell(), p)
	typeText(d, p.ProjectID)
	if d.Confirmation() != p.ProjectID {
		t.Fatalf("typed %d characters, kept %d", len(p.ProjectID), len(d.Confirmation()))
	}
	if !d.CanSubmit() {
		t.Error("a fully typed long id must enable the trigger")
	}
}

func TestDeleteProjectDialog_TypingAndEnter(t *testing.T) {
	d := NewDeleteProjectDialog(openShell(), testProject)
	typeText(d, "proj_12")
	if _, cmd := d.Update(keyMsg("enter")); cmd != nil {
		t.Fatal("Enter must do nothing while the confirmation does not match")
	}
	typeText(d, "3")
	if d.Confirmation() != "proj_123" {
		t.Fatalf("Confirmation = %q", d.Confirmation())
	}
	_, cmd := d.Update(keyMsg("enter"))
	f := submitted(t, cmd)
	if f.Action != action.DeleteProject {
		t.Errorf("action = %q, want %q", f.Action, action.DeleteProject)
	}
	if !d.Submitting() || d.CanSubmit() {
		t.Error("trigger should be disabled while submitting")
	}
	if !strings.Contains(d.View(), "Deleting…") {
		t.Error("trigger should be relabelled while submitting")
	}
}

func TestConfirmDialog_SubmitsOnce(t *testing.T) {
	k := api.APIKey{ID: "key_abc", Key: "kc_live_0123456789abcdef"}
	d := NewDeleteAPIKeyDialog(openShell(), k)

	_, cmd := d.Update(keyMsg("enter"))
	f := submitted(t, cmd)
	if f.Action != action.DeleteAPIKey || f.Get(action.FieldAPIKeyID) != "key_abc" {
		t.Errorf("form = %s %v", f, f.Values)
	}
	if _, cmd := d.Update(keyMsg("enter")); cmd != nil {
		t.Error("second Enter while submitting must not emit another submission")
	}
	if view := d.View(); !strings.Contains(view, "Deleting…") || strings.Contains(view, k.Key) {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestConfirmDialog_ErrorBannerKeepsTriggerEnabled(t *testing.T) {
	d := NewDeleteAPIKeyDialog(openShell(), api.APIKey{ID: "key_abc", Key: "kc_live_0123456789abcdef"})
	d.Update(keyMsg("enter"))
	d.SetError("Network error")

	if d.Submitting() || !d.CanSubmit() {
		t.Error("a caller-supplied error must re-enable the trigger")
	}
	view := d.View()
	if !strings.Contains(view, "Network error") || strings.Contains(view, "Deleting…") {
		t.Errorf("expected banner and enabled trigger:\n%s", view)
	}
	_, cmd := d.Update(keyMsg("y"))
	if f := submitted(t, cmd); f.Action != action.DeleteAPIKey {
		t.Errorf("retry action = %q", f.Action)
	}
}

func TestCreateAPIKeyDialog_Labels(t *testing.T) {
	d := NewCreateAPIKeyDialog(openShell(), testProject)
	if !strings.Contains(d.View(), "Create key") || !strings.Contains(d.View(), "Demo project") {
		t.Errorf("unexpected view:\n%s", d.View())
	}
	_, cmd := d.Update(keyMsg("enter"))
	if f := submitted(t, cmd); f.Encode() != "_action=createAPIKey" {
		t.Errorf("encoded form = %q", f.Encode())
	}
	if !strings.Contains(d.View(), "Creating…") {
		t.Error("trigger should read Creating… while submitting")
	}
}

func TestRemoveUserDialog_Form(t *testing.T) {
	u := api.User{ID: "usr_42", Email: "dev@example.com", Name: "Developer"}
	d := NewRemoveUserDialog(openShell(), u)
	_, cmd := d.Update(keyMsg("enter"))
	f := submitted(t, cmd)
	if f.Action != action.RemoveUser || f.Get(action.FieldUserID) != "usr_42" {
		t.Errorf("form = %s %v", f, f.Values)
	}
	if !strings.Contains(d.View(), "dev@example.com") {
		t.Error("expected the member's email in the dialog")
	}
}

func TestEditProjectDialog(t *testing.T) {
	d := NewEditProjectDialog(openShell(), testProject)
	if name, desc := d.Values(); name != "Demo project" || desc != "Seeded" {
		t.Fatalf("prefill = %q %q", name, desc)
	}

	d.SetValues("   ", "x")
	if d.CanSubmit() {
		t.Error("blank name must disable the trigger")
	}
	if _, cmd := d.Update(keyMsg("enter")); cmd != nil {
		t.Error("Enter with a blank name must not submit")
	}

	d.SetValues("  Renamed ", " New description ")
	_, cmd := d.Update(keyMsg("enter"))
	f := submitted(t, cmd)
	if f.Action != action.UpdateProject || f.Get(action.FieldName) != "Renamed" || f.Get(action.FieldDescription) != "New description" {
		t.Errorf("form = %s %v", f, f.Values)
	}
}

func TestEditProjectDialog_TabMovesFocus(t *testing.T) {
	d := NewEditProjectDialog(openShell(), api.Project{ProjectID: "p", Name: "a"})
	d.Update(keyMsg("tab"))
	typeText(d, "z")
	if name, desc := d.Values(); name != "a" || desc != "z" {
		t.Errorf("values after tab = %q %q, want a z", name, desc)
	}
}

func TestNewAPIKeyDialog_ShowsFullSecret(t *testing.T) {
	closes := 0
	shell := NewModalShell(&KeyListeners{}, &ScrollLock{}, func() { closes++ })
	shell.SetOpen(true)
	k := api.APIKey{ID: "key_new", Key: "kc_live_0123456789abcdef"}
	d := NewNewAPIKeyDialog(shell, k, nil, nil)
	defer d.Dispose()

	if !strings.Contains(d.View(), k.Key) {
		t.Errorf("new key dialog must show the full secret:\n%s", d.View())
	}
	d.Update(keyMsg("v"))
	if strings.Contains(d.View(), k.Key) {
		t.Error("v should mask the secret")
	}
	d.Update(keyMsg("enter"))
	if closes != 1 {
		t.Errorf("Enter should request close once, got %d", closes)
	}
}

func TestProjectSwitcherDialog_Select(t *testing.T) {
	d := NewProjectSwitcherDialog(openShell(), testProjects())
	d.View()
	d.Update(keyMsg("j"))
	_, cmd := d.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	msg, ok := cmd().(SelectProjectMsg)
	if !ok || msg.ProjectID != "proj_b" {
		t.Errorf("got %#v, want SelectProjectMsg{proj_b}", cmd())
	}
}

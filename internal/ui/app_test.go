package ui

import (
	"context"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyconsole/internal/action"
	"keyconsole/internal/api"
	"keyconsole/internal/mockapi"
	"keyconsole/internal/timer"
)

var uiPkg = reflect.TypeOf(RepaintMsg{}).PkgPath()

// harness drives an AppModel the way tea.Program would, running commands
// until none are left. Only this package's messages are fed back, so
// spinner ticks and cursor blinks end the loop.
type harness struct {
	t   *testing.T
	app *AppModel
	m   tea.Model
}

func newHarness(t *testing.T, app *AppModel) *harness {
	h := &harness{t: t, app: app, m: app.AsTeaModel()}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	_, cmd := h.m.Update(msg)
	h.drain(cmd)
}

func (h *harness) keys(keys ...string) {
	h.t.Helper()
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) drain(cmd tea.Cmd) {
	h.t.Helper()
	results := make(chan tea.Msg, 64)
	outstanding := 0
	start := func(c tea.Cmd) {
		if c == nil {
			return
		}
		outstanding++
		go func() { results <- c() }()
	}
	start(cmd)

	deadline := time.After(10 * time.Second)
	for outstanding > 0 {
		var msg tea.Msg
		select {
		case msg = <-results:
			outstanding--
		case <-deadline:
			h.t.Fatal("commands did not settle")
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				start(c)
			}
			continue
		}
		if msg == nil || reflect.TypeOf(msg).PkgPath() != uiPkg {
			continue
		}
		_, next := h.m.Update(msg)
		start(next)
	}
}

type consoleFixture struct {
	srv    *mockapi.Server
	ts     *httptest.Server
	client *api.Client
	app    *AppModel
	h      *harness
	saved  *api.Credentials
}

func newConsole(t *testing.T, token string) *consoleFixture {
	t.Helper()
	stubClipboard(t, nil)

	srv := mockapi.New(mockapi.Options{})
	require.NoError(t, srv.Seed())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	fx := &consoleFixture{srv: srv, ts: ts, client: client}
	fx.app = NewAppModel(Options{
		Backend:   client,
		Submitter: action.NewSubmitter(action.NewHandler(client, nil), nil),
		Scheduler: timer.NewFake(),
		BaseURL:   ts.URL,
		Email:     "admin@example.com",
		Token:     token,
		OnLogin:   func(c *api.Credentials) { fx.saved = c },
	})
	fx.h = newHarness(t, fx.app)
	return fx
}

// signIn logs in through the login page and opens proj_123.
func (fx *consoleFixture) signIn(t *testing.T) {
	t.Helper()
	fx.h.drain(fx.h.m.Init())
	fx.h.typeText("password123")
	fx.h.keys("enter")
	require.Equal(t, ModeDashboard, fx.app.Mode)
	require.Len(t, fx.app.Dashboard.Projects, 1)

	fx.h.keys("enter")
	require.Equal(t, ModeProject, fx.app.Mode)
	require.NotNil(t, fx.app.Project.Project)
}

func (fx *consoleFixture) topDialog(t *testing.T) Dialog {
	t.Helper()
	d, ok := fx.app.Overlays.Peek()
	require.True(t, ok, "expected an open dialog")
	return d
}

func toastMessages(a *AppModel) []string {
	var out []string
	for _, t := range a.Toasts.List() {
		out = append(out, t.Message)
	}
	return out
}

func TestApp_LoginLoadsDashboard(t *testing.T) {
	fx := newConsole(t, "")
	require.Equal(t, ModeLogin, fx.app.Mode)

	fx.h.drain(fx.h.m.Init())
	fx.h.typeText("password123")
	fx.h.keys("enter")

	assert.Equal(t, ModeDashboard, fx.app.Mode)
	assert.NotEmpty(t, fx.app.Token())
	require.NotNil(t, fx.saved)
	assert.Equal(t, fx.app.Token(), fx.saved.Token)
	assert.Contains(t, toastMessages(fx.app), "Signed in as admin@example.com")

	require.Len(t, fx.app.Dashboard.Projects, 1)
	p := fx.app.Dashboard.Projects[0]
	assert.Equal(t, "proj_123", p.ProjectID)
	assert.Len(t, p.APIKeys, 1)
	assert.Len(t, p.Members, 2)
	assert.False(t, fx.app.Dashboard.Loading())
	assert.Contains(t, fx.h.m.View(), "Demo project")
}

func TestApp_LoginFailure(t *testing.T) {
	fx := newConsole(t, "")
	fx.h.typeText("wrong")
	fx.h.keys("enter")

	assert.Equal(t, ModeLogin, fx.app.Mode)
	assert.NotEmpty(t, fx.app.Login.Error())
	assert.False(t, fx.app.Login.Busy())
}

func TestApp_ExpiredTokenReturnsToLogin(t *testing.T) {
	fx := newConsole(t, "not-a-token")
	require.Equal(t, ModeDashboard, fx.app.Mode)

	fx.h.drain(fx.h.m.Init())
	assert.Equal(t, ModeLogin, fx.app.Mode)
	assert.Equal(t, sessionExpired, fx.app.Login.Error())
	assert.Empty(t, fx.app.Token())
}

func TestApp_CreateKeyShowsNewKeyDialog(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("n")
	confirm, ok := fx.topDialog(t).(*ConfirmDialog)
	require.True(t, ok, "got %T", fx.topDialog(t))
	assert.Equal(t, action.CreateAPIKey, confirm.Action())
	assert.True(t, fx.app.Scroll.Locked())

	fx.h.keys("enter")
	require.Equal(t, 1, fx.app.Overlays.Len(), "confirm dialog should be replaced")
	created, ok := fx.topDialog(t).(*NewAPIKeyDialog)
	require.True(t, ok, "got %T", fx.topDialog(t))

	p, _ := fx.srv.Project("proj_123")
	require.Len(t, p.APIKeys, 2)
	secret := p.APIKeys[1].Key
	assert.Equal(t, secret, created.Card().Key().Key)
	assert.Contains(t, fx.h.m.View(), secret)
	assert.Len(t, fx.app.Project.Cards(), 2)
	assert.Contains(t, toastMessages(fx.app), "API key created")

	fx.h.keys("esc")
	assert.Equal(t, 0, fx.app.Overlays.Len())
	assert.False(t, fx.app.Scroll.Locked())
	assert.Equal(t, 0, fx.app.Keys.Len())
	assert.Equal(t, ModeProject, fx.app.Mode, "Escape on a dialog must not leave the page")
}

func TestApp_EscapeClosesDialogWithoutSubmitting(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("d")
	_, ok := fx.topDialog(t).(*ConfirmDialog)
	require.True(t, ok)
	fx.h.keys("esc")

	assert.Equal(t, 0, fx.app.Overlays.Len())
	p, _ := fx.srv.Project("proj_123")
	assert.Len(t, p.APIKeys, 1)
}

func TestApp_BackdropClickClosesDialog(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("e")
	fx.h.m.View() // places the dialog
	fx.h.send(press(0, 0))
	assert.Equal(t, 0, fx.app.Overlays.Len())
}

func TestApp_RevokeKey(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("d", "enter")
	assert.Equal(t, 0, fx.app.Overlays.Len())
	assert.Contains(t, toastMessages(fx.app), "API key revoked")
	p, _ := fx.srv.Project("proj_123")
	assert.Empty(t, p.APIKeys)
	assert.Empty(t, fx.app.Project.Cards())
}

func TestApp_EditProject(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("e")
	edit, ok := fx.topDialog(t).(*EditProjectDialog)
	require.True(t, ok)
	edit.SetValues("Renamed", "")
	fx.h.keys("enter")

	assert.Equal(t, 0, fx.app.Overlays.Len())
	assert.Equal(t, "Renamed", fx.app.Project.Project.Name)
}

func TestApp_DeleteProjectRedirects(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys("D")
	del, ok := fx.topDialog(t).(*DeleteProjectDialog)
	require.True(t, ok)

	fx.h.typeText("Proj_123")
	fx.h.keys("enter")
	assert.Equal(t, 1, fx.app.Overlays.Len(), "wrong case must not submit")

	del.SetConfirmation("proj_123")
	fx.h.keys("enter")

	assert.Equal(t, ModeDashboard, fx.app.Mode)
	assert.Nil(t, fx.app.Project)
	assert.Empty(t, fx.app.Dashboard.Projects)
	assert.Contains(t, toastMessages(fx.app), "Project deleted")
}

func TestApp_NetworkErrorKeepsDialogOpen(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)
	fx.ts.Close()

	fx.h.keys("n", "enter")
	confirm, ok := fx.topDialog(t).(*ConfirmDialog)
	require.True(t, ok)
	assert.Equal(t, action.NetworkError, confirm.Error())
	assert.True(t, confirm.CanSubmit())
	assert.True(t, strings.Contains(fx.h.m.View(), action.NetworkError))
}

func TestApp_CopyAndRevealSelectedKey(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)
	card := fx.app.Project.SelectedCard()
	require.NotNil(t, card)

	fx.h.keys("v")
	assert.True(t, card.ShowKey())
	fx.h.keys("c")
	assert.True(t, card.Copied())

	fx.h.keys("esc")
	assert.Equal(t, ModeDashboard, fx.app.Mode)
	assert.False(t, card.Copied(), "leaving the page disposes the card timers")
}

// gatedHandler blocks every submission until release is closed, then
// answers with result.
type gatedHandler struct {
	calls   atomic.Int32
	release chan struct{}
	result  action.Result
}

func (g *gatedHandler) Handle(ctx context.Context, token, projectID string, f action.Form) action.Result {
	g.calls.Add(1)
	<-g.release
	return g.result
}

func TestApp_DuplicateSubmissionDropped(t *testing.T) {
	gate := &gatedHandler{release: make(chan struct{})}
	app := NewAppModel(Options{
		Submitter: action.NewSubmitter(gate, nil),
		Scheduler: timer.NewFake(),
		Token:     "t",
	})
	m := app.AsTeaModel()
	m.Update(SelectProjectMsg{ProjectID: "proj_123"})

	f := action.NewForm(action.CreateAPIKey)
	_, first := m.Update(SubmitFormMsg{Form: f})
	_, second := m.Update(SubmitFormMsg{Form: f})
	require.NotNil(t, first)
	assert.Nil(t, second, "identical in-flight submission must be dropped")

	close(gate.release)
	done, ok := first().(SubmissionDoneMsg)
	require.True(t, ok)
	assert.True(t, done.Result.OK())
	assert.Equal(t, int32(1), gate.calls.Load())
}

func TestApp_ProjectSwitcher(t *testing.T) {
	fx := newConsole(t, "")
	fx.signIn(t)

	fx.h.keys(" ", "p", "s")
	_, ok := fx.topDialog(t).(*ProjectSwitcherDialog)
	require.True(t, ok)
	fx.h.keys("enter")

	assert.Equal(t, 0, fx.app.Overlays.Len())
	assert.Equal(t, ModeProject, fx.app.Mode)
	assert.Equal(t, "proj_123", fx.app.Project.ProjectID)
}

// gatedProject opens a two-key project on an app whose submissions wait on gate.
func gatedProject(t *testing.T, gate *gatedHandler) (*AppModel, tea.Model, api.APIKey, api.APIKey) {
	t.Helper()
	keyA := api.APIKey{ID: "key_a", Key: "sk_live_aaaaaaaaaaaa"}
	keyB := api.APIKey{ID: "key_b", Key: "sk_live_bbbbbbbbbbbb"}
	app := NewAppModel(Options{
		Submitter: action.NewSubmitter(gate, nil),
		Scheduler: timer.NewFake(),
		Token:     "t",
	})
	m := app.AsTeaModel()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(SelectProjectMsg{ProjectID: "proj_123"})
	m.Update(ProjectLoadedMsg{ProjectID: "proj_123", Project: &api.Project{
		ProjectID: "proj_123",
		Name:      "Demo project",
		APIKeys:   []api.APIKey{keyA, keyB},
	}})
	require.NotNil(t, app.Project.Project)
	return app, m, keyA, keyB
}

func TestApp_ResultGoesToSubmittingDialogOnly(t *testing.T) {
	tests := []struct {
		name   string
		result action.Result
		toast  string
	}{
		{name: "success", result: action.Result{}, toast: "API key revoked"},
		{name: "failure", result: action.Result{Error: "key A failure"}, toast: "key A failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &gatedHandler{release: make(chan struct{}), result: tt.result}
			app, m, keyA, keyB := gatedProject(t, gate)

			app.openDialog(func(s *ModalShell) Dialog { return NewDeleteAPIKeyDialog(s, keyA) })
			first, ok := app.Overlays.Peek()
			require.True(t, ok)
			_, wait := m.Update(SubmitFormMsg{Form: first.(*ConfirmDialog).Form(), Origin: first.Shell()})
			require.NotNil(t, wait)

			m.Update(keyMsg("esc"))
			require.Equal(t, 0, app.Overlays.Len())

			app.openDialog(func(s *ModalShell) Dialog { return NewDeleteAPIKeyDialog(s, keyB) })
			second, ok := app.Overlays.Peek()
			require.True(t, ok)

			close(gate.release)
			done, ok := wait().(SubmissionDoneMsg)
			require.True(t, ok)
			m.Update(done)

			require.Equal(t, 1, app.Overlays.Len(), "the other key's dialog stays open")
			top, _ := app.Overlays.Peek()
			assert.Same(t, second, top)
			assert.Empty(t, second.(*ConfirmDialog).Error())
			assert.Contains(t, toastMessages(app), tt.toast)
			assert.Equal(t, int32(1), gate.calls.Load())
		})
	}
}

func TestApp_ErrorBannerOnSubmittingDialog(t *testing.T) {
	gate := &gatedHandler{release: make(chan struct{}), result: action.Result{Error: "Key not found"}}
	app, m, keyA, _ := gatedProject(t, gate)

	app.openDialog(func(s *ModalShell) Dialog { return NewDeleteAPIKeyDialog(s, keyA) })
	d, _ := app.Overlays.Peek()
	_, wait := m.Update(SubmitFormMsg{Form: d.(*ConfirmDialog).Form(), Origin: d.Shell()})

	close(gate.release)
	m.Update(wait())

	assert.Equal(t, 1, app.Overlays.Len())
	assert.Equal(t, "Key not found", d.(*ConfirmDialog).Error())
	assert.Empty(t, toastMessages(app))
}

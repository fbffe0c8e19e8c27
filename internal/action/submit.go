package action

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrPending is returned by Submit when an identical form for the same
// project is still in flight. The in-flight handle is returned with it.
var ErrPending = errors.New("submission already in flight")

// Submission is the handle for one form run.
type Submission struct {
	Form      Form
	ProjectID string

	done   chan struct{}
	result Result
}

// Done is closed once the result is available.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Result returns the result and true once the run has finished.
func (s *Submission) Result() (Result, bool) {
	select {
	case <-s.done:
		return s.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the run finishes or ctx is done.
func (s *Submission) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Submitter runs forms in the background and refuses duplicates while one is
// in flight.
type Submitter struct {
	handler FormHandler
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[string]*Submission
}

// NewSubmitter returns a submitter that runs forms through h.
func NewSubmitter(h FormHandler, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{
		handler: h,
		logger:  logger,
		pending: make(map[string]*Submission),
	}
}

// Submit starts running f for projectID. ctx bounds the run itself, not the
// call. If the same form is already running for the project, the existing
// handle is returned together with ErrPending.
func (s *Submitter) Submit(ctx context.Context, token, projectID string, f Form) (*Submission, error) {
	key := projectID + "\x00" + f.Encode()

	s.mu.Lock()
	if sub, ok := s.pending[key]; ok {
		s.mu.Unlock()
		s.logger.Debug("duplicate submission", zap.Stringer("form", f), zap.String("project_id", projectID))
		return sub, ErrPending
	}
	sub := &Submission{Form: f, ProjectID: projectID, done: make(chan struct{})}
	s.pending[key] = sub
	s.mu.Unlock()

	go func() {
		res := s.handler.Handle(ctx, token, projectID, f)

		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()

		sub.result = res
		close(sub.done)
	}()
	return sub, nil
}

// InFlight reports how many submissions are running.
func (s *Submitter) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

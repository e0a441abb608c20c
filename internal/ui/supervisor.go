package ui

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sebasr/target-manager/internal/logging"
)

// FallbackTitle heads the view shown after a failure.
const FallbackTitle = "Something went wrong"

// ErrFailed is returned by Run while the supervisor shows its fallback.
var ErrFailed = errors.New("ui: showing fallback view")

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Supervisor is the error boundary around rendering and update code. After
// a failure it holds the error and refuses further work until Reset; the
// interrupted operation is never resumed.
type Supervisor struct {
	log *logrus.Logger

	mu  sync.Mutex
	err error
}

// NewSupervisor creates a supervisor. A nil logger discards output.
func NewSupervisor(log *logrus.Logger) *Supervisor {
	if log == nil {
		log = logging.Nop()
	}
	return &Supervisor{log: log}
}

// Run executes fn. A panic or returned error switches to the fallback view
// and is returned to the caller.
func (s *Supervisor) Run(fn func() error) (err error) {
	if s.Failed() {
		return ErrFailed
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil {
			s.fail(err)
		}
	}()

	return fn()
}

func (s *Supervisor) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	entry := s.log.WithError(err)
	var pe *PanicError
	if errors.As(err, &pe) {
		entry = entry.WithField("stack", string(pe.Stack))
	}
	entry.Error("view failed")
}

// Failed reports whether the fallback view is active.
func (s *Supervisor) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

// Err returns the captured error, or nil.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Fallback renders the failure view, or "" when nothing failed.
func (s *Supervisor) Fallback() string {
	err := s.Err()
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(bannerStyle.Render(FallbackTitle))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(err.Error()))
	b.WriteString("\n")
	return b.String()
}

// Reset clears the failure so Run accepts work again.
func (s *Supervisor) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = nil
}

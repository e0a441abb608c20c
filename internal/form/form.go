// Package form implements the add/edit session for a single target: the draft
// being typed, its field errors and the submit lifecycle.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/sebasr/target-manager/internal/client"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/validation"
)

// State is the lifecycle state of the form.
type State int

const (
	Closed State = iota
	OpenForCreate
	OpenForEdit
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenForCreate:
		return "open_for_create"
	case OpenForEdit:
		return "open_for_edit"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	// ErrSubmitInFlight is returned when an action needs the form idle.
	ErrSubmitInFlight = errors.New("form: submit in progress")
	// ErrClosed is returned when the form has no open session.
	ErrClosed = errors.New("form: not open")
	// ErrUnknownField is returned by SetField for names outside validation.Fields.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrDismissed is returned by a Submit whose session was dismissed while
	// the request was in flight. The request may still have been applied.
	ErrDismissed = errors.New("form: dismissed during submit")
)

// Form titles and submit button labels.
const (
	TitleCreate     = "Add New Target"
	TitleEdit       = "Edit Target"
	LabelCreate     = "Create Target"
	LabelSave       = "Save Changes"
	LabelSubmitting = "Saving..."
)

// SavedFunc is invoked after a successful submit, once the form has closed.
type SavedFunc func(ctx context.Context, target *models.Target)

// Options configures a Controller.
type Options struct {
	Variant validation.Variant
	OnSaved SavedFunc
}

// Controller owns one edit session at a time. It is safe for concurrent use;
// the store is never called while the internal lock is held.
type Controller struct {
	store   client.Store
	variant validation.Variant
	onSaved SavedFunc

	mu        sync.Mutex
	state     State
	mode      State // OpenForCreate or OpenForEdit while Submitting
	draft     validation.Draft
	errs      validation.FieldErrors
	submitErr string
	session   uint64
}

// New creates a closed form.
func New(store client.Store, opts Options) *Controller {
	return &Controller{
		store:   store,
		variant: opts.Variant,
		onSaved: opts.OnSaved,
	}
}

// OpenCreate starts a session with an empty draft.
func (c *Controller) OpenCreate() error {
	return c.open(OpenForCreate, validation.EmptyDraft(c.variant))
}

// OpenEdit starts a session pre-filled from target.
func (c *Controller) OpenEdit(target models.Target) error {
	return c.open(OpenForEdit, validation.DraftFromTarget(target))
}

func (c *Controller) open(state State, draft validation.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitInFlight
	}
	c.session++
	c.state = state
	c.mode = state
	c.draft = draft
	c.errs = nil
	c.submitErr = ""
	return nil
}

// SetField stores a raw value and clears that field's error.
func (c *Controller) SetField(f validation.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Closed:
		return ErrClosed
	case Submitting:
		return ErrSubmitInFlight
	}
	if !c.draft.Set(f, value) {
		return ErrUnknownField
	}
	delete(c.errs, f)
	return nil
}

// Submit validates the draft and, when valid, creates or updates the target.
//
// Invalid input leaves the form open with field errors and returns a
// validation APIError without calling the store. A store failure returns the
// form to its open state with SubmitError set. On success the form closes and
// OnSaved runs before Submit returns.
func (c *Controller) Submit(ctx context.Context) (*models.Target, error) {
	c.mu.Lock()
	switch c.state {
	case Closed:
		c.mu.Unlock()
		return nil, ErrClosed
	case Submitting:
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	data, errs := validation.Validate(c.draft, c.variant)
	if !errs.Empty() {
		c.errs = errs
		c.submitErr = ""
		c.mu.Unlock()
		return nil, client.NewValidationError(errs)
	}

	mode := c.state
	id := c.draft.ID
	session := c.session
	c.state = Submitting
	c.submitErr = ""
	c.mu.Unlock()

	var (
		target *models.Target
		err    error
	)
	if mode == OpenForEdit {
		target, err = c.store.UpdateTarget(ctx, id, data.Update())
	} else {
		target, err = c.store.CreateTarget(ctx, data)
	}

	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		return nil, ErrDismissed
	}
	if err != nil {
		c.state = mode
		c.submitErr = client.UserMessage(err)
		c.mu.Unlock()
		return nil, client.Normalize(err)
	}
	c.reset()
	onSaved := c.onSaved
	c.mu.Unlock()

	if onSaved != nil {
		onSaved(ctx, target)
	}
	return target, nil
}

// Cancel discards the draft. It is refused while a submit is in flight and is
// a no-op when the form is already closed.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmitInFlight
	}
	if c.state != Closed {
		c.reset()
	}
	return nil
}

// Dismiss closes the form unconditionally. The result of an in-flight submit
// is dropped and OnSaved is not called for it.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// reset closes the session; callers hold c.mu.
func (c *Controller) reset() {
	c.session++
	c.state = Closed
	c.mode = Closed
	c.draft = validation.Draft{}
	c.errs = nil
	c.submitErr = ""
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsOpen reports whether a session is active, including while submitting.
func (c *Controller) IsOpen() bool {
	return c.State() != Closed
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() validation.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Errors returns a copy of the current field errors.
func (c *Controller) Errors() validation.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.Clone()
}

// SubmitError returns the form-level message of the last failed submit.
func (c *Controller) SubmitError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitErr
}

// Disabled reports whether inputs and buttons should be inert.
func (c *Controller) Disabled() bool {
	return c.State() == Submitting
}

// Variant returns the validation variant in use.
func (c *Controller) Variant() validation.Variant {
	return c.variant
}

// Title returns the heading for the current session.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == OpenForEdit {
		return TitleEdit
	}
	return TitleCreate
}

// SubmitLabel returns the submit button text.
func (c *Controller) SubmitLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state == Submitting:
		return LabelSubmitting
	case c.mode == OpenForEdit:
		return LabelSave
	}
	return LabelCreate
}

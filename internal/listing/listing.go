// Package listing owns the target collection shown to the user. It loads the
// list from the store, re-fetches after every mutation and drives the delete
// confirmation and the add/edit form.
package listing

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sebasr/target-manager/internal/client"
	"github.com/sebasr/target-manager/internal/form"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/validation"
)

// State is the load state of the collection.
type State int

const (
	Loading State = iota
	Loaded
	LoadError
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadError:
		return "load_error"
	}
	return "unknown"
}

var (
	// ErrUnknownTarget is returned when no loaded target matches an id.
	ErrUnknownTarget = errors.New("listing: target not found")
	// ErrAmbiguous is returned when an id prefix matches several targets.
	ErrAmbiguous = errors.New("listing: ambiguous target id")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("listing: no delete to confirm")
)

// Columns are the table headers, shared by the table and its placeholder.
var Columns = []string{"#", "ID", "Location", "Altitude", "Frequency", "Speed", "Bearing", "IP Address"}

// PlaceholderRows is the number of skeleton rows shown while loading.
const PlaceholderRows = 5

// EmptyMessage is shown when the collection loaded with no targets.
const EmptyMessage = "No targets found"

// Skeleton describes the loading placeholder.
type Skeleton struct {
	Columns []string
	Rows    int
}

// Options configures a Controller.
type Options struct {
	Variant validation.Variant
}

// Controller is the list page. It is safe for concurrent use; the lock is
// never held across a store call.
type Controller struct {
	store client.Store
	form  *form.Controller

	mu            sync.Mutex
	state         State
	targets       []models.Target
	banner        string
	pendingDelete *models.Target
	loadSeq       uint64
}

// New creates a controller in the Loading state. Call Load to populate it.
func New(store client.Store, opts Options) *Controller {
	c := &Controller{store: store}
	c.form = form.New(store, form.Options{
		Variant: opts.Variant,
		OnSaved: func(ctx context.Context, _ *models.Target) {
			// A failed refresh is reported through the banner.
			_ = c.Refresh(ctx)
		},
	})
	return c
}

// Load fetches the collection. When loads overlap, the last one started wins.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.state = Loading
	c.mu.Unlock()

	targets, err := c.store.ListTargets(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		return err
	}
	if err != nil {
		c.state = LoadError
		c.targets = nil
		c.banner = client.UserMessage(err)
		return err
	}
	c.state = Loaded
	c.targets = append([]models.Target(nil), targets...)
	c.banner = ""
	return nil
}

// Retry reloads after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// Refresh re-fetches the whole collection after a mutation.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// State returns the load state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Targets returns a copy of the loaded collection.
func (c *Controller) Targets() []models.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Target, len(c.targets))
	copy(out, c.targets)
	return out
}

// Empty reports whether the collection loaded successfully with no rows.
func (c *Controller) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Loaded && len(c.targets) == 0
}

// Placeholder returns the skeleton shown while loading.
func (c *Controller) Placeholder() Skeleton {
	return Skeleton{Columns: append([]string(nil), Columns...), Rows: PlaceholderRows}
}

// Banner returns the current error message, if any.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// DismissBanner hides the error message.
func (c *Controller) DismissBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = ""
}

// Resolve finds a loaded target by full id or unique id prefix.
func (c *Controller) Resolve(ref string) (models.Target, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(ref)
}

func (c *Controller) resolve(ref string) (models.Target, error) {
	ref = strings.TrimSuffix(strings.TrimSpace(ref), "...")
	if ref == "" {
		return models.Target{}, ErrUnknownTarget
	}

	for _, t := range c.targets {
		if t.ID == ref {
			return t, nil
		}
	}

	var match *models.Target
	for i := range c.targets {
		t := &c.targets[i]
		if strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return models.Target{}, ErrAmbiguous
			}
			match = t
		}
	}
	if match == nil {
		return models.Target{}, ErrUnknownTarget
	}
	return *match, nil
}

// RequestDelete opens the confirmation for a target.
func (c *Controller) RequestDelete(ref string) (models.Target, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.resolve(ref)
	if err != nil {
		return models.Target{}, err
	}
	c.pendingDelete = &t
	return t, nil
}

// PendingDelete returns the target awaiting confirmation.
func (c *Controller) PendingDelete() (models.Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return models.Target{}, false
	}
	return *c.pendingDelete, true
}

// CancelDelete closes the confirmation without touching anything.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete deletes the pending target and refreshes the collection. On
// failure the banner carries the message and the confirmation stays open so
// the delete can be retried or cancelled. A refresh failure after a
// successful delete is left to the banner and does not fail the delete.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pendingDelete
	c.mu.Unlock()
	if pending == nil {
		return ErrNoPendingDelete
	}

	err := c.store.DeleteTarget(ctx, pending.ID)

	c.mu.Lock()
	if err != nil {
		c.banner = client.UserMessage(err)
		c.mu.Unlock()
		return err
	}
	if c.pendingDelete == pending {
		c.pendingDelete = nil
	}
	c.mu.Unlock()

	_ = c.Refresh(ctx)
	return nil
}

// Form returns the add/edit form owned by this page.
func (c *Controller) Form() *form.Controller {
	return c.form
}

// OpenCreate opens the form for a new target.
func (c *Controller) OpenCreate() error {
	return c.form.OpenCreate()
}

// OpenEdit opens the form pre-filled with a loaded target.
func (c *Controller) OpenEdit(ref string) error {
	t, err := c.Resolve(ref)
	if err != nil {
		return err
	}
	return c.form.OpenEdit(t)
}

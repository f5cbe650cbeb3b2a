package shelf

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/five82/bookshelf/internal/catalog"
)

// ErrAlreadyLoaded is returned by Load after the first call.
var ErrAlreadyLoaded = errors.New("collection already loaded")

// Mode selects which subview is active.
type Mode int

const (
	ModeList Mode = iota
	ModeView
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeView:
		return "view"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	Books    []catalog.Book
	Selected *catalog.Book
	Mode     Mode
	Err      error
	// ErrMessage is the display form of Err, empty when there is no error.
	ErrMessage string
	Loading    bool
	// Started is set once Load has been called.
	Started bool
}

// Controller owns the state of one catalog session and coordinates it with
// the remote collection.
type Controller struct {
	api    catalog.API
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	books    []catalog.Book
	selected *catalog.Book
	mode     Mode
	err      error
	loading  bool
	started  bool
	closed   bool
}

// New starts a session against api.
func New(api catalog.API) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:    api,
		ctx:    ctx,
		cancel: cancel,
		mode:   ModeList,
	}
}

// Close ends the session. In-flight requests are cancelled and any result
// that arrives afterwards is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Books:      cloneBooks(c.books),
		Mode:       c.mode,
		Err:        c.err,
		ErrMessage: catalog.Message(c.err),
		Loading:    c.loading,
		Started:    c.started,
	}
	if c.selected != nil {
		sel := c.selected.Clone()
		snap.Selected = &sel
	}
	return snap
}

// Load fetches the collection. Only the first call does anything; later
// calls return ErrAlreadyLoaded.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.started = true
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	ctx, done := c.requestContext(ctx)
	defer done()
	books, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	c.loading = false
	if err != nil {
		c.fail("load", err)
		return err
	}
	c.books = cloneBooks(books)
	c.err = nil
	return nil
}

// SelectForView shows the book with id. An unknown id yields an empty
// detail view.
func (c *Controller) SelectForView(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = c.find(id)
	c.mode = ModeView
}

// SelectForEdit opens the form for the book with id. An unknown id leaves
// nothing selected, which the form treats as a new record.
func (c *Controller) SelectForEdit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = c.find(id)
	c.mode = ModeEdit
}

// CreateNew opens an empty form.
func (c *Controller) CreateNew() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.mode = ModeEdit
}

// GoBack returns to the list. The selection is kept.
func (c *Controller) GoBack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeList
}

// Delete removes the book with id from the remote collection and, on
// success, from the local one.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.clearError()

	ctx, done := c.requestContext(ctx)
	defer done()
	err := c.api.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	if err != nil {
		c.fail("delete", err)
		return err
	}
	kept := c.books[:0:0]
	for _, b := range c.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	c.books = kept
	c.mode = ModeList
	c.err = nil
	return nil
}

// Save creates or updates a book depending on the draft variant.
func (c *Controller) Save(ctx context.Context, draft catalog.Draft) error {
	c.clearError()

	ctx, done := c.requestContext(ctx)
	defer done()

	switch d := draft.(type) {
	case catalog.ExistingBook:
		updated, err := c.api.Update(ctx, d)
		return c.applySave("update", err, func() {
			if updated.ID != d.ID() {
				updated = d.Payload()
			}
			for i := range c.books {
				if c.books[i].ID == d.ID() {
					c.books[i] = updated.Clone()
				}
			}
		})
	case catalog.NewBook:
		created, err := c.api.Create(ctx, d)
		return c.applySave("create", err, func() {
			c.books = append(c.books, created.Clone())
		})
	default:
		err := &catalog.RequestError{Op: "save", Err: errors.New("unsupported draft")}
		return c.applySave("save", err, nil)
	}
}

func (c *Controller) applySave(op string, err error, mutate func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	if err != nil {
		c.fail(op, err)
		return err
	}
	mutate()
	c.mode = ModeList
	c.err = nil
	return nil
}

func (c *Controller) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.err = nil
	}
}

// fail records err as the current error. Callers hold c.mu.
func (c *Controller) fail(op string, err error) {
	c.err = err
	log.Printf("shelf: %s failed: %v", op, err)
}

// find returns a copy of the book with id, or nil. Callers hold c.mu.
func (c *Controller) find(id string) *catalog.Book {
	for _, b := range c.books {
		if b.ID == id {
			dup := b.Clone()
			return &dup
		}
	}
	return nil
}

// requestContext derives a request context from ctx that is also cancelled
// when the session closes.
func (c *Controller) requestContext(ctx context.Context) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func cloneBooks(books []catalog.Book) []catalog.Book {
	if len(books) == 0 {
		return nil
	}
	dup := make([]catalog.Book, len(books))
	for i, b := range books {
		dup[i] = b.Clone()
	}
	return dup
}

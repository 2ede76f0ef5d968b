package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/structhub-io/structhub/pkg/model"
)

// Handle is the opaque system/environment handle threaded through every
// observer context. Storage is whatever backend the storage-ring observer
// expects (a transaction-scoped *gorm.DB in the default wiring); the engine
// never inspects it. The handle carries the tenant identity and the
// elevation flag consulted by security observers.
type Handle struct {
	// Tenant is the logical database this pass runs against.
	Tenant string

	// Storage is the backend bound to this pass, already scoped to the
	// enclosing transaction by the caller.
	Storage any

	// Sudo marks an elevated pass that may write sudo-only fields.
	Sudo bool

	// Logger receives engine and observer logging. Nil falls back to
	// slog.Default.
	Logger *slog.Logger
}

// Log returns the handle's logger, falling back to slog.Default.
func (h *Handle) Log() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Context is the per-record, per-pass scratch entity. It is created before
// the first ring of one record and discarded after its last relevant ring;
// errors and warnings are copied out into the batch result first.
//
// The accumulators are mutex-guarded: a timed-out observer is abandoned, not
// cancelled, so its goroutine may still append after the runner moved on.
type Context struct {
	// Handle is the ambient system handle for this pass.
	Handle *Handle

	// Operation is the batch operation type.
	Operation Operation

	// Model is the resolved schema descriptor for the target table.
	Model *model.Model

	// Record is the single record this context owns.
	Record model.Record

	// RecordIndex is the record's position in the batch.
	RecordIndex int

	// StartedAt is when the record's first ring began.
	StartedAt time.Time

	// CurrentRing and CurrentObserver identify the step being executed;
	// maintained by the runner for logging and error detail.
	CurrentRing     Ring
	CurrentObserver string

	mu       sync.Mutex
	errors   []error
	warnings []*ValidationWarning
	values   map[string]any
}

// NewContext builds a fresh context for one record of a batch pass.
func NewContext(handle *Handle, op Operation, m *model.Model, rec model.Record, index int) *Context {
	return &Context{
		Handle:      handle,
		Operation:   op,
		Model:       m,
		Record:      rec,
		RecordIndex: index,
		StartedAt:   time.Now(),
	}
}

// AddError appends a typed error to the record's accumulator. A nil error is
// ignored.
func (c *Context) AddError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// AddWarning appends a non-fatal warning to the record's accumulator.
func (c *Context) AddWarning(w *ValidationWarning) {
	if w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Errors returns a copy of the accumulated errors.
func (c *Context) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Warnings returns a copy of the accumulated warnings.
func (c *Context) Warnings() []*ValidationWarning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ValidationWarning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Failed reports whether any error has been accumulated for this record.
func (c *Context) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors) > 0
}

// SetValue stores a scratch value visible to later observers of the same
// record.
func (c *Context) SetValue(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = v
}

// Value retrieves a scratch value set by an earlier observer.
func (c *Context) Value(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

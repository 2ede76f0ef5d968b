// Package engine is the ring-based observer execution core. Every mutation
// or retrieval of domain records passes through it: the runner resolves the
// rings relevant to the operation, looks up the observers registered for the
// target model on each ring, and executes them in deterministic order with
// per-observer timeout isolation, accumulating typed errors per record.
package engine

import (
	"context"
	"time"
)

// Ring is one of ten ordered execution stages. Low rings run first; RingStore
// is the storage operation, modeled as just another ordered step.
type Ring int

const (
	// RingBootstrap prepares per-record state before any policy runs.
	RingBootstrap Ring = 0
	// RingValidate checks input shape and values.
	RingValidate Ring = 1
	// RingSecure enforces access policy.
	RingSecure Ring = 2
	// RingBusiness applies domain rules and transforms.
	RingBusiness Ring = 3
	// RingEncode maps domain values to wire values.
	RingEncode Ring = 4
	// RingStore reads or writes the backing store.
	RingStore Ring = 5
	// RingDecode maps wire values back to domain values.
	RingDecode Ring = 6
	// RingEnrich augments records after storage (audit, derived fields).
	RingEnrich Ring = 7
	// RingPost runs late post-processing.
	RingPost Ring = 8
	// RingNotify fires outbound notifications.
	RingNotify Ring = 9

	// NumRings is the number of execution stages.
	NumRings = 10
)

// Operation is the type of a batch pass.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationFind   Operation = "find"
)

const (
	// DefaultPriority orders observers that do not declare one.
	DefaultPriority = 50
	// DefaultTimeout bounds a single observer execution when the observer
	// does not declare its own.
	DefaultTimeout = 5000 * time.Millisecond
)

// Behavior is the single unit of work an observer performs against one
// record. Behaviors append typed errors and warnings to the context and
// return normally; a returned error or panic is reserved for truly
// exceptional conditions and is converted by the runner into a generic
// observer-execution failure.
type Behavior func(ctx context.Context, oc *Context) error

// Observer is a named, ring-bound, priority-ordered policy unit. The zero
// Priority and Timeout take engine defaults at registration. Observers are
// immutable once registered.
type Observer struct {
	// Name identifies the observer in logs and error detail.
	Name string

	// Ring is the execution stage this observer is bound to.
	Ring Ring

	// Priority orders observers within a ring; lower runs first. Zero means
	// DefaultPriority.
	Priority int

	// Operations restricts the observer to the listed operations. Nil or
	// empty means all operations.
	Operations []Operation

	// Timeout bounds one execution of the behavior. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Execute is the observer behavior.
	Execute Behavior

	// seq is the registration sequence, used to keep ties stable.
	seq uint64
}

// applies reports whether the observer's operation filter includes op.
func (o *Observer) applies(op Operation) bool {
	if len(o.Operations) == 0 {
		return true
	}
	for _, candidate := range o.Operations {
		if candidate == op {
			return true
		}
	}
	return false
}

// effectivePriority resolves the zero-value default.
func (o *Observer) effectivePriority() int {
	if o.Priority == 0 {
		return DefaultPriority
	}
	return o.Priority
}

// effectiveTimeout resolves the zero-value default.
func (o *Observer) effectiveTimeout(fallback time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTimeout
}

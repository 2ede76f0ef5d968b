package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/structhub-io/structhub/pkg/model"
)

// Runner is the ring scheduler. It executes every relevant ring for every
// record of a batch, strictly sequentially, isolating each observer behind
// an independent timeout race, and renders the batch verdict with per-record
// error detail.
//
// A Runner holds no per-call mutable state; concurrent Execute calls for
// different models or tenants are safe at the caller's discretion.
type Runner struct {
	registry *Registry
	cfg      *RunnerConfig
	logger   *slog.Logger
}

// NewRunner creates a runner over the given registry. A nil cfg takes
// defaults; a nil logger falls back to slog.Default.
func NewRunner(registry *Registry, cfg *RunnerConfig, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = DefaultRunnerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, cfg: cfg, logger: logger}
}

// Execute runs one batch pass: for each record in order, each relevant ring
// ascending, each applicable observer by ascending priority. An empty batch
// is a vacuous success. Errors from rings below the storage ring stop later
// rings for that record only; the remaining records still run. Storage-ring
// side effects are not undone here; batch atomicity belongs to the caller's
// enclosing transaction, which must commit only on Success.
func (r *Runner) Execute(ctx context.Context, handle *Handle, op Operation, m *model.Model, records []model.Record) *Result {
	result := &Result{Success: true}
	if m == nil {
		result.Success = false
		result.Errors = append(result.Errors, IndexedError{
			RecordIndex: -1,
			Err:         NewSystemError(CodeModelUnavailable, "execute without a resolved model", nil),
		})
		return result
	}

	rings := RingsFor(op)

	abort := false
	for index, record := range records {
		if abort {
			break
		}

		oc := NewContext(handle, op, m, record, index)

		for _, ring := range rings {
			oc.CurrentRing = ring

			observers := r.registry.GetObservers(m.Name, ring)
			// Stable: equal priorities keep registration order.
			sort.SliceStable(observers, func(i, j int) bool {
				return observers[i].effectivePriority() < observers[j].effectivePriority()
			})

			for _, obs := range observers {
				if !obs.applies(op) {
					continue
				}
				oc.CurrentObserver = obs.Name
				r.runObserver(ctx, oc, obs)
				if r.cfg.AbortOnSystemError && hasSystemError(oc) {
					abort = true
					break
				}
			}
			if abort {
				break
			}

			// A failed pre-storage ring stops this record; the rest of the
			// batch still gets its chance to report.
			if ring < RingStore && oc.Failed() {
				break
			}
		}

		for _, err := range oc.Errors() {
			result.Errors = append(result.Errors, IndexedError{RecordIndex: index, Err: err})
		}
		for _, w := range oc.Warnings() {
			result.Warnings = append(result.Warnings, IndexedWarning{RecordIndex: index, Warning: w})
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

// runObserver executes one observer behavior inside an independent timeout
// race. The behavior runs on its own goroutine; if the timer wins, the
// goroutine is abandoned, not cancelled, and its eventual outcome is
// discarded. Panics and returned errors are converted into the generic
// observer-execution failure.
func (r *Runner) runObserver(ctx context.Context, oc *Context, obs *Observer) {
	timeout := obs.effectiveTimeout(r.cfg.DefaultTimeout)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("observer panic: %v", p)
			}
		}()
		done <- obs.Execute(ctx, oc)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			r.logger.Error("observer failed",
				"observer", obs.Name,
				"ring", int(obs.Ring),
				"model", oc.Model.Name,
				"recordIndex", oc.RecordIndex,
				"error", err)
			oc.AddError(r.observerFailure(obs, err))
		}
	case <-timer.C:
		r.logger.Error("observer timed out",
			"observer", obs.Name,
			"ring", int(obs.Ring),
			"model", oc.Model.Name,
			"recordIndex", oc.RecordIndex,
			"timeout", timeout.String())
		oc.AddError(r.observerFailure(obs, fmt.Errorf("timed out after %s", timeout)))
	case <-ctx.Done():
		oc.AddError(r.observerFailure(obs, ctx.Err()))
	}
}

// observerFailure builds the generic observer-execution error. The original
// failure is attached as the cause only when PreserveCauses is set; the code
// is CodeObserverFailed either way.
func (r *Runner) observerFailure(obs *Observer, cause error) error {
	msg := fmt.Sprintf("observer %s failed", obs.Name)
	if r.cfg.PreserveCauses {
		return NewSystemError(CodeObserverFailed, msg, cause)
	}
	return NewSystemError(CodeObserverFailed, msg, nil)
}

func hasSystemError(oc *Context) bool {
	for _, err := range oc.Errors() {
		if _, ok := err.(*SystemError); ok {
			return true
		}
	}
	return false
}

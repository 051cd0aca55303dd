package reconcile

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/util/async"
)

// Context wraps the dependencies of one reconciliation run.
type Context struct {
	context.Context
	Headscale headscale.Client
	Mullvad   mullvad.Client
	Observer  Observer
	Tracker   async.Tracker
	// Workers caps in-flight requests per batch.
	Workers int
	// DryRun plans and reports without mutating anything.
	DryRun bool
}

// NewContext creates a reconciliation context that reports through log.
// The Mullvad client may be nil for commands that never touch the provider.
func NewContext(ctx context.Context, hs headscale.Client, mv mullvad.Client, log logr.Logger) *Context {
	return &Context{
		Context:   ctx,
		Headscale: hs,
		Mullvad:   mv,
		Observer:  NewLogObserver(log),
		Tracker:   async.NopTracker{},
		Workers:   async.DefaultBatchLimit,
	}
}

// run executes one batch with the context's tracker and worker cap.
func run[T any](rc *Context, b async.Batch[T]) async.Summary {
	b.Limit = rc.Workers
	return async.RunBatch(rc, b, rc.Tracker)
}

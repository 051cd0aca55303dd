package reconcile

import "github.com/imamik/hsmv/internal/util/async"

// Report describes what a recipe planned and what its batches did.
type Report struct {
	// Planned counts requests in the plan.
	Planned int
	// Skipped lists items left out of the plan.
	Skipped []Skip
	// Batches holds one summary per executed batch, in order.
	Batches []async.Summary
	DryRun  bool
}

// Failed counts failed items across batches.
func (r *Report) Failed() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Failed)
	}
	return n
}

// NotStarted counts items a cancelled batch never ran.
func (r *Report) NotStarted() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Skipped
	}
	return n
}

// Succeeded counts successful items across batches.
func (r *Report) Succeeded() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Succeeded
	}
	return n
}

// OK reports whether every executed batch fully succeeded.
func (r *Report) OK() bool {
	for _, b := range r.Batches {
		if !b.OK() {
			return false
		}
	}
	return true
}

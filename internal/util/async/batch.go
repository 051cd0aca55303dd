package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit caps simultaneously running actions when a batch does
// not set its own limit.
const DefaultBatchLimit = 50

// Batch describes one list of items and the action applied to each of them.
type Batch[T any] struct {
	// Kind is a stable identifier used for metrics, e.g. "relay_register".
	Kind string
	// Title is the human readable progress label.
	Title string
	Items []T
	// Name returns the display name of an item for logging.
	Name func(T) string
	// Action is invoked once per item. Items must be independent.
	Action func(context.Context, T) error
	// Limit caps concurrently running actions. Zero means DefaultBatchLimit.
	Limit int
}

// BatchInfo is handed to a Tracker when a batch starts.
type BatchInfo struct {
	Kind  string
	Title string
	Total int
}

// ItemError records one failed item.
type ItemError struct {
	Name string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Summary is the outcome of a batch.
type Summary struct {
	Kind      string
	Total     int
	Succeeded int
	Failed    []ItemError
	// Skipped counts items never started because the context was cancelled.
	Skipped  int
	Duration time.Duration
}

// OK reports whether every item succeeded.
func (s Summary) OK() bool {
	return len(s.Failed) == 0 && s.Skipped == 0
}

// Tracker observes batch progress. Step is called from worker goroutines,
// so implementations must be safe for concurrent use.
type Tracker interface {
	Begin(info BatchInfo)
	Step(name string, err error)
	End(summary Summary)
}

// RunBatch applies b.Action to every item with at most b.Limit actions in
// flight. A failing or panicking action is recorded and reported to the
// tracker; the remaining items still run. An empty batch returns immediately
// without touching the tracker.
func RunBatch[T any](ctx context.Context, b Batch[T], tracker Tracker) Summary {
	summary := Summary{Kind: b.Kind, Total: len(b.Items)}
	if len(b.Items) == 0 {
		return summary
	}

	if tracker == nil {
		tracker = NopTracker{}
	}
	limit := b.Limit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	name := b.Name
	if name == nil {
		name = func(item T) string { return fmt.Sprint(item) }
	}

	start := time.Now()
	tracker.Begin(BatchInfo{Kind: b.Kind, Title: b.Title, Total: len(b.Items)})

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(limit)

	for i, item := range b.Items {
		if ctx.Err() != nil {
			mu.Lock()
			summary.Skipped += len(b.Items) - i
			mu.Unlock()
			break
		}

		g.Go(func() error {
			// The slot may free up only after cancellation.
			if ctx.Err() != nil {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			itemName := name(item)
			err := invoke(ctx, b.Action, item)

			mu.Lock()
			if err != nil {
				summary.Failed = append(summary.Failed, ItemError{Name: itemName, Err: err})
			} else {
				summary.Succeeded++
			}
			mu.Unlock()

			tracker.Step(itemName, err)
			return nil
		})
	}

	_ = g.Wait()
	summary.Duration = time.Since(start)
	tracker.End(summary)

	return summary
}

func invoke[T any](ctx context.Context, action func(context.Context, T) error, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return action(ctx, item)
}

// NopTracker discards all progress.
type NopTracker struct{}

func (NopTracker) Begin(BatchInfo)    {}
func (NopTracker) Step(string, error) {}
func (NopTracker) End(Summary)        {}

// MultiTracker fans progress out to several trackers.
type MultiTracker []Tracker

func (m MultiTracker) Begin(info BatchInfo) {
	for _, t := range m {
		t.Begin(info)
	}
}

func (m MultiTracker) Step(name string, err error) {
	for _, t := range m {
		t.Step(name, err)
	}
}

func (m MultiTracker) End(summary Summary) {
	for _, t := range m {
		t.End(summary)
	}
}

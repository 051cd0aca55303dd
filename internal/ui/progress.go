package ui

import (
	"io"
	"sync"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/logging"
	"github.com/imamik/hsmv/internal/ui/tui"
	"github.com/imamik/hsmv/internal/util/async"
)

// NewTracker returns a live progress tracker on interactive terminals and a
// log-based tracker otherwise.
func NewTracker(out io.Writer, log logr.Logger) async.Tracker {
	if IsInteractive() {
		return tui.NewTracker(out)
	}
	return NewLogTracker(log)
}

// LogTracker reports batches as log lines: one when a batch starts, one per
// failed item, and a summary line at the end.
type LogTracker struct {
	log logr.Logger

	mu    sync.Mutex
	title string
}

var _ async.Tracker = (*LogTracker)(nil)

// NewLogTracker creates a tracker logging to log.
func NewLogTracker(log logr.Logger) *LogTracker {
	return &LogTracker{log: log}
}

// Begin implements async.Tracker.
func (t *LogTracker) Begin(info async.BatchInfo) {
	t.mu.Lock()
	t.title = info.Title
	t.mu.Unlock()
	t.log.Info(info.Title)
}

// Step implements async.Tracker.
func (t *LogTracker) Step(name string, err error) {
	if err != nil {
		t.log.Error(err, "Error "+name)
		return
	}
	t.log.V(logging.LevelDebug).Info("done", "item", name)
}

// End implements async.Tracker.
func (t *LogTracker) End(summary async.Summary) {
	t.mu.Lock()
	title := t.title
	t.mu.Unlock()

	line := title + ": " + tui.SummaryLine(summary)
	if summary.OK() {
		t.log.Info(line)
		return
	}
	t.log.Info(line, logging.WarnKey, true)
}

package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/hsmv/internal/util/async"
)

// Tracker shows each batch as a spinner with a progress bar. Failed items are
// printed above the bar as they complete. Batches must not overlap.
type Tracker struct {
	out io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

var _ async.Tracker = (*Tracker)(nil)

// NewTracker creates a tracker rendering to out, normally a terminal on stderr.
func NewTracker(out io.Writer) *Tracker {
	return &Tracker{out: out}
}

// Begin implements async.Tracker.
func (t *Tracker) Begin(info async.BatchInfo) {
	p := tea.NewProgram(NewModel(info),
		tea.WithOutput(t.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	t.mu.Lock()
	t.program = p
	t.done = done
	t.mu.Unlock()
}

// Step implements async.Tracker.
func (t *Tracker) Step(name string, err error) {
	p := t.current()
	if p == nil {
		return
	}
	if err != nil {
		p.Println(failedStyle.Render(crossMark) + " " + fmt.Sprintf("Error %s: %v", name, err))
	}
	p.Send(ItemDoneMsg{Name: name, Err: err})
}

// End implements async.Tracker. It blocks until the final frame is drawn.
func (t *Tracker) End(summary async.Summary) {
	t.mu.Lock()
	p, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if p == nil {
		return
	}
	p.Send(BatchDoneMsg{Summary: summary})
	<-done
}

func (t *Tracker) current() *tea.Program {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.program
}

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/hsmv/internal/util/async"
)

// Model is the Bubble Tea model for one batch.
type Model struct {
	Title  string
	Total  int
	Done   int
	Failed int
	// Last is the name of the most recently finished item.
	Last string

	StartTime time.Time
	Elapsed   time.Duration

	Spinner spinner.Model
	Width   int

	Finished bool
	Summary  async.Summary
}

// NewModel creates a model for a batch.
func NewModel(info async.BatchInfo) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{
		Title:     info.Title,
		Total:     info.Total,
		StartTime: time.Now(),
		Spinner:   s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case spinner.TickMsg:
		if m.Finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.Elapsed = time.Since(m.StartTime)
		return m, cmd

	case ItemDoneMsg:
		m.Done++
		m.Last = msg.Name
		if msg.Err != nil {
			m.Failed++
		}

	case BatchDoneMsg:
		m.Finished = true
		m.Summary = msg.Summary
		m.Elapsed = msg.Summary.Duration
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}

// progress returns the completed fraction in [0, 1].
func (m Model) progress() float64 {
	if m.Finished || m.Total == 0 {
		return 1
	}
	p := float64(m.Done) / float64(m.Total)
	if p > 1 {
		p = 1
	}
	return p
}

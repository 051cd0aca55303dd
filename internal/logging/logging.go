// Package logging provides the logr.Logger used for human-facing CLI output.
//
// Lines look like "15:04:05 INFO  message key=value" and go to stderr. Levels
// follow logr conventions: V(0) is info, V(1) and above are debug and only
// shown when verbosity allows it. Errors are always shown.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
)

const (
	// LevelInfo shows informational messages.
	LevelInfo = 0
	// LevelDebug additionally shows debug messages.
	LevelDebug = 1
)

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")).Bold(true)
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// WarnKey marks an info line as a warning: log.Info(msg, logging.WarnKey, true).
const WarnKey = "warn"

// Options configure a Sink.
type Options struct {
	// Verbosity is the highest V level that is printed.
	Verbosity int
	// Now returns the timestamp for a line. Defaults to time.Now.
	Now func() time.Time
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) logr.Logger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return logr.New(&Sink{
		out:  &lockedWriter{w: w},
		opts: opts,
	})
}

// Configure returns the process logger writing to stderr.
func Configure(debug bool) logr.Logger {
	verbosity := LevelInfo
	if debug {
		verbosity = LevelDebug
	}
	return New(os.Stderr, Options{Verbosity: verbosity})
}

// lockedWriter serializes writes from concurrent batch workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Sink implements logr.LogSink.
type Sink struct {
	out    *lockedWriter
	opts   Options
	name   string
	values []any
}

var _ logr.LogSink = (*Sink)(nil)

func (s *Sink) Init(logr.RuntimeInfo) {}

func (s *Sink) Enabled(level int) bool {
	return level <= s.opts.Verbosity
}

func (s *Sink) Info(level int, msg string, keysAndValues ...any) {
	label := infoStyle.Render("INFO ")
	if level > 0 {
		label = debugStyle.Render("DEBUG")
	}

	kv := append(append([]any{}, s.values...), keysAndValues...)
	if warn, rest := extractWarn(kv); warn {
		label = warnStyle.Render("WARN ")
		kv = rest
	}
	s.write(label, msg, kv)
}

func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	kv := append(append([]any{}, s.values...), keysAndValues...)
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	s.write(errorStyle.Render("ERROR"), msg, kv)
}

func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	clone := *s
	clone.values = append(append([]any{}, s.values...), keysAndValues...)
	return &clone
}

func (s *Sink) WithName(name string) logr.LogSink {
	clone := *s
	if clone.name == "" {
		clone.name = name
	} else {
		clone.name = clone.name + "/" + name
	}
	return &clone
}

func (s *Sink) write(label, msg string, kv []any) {
	var b strings.Builder
	b.WriteString(timeStyle.Render(s.opts.Now().Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(label)
	b.WriteString(" ")
	if s.name != "" {
		b.WriteString(s.name)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	b.WriteString(formatValues(kv))
	b.WriteString("\n")
	_, _ = io.WriteString(s.out, b.String())
}

func extractWarn(kv []any) (bool, []any) {
	warn := false
	rest := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok && k == WarnKey {
			if v, ok := kv[i+1].(bool); ok && v {
				warn = true
			}
			continue
		}
		rest = append(rest, kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		rest = append(rest, kv[len(kv)-1])
	}
	return warn, rest
}

func formatValues(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	if len(kv)%2 == 1 {
		kv = append(kv, "<missing>")
	}

	pairs := make([]string, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		pairs = append(pairs, keyStyle.Render(fmt.Sprint(kv[i])+"=")+formatValue(kv[i+1]))
	}
	return " " + strings.Join(pairs, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprint(val)
	}
}

package reconcile

import (
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/logging"
)

// Observer receives structured events from the recipes.
type Observer interface {
	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured reconciliation event.
type Event struct {
	Type      EventType
	Phase     string // e.g. "relay.add", "node.delete"
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of reconciliation event.
type EventType string

const (
	// EventPhaseStarted indicates a recipe has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a recipe completed.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPlanEmpty indicates there is nothing to do.
	EventPlanEmpty EventType = "plan.empty"
	// EventResourcePlanned indicates a request a dry run would have sent.
	EventResourcePlanned EventType = "resource.planned"
	// EventResourceSkipped indicates an item excluded from the plan.
	EventResourceSkipped EventType = "resource.skipped"
	// EventManualAction asks the operator to do something by hand.
	EventManualAction EventType = "manual.action"
)

// LogObserver writes events to a logr.Logger. Skipped resources go to the
// debug level, manual actions are rendered as warnings.
type LogObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewLogObserver creates an observer logging to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Event implements Observer.
func (o *LogObserver) Event(event Event) {
	fields := make(map[string]string, len(o.contextFields)+len(event.Fields))
	maps.Copy(fields, o.contextFields)
	maps.Copy(fields, event.Fields)

	var kv []any
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}

	log := o.log
	if event.Phase != "" {
		log = log.WithName(event.Phase)
	}

	switch event.Type {
	case EventResourceSkipped:
		log.V(logging.LevelDebug).Info(event.Message, kv...)
	case EventManualAction:
		log.Info(event.Message, append(kv, logging.WarnKey, true)...)
	default:
		log.Info(event.Message, kv...)
	}
}

// WithFields implements Observer.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	maps.Copy(newFields, o.contextFields)
	maps.Copy(newFields, fields)
	return &LogObserver{
		log:           o.log,
		contextFields: newFields,
	}
}

func emit(o Observer, phase string, typ EventType, msg string) {
	o.Event(Event{Type: typ, Phase: phase, Message: msg, Timestamp: time.Now()})
}

func logPlanned(o Observer, phase, resource, msg string, fields map[string]string) {
	o.Event(Event{
		Type:      EventResourcePlanned,
		Phase:     phase,
		Resource:  resource,
		Message:   msg,
		Timestamp: time.Now(),
		Fields:    fields,
	})
}

func logSkipped(o Observer, phase, resource, reason string) {
	o.Event(Event{
		Type:      EventResourceSkipped,
		Phase:     phase,
		Resource:  resource,
		Message:   "skipped",
		Timestamp: time.Now(),
		Fields:    map[string]string{"reason": reason},
	})
}

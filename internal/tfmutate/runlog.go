package tfmutate

import (
	"time"
)

// Event is one structured entry recorded during a processing run.
type Event struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   map[string]any
}

// RunLog collects counters and structured events for one processing run. It
// replaces process-global state: a RunLog is created per run and threaded
// through the Coordinator, so callers can inspect what happened instead of
// scraping a shared sink.
//
// MaxErrors is advisory only. The counter keeps incrementing past it and
// nothing halts when it is reached; callers that want a hard budget must
// check OverBudget themselves.
type RunLog struct {
	MaxErrors int

	errorCount int
	events     []Event
}

// NewRunLog creates a RunLog with the given advisory error budget.
func NewRunLog(maxErrors int) *RunLog {
	return &RunLog{MaxErrors: maxErrors}
}

// Record appends an informational event. Attrs alternate key/value, in the
// manner of slog.
func (l *RunLog) Record(message string, attrs ...any) {
	l.append("info", message, attrs)
}

// RecordError appends an error event and increments the error counter.
func (l *RunLog) RecordError(message string, attrs ...any) {
	l.errorCount++
	l.append("error", message, attrs)
}

// ErrorCount returns how many error events were recorded.
func (l *RunLog) ErrorCount() int { return l.errorCount }

// OverBudget reports whether the advisory error budget has been exceeded.
func (l *RunLog) OverBudget() bool {
	return l.MaxErrors > 0 && l.errorCount > l.MaxErrors
}

// Events returns the recorded events in order.
func (l *RunLog) Events() []Event { return l.events }

func (l *RunLog) append(level, message string, attrs []any) {
	m := make(map[string]any, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok {
			m[k] = attrs[i+1]
		}
	}
	l.events = append(l.events, Event{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Attrs:   m,
	})
}

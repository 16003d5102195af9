// Package status carries user-facing progress events from the
// processing code to whatever surface is showing them, the TUI status
// bar or the batch command's log.
package status

import "log/slog"

// Kind classifies an event for icons and log levels.
type Kind int

const (
	KindLoading Kind = iota
	KindReady
	KindOCRStarted
	KindOCRDone
	KindSaved
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindReady:
		return "ready"
	case KindOCRStarted:
		return "ocr started"
	case KindOCRDone:
		return "ocr done"
	case KindSaved:
		return "saved"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one progress notification.
type Event struct {
	Kind    Kind
	Message string
	Err     error
}

// Reporter receives events. Implementations must be cheap; they run on
// the interactive loop.
type Reporter interface {
	Report(Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Report(Event) {}

// LogReporter writes events to a structured logger. The batch command
// uses it as its only surface.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter wraps l. A nil logger falls back to slog.Default.
func NewLogReporter(l *slog.Logger) *LogReporter {
	if l == nil {
		l = slog.Default()
	}
	return &LogReporter{logger: l}
}

func (r *LogReporter) Report(e Event) {
	if e.Kind == KindError {
		r.logger.Error(e.Message, "error", e.Err)
		return
	}
	r.logger.Info(e.Message, "kind", e.Kind.String())
}

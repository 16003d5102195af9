package tui

import (
	"fmt"

	"github.com/discoveraniket/ration-card-processor/internal/status"
)

// StatusBar shows the latest progress event at the bottom of the entry
// screen. It implements status.Reporter so the same events can drive
// the batch command's log instead.
type StatusBar struct {
	event status.Event
}

func NewStatusBar() *StatusBar {
	return &StatusBar{event: status.Event{Kind: status.KindReady, Message: "Ready"}}
}

// Report implements status.Reporter.
func (b *StatusBar) Report(e status.Event) {
	b.event = e
}

// Event returns the event currently on display.
func (b *StatusBar) Event() status.Event {
	return b.event
}

func (b *StatusBar) View(width int) string {
	icon := ""
	style := statusBarStyle
	switch b.event.Kind {
	case status.KindLoading:
		icon = "⏳ "
	case status.KindOCRStarted:
		icon = "🔍 "
	case status.KindOCRDone:
		icon = "✅ "
		style = statusBarStyle.Inherit(successStyle)
	case status.KindSaved:
		icon = "💾 "
		style = statusBarStyle.Inherit(successStyle)
	case status.KindError:
		icon = "❌ "
		style = statusBarStyle.Inherit(errorStyle)
	}

	msg := b.event.Message
	if b.event.Kind == status.KindError && b.event.Err != nil {
		if msg == "" {
			msg = b.event.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, b.event.Err)
		}
	}

	line := icon + msg
	if width > 0 {
		style = style.Width(width).MaxWidth(width)
	}
	return style.Render(line)
}

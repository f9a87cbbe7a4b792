package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one entry in the agent audit trail: who did what, when, with
// role-specific detail. The stream is observational only; nothing in the
// pipeline keys off it.
type Event struct {
	ID        string
	Timestamp time.Time
	Agent     string
	Action    string
	Detail    map[string]any
}

// Sink receives audit events.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(Event)

// Record executes f.
func (f SinkFunc) Record(e Event) {
	if f != nil {
		f(e)
	}
}

// Recorder stamps and forwards audit events for one agent. A nil Recorder
// or nil sink drops events silently so agents never need to guard logging.
type Recorder struct {
	agent string
	sink  Sink
	now   func() time.Time
}

// NewRecorder builds a recorder for the named agent.
func NewRecorder(agent string, sink Sink) *Recorder {
	return &Recorder{agent: agent, sink: sink, now: time.Now}
}

// WithClock overrides the event timestamp source (tests).
func (r *Recorder) WithClock(clock func() time.Time) *Recorder {
	if r != nil && clock != nil {
		r.now = clock
	}
	return r
}

// Action emits one audit event.
func (r *Recorder) Action(action string, detail map[string]any) {
	if r == nil || r.sink == nil {
		return
	}
	r.sink.Record(Event{
		ID:        uuid.NewString(),
		Timestamp: r.now().UTC(),
		Agent:     r.agent,
		Action:    action,
		Detail:    detail,
	})
}

// MemorySink collects events in order, for tests and the status TUI.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Record appends the event.
func (s *MemorySink) Record(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

// String renders a compact single-line form, used when events are mirrored
// into the logbook.
func (e Event) String() string {
	return fmt.Sprintf("%s %s %v", e.Agent, e.Action, e.Detail)
}

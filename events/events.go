// ABOUTME: Structured event log for seed runs
// ABOUTME: Event type, Recorder interface, and in-memory/fan-out/run-stamping recorders
package events

import (
	"sync"
	"time"
)

// Kind groups events by what produced them.
type Kind string

const (
	KindHTTP  Kind = "http"
	KindPhase Kind = "phase"
	KindItem  Kind = "item"
	KindWarn  Kind = "warn"
)

// Outcome classifies how an HTTP call or seed item ended.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeCreated   Outcome = "created"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeTolerated Outcome = "tolerated"
	OutcomeFailed    Outcome = "failed"
)

// Event is one entry in a run's log.
type Event struct {
	RunID    string
	Seq      int64
	Time     time.Time
	Kind     Kind
	Phase    string
	Entity   string // singular entity kind for item events, e.g. "client"
	Item     string
	Parent   string // "entity:key" of the record this item hangs off
	Outcome  Outcome
	Message  string
	EntityID string

	// HTTP fields. Request is the access log's monotonic call counter.
	Request      int64
	Method       string
	Path         string
	Status       int
	Duration     time.Duration
	RequestBody  []byte
	ResponseBody []byte
}

// Recorder receives events. Implementations must not fail the caller:
// anything that can go wrong while recording is handled internally.
type Recorder interface {
	Record(e Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(e Event)

func (f RecorderFunc) Record(e Event) { f(e) }

// Discard drops every event.
var Discard Recorder = RecorderFunc(func(Event) {})

// Multi fans each event out to every recorder in order.
type Multi []Recorder

func (m Multi) Record(e Event) {
	for _, r := range m {
		if r != nil {
			r.Record(e)
		}
	}
}

// Memory keeps events in memory. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// OfKind returns recorded events of a single kind.
func (m *Memory) OfKind(kind Kind) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Run stamps events with a run id, a timestamp, and a run-wide sequence
// number before passing them on.
type Run struct {
	id   string
	next Recorder
	now  func() time.Time

	mu  sync.Mutex
	seq int64
}

func NewRun(id string, next Recorder) *Run {
	if next == nil {
		next = Discard
	}
	return &Run{id: id, next: next, now: time.Now}
}

func (r *Run) ID() string { return r.id }

func (r *Run) Record(e Event) {
	r.mu.Lock()
	r.seq++
	e.Seq = r.seq
	r.mu.Unlock()

	e.RunID = r.id
	if e.Time.IsZero() {
		e.Time = r.now()
	}
	r.next.Record(e)
}

// ABOUTME: Event table operations and a store-backed events.Recorder
// ABOUTME: Persists the structured run log so past runs can be reported and browsed
package db

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/salesseed/events"
)

func InsertEvent(db *sql.DB, e events.Event) error {
	var detail string
	if e.Kind == events.KindHTTP && e.Outcome != events.OutcomeOK {
		detail = string(e.ResponseBody)
	}

	_, err := db.Exec(`
		INSERT INTO events (run_id, seq, ts, kind, phase, entity, item, parent, outcome,
			request, status_code, method, path, entity_id, duration_ms, message, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Seq, e.Time, string(e.Kind), e.Phase, e.Entity, e.Item, e.Parent, string(e.Outcome),
		e.Request, e.Status, e.Method, e.Path, e.EntityID, e.Duration.Milliseconds(), e.Message, detail)

	return err
}

// ListEvents returns a run's events in sequence order. Empty kinds means all.
func ListEvents(db *sql.DB, runID string, kinds ...events.Kind) ([]events.Event, error) {
	query := `
		SELECT run_id, seq, ts, kind, phase, entity, item, parent, outcome,
			request, status_code, method, path, entity_id, duration_ms, message, detail
		FROM events WHERE run_id = ?`
	args := []any{runID}
	if len(kinds) > 0 {
		query += ` AND kind IN (?` + strings.Repeat(", ?", len(kinds)-1) + `)`
		for _, k := range kinds {
			args = append(args, string(k))
		}
	}
	query += ` ORDER BY seq`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var kind, outcome, detail string
		var durationMS int64
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Time, &kind, &e.Phase, &e.Entity, &e.Item, &e.Parent, &outcome,
			&e.Request, &e.Status, &e.Method, &e.Path, &e.EntityID, &durationMS, &e.Message, &detail); err != nil {
			return nil, err
		}
		e.Kind = events.Kind(kind)
		e.Outcome = events.Outcome(outcome)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if detail != "" {
			e.ResponseBody = []byte(detail)
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

// Recorder writes events to the store. Write failures never reach the
// pipeline; they are counted and the first one is kept.
type Recorder struct {
	db *sql.DB

	mu       sync.Mutex
	failures int
	firstErr error
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(e events.Event) {
	if err := InsertEvent(r.db, e); err != nil {
		r.mu.Lock()
		r.failures++
		if r.firstErr == nil {
			r.firstErr = err
		}
		r.mu.Unlock()
	}
}

// Failures reports how many events could not be stored and the first error.
func (r *Recorder) Failures() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures, r.firstErr
}

// ABOUTME: Access logger for outbound API calls
// ABOUTME: Numbers every call and turns it into an http event, classifying 2xx as success
package api

import (
	"sync/atomic"
	"time"

	"github.com/harperreed/salesseed/events"
)

// Call describes one finished (or failed) HTTP attempt.
type Call struct {
	Method       string
	Path         string
	Status       int // 0 when no response was received
	Duration     time.Duration
	RequestBody  []byte
	ResponseBody []byte
	Err          error
}

// Success reports whether the status is in [200,300).
func (c Call) Success() bool {
	return c.Status >= 200 && c.Status < 300
}

// AccessLog records calls to an events.Recorder. It never fails.
type AccessLog struct {
	rec     events.Recorder
	counter atomic.Int64
}

func NewAccessLog(rec events.Recorder) *AccessLog {
	if rec == nil {
		rec = events.Discard
	}
	return &AccessLog{rec: rec}
}

// Log records one call and returns its request number.
func (l *AccessLog) Log(c Call) int64 {
	n := l.counter.Add(1)

	e := events.Event{
		Kind:         events.KindHTTP,
		Request:      n,
		Method:       c.Method,
		Path:         c.Path,
		Status:       c.Status,
		Duration:     c.Duration,
		RequestBody:  c.RequestBody,
		ResponseBody: c.ResponseBody,
		Outcome:      events.OutcomeOK,
	}
	if !c.Success() {
		e.Outcome = events.OutcomeFailed
	}
	if c.Err != nil {
		e.Outcome = events.OutcomeFailed
		e.Message = c.Err.Error()
	}
	l.rec.Record(e)
	return n
}

// Warn records a warning-level line.
func (l *AccessLog) Warn(msg string) {
	l.rec.Record(events.Event{Kind: events.KindWarn, Outcome: events.OutcomeTolerated, Message: msg})
}

// Count returns the number of calls logged so far.
func (l *AccessLog) Count() int64 {
	return l.counter.Load()
}

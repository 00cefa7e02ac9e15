// ABOUTME: Tests for event recorders and console rendering
// ABOUTME: Covers run stamping, fan-out, memory filtering, and access-log formatting
package events

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStampsEvents(t *testing.T) {
	mem := NewMemory()
	run := NewRun("01HRUN", mem)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	run.now = func() time.Time { return fixed }

	run.Record(Event{Kind: KindPhase, Phase: "authenticate"})
	run.Record(Event{Kind: KindItem, Item: "client acme"})

	got := mem.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "01HRUN", got[0].RunID)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, fixed, got[1].Time)
}

func TestRunKeepsExplicitTime(t *testing.T) {
	mem := NewMemory()
	run := NewRun("r", mem)
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	run.Record(Event{Time: at})
	assert.Equal(t, at, mem.Events()[0].Time)
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	Multi{a, nil, b}.Record(Event{Kind: KindHTTP})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestMemoryOfKind(t *testing.T) {
	mem := NewMemory()
	mem.Record(Event{Kind: KindHTTP})
	mem.Record(Event{Kind: KindItem})
	mem.Record(Event{Kind: KindHTTP})

	assert.Len(t, mem.OfKind(KindHTTP), 2)
	assert.Len(t, mem.OfKind(KindPhase), 0)
}

func TestParseColorMode(t *testing.T) {
	mode, err := ParseColorMode("NEVER")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, mode)

	mode, err = ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, mode)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestConsoleAccessLogLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ColorNever, false)

	c.Record(Event{
		Kind:         KindHTTP,
		Request:      7,
		Time:         time.Date(2026, 1, 1, 12, 1, 2, 0, time.UTC),
		Method:       "POST",
		Path:         "/clients",
		Status:       201,
		Outcome:      OutcomeOK,
		Duration:     38 * time.Millisecond,
		ResponseBody: []byte(`{"id":1}`),
	})

	out := buf.String()
	assert.Contains(t, out, "[#0007 12:01:02]")
	assert.Contains(t, out, "POST /clients → 201")
	assert.Contains(t, out, "(38ms)")
	assert.NotContains(t, out, `"id"`, "successful responses are not dumped")
}

func TestConsoleFailureDumpsResponseBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ColorNever, false)

	c.Record(Event{
		Kind:         KindHTTP,
		Request:      1,
		Method:       "POST",
		Path:         "/auth/login",
		Status:       500,
		Outcome:      OutcomeFailed,
		ResponseBody: []byte(`{"error":"boom"}`),
	})

	assert.Contains(t, buf.String(), `"error": "boom"`)
}

func TestConsoleVerboseShowsRequestBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ColorNever, true)

	c.Record(Event{Kind: KindHTTP, Method: "POST", Path: "/clients", Status: 201, Outcome: OutcomeOK, RequestBody: []byte(`{"name":"Acme"}`)})

	assert.Contains(t, buf.String(), `"name": "Acme"`)
}

func TestConsoleItemMarkers(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, ColorNever, false)

	c.Record(Event{Kind: KindItem, Entity: "client", Item: "acme", Outcome: OutcomeCreated, EntityID: "17"})
	c.Record(Event{Kind: KindItem, Entity: "contact", Item: "jane", Outcome: OutcomeSkipped, Message: "client acme was not created"})

	out := buf.String()
	assert.Contains(t, out, "✓ client acme created (id 17)")
	assert.Contains(t, out, "⚠ contact jane skipped: client acme was not created")
}

func TestPrettyJSONFallsBack(t *testing.T) {
	assert.Equal(t, "not json", PrettyJSON([]byte("not json \n")))
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJSON([]byte(`{"a":1}`)))
}

// ABOUTME: Tests for the run store
// ABOUTME: Covers migrations, run lifecycle, event round trips and performance rows
package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "runs.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	for _, table := range []string{"runs", "events", "performance"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenDatabaseTwiceIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, CreateRun(db, &models.Run{ID: "r1", BaseURL: "http://x"}))
	db.Close()

	db, err = OpenDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	run, err := GetRun(db, "r1")
	require.NoError(t, err)
	require.NotNil(t, run)
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenDatabase(filepath.Join(blocker, "runs.db"))
	assert.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	db := setupTestDB(t)
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	run := &models.Run{ID: "01RUN", BaseURL: "http://api.test", StartedAt: started}
	require.NoError(t, CreateRun(db, run))
	assert.Equal(t, models.RunRunning, run.Status)

	got, err := GetRun(db, "01RUN")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.FinishedAt)
	assert.Equal(t, models.RunRunning, got.Status)

	require.NoError(t, FinishRun(db, "01RUN", started.Add(3*time.Second), 42, errors.New("clients: boom")))

	got, err = GetRun(db, "01RUN")
	require.NoError(t, err)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, models.RunFailed, got.Status)
	assert.Equal(t, "clients: boom", got.Error)
	assert.Equal(t, int64(42), got.Requests)
	assert.Equal(t, 3*time.Second, got.Duration())
}

func TestFinishUnknownRun(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, FinishRun(db, "missing", time.Now(), 0, nil))
}

func TestGetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	run, err := GetRun(db, "missing")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestListRunsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, CreateRun(db, &models.Run{ID: id, BaseURL: "u", StartedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	runs, err := ListRuns(db, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestEventsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, CreateRun(db, &models.Run{ID: "r", BaseURL: "u"}))

	rec := NewRecorder(db)
	ts := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rec.Record(events.Event{RunID: "r", Seq: 1, Time: ts, Kind: events.KindPhase, Phase: "clients", Message: "3/8 Creating clients"})
	rec.Record(events.Event{
		RunID: "r", Seq: 2, Time: ts, Kind: events.KindHTTP, Method: "POST", Path: "/clients",
		Status: 409, Outcome: events.OutcomeFailed, Duration: 38 * time.Millisecond,
		ResponseBody: []byte(`{"message":"exists"}`),
	})
	rec.Record(events.Event{
		RunID: "r", Seq: 3, Time: ts, Kind: events.KindItem, Phase: "contacts", Entity: "contact",
		Item: "ann", Parent: "client:acme", Outcome: events.OutcomeCreated, EntityID: "c-1",
	})

	n, err := rec.Failures()
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := ListEvents(db, "r")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, events.KindPhase, all[0].Kind)
	assert.Equal(t, 38*time.Millisecond, all[1].Duration)
	assert.Equal(t, `{"message":"exists"}`, string(all[1].ResponseBody))
	assert.Equal(t, "client:acme", all[2].Parent)

	items, err := ListEvents(db, "r", events.KindItem, events.KindWarn)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c-1", items[0].EntityID)
	assert.Equal(t, "contact", items[0].Entity)
}

func TestRecorderCountsFailures(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db)

	// No run row: the foreign key rejects the insert.
	rec.Record(events.Event{RunID: "ghost", Seq: 1, Time: time.Now(), Kind: events.KindWarn})
	rec.Record(events.Event{RunID: "ghost", Seq: 2, Time: time.Now(), Kind: events.KindWarn})

	n, err := rec.Failures()
	assert.Equal(t, 2, n)
	assert.Error(t, err)
}

func TestPerformanceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, CreateRun(db, &models.Run{ID: "r", BaseURL: "u"}))

	rows := []report.PerformanceRow{
		{Key: "sarah", Name: "Sarah Chen", Role: "Manager", Generated: 2, Completed: 2},
		{Key: "marcus", Name: "Marcus Johnson", Role: "SalesRep", Generated: 3, Completed: 1},
	}
	require.NoError(t, SavePerformance(db, "r", rows))
	require.NoError(t, SavePerformance(db, "r", rows))

	got, err := GetPerformance(db, "r")
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestSchemaVersionAndRollback(t *testing.T) {
	db := setupTestDB(t)

	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, Rollback(db))
	version, err = SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, Migrate(db))
	version, err = SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

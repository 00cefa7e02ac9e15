// ABOUTME: Tests for the seed, validate, runs, report and graph commands
// ABOUTME: Runs against the fake API and a temp run store
package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesseed/api"
	"github.com/harperreed/salesseed/apitest"
	"github.com/harperreed/salesseed/config"
	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func seedAgainst(t *testing.T, database *sql.DB, url string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := SeedCommand(context.Background(), database, config.Default(), []string{"--base-url", url, "--color", "never"}, &out)
	return out.String(), err
}

func onlyRun(t *testing.T, database *sql.DB) *models.Run {
	t.Helper()
	runs, err := db.ListRuns(database, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0]
}

func TestSeedCommandStoresRun(t *testing.T) {
	_, url := apitest.Start(t)
	database := setupTestDB(t)

	out, err := seedAgainst(t, database, url)
	require.NoError(t, err)

	assert.Contains(t, out, "━━ ")
	assert.Contains(t, out, "POST /clients → 201")
	assert.Contains(t, out, "SEED RUN")
	assert.Contains(t, out, "PIPELINE OVERVIEW")
	assert.Contains(t, out, "PERFORMANCE")
	assert.Contains(t, out, "60%")

	run := onlyRun(t, database)
	assert.Equal(t, models.RunSucceeded, run.Status)
	assert.Equal(t, url, run.BaseURL)
	assert.NotNil(t, run.FinishedAt)
	assert.Positive(t, run.Requests)

	httpEvents, err := db.ListEvents(database, run.ID, events.KindHTTP)
	require.NoError(t, err)
	assert.Len(t, httpEvents, int(run.Requests))

	perf, err := db.GetPerformance(database, run.ID)
	require.NoError(t, err)
	assert.Len(t, perf, 4)
}

func TestSeedCommandFatalErrorIsStored(t *testing.T) {
	srv, url := apitest.Start(t)
	srv.Fail(http.MethodPost, "/opportunities", http.StatusInternalServerError)
	database := setupTestDB(t)

	out, err := seedAgainst(t, database, url)
	require.Error(t, err)
	status, ok := api.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, out, "Status:   failed")

	run := onlyRun(t, database)
	assert.Equal(t, models.RunFailed, run.Status)
	assert.Contains(t, run.Error, "opportunities")
}

func TestSeedCommandWithoutStore(t *testing.T) {
	_, url := apitest.Start(t)

	out, err := seedAgainst(t, nil, url)
	require.NoError(t, err)
	assert.Contains(t, out, "PERFORMANCE")
}

func TestSeedCommandRejectsBadDataBeforeNetwork(t *testing.T) {
	srv, url := apitest.Start(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  - {key: x, client: nowhere, first_name: X}\n"), 0644))

	var out bytes.Buffer
	err := SeedCommand(context.Background(), nil, config.Default(), []string{"--base-url", url, "--data", path}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid seed data")
	assert.Empty(t, srv.Calls())
}

func TestSeedCommandRejectsBadColor(t *testing.T) {
	err := SeedCommand(context.Background(), nil, config.Default(), []string{"--color", "rainbow"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid color mode")
}

func TestReportAndRunsCommands(t *testing.T) {
	_, url := apitest.Start(t)
	database := setupTestDB(t)
	_, err := seedAgainst(t, database, url)
	require.NoError(t, err)
	run := onlyRun(t, database)

	var runsOut bytes.Buffer
	require.NoError(t, RunsCommand(database, nil, &runsOut))
	assert.Contains(t, runsOut.String(), run.ID)
	assert.Contains(t, runsOut.String(), "succeeded")

	var reportOut bytes.Buffer
	require.NoError(t, ReportCommand(database, []string{run.ID}, &reportOut))
	text := reportOut.String()
	assert.Contains(t, text, "SEED RUN "+run.ID)
	assert.Contains(t, text, "opportunities")
	assert.Contains(t, text, "Sarah Chen")

	assert.ErrorContains(t, ReportCommand(database, []string{"missing"}, &bytes.Buffer{}), "run not found")
	assert.ErrorContains(t, ReportCommand(database, nil, &bytes.Buffer{}), "run ID required")
}

func TestRunsCommandEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunsCommand(setupTestDB(t), nil, &out))
	assert.Equal(t, "No runs found\n", out.String())
}

func TestGraphCommandWritesFile(t *testing.T) {
	_, url := apitest.Start(t)
	database := setupTestDB(t)
	_, err := seedAgainst(t, database, url)
	require.NoError(t, err)
	run := onlyRun(t, database)

	path := filepath.Join(t.TempDir(), "run.dot")
	require.NoError(t, GraphCommand(database, []string{"--output", path, run.ID}, &bytes.Buffer{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "client_northwind")
	assert.Contains(t, string(data), "proposal_lumen_pos_final")

	assert.ErrorContains(t, GraphCommand(database, []string{"nope"}, &bytes.Buffer{}), "run not found")
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ValidateCommand(config.Default(), nil, &out))

	text := out.String()
	assert.Contains(t, text, "embedded demo data is valid")
	assert.Contains(t, text, "proposals      4 (7 line items)")
	assert.Contains(t, text, "activities     10 (6 to complete)")
}

func TestFormatError(t *testing.T) {
	err := fmt.Errorf("clients: client acme: %w", &api.RequestError{
		Method: "POST", Path: "/clients", Status: 500,
		Body: json.RawMessage(`{"message":"boom"}`),
	})

	text := FormatError(err)
	assert.True(t, strings.HasPrefix(text, "Error: clients: client acme: POST /clients failed with status 500"))
	assert.Contains(t, text, "status: 500")
	assert.Contains(t, text, `"message": "boom"`)

	assert.Equal(t, "Error: plain\n", FormatError(fmt.Errorf("plain")))
}

func TestPhaseCountsFollowPipelineOrder(t *testing.T) {
	counts := phaseCounts([]events.Event{
		{Phase: "contacts", Outcome: events.OutcomeSkipped},
		{Phase: "clients", Outcome: events.OutcomeCreated},
		{Phase: "clients", Outcome: events.OutcomeFailed},
	})

	require.Len(t, counts, 2)
	assert.Equal(t, "clients", counts[0].Phase)
	assert.Equal(t, 1, counts[0].Created)
	assert.Equal(t, 1, counts[0].Failed)
	assert.Equal(t, 1, counts[1].Skipped)
}

// ABOUTME: Run table operations
// ABOUTME: Creates, finishes, lists and fetches stored seed runs
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/salesseed/models"
)

func CreateRun(db *sql.DB, run *models.Run) error {
	if run.Status == "" {
		run.Status = models.RunRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO runs (id, started_at, base_url, status)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.BaseURL, run.Status)

	return err
}

// FinishRun records the final status. runErr may be nil.
func FinishRun(db *sql.DB, id string, finished time.Time, requests int64, runErr error) error {
	status, msg := models.RunSucceeded, ""
	if runErr != nil {
		status, msg = models.RunFailed, runErr.Error()
	}

	res, err := db.Exec(`
		UPDATE runs
		SET finished_at = ?, status = ?, error = ?, requests = ?
		WHERE id = ?
	`, finished, status, msg, requests, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, base_url, status, error, requests`

func scanRun(scan func(dest ...any) error) (*models.Run, error) {
	var run models.Run
	var finished sql.NullTime
	if err := scan(&run.ID, &run.StartedAt, &finished, &run.BaseURL, &run.Status, &run.Error, &run.Requests); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func GetRun(db *sql.DB, id string) (*models.Run, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the newest runs first.
func ListRuns(db *sql.DB, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

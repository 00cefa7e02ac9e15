// ABOUTME: Performance table operations
// ABOUTME: Stores and reloads per-staff activity tallies for a run
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/salesseed/report"
)

// SavePerformance replaces the stored rows for runID.
func SavePerformance(db *sql.DB, runID string, rows []report.PerformanceRow) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM performance WHERE run_id = ?`, runID); err != nil {
		return err
	}
	for i, row := range rows {
		if _, err := tx.Exec(`
			INSERT INTO performance (run_id, staff_key, name, role, generated, completed, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, row.Key, row.Name, row.Role, row.Generated, row.Completed, i); err != nil {
			return fmt.Errorf("failed to insert %s: %w", row.Key, err)
		}
	}

	return tx.Commit()
}

func GetPerformance(db *sql.DB, runID string) ([]report.PerformanceRow, error) {
	rows, err := db.Query(`
		SELECT staff_key, name, role, generated, completed
		FROM performance WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.PerformanceRow
	for rows.Next() {
		var r report.PerformanceRow
		if err := rows.Scan(&r.Key, &r.Name, &r.Role, &r.Generated, &r.Completed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// ABOUTME: Maintenance utility for the run history store schema.
// ABOUTME: Reports, applies or rolls back goose migrations with an optional backup.

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/salesseed/db"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	dbPath := flag.String("db", db.DefaultPath(), "Path to run store database")
	dryRun := flag.Bool("dry-run", false, "Report the schema version without changing anything")
	backup := flag.Bool("backup", true, "Create backup before changing the schema")
	down := flag.Bool("down", false, "Roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	if err := migrate(*dbPath, *dryRun, *backup, *down); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

func migrate(dbPath string, dryRun, createBackup, down bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		log.Printf("Creating backup: %s", backupPath)

		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}

		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	before, err := db.SchemaVersion(database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("Current schema version: %d", before)

	if dryRun {
		if down {
			log.Printf("[DRY RUN] Would roll back version %d", before)
		} else {
			log.Printf("[DRY RUN] Would apply any migrations newer than %d", before)
		}
		return nil
	}

	if down {
		err = db.Rollback(database)
	} else {
		err = db.Migrate(database)
	}
	if err != nil {
		return err
	}

	after, err := db.SchemaVersion(database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("Schema version now: %d", after)
	return nil
}

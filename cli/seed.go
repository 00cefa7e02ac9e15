// ABOUTME: Seed CLI command
// ABOUTME: Loads config and data, runs the provisioning pipeline, stores and prints the run report
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/term"

	"github.com/harperreed/salesseed/api"
	"github.com/harperreed/salesseed/config"
	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/report"
	"github.com/harperreed/salesseed/seed"
	"github.com/harperreed/salesseed/seeddata"
)

// SeedCommand runs the pipeline. database may be nil when storage is off.
func SeedCommand(ctx context.Context, database *sql.DB, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	dataFile := fs.String("data", cfg.DataFile, "Seed data YAML file (default: embedded demo data)")
	baseURL := fs.String("base-url", cfg.BaseURL, "API base URL (env SALESSEED_API_URL)")
	timeout := fs.Duration("timeout", cfg.Timeout(), "Per-request timeout (0 = none)")
	promptPassword := fs.Bool("prompt-password", false, "Read the admin password from the terminal")
	color := fs.String("color", cfg.Color, "Color output: auto, always, never")
	verbose := fs.Bool("verbose", false, "Show request bodies in the access log")
	_ = fs.Parse(args)

	cfg.DataFile = *dataFile
	cfg.BaseURL = *baseURL
	cfg.RequestTimeout = config.Duration(*timeout)
	if err := cfg.Validate(); err != nil {
		return err
	}

	mode, err := events.ParseColorMode(*color)
	if err != nil {
		return err
	}
	if mode == events.ColorAuto && !isTerminal(out) {
		mode = events.ColorNever
	}

	if *promptPassword {
		pw, err := readPassword(fmt.Sprintf("Password for %s: ", cfg.AdminEmail))
		if err != nil {
			return err
		}
		cfg.AdminPassword = pw
	}

	// Validate the dataset before touching the network.
	ds, err := seeddata.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("invalid seed data: %w", err)
	}

	return runSeed(ctx, database, cfg, ds, events.NewConsole(out, mode, *verbose), out)
}

// runSeed wires the pipeline to the console and the store.
func runSeed(ctx context.Context, database *sql.DB, cfg *config.Config, ds *models.Dataset, console events.Recorder, out io.Writer) error {
	runID := ulid.Make().String()
	started := time.Now()

	var store *db.Recorder
	recorders := events.Multi{console}
	if database != nil {
		if err := db.CreateRun(database, &models.Run{ID: runID, BaseURL: cfg.BaseURL, StartedAt: started}); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		store = db.NewRecorder(database)
		recorders = append(recorders, store)
	}
	run := events.NewRun(runID, recorders)

	client := api.NewClient(cfg.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithAccessLog(api.NewAccessLog(run)),
	)
	pipeline := seed.New(client, seed.Admin{
		Email:      cfg.AdminEmail,
		Password:   cfg.AdminPassword,
		FirstName:  cfg.AdminFirstName,
		LastName:   cfg.AdminLastName,
		TenantName: cfg.TenantName,
	}, ds, seed.WithRecorder(run), seed.WithRunID(runID))

	rep, runErr := pipeline.Run(ctx)

	if database != nil {
		persistRun(database, store, rep, runErr)
	}

	summary := report.Summary{
		RunID:    rep.RunID,
		BaseURL:  cfg.BaseURL,
		Status:   models.RunSucceeded,
		Started:  rep.Started,
		Finished: rep.Finished,
		Calls:    int(rep.Requests),
		Phases:   rep.PhaseCounts(),
	}
	if runErr != nil {
		summary.Status = models.RunFailed
		summary.Error = runErr.Error()
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, report.RenderSummary(summary))
	if overview := report.RenderPipeline(rep.Opportunities(ds)); overview != "" {
		fmt.Fprintln(out, overview)
	}
	fmt.Fprint(out, report.RenderPerformance(rep.Performance))

	return runErr
}

// persistRun finishes the stored run. Store problems are logged, never fatal.
func persistRun(database *sql.DB, store *db.Recorder, rep *seed.Report, runErr error) {
	if err := db.FinishRun(database, rep.RunID, rep.Finished, rep.Requests, runErr); err != nil {
		log.Printf("Warning: failed to finish run %s: %v", rep.RunID, err)
	}
	if err := db.SavePerformance(database, rep.RunID, rep.Performance); err != nil {
		log.Printf("Warning: failed to save performance for run %s: %v", rep.RunID, err)
	}
	if n, err := store.Failures(); n > 0 {
		log.Printf("Warning: %d events were not stored: %v", n, err)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--prompt-password requires an interactive terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(pw) == 0 {
		return "", errors.New("empty password")
	}
	return string(pw), nil
}

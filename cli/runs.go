// ABOUTME: Run history CLI commands
// ABOUTME: Lists stored runs and re-renders the report of a single run
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/report"
	"github.com/harperreed/salesseed/seed"
)

// RunsCommand lists stored runs, newest first.
func RunsCommand(database *sql.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum runs to show")
	_ = fs.Parse(args)

	runs, err := db.ListRuns(database, *limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tREQUESTS\tDURATION\tAPI")
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status,
			run.Requests,
			duration,
			run.BaseURL,
		)
	}
	return w.Flush()
}

// ReportCommand prints the summary and performance table of a stored run.
func ReportCommand(database *sql.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("run ID required")
	}
	runID := fs.Arg(0)

	run, err := db.GetRun(database, runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	items, err := db.ListEvents(database, runID, events.KindItem)
	if err != nil {
		return fmt.Errorf("failed to load run events: %w", err)
	}
	perf, err := db.GetPerformance(database, runID)
	if err != nil {
		return fmt.Errorf("failed to load performance: %w", err)
	}

	summary := report.Summary{
		RunID:   run.ID,
		BaseURL: run.BaseURL,
		Status:  run.Status,
		Started: run.StartedAt,
		Calls:   int(run.Requests),
		Error:   run.Error,
		Phases:  phaseCounts(items),
	}
	if run.FinishedAt != nil {
		summary.Finished = *run.FinishedAt
	}

	fmt.Fprint(out, report.RenderSummary(summary))
	fmt.Fprint(out, report.RenderPerformance(perf))
	return nil
}

// phaseCounts rebuilds per-phase outcome counts from stored item events.
func phaseCounts(items []events.Event) []report.PhaseCount {
	byPhase := make(map[string]*report.PhaseCount)
	for _, e := range items {
		pc, ok := byPhase[e.Phase]
		if !ok {
			pc = &report.PhaseCount{Phase: e.Phase}
			byPhase[e.Phase] = pc
		}
		switch e.Outcome {
		case seed.Created, seed.Fetched:
			pc.Created++
		case seed.Skipped:
			pc.Skipped++
		case seed.Failed:
			pc.Failed++
		}
	}

	var out []report.PhaseCount
	for _, phase := range seed.Phases() {
		if pc, ok := byPhase[phase]; ok {
			out = append(out, *pc)
		}
	}
	return out
}

// ABOUTME: Graph CLI command
// ABOUTME: Writes a Graphviz rendering of the records a stored run created
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/viz"
)

// GraphCommand renders a run's created records as XDOT.
func GraphCommand(database *sql.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
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

	dot, err := viz.NewGraphGenerator(database).GenerateRunGraph(runID)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Fprintln(out, dot)
	return nil
}

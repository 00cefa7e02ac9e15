// ABOUTME: Validate CLI command
// ABOUTME: Checks a seed dataset offline and prints its record counts
package cli

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harperreed/salesseed/config"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/seeddata"
)

// ValidateCommand validates seed data without any network calls.
func ValidateCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	dataFile := fs.String("data", cfg.DataFile, "Seed data YAML file (default: embedded demo data)")
	_ = fs.Parse(args)

	ds, err := seeddata.Load(*dataFile)
	if err != nil {
		return fmt.Errorf("invalid seed data: %w", err)
	}

	source := *dataFile
	if source == "" {
		source = "embedded demo data"
	}
	fmt.Fprintf(out, "✓ %s is valid\n\n", source)

	c := seeddata.Count(ds)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD\tCOUNT")
	fmt.Fprintf(w, "staff\t%d\n", c.Staff)
	fmt.Fprintf(w, "clients\t%d\n", c.Clients)
	fmt.Fprintf(w, "contacts\t%d\n", c.Contacts)
	fmt.Fprintf(w, "opportunities\t%d\n", c.Opportunities)
	fmt.Fprintf(w, "proposals\t%d (%d line items)\n", c.Proposals, c.LineItems)
	fmt.Fprintf(w, "activities\t%d (%d to complete)\n", c.Activities, completions(ds))
	return w.Flush()
}

func completions(ds *models.Dataset) int {
	n := 0
	for _, a := range ds.Activities {
		if a.Complete {
			n++
		}
	}
	return n
}

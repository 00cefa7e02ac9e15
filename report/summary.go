// ABOUTME: Run summary rendering with per-phase outcome counts
// ABOUTME: Produces the created/skipped/failed table shown after a seed run
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// PhaseCount holds item outcome counts for one pipeline phase.
type PhaseCount struct {
	Phase   string
	Created int
	Skipped int
	Failed  int
}

// Summary is the header information for a finished or stored run.
type Summary struct {
	RunID    string
	BaseURL  string
	Status   string
	Started  time.Time
	Finished time.Time
	Calls    int
	Error    string
	Phases   []PhaseCount
}

// RenderSummary renders run metadata followed by the phase table.
func RenderSummary(s Summary) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString(fmt.Sprintf("  SEED RUN %s\n", s.RunID))
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if s.BaseURL != "" {
		out.WriteString(fmt.Sprintf("  API:      %s\n", s.BaseURL))
	}
	if s.Status != "" {
		out.WriteString(fmt.Sprintf("  Status:   %s\n", s.Status))
	}
	if !s.Started.IsZero() {
		out.WriteString(fmt.Sprintf("  Started:  %s\n", s.Started.Format("2006-01-02 15:04:05")))
	}
	if !s.Finished.IsZero() && !s.Started.IsZero() {
		out.WriteString(fmt.Sprintf("  Duration: %s\n", s.Finished.Sub(s.Started).Round(time.Millisecond)))
	}
	if s.Calls > 0 {
		out.WriteString(fmt.Sprintf("  Requests: %d\n", s.Calls))
	}
	if s.Error != "" {
		out.WriteString(fmt.Sprintf("  Error:    %s\n", s.Error))
	}
	out.WriteString("\n")

	if len(s.Phases) == 0 {
		return out.String()
	}

	rows := make([][]string, 0, len(s.Phases))
	for _, p := range s.Phases {
		rows = append(rows, []string{
			p.Phase,
			strconv.Itoa(p.Created),
			strconv.Itoa(p.Skipped),
			strconv.Itoa(p.Failed),
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PHASE", "CREATED", "SKIPPED", "FAILED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			if col > 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})

	out.WriteString(t.String())
	out.WriteString("\n")
	return out.String()
}

// ABOUTME: Per-staff activity performance aggregation and table rendering
// ABOUTME: Tallies generated/completed activities and renders completion rates with totals
package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// PerformanceRow is one staff member's activity counts.
type PerformanceRow struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Generated   int      `json:"generated"`
	Completed   int      `json:"completed"`
	ActivityIDs []string `json:"activity_ids,omitempty"`
}

// Percentage is Completed/Generated rounded to a whole percent, 0 when
// nothing was generated.
func (r PerformanceRow) Percentage() int {
	if r.Generated == 0 {
		return 0
	}
	return int(math.Round(float64(r.Completed) * 100 / float64(r.Generated)))
}

// Tally accumulates rows in first-seen order.
type Tally struct {
	order []string
	rows  map[string]*PerformanceRow
}

func NewTally() *Tally {
	return &Tally{rows: make(map[string]*PerformanceRow)}
}

// Ensure adds a row for key if it is not present yet.
func (t *Tally) Ensure(key, name, role string) {
	if _, ok := t.rows[key]; ok {
		return
	}
	t.order = append(t.order, key)
	t.rows[key] = &PerformanceRow{Key: key, Name: name, Role: role}
}

// Generated counts a created activity against key.
func (t *Tally) Generated(key, activityID string) {
	if row, ok := t.rows[key]; ok {
		row.Generated++
		row.ActivityIDs = append(row.ActivityIDs, activityID)
	}
}

// Completed counts a completed activity against key.
func (t *Tally) Completed(key string) {
	if row, ok := t.rows[key]; ok {
		row.Completed++
	}
}

// Rows returns copies of all rows.
func (t *Tally) Rows() []PerformanceRow {
	out := make([]PerformanceRow, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, *t.rows[k])
	}
	return out
}

// Totals sums generated and completed across rows.
func Totals(rows []PerformanceRow) PerformanceRow {
	total := PerformanceRow{Key: "total", Name: "TOTAL"}
	for _, r := range rows {
		total.Generated += r.Generated
		total.Completed += r.Completed
	}
	return total
}

// RenderPerformance renders rows plus a totals line as an aligned table.
func RenderPerformance(rows []PerformanceRow) string {
	if len(rows) == 0 {
		return "No activity performance recorded\n"
	}

	data := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		data = append(data, performanceCells(r))
	}
	total := Totals(rows)
	data = append(data, performanceCells(total))
	totalRow := len(data) - 1

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	numeric := cell.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STAFF", "ROLE", "GENERATED", "COMPLETED", "RATE").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				return header
			case col >= 2:
				s = numeric
			default:
				s = cell
			}
			if row == totalRow {
				s = s.Bold(true)
			}
			return s
		})

	return "PERFORMANCE\n" + t.String() + "\n"
}

func performanceCells(r PerformanceRow) []string {
	return []string{
		r.Name,
		r.Role,
		strconv.Itoa(r.Generated),
		strconv.Itoa(r.Completed),
		fmt.Sprintf("%d%%", r.Percentage()),
	}
}

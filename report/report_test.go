// ABOUTME: Tests for performance tallies and report rendering
// ABOUTME: Covers rounding, totals, table output and stage bars
package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name      string
		generated int
		completed int
		want      int
	}{
		{"nothing generated", 0, 0, 0},
		{"seven of ten", 10, 7, 70},
		{"rounds up", 3, 2, 67},
		{"rounds down", 3, 1, 33},
		{"all done", 4, 4, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := PerformanceRow{Generated: tt.generated, Completed: tt.completed}
			assert.Equal(t, tt.want, row.Percentage())
		})
	}
}

func TestTallyKeepsOrderAndIgnoresUnknown(t *testing.T) {
	tally := NewTally()
	tally.Ensure("sarah", "Sarah Chen", "Manager")
	tally.Ensure("marcus", "Marcus Reed", "SalesRep")
	tally.Ensure("sarah", "ignored", "ignored")

	tally.Generated("marcus", "a1")
	tally.Generated("marcus", "a2")
	tally.Completed("marcus")
	tally.Generated("nobody", "a3")

	rows := tally.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "sarah", rows[0].Key)
	assert.Equal(t, "Sarah Chen", rows[0].Name)
	assert.Equal(t, 0, rows[0].Generated)
	assert.Equal(t, 2, rows[1].Generated)
	assert.Equal(t, 1, rows[1].Completed)
	assert.Equal(t, []string{"a1", "a2"}, rows[1].ActivityIDs)
}

func TestTotals(t *testing.T) {
	total := Totals([]PerformanceRow{
		{Generated: 4, Completed: 3},
		{Generated: 6, Completed: 4},
	})
	assert.Equal(t, 10, total.Generated)
	assert.Equal(t, 7, total.Completed)
	assert.Equal(t, 70, total.Percentage())
}

func TestRenderPerformance(t *testing.T) {
	out := RenderPerformance([]PerformanceRow{
		{Key: "sarah", Name: "Sarah Chen", Role: "Manager", Generated: 4, Completed: 3},
		{Key: "priya", Name: "Priya Nair", Role: "SalesRep"},
	})

	assert.Contains(t, out, "PERFORMANCE")
	assert.Contains(t, out, "Sarah Chen")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "Priya Nair")
	assert.Contains(t, out, "0%")
	assert.Contains(t, out, "TOTAL")
}

func TestRenderPerformanceEmpty(t *testing.T) {
	assert.Equal(t, "No activity performance recorded\n", RenderPerformance(nil))
}

func TestRenderPipeline(t *testing.T) {
	out := RenderPipeline([]Opportunity{
		{Stage: 3, Value: 120000},
		{Stage: 3, Value: 80000},
		{Stage: 1, Value: 50000},
		{Stage: 9, Value: 1000},
	})

	assert.Contains(t, out, "PIPELINE OVERVIEW")
	assert.Contains(t, out, "██████████")
	assert.Contains(t, out, "($200K)")
	assert.Contains(t, out, "stage_9")
	assert.Less(t, strings.Index(out, "prospecting"), strings.Index(out, "proposal"))
	assert.Less(t, strings.Index(out, "proposal"), strings.Index(out, "stage_9"))
	assert.Empty(t, RenderPipeline(nil))
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(Summary{
		RunID:  "01J0TEST",
		Status: "failed",
		Error:  "clients: 500",
		Phases: []PhaseCount{
			{Phase: "clients", Created: 2, Skipped: 1},
			{Phase: "contacts", Failed: 1},
		},
	})

	assert.Contains(t, out, "SEED RUN 01J0TEST")
	assert.Contains(t, out, "Status:   failed")
	assert.Contains(t, out, "Error:    clients: 500")
	assert.Contains(t, out, "clients")
	assert.Contains(t, out, "SKIPPED")
}

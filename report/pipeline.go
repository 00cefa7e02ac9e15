// ABOUTME: ASCII pipeline overview of seeded opportunities by stage
// ABOUTME: Renders one scaled bar per stage with count and value in thousands
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/salesseed/models"
)

// Opportunity is the slice of an opportunity the pipeline overview needs.
type Opportunity struct {
	Stage int
	Value float64
}

type stageStats struct {
	count int
	value float64
}

// RenderPipeline draws stage bars in pipeline order, skipping empty stages.
func RenderPipeline(opps []Opportunity) string {
	if len(opps) == 0 {
		return ""
	}

	byStage := make(map[int]stageStats)
	for _, o := range opps {
		s := byStage[o.Stage]
		s.count++
		s.value += o.Value
		byStage[o.Stage] = s
	}

	maxCount := 0
	for _, s := range byStage {
		if s.count > maxCount {
			maxCount = s.count
		}
	}

	var out strings.Builder
	out.WriteString("PIPELINE OVERVIEW\n")
	for _, stage := range stageOrder(byStage) {
		s := byStage[stage]

		// 0-10 blocks
		barLength := (s.count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d ($%.0fK)\n",
			models.StageName(stage), bar, s.count, s.value/1000))
	}
	return out.String()
}

// stageOrder lists known stages first, then any unknown codes ascending.
func stageOrder(byStage map[int]stageStats) []int {
	var order []int
	known := make(map[int]bool)
	for _, stage := range models.Stages() {
		known[stage] = true
		if _, ok := byStage[stage]; ok {
			order = append(order, stage)
		}
	}
	var extra []int
	for stage := range byStage {
		if !known[stage] {
			extra = append(extra, stage)
		}
	}
	sort.Ints(extra)
	return append(order, extra...)
}

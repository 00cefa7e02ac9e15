// ABOUTME: Per-item outcomes and the run report produced by the seed pipeline
// ABOUTME: Records created ids by seed key so later phases can resolve references
package seed

import (
	"time"

	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/report"
)

// Phase names, in execution order.
const (
	PhaseAuthenticate  = "authenticate"
	PhaseStaff         = "staff"
	PhaseClients       = "clients"
	PhaseContacts      = "contacts"
	PhaseOpportunities = "opportunities"
	PhaseProposals     = "proposals"
	PhaseActivities    = "activities"
	PhaseSummaries     = "summaries"
)

// Phases lists every phase in execution order.
func Phases() []string {
	return []string{
		PhaseAuthenticate, PhaseStaff, PhaseClients, PhaseContacts,
		PhaseOpportunities, PhaseProposals, PhaseActivities, PhaseSummaries,
	}
}

// Item outcomes. Summaries record OutcomeOK since nothing is created.
const (
	Created = events.OutcomeCreated
	Skipped = events.OutcomeSkipped
	Failed  = events.OutcomeFailed
	Fetched = events.OutcomeOK
)

// ItemResult is what happened to one seed record.
type ItemResult struct {
	Phase   string
	Entity  string
	Key     string
	Outcome events.Outcome
	ID      models.ID
	Reason  string

	// Reached is the proposal status actually attained; empty for other entities.
	Reached models.ProposalStatus
}

// Report collects everything a run produced. Id maps only hold records that
// were created (or, for staff, resolved) during this run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Session  *models.Session

	StaffIDs       map[string]models.ID
	ClientIDs      map[string]models.ID
	ContactIDs     map[string]models.ID
	OpportunityIDs map[string]models.ID
	ProposalIDs    map[string]models.ID
	ActivityIDs    map[string]models.ID

	Items       []ItemResult
	Performance []report.PerformanceRow
	Requests    int64
}

func newReport(runID string, started time.Time) *Report {
	return &Report{
		RunID:          runID,
		Started:        started,
		StaffIDs:       make(map[string]models.ID),
		ClientIDs:      make(map[string]models.ID),
		ContactIDs:     make(map[string]models.ID),
		OpportunityIDs: make(map[string]models.ID),
		ProposalIDs:    make(map[string]models.ID),
		ActivityIDs:    make(map[string]models.ID),
	}
}

// Count returns how many items in phase ended with outcome.
func (r *Report) Count(phase string, outcome events.Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Phase == phase && item.Outcome == outcome {
			n++
		}
	}
	return n
}

// Item finds the result for a phase and key.
func (r *Report) Item(phase, key string) (ItemResult, bool) {
	for _, item := range r.Items {
		if item.Phase == phase && item.Key == key {
			return item, true
		}
	}
	return ItemResult{}, false
}

// PhaseCounts tallies outcomes for every phase that produced items.
func (r *Report) PhaseCounts() []report.PhaseCount {
	var out []report.PhaseCount
	for _, phase := range Phases() {
		pc := report.PhaseCount{Phase: phase}
		seen := false
		for _, item := range r.Items {
			if item.Phase != phase {
				continue
			}
			seen = true
			switch item.Outcome {
			case Created, Fetched:
				pc.Created++
			case Skipped:
				pc.Skipped++
			case Failed:
				pc.Failed++
			}
		}
		if seen {
			out = append(out, pc)
		}
	}
	return out
}

// Opportunities pairs the opportunities created in this run with their
// seeded stage and value.
func (r *Report) Opportunities(ds *models.Dataset) []report.Opportunity {
	var out []report.Opportunity
	for _, o := range ds.Opportunities {
		if _, ok := r.OpportunityIDs[o.Key]; ok {
			out = append(out, report.Opportunity{Stage: o.Stage, Value: o.Value})
		}
	}
	return out
}

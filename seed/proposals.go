// ABOUTME: Proposal creation phase with submit/approve lifecycle transitions
// ABOUTME: Approve is only issued after a successful submit
package seed

import (
	"context"
	"fmt"

	"github.com/harperreed/salesseed/models"
)

// reachedBy maps a transition to the status it produces.
var reachedBy = map[string]models.ProposalStatus{
	models.TransitionSubmit:  models.ProposalSubmitted,
	models.TransitionApprove: models.ProposalApproved,
}

func (r *run) createProposals(ctx context.Context) error {
	for _, p := range r.data.Proposals {
		oppID, ok := r.report.OpportunityIDs[p.Opportunity]
		if !ok {
			r.skipped(PhaseProposals, "proposal", p.Key, fmt.Sprintf("opportunity %s was not created", p.Opportunity))
			continue
		}
		transitions, err := p.Status.Transitions()
		if err != nil {
			return r.failed(PhaseProposals, "proposal", p.Key, err)
		}

		id, err := r.client.CreateProposal(ctx, models.ProposalPayload{
			OpportunityID: oppID,
			Title:         p.Title,
			ValidUntil:    r.dateIn(p.ValidForDays),
			Notes:         p.Notes,
			LineItems:     p.LineItems,
		})
		if err != nil {
			return r.failed(PhaseProposals, "proposal", p.Key, err)
		}
		if id == "" {
			r.skipped(PhaseProposals, "proposal", p.Key, tolerated)
			continue
		}
		r.report.ProposalIDs[p.Key] = id

		reached := models.ProposalDraft
		var reason string
		for _, t := range transitions {
			applied, err := r.client.TransitionProposal(ctx, id, t)
			if err != nil {
				return r.failed(PhaseProposals, "proposal", p.Key, fmt.Errorf("%s: %w", t, err))
			}
			if !applied {
				reason = fmt.Sprintf("%s was refused (tolerated), stopped at %s", t, reached)
				break
			}
			reached = reachedBy[t]
		}

		r.result(ItemResult{
			Phase: PhaseProposals, Entity: "proposal", Key: p.Key,
			Outcome: Created, ID: id, Reached: reached, Reason: reason,
		}, ref("opportunity", p.Opportunity))
	}
	return nil
}

// ABOUTME: Activity creation phase with optional completion and per-staff tallies
// ABOUTME: Relates each activity to its opportunity when created, otherwise to its client
package seed

import (
	"context"
	"fmt"

	"github.com/harperreed/salesseed/models"
)

const adminKey = "admin"

func (r *run) createActivities(ctx context.Context) error {
	for _, s := range r.data.Staff {
		r.tally.Ensure(s.Key, s.FullName(), s.Role)
	}

	for _, a := range r.data.Activities {
		clientID, ok := r.report.ClientIDs[a.Client]
		if !ok {
			r.skipped(PhaseActivities, "activity", a.Key, missingClient(a.Client))
			continue
		}

		assignee, staffKey := r.assigneeFor(a.Assignee)

		relatedType, relatedID, parent := models.RelatedClient, clientID, ref("client", a.Client)
		if oppID, ok := r.report.OpportunityIDs[a.Opportunity]; ok && a.Opportunity != "" {
			relatedType, relatedID, parent = models.RelatedOpportunity, oppID, ref("opportunity", a.Opportunity)
		}

		id, err := r.client.CreateActivity(ctx, models.ActivityPayload{
			Type:          a.Type,
			Subject:       a.Subject,
			Description:   a.Description,
			Priority:      a.Priority,
			DueDate:       r.dueAt(a.DueInDays, a.DueHour),
			AssignedToID:  assignee,
			RelatedToType: relatedType,
			RelatedToID:   relatedID,
		})
		if err != nil {
			return r.failed(PhaseActivities, "activity", a.Key, err)
		}
		if id == "" {
			r.skipped(PhaseActivities, "activity", a.Key, tolerated)
			continue
		}
		r.report.ActivityIDs[a.Key] = id
		r.tally.Generated(staffKey, id.String())

		var reason string
		if a.Complete {
			applied, err := r.client.CompleteActivity(ctx, id, a.Outcome)
			if err != nil {
				return r.failed(PhaseActivities, "activity", a.Key, fmt.Errorf("complete: %w", err))
			}
			if applied {
				r.tally.Completed(staffKey)
				reason = "completed"
			} else {
				reason = "completion refused (tolerated)"
			}
		}

		r.result(ItemResult{
			Phase: PhaseActivities, Entity: "activity", Key: a.Key,
			Outcome: Created, ID: id, Reason: reason,
		}, parent)
	}
	return nil
}

// assigneeFor resolves a staff key to its id and tally row, falling back to
// the admin when the staff member was not resolved.
func (r *run) assigneeFor(key string) (models.ID, string) {
	if id, ok := r.report.StaffIDs[key]; ok {
		return id, key
	}
	r.tally.Ensure(adminKey, "Administrator", "Admin")
	return r.adminID(), adminKey
}

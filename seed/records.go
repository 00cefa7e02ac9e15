// ABOUTME: Client, contact and opportunity creation phases
// ABOUTME: Skips records whose client was not created and assigns opportunity owners round-robin
package seed

import (
	"context"
	"fmt"

	"github.com/harperreed/salesseed/models"
)

func (r *run) createClients(ctx context.Context) error {
	for _, c := range r.data.Clients {
		id, err := r.client.CreateClient(ctx, models.ClientPayload{
			Name:           c.Name,
			Industry:       c.Industry,
			Classification: c.Classification,
			CompanySize:    c.Size,
			Website:        c.Website,
			BillingAddress: c.BillingAddress,
			TaxNumber:      c.TaxNumber,
		})
		if err != nil {
			return r.failed(PhaseClients, "client", c.Key, err)
		}
		if id == "" {
			r.skipped(PhaseClients, "client", c.Key, tolerated)
			continue
		}
		r.report.ClientIDs[c.Key] = id
		r.created(PhaseClients, "client", c.Key, id, "")
	}
	return nil
}

func (r *run) createContacts(ctx context.Context) error {
	for _, c := range r.data.Contacts {
		clientID, ok := r.report.ClientIDs[c.Client]
		if !ok {
			r.skipped(PhaseContacts, "contact", c.Key, missingClient(c.Client))
			continue
		}
		id, err := r.client.CreateContact(ctx, models.ContactPayload{
			ClientID:  clientID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			JobTitle:  c.JobTitle,
			IsPrimary: c.Primary,
		})
		if err != nil {
			return r.failed(PhaseContacts, "contact", c.Key, err)
		}
		if id == "" {
			r.skipped(PhaseContacts, "contact", c.Key, tolerated)
			continue
		}
		r.report.ContactIDs[c.Key] = id
		r.created(PhaseContacts, "contact", c.Key, id, ref("client", c.Client))
	}
	return nil
}

func (r *run) createOpportunities(ctx context.Context) error {
	for i, o := range r.data.Opportunities {
		clientID, ok := r.report.ClientIDs[o.Client]
		if !ok {
			r.skipped(PhaseOpportunities, "opportunity", o.Key, missingClient(o.Client))
			continue
		}
		id, err := r.client.CreateOpportunity(ctx, models.OpportunityPayload{
			ClientID:          clientID,
			OwnerID:           r.ownerFor(i, o.Owner),
			Title:             o.Title,
			Value:             o.Value,
			Currency:          o.Currency,
			Probability:       o.Probability,
			Stage:             o.Stage,
			Source:            o.Source,
			ExpectedCloseDate: r.dateIn(o.CloseInDays),
			Description:       o.Description,
		})
		if err != nil {
			return r.failed(PhaseOpportunities, "opportunity", o.Key, err)
		}
		if id == "" {
			r.skipped(PhaseOpportunities, "opportunity", o.Key, tolerated)
			continue
		}
		r.report.OpportunityIDs[o.Key] = id
		r.created(PhaseOpportunities, "opportunity", o.Key, id, ref("client", o.Client))
	}
	return nil
}

// ownerFor picks the declared owner, or the staff member at index modulo the
// staff count. Unresolved staff fall back to the admin.
func (r *run) ownerFor(index int, declared string) models.ID {
	key := declared
	if key == "" && len(r.data.Staff) > 0 {
		key = r.data.Staff[index%len(r.data.Staff)].Key
	}
	if id, ok := r.report.StaffIDs[key]; ok {
		return id
	}
	return r.adminID()
}

func missingClient(key string) string {
	return fmt.Sprintf("client %s was not created", key)
}

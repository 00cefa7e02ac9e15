// ABOUTME: Read-only summary battery fetched at the end of a run
// ABOUTME: Exercises list and dashboard endpoints; responses are only logged
package seed

import (
	"context"
	"net/url"
)

type summaryQuery struct {
	path  string
	query url.Values
}

func summaryBattery() []summaryQuery {
	page := url.Values{"page": {"1"}, "pageSize": {"10"}}
	return []summaryQuery{
		{"/clients", page},
		{"/opportunities", page},
		{"/activities", page},
		{"/dashboard/stats", nil},
		{"/dashboard/pipeline", nil},
		{"/dashboard/team-performance", nil},
	}
}

func (r *run) fetchSummaries(ctx context.Context) error {
	for _, q := range summaryBattery() {
		if _, err := r.client.Get(ctx, q.path, q.query); err != nil {
			return r.failed(PhaseSummaries, "summary", q.path, err)
		}
		r.result(ItemResult{Phase: PhaseSummaries, Entity: "summary", Key: q.path, Outcome: Fetched}, "")
	}
	return nil
}

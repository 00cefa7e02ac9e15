// ABOUTME: Ordered provisioning pipeline that seeds a demo tenant through the API
// ABOUTME: Runs authenticate, staff, records, proposals, activities and summaries strictly in sequence
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/salesseed/api"
	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/harperreed/salesseed/report"
)

// Admin holds the fixed administrator identity the pipeline runs as.
type Admin struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	TenantName string
}

// Pipeline seeds one dataset. It is not safe for concurrent Runs.
type Pipeline struct {
	base  *api.Client
	admin Admin
	data  *models.Dataset
	rec   events.Recorder
	runID string
	now   func() time.Time
}

type Option func(*Pipeline)

// WithRecorder sends pipeline events to rec.
func WithRecorder(rec events.Recorder) Option {
	return func(p *Pipeline) { p.rec = rec }
}

// WithClock overrides the time source used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID tags the report with id.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New builds a pipeline. client must not carry a session; the pipeline
// attaches sessions itself.
func New(client *api.Client, admin Admin, data *models.Dataset, opts ...Option) *Pipeline {
	p := &Pipeline{
		base:  client.WithSession(nil),
		admin: admin,
		data:  data,
		rec:   events.Discard,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run is the mutable state of one Run.
type run struct {
	*Pipeline
	client *api.Client // carries the active session
	report *Report
	tally  *report.Tally
}

// Run executes every phase in order. On a fatal error the partial report is
// returned together with the error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	r := &run{
		Pipeline: p,
		client:   p.base,
		report:   newReport(p.runID, p.now()),
		tally:    report.NewTally(),
	}

	steps := []struct {
		phase string
		title string
		fn    func(context.Context) error
	}{
		{PhaseAuthenticate, "Authenticating admin", r.authenticate},
		{PhaseStaff, "Resolving staff accounts", r.resolveStaff},
		{PhaseClients, "Creating clients", r.createClients},
		{PhaseContacts, "Creating contacts", r.createContacts},
		{PhaseOpportunities, "Creating opportunities", r.createOpportunities},
		{PhaseProposals, "Creating proposals", r.createProposals},
		{PhaseActivities, "Creating activities", r.createActivities},
		{PhaseSummaries, "Fetching summaries", r.fetchSummaries},
	}

	var err error
	for i, step := range steps {
		p.rec.Record(events.Event{
			Kind:    events.KindPhase,
			Phase:   step.phase,
			Message: fmt.Sprintf("%d/%d %s", i+1, len(steps), step.title),
		})
		if err = step.fn(ctx); err != nil {
			err = fmt.Errorf("%s: %w", step.phase, err)
			break
		}
	}

	r.report.Performance = r.tally.Rows()
	r.report.Finished = p.now()
	if al := p.base.AccessLog(); al != nil {
		r.report.Requests = al.Count()
	}
	return r.report, err
}

// useSession makes sess the session attached to subsequent calls.
func (r *run) useSession(sess *models.Session) {
	r.client = r.base.WithSession(sess)
}

func (r *run) result(item ItemResult, parent string) {
	r.report.Items = append(r.report.Items, item)
	msg := item.Reason
	if item.Reached != "" && msg == "" {
		msg = "status " + string(item.Reached)
	}
	r.rec.Record(events.Event{
		Kind:     events.KindItem,
		Phase:    item.Phase,
		Entity:   item.Entity,
		Item:     item.Key,
		Parent:   parent,
		Outcome:  item.Outcome,
		EntityID: item.ID.String(),
		Message:  msg,
	})
}

func (r *run) created(phase, entity, key string, id models.ID, parent string) {
	r.result(ItemResult{Phase: phase, Entity: entity, Key: key, Outcome: Created, ID: id}, parent)
}

func (r *run) skipped(phase, entity, key, reason string) {
	r.result(ItemResult{Phase: phase, Entity: entity, Key: key, Outcome: Skipped, Reason: reason}, "")
}

// failed records the item and returns err annotated with it.
func (r *run) failed(phase, entity, key string, err error) error {
	r.result(ItemResult{Phase: phase, Entity: entity, Key: key, Outcome: Failed, Reason: err.Error()}, "")
	return fmt.Errorf("%s %s: %w", entity, key, err)
}

func (r *run) adminID() models.ID {
	if r.report.Session == nil {
		return ""
	}
	return r.report.Session.UserID
}

// dateIn formats today plus days as YYYY-MM-DD.
func (r *run) dateIn(days int) string {
	return r.now().AddDate(0, 0, days).Format("2006-01-02")
}

// dueAt is the timestamp days from today at hour:00 local time.
func (r *run) dueAt(days, hour int) string {
	d := r.now().AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location()).Format(time.RFC3339)
}

const tolerated = "already exists or was rejected (tolerated)"

func ref(entity, key string) string {
	return entity + ":" + key
}

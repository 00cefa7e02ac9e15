// ABOUTME: Loading and validation of seed datasets
// ABOUTME: Embeds the demo dataset and checks keys and foreign keys before any network call
package seeddata

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/harperreed/salesseed/models"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demo []byte

// Demo returns the embedded demonstration dataset.
func Demo() (*models.Dataset, error) {
	return Parse(demo)
}

// Load reads a dataset from path, or the demo dataset when path is empty.
func Load(path string) (*models.Dataset, error) {
	if path == "" {
		return Demo()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed data: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML dataset.
func Parse(data []byte) (*models.Dataset, error) {
	var ds models.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := Validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks key uniqueness and that every reference resolves. All
// problems are reported together.
func Validate(ds *models.Dataset) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	staff := keySet("staff", len(ds.Staff), func(i int) string { return ds.Staff[i].Key }, add)
	clients := keySet("client", len(ds.Clients), func(i int) string { return ds.Clients[i].Key }, add)
	keySet("contact", len(ds.Contacts), func(i int) string { return ds.Contacts[i].Key }, add)
	opps := keySet("opportunity", len(ds.Opportunities), func(i int) string { return ds.Opportunities[i].Key }, add)
	keySet("proposal", len(ds.Proposals), func(i int) string { return ds.Proposals[i].Key }, add)
	keySet("activity", len(ds.Activities), func(i int) string { return ds.Activities[i].Key }, add)

	for _, s := range ds.Staff {
		if s.Email == "" || s.Password == "" {
			add("staff %q: email and password are required", s.Key)
		}
	}
	for _, c := range ds.Contacts {
		if !clients[c.Client] {
			add("contact %q: unknown client %q", c.Key, c.Client)
		}
	}

	oppClient := make(map[string]string, len(ds.Opportunities))
	for _, o := range ds.Opportunities {
		oppClient[o.Key] = o.Client
		if !clients[o.Client] {
			add("opportunity %q: unknown client %q", o.Key, o.Client)
		}
		if o.Owner != "" && !staff[o.Owner] {
			add("opportunity %q: unknown owner %q", o.Key, o.Owner)
		}
	}
	for _, p := range ds.Proposals {
		if !opps[p.Opportunity] {
			add("proposal %q: unknown opportunity %q", p.Key, p.Opportunity)
		}
		if _, err := p.Status.Transitions(); err != nil {
			add("proposal %q: %w", p.Key, err)
		}
		if len(p.LineItems) == 0 {
			add("proposal %q: at least one line item is required", p.Key)
		}
	}
	for _, a := range ds.Activities {
		if !clients[a.Client] {
			add("activity %q: unknown client %q", a.Key, a.Client)
		}
		if a.Assignee != "" && !staff[a.Assignee] {
			add("activity %q: unknown assignee %q", a.Key, a.Assignee)
		}
		if a.Opportunity != "" {
			owner, ok := oppClient[a.Opportunity]
			switch {
			case !ok:
				add("activity %q: unknown opportunity %q", a.Key, a.Opportunity)
			case owner != a.Client:
				add("activity %q: opportunity %q belongs to client %q, not %q", a.Key, a.Opportunity, owner, a.Client)
			}
		}
		if a.DueHour < 0 || a.DueHour > 23 {
			add("activity %q: due_hour %d out of range", a.Key, a.DueHour)
		}
	}

	return errors.Join(errs...)
}

func keySet(kind string, n int, key func(int) string, add func(string, ...any)) map[string]bool {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		k := key(i)
		switch {
		case k == "":
			add("%s #%d: key is required", kind, i+1)
		case seen[k]:
			add("%s %q: duplicate key", kind, k)
		default:
			seen[k] = true
		}
	}
	return seen
}

// Counts summarises a dataset for display.
type Counts struct {
	Staff, Clients, Contacts, Opportunities, Proposals, Activities, LineItems int
}

func Count(ds *models.Dataset) Counts {
	c := Counts{
		Staff:         len(ds.Staff),
		Clients:       len(ds.Clients),
		Contacts:      len(ds.Contacts),
		Opportunities: len(ds.Opportunities),
		Proposals:     len(ds.Proposals),
		Activities:    len(ds.Activities),
	}
	for _, p := range ds.Proposals {
		c.LineItems += len(p.LineItems)
	}
	return c
}

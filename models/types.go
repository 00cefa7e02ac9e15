// ABOUTME: Seed record types for the demo tenant dataset
// ABOUTME: Defines staff, clients, contacts, opportunities, proposals, and activity plans keyed by slug
package models

import "fmt"

// Dataset is a complete seed input. Records reference each other by Key.
type Dataset struct {
	Staff         []StaffSeed       `yaml:"staff"`
	Clients       []ClientSeed      `yaml:"clients"`
	Contacts      []ContactSeed     `yaml:"contacts"`
	Opportunities []OpportunitySeed `yaml:"opportunities"`
	Proposals     []ProposalSeed    `yaml:"proposals"`
	Activities    []ActivityPlan    `yaml:"activities"`
}

type StaffSeed struct {
	Key       string `yaml:"key"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
}

// FullName returns "First Last".
func (s StaffSeed) FullName() string {
	return s.FirstName + " " + s.LastName
}

type Address struct {
	Street     string `yaml:"street" json:"street,omitempty"`
	City       string `yaml:"city" json:"city,omitempty"`
	State      string `yaml:"state" json:"state,omitempty"`
	PostalCode string `yaml:"postal_code" json:"postalCode,omitempty"`
	Country    string `yaml:"country" json:"country,omitempty"`
}

type ClientSeed struct {
	Key            string  `yaml:"key"`
	Name           string  `yaml:"name"`
	Industry       string  `yaml:"industry"`
	Classification int     `yaml:"classification"`
	Size           string  `yaml:"size"`
	Website        string  `yaml:"website"`
	BillingAddress Address `yaml:"billing_address"`
	TaxNumber      string  `yaml:"tax_number"`
}

type ContactSeed struct {
	Key       string `yaml:"key"`
	Client    string `yaml:"client"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	JobTitle  string `yaml:"job_title"`
	Primary   bool   `yaml:"primary"`
}

type OpportunitySeed struct {
	Key         string  `yaml:"key"`
	Client      string  `yaml:"client"`
	Owner       string  `yaml:"owner,omitempty"` // staff key; round-robin when empty
	Title       string  `yaml:"title"`
	Value       float64 `yaml:"value"`
	Currency    string  `yaml:"currency"`
	Probability int     `yaml:"probability"`
	Stage       int     `yaml:"stage"`
	Source      int     `yaml:"source"`
	CloseInDays int     `yaml:"close_in_days"`
	Description string  `yaml:"description"`
}

type LineItem struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description,omitempty"`
	Quantity    float64 `yaml:"quantity" json:"quantity"`
	UnitPrice   float64 `yaml:"unit_price" json:"unitPrice"`
	DiscountPct float64 `yaml:"discount_pct" json:"discountPercent"`
	TaxRatePct  float64 `yaml:"tax_rate_pct" json:"taxRatePercent"`
}

// Total returns the line total after discount and tax.
func (l LineItem) Total() float64 {
	net := l.Quantity * l.UnitPrice * (1 - l.DiscountPct/100)
	return net * (1 + l.TaxRatePct/100)
}

type ProposalSeed struct {
	Key          string         `yaml:"key"`
	Opportunity  string         `yaml:"opportunity"`
	Title        string         `yaml:"title"`
	Status       ProposalStatus `yaml:"status"`
	ValidForDays int            `yaml:"valid_for_days"`
	Notes        string         `yaml:"notes"`
	LineItems    []LineItem     `yaml:"line_items"`
}

type ActivityPlan struct {
	Key         string `yaml:"key"`
	Client      string `yaml:"client"`
	Opportunity string `yaml:"opportunity,omitempty"`
	Assignee    string `yaml:"assignee"`
	Type        int    `yaml:"type"`
	Subject     string `yaml:"subject"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
	DueInDays   int    `yaml:"due_in_days"`
	DueHour     int    `yaml:"due_hour"`
	Complete    bool   `yaml:"complete"`
	Outcome     string `yaml:"outcome,omitempty"`
}

// ProposalStatus is the lifecycle state a seeded proposal should reach.
type ProposalStatus string

const (
	ProposalDraft     ProposalStatus = "Draft"
	ProposalSubmitted ProposalStatus = "Submitted"
	ProposalApproved  ProposalStatus = "Approved"
)

// Transition names issued after creation, in order.
const (
	TransitionSubmit  = "submit"
	TransitionApprove = "approve"
)

// Transitions returns the ordered state-transition calls needed to move a
// freshly created proposal to s. Approve is always preceded by submit.
func (s ProposalStatus) Transitions() ([]string, error) {
	switch s {
	case ProposalDraft, "":
		return nil, nil
	case ProposalSubmitted:
		return []string{TransitionSubmit}, nil
	case ProposalApproved:
		return []string{TransitionSubmit, TransitionApprove}, nil
	default:
		return nil, fmt.Errorf("unknown proposal status %q", string(s))
	}
}

// Opportunity stage codes as understood by the API.
const (
	StageProspecting = iota + 1
	StageQualification
	StageProposal
	StageNegotiation
	StageClosedWon
	StageClosedLost
)

var stageNames = map[int]string{
	StageProspecting:   "prospecting",
	StageQualification: "qualification",
	StageProposal:      "proposal",
	StageNegotiation:   "negotiation",
	StageClosedWon:     "closed_won",
	StageClosedLost:    "closed_lost",
}

// StageName returns a display name for a stage code.
func StageName(code int) string {
	if name, ok := stageNames[code]; ok {
		return name
	}
	return fmt.Sprintf("stage_%d", code)
}

// Stages returns all known stage codes in pipeline order.
func Stages() []int {
	return []int{StageProspecting, StageQualification, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}
}

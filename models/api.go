// ABOUTME: Wire payloads for the external sales-automation REST API
// ABOUTME: Request bodies, auth/session types, and a flexible id that accepts strings or numbers
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an entity id as returned by the API. The server may emit ids as
// JSON strings or numbers; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Session is the authenticated context attached to outbound requests.
type Session struct {
	Token    string `json:"token"`
	UserID   ID     `json:"userId"`
	TenantID ID     `json:"tenantId"`
}

// Active reports whether the session carries a bearer token.
func (s *Session) Active() bool {
	return s != nil && s.Token != ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	TenantName string `json:"tenantName,omitempty"`
	TenantID   ID     `json:"tenantId,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Created is the minimal shape of every create response.
type Created struct {
	ID ID `json:"id"`
}

type ClientPayload struct {
	Name           string  `json:"name"`
	Industry       string  `json:"industry,omitempty"`
	Classification int     `json:"classification"`
	CompanySize    string  `json:"companySize,omitempty"`
	Website        string  `json:"website,omitempty"`
	BillingAddress Address `json:"billingAddress"`
	TaxNumber      string  `json:"taxNumber,omitempty"`
}

type ContactPayload struct {
	ClientID  ID     `json:"clientId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	JobTitle  string `json:"jobTitle,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type OpportunityPayload struct {
	ClientID          ID      `json:"clientId"`
	OwnerID           ID      `json:"ownerId"`
	Title             string  `json:"title"`
	Value             float64 `json:"value"`
	Currency          string  `json:"currency"`
	Probability       int     `json:"probability"`
	Stage             int     `json:"stage"`
	Source            int     `json:"source"`
	ExpectedCloseDate string  `json:"expectedCloseDate"`
	Description       string  `json:"description,omitempty"`
}

type ProposalPayload struct {
	OpportunityID ID         `json:"opportunityId"`
	Title         string     `json:"title"`
	ValidUntil    string     `json:"validUntil"`
	Notes         string     `json:"notes,omitempty"`
	LineItems     []LineItem `json:"lineItems"`
}

// Related-to entity kinds for activities.
const (
	RelatedClient      = "Client"
	RelatedOpportunity = "Opportunity"
)

type ActivityPayload struct {
	Type          int    `json:"type"`
	Subject       string `json:"subject"`
	Description   string `json:"description,omitempty"`
	Priority      int    `json:"priority"`
	DueDate       string `json:"dueDate"`
	AssignedToID  ID     `json:"assignedToId"`
	RelatedToType string `json:"relatedToType"`
	RelatedToID   ID     `json:"relatedToId"`
}

type CompleteActivityRequest struct {
	Outcome string `json:"outcome"`
}

// ABOUTME: Typed calls for each route of the sales-automation API
// ABOUTME: Auth, entity creation, proposal/activity transitions, and read-only list/dashboard queries
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/harperreed/salesseed/models"
)

// Login authenticates and returns the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	body, err := c.Call(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeSession("/auth/login", body)
}

// Register creates an account (and a tenant when TenantName is set).
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	body, err := c.Call(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return decodeSession("/auth/register", body)
}

// RegisterTolerant is Register returning (nil, nil) on a tolerated conflict.
func (c *Client) RegisterTolerant(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	resp, err := c.DoTolerant(ctx, http.MethodPost, "/auth/register", req)
	if err != nil || resp == nil {
		return nil, err
	}
	return decodeSession("/auth/register", resp.Body)
}

func decodeSession(path string, body json.RawMessage) (*models.Session, error) {
	if body == nil {
		return nil, fmt.Errorf("%s returned no session", path)
	}
	var s models.Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	if s.Token == "" {
		return nil, fmt.Errorf("%s response carried no token", path)
	}
	return &s, nil
}

// create POSTs a new entity, tolerating conflicts. The returned id is empty
// when the server reported a tolerated conflict or omitted the id.
func (c *Client) create(ctx context.Context, path string, payload any) (models.ID, error) {
	body, err := c.CallTolerant(ctx, http.MethodPost, path, payload)
	if err != nil || body == nil {
		return "", err
	}
	var created models.Created
	if err := json.Unmarshal(body, &created); err != nil {
		return "", nil //nolint:nilerr // a body without an id is treated like a conflict
	}
	return created.ID, nil
}

func (c *Client) CreateClient(ctx context.Context, p models.ClientPayload) (models.ID, error) {
	return c.create(ctx, "/clients", p)
}

func (c *Client) CreateContact(ctx context.Context, p models.ContactPayload) (models.ID, error) {
	return c.create(ctx, "/contacts", p)
}

func (c *Client) CreateOpportunity(ctx context.Context, p models.OpportunityPayload) (models.ID, error) {
	return c.create(ctx, "/opportunities", p)
}

func (c *Client) CreateProposal(ctx context.Context, p models.ProposalPayload) (models.ID, error) {
	return c.create(ctx, "/proposals", p)
}

func (c *Client) CreateActivity(ctx context.Context, p models.ActivityPayload) (models.ID, error) {
	return c.create(ctx, "/activities", p)
}

// TransitionProposal issues PUT /proposals/{id}/{transition} with no body.
// applied is false when the server answered with a tolerated conflict.
func (c *Client) TransitionProposal(ctx context.Context, id models.ID, transition string) (applied bool, err error) {
	path := fmt.Sprintf("/proposals/%s/%s", url.PathEscape(id.String()), transition)
	resp, err := c.DoTolerant(ctx, http.MethodPut, path, nil)
	return resp != nil, err
}

// CompleteActivity marks an activity complete with an outcome note.
func (c *Client) CompleteActivity(ctx context.Context, id models.ID, outcome string) (applied bool, err error) {
	path := fmt.Sprintf("/activities/%s/complete", url.PathEscape(id.String()))
	resp, err := c.DoTolerant(ctx, http.MethodPut, path, models.CompleteActivityRequest{Outcome: outcome})
	return resp != nil, err
}

// Get performs a read-only GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Call(ctx, http.MethodGet, path, nil)
}

// ABOUTME: Conflict-tolerant wrappers around the API client
// ABOUTME: Turns 409/400 responses into nil results so reruns against a seeded tenant keep going
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// toleratedStatuses are treated as "already exists". 400 is included
// because that is what the API returns for some duplicates; it also masks
// genuinely invalid payloads.
var toleratedStatuses = []int{http.StatusConflict, http.StatusBadRequest}

// Tolerated reports whether err is a RequestError with a tolerated status.
func Tolerated(err error) bool {
	return HasStatus(err, toleratedStatuses...)
}

// DoTolerant is Do, except tolerated RequestErrors yield (nil, nil) and a
// warning. Every other error is returned unchanged.
func (c *Client) DoTolerant(ctx context.Context, method, path string, body any) (*Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		if Tolerated(err) {
			status, _ := StatusOf(err)
			c.log.Warn(fmt.Sprintf("%s %s returned %d, treating as already exists", method, path, status))
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

// CallTolerant is DoTolerant returning only the parsed body.
func (c *Client) CallTolerant(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	resp, err := c.DoTolerant(ctx, method, path, body)
	if err != nil || resp == nil {
		return nil, err
	}
	return resp.Body, nil
}

// ABOUTME: Tests for the API client, access log, and conflict-tolerant calls
// ABOUTME: Uses httptest handlers to pin URL joining, auth headers, body handling, and status classification
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harperreed/salesseed/events"
	"github.com/harperreed/salesseed/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	reqID  string
	body   string
}

func newTestClient(t *testing.T, status int, respBody string) (*Client, *events.Memory, *[]seenRequest) {
	t.Helper()
	var seen []seenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = append(seen, seenRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
			reqID:  r.Header.Get("X-Request-ID"),
			body:   string(b),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	mem := events.NewMemory()
	c := NewClient(srv.URL+"/", WithAccessLog(NewAccessLog(mem)))
	return c, mem, &seen
}

func TestClientURLJoinsBaseAndPrefix(t *testing.T) {
	c := NewClient("https://crm.example.com/")
	assert.Equal(t, "https://crm.example.com/api/clients", c.URL("/clients"))
	assert.Equal(t, "https://crm.example.com/api/clients", c.URL("clients"))

	c = NewClient("https://crm.example.com", WithPrefix("/v2"))
	assert.Equal(t, "https://crm.example.com/v2/auth/login", c.URL("/auth/login"))
}

func TestDoSendsJSONAndBearer(t *testing.T) {
	c, _, seen := newTestClient(t, http.StatusCreated, `{"id":"c1"}`)
	c = c.WithSession(&models.Session{Token: "tok-123"})

	body, err := c.Call(context.Background(), http.MethodPost, "/clients", map[string]string{"name": "Acme"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1"}`, string(body))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, "/api/clients", got.path)
	assert.Equal(t, "Bearer tok-123", got.auth)
	assert.Equal(t, "application/json", got.ctype)
	assert.JSONEq(t, `{"name":"Acme"}`, got.body)
	assert.NotEmpty(t, got.reqID)
}

func TestDoWithoutSessionOmitsAuth(t *testing.T) {
	c, _, seen := newTestClient(t, http.StatusOK, `{}`)

	_, err := c.Call(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a"})
	require.NoError(t, err)
	assert.Empty(t, (*seen)[0].auth)
}

func TestDoOmitsBodyForGet(t *testing.T) {
	c, _, seen := newTestClient(t, http.StatusOK, `[]`)

	_, err := c.Call(context.Background(), http.MethodGet, "/clients", map[string]string{"ignored": "yes"})
	require.NoError(t, err)
	assert.Empty(t, (*seen)[0].body)
	assert.Empty(t, (*seen)[0].ctype)
}

func TestDoNoContentYieldsNilBody(t *testing.T) {
	c, _, _ := newTestClient(t, http.StatusNoContent, "")

	resp, err := c.Do(context.Background(), http.MethodPut, "/proposals/1/submit", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.Body)
}

func TestDoInvalidJSONYieldsNilBody(t *testing.T) {
	c, _, _ := newTestClient(t, http.StatusOK, "<html>ok</html>")

	body, err := c.Call(context.Background(), http.MethodGet, "/dashboard/stats", nil)
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestDoNon2xxReturnsRequestError(t *testing.T) {
	c, mem, _ := newTestClient(t, http.StatusUnprocessableEntity, `{"message":"bad stage"}`)

	_, err := c.Call(context.Background(), http.MethodPost, "/opportunities", map[string]int{"stage": 99})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	assert.JSONEq(t, `{"message":"bad stage"}`, string(reqErr.Body))
	assert.Contains(t, err.Error(), "bad stage")

	httpEvents := mem.OfKind(events.KindHTTP)
	require.Len(t, httpEvents, 1, "failures are logged too")
	assert.Equal(t, events.OutcomeFailed, httpEvents[0].Outcome)
}

func TestDoTransportFailureIsNotRequestError(t *testing.T) {
	mem := events.NewMemory()
	c := NewClient("http://127.0.0.1:1", WithAccessLog(NewAccessLog(mem)))

	_, err := c.Call(context.Background(), http.MethodGet, "/clients", nil)
	require.Error(t, err)
	_, isReq := StatusOf(err)
	assert.False(t, isReq)

	httpEvents := mem.OfKind(events.KindHTTP)
	require.Len(t, httpEvents, 1)
	assert.Equal(t, 0, httpEvents[0].Status)
	assert.NotEmpty(t, httpEvents[0].Message)
}

func TestAccessLogCountsEveryCall(t *testing.T) {
	c, mem, _ := newTestClient(t, http.StatusOK, `{}`)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = c.Call(ctx, http.MethodGet, "/clients", nil)
	}
	derived := c.WithSession(&models.Session{Token: "x"})
	_, _ = derived.Call(ctx, http.MethodGet, "/clients", nil)

	assert.Equal(t, int64(4), c.AccessLog().Count(), "copies share one counter")
	httpEvents := mem.OfKind(events.KindHTTP)
	require.Len(t, httpEvents, 4)
	for i, e := range httpEvents {
		assert.Equal(t, int64(i+1), e.Request)
	}
}

func TestCallTolerantSwallowsConflicts(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusBadRequest} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c, mem, _ := newTestClient(t, status, `{"message":"exists"}`)

			body, err := c.CallTolerant(context.Background(), http.MethodPost, "/clients", map[string]string{"name": "Acme"})
			assert.NoError(t, err)
			assert.Nil(t, body)
			assert.Len(t, mem.OfKind(events.KindWarn), 1)
		})
	}
}

func TestCallTolerantPropagatesOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c, _, _ := newTestClient(t, status, `{}`)

			_, err := c.CallTolerant(context.Background(), http.MethodPost, "/clients", map[string]string{"name": "Acme"})
			require.Error(t, err)
			got, ok := StatusOf(err)
			require.True(t, ok)
			assert.Equal(t, status, got)
		})
	}
}

func TestHasStatus(t *testing.T) {
	err := &RequestError{Status: 404}
	assert.True(t, HasStatus(err, 401, 404))
	assert.False(t, HasStatus(err, 409))
	assert.False(t, HasStatus(errors.New("plain"), 404))
}

func TestRequestErrorMessageShapes(t *testing.T) {
	assert.Equal(t, "m", (&RequestError{Body: []byte(`{"message":"m"}`)}).Message())
	assert.Equal(t, "e", (&RequestError{Body: []byte(`{"error":"e"}`)}).Message())
	assert.Equal(t, "t", (&RequestError{Body: []byte(`{"title":"t"}`)}).Message())
	assert.Equal(t, "", (&RequestError{Body: []byte(`[1,2]`)}).Message())
	assert.Equal(t, "", (&RequestError{}).Message())
}

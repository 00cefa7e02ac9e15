// ABOUTME: In-memory fake of the sales-automation REST API for tests
// ABOUTME: chi router with auth, uniqueness conflicts, proposal/activity transitions, fault injection, and call recording
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RecordedCall is one request as seen by the server, with the /api prefix
// and query string stripped from Path.
type RecordedCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// Fault forces a status for matching requests. Times limits how often it
// fires (0 = always). Match, when set, must also accept the decoded body.
type Fault struct {
	Method string
	Path   string
	Status int
	Times  int
	Match  func(body map[string]any) bool

	fired int
}

// Server is a fake API. Zero value is not usable; call New or Start.
type Server struct {
	// LoginMissingStatus is returned when logging in with an unknown email.
	LoginMissingStatus int

	router chi.Router

	mu       sync.Mutex
	calls    []RecordedCall
	faults   []*Fault
	users    map[string]*User // by email
	tokens   map[string]*User // by bearer token
	tenants  map[string]string
	entities map[string]map[string]map[string]any // kind -> id -> record
	unique   map[string]string                    // kind|tenant|key -> id
}

type User struct {
	ID       string
	TenantID string
	Email    string
	Password string
	Role     string
}

// New returns a server with empty state.
func New() *Server {
	s := &Server{
		LoginMissingStatus: http.StatusUnauthorized,
		users:              make(map[string]*User),
		tokens:             make(map[string]*User),
		tenants:            make(map[string]string),
		entities:           make(map[string]map[string]map[string]any),
		unique:             make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(s.recordCall)
	r.Use(s.injectFaults)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/clients", s.handleCreate("clients", uniqueBy("name"), required("name")))
			r.Post("/contacts", s.handleCreate("contacts", uniqueBy("email"), required("clientId", "firstName")))
			r.Post("/opportunities", s.handleCreate("opportunities", uniqueBy("clientId", "title"), required("clientId", "ownerId", "title")))
			r.Post("/proposals", s.handleCreate("proposals", uniqueBy("opportunityId", "title"), required("opportunityId", "lineItems")))
			r.Post("/activities", s.handleCreate("activities", uniqueBy("relatedToId", "subject"), required("assignedToId", "relatedToId", "subject")))
			r.Put("/proposals/{id}/submit", s.handleTransition("proposals", "Draft", "Submitted"))
			r.Put("/proposals/{id}/approve", s.handleTransition("proposals", "Submitted", "Approved"))
			r.Put("/activities/{id}/complete", s.handleCompleteActivity)
			r.Get("/clients", s.handleList("clients"))
			r.Get("/opportunities", s.handleList("opportunities"))
			r.Get("/activities", s.handleList("activities"))
			r.Get("/dashboard/{name}", s.handleDashboard)
		})
	})
	s.router = r
	return s
}

// Start runs the server on httptest and closes it when the test ends.
func Start(t testing.TB) (*Server, string) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts.URL
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddFault registers a forced response.
func (s *Server) AddFault(f *Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

// Fail forces status for every method+path request.
func (s *Server) Fail(method, path string, status int) {
	s.AddFault(&Fault{Method: method, Path: path, Status: status})
}

// Calls returns every request received so far.
func (s *Server) Calls() []RecordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo filters calls by method and path prefix.
func (s *Server) CallsTo(method, pathPrefix string) []RecordedCall {
	var out []RecordedCall
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded calls but keeps state.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// AddUser seeds an account directly.
func (s *Server) AddUser(email, password, tenantName, role string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenantID := s.tenantByName(tenantName)
	u := &User{ID: uuid.NewString(), TenantID: tenantID, Email: email, Password: password, Role: role}
	s.users[strings.ToLower(email)] = u
	return u
}

// Entities returns stored records of a kind keyed by id.
func (s *Server) Entities(kind string) map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]any, len(s.entities[kind]))
	for id, rec := range s.entities[kind] {
		out[id] = rec
	}
	return out
}

func (s *Server) tenantByName(name string) string {
	for id, n := range s.tenants {
		if n == name {
			return id
		}
	}
	id := uuid.NewString()
	s.tenants[id] = name
	return id
}

func (s *Server) recordCall(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))

		var body map[string]any
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}

		s.mu.Lock()
		s.calls = append(s.calls, RecordedCall{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")
		body := lastBody(s, r.Method, path)

		s.mu.Lock()
		var hit *Fault
		for _, f := range s.faults {
			if f.Method != r.Method || f.Path != path {
				continue
			}
			if f.Times > 0 && f.fired >= f.Times {
				continue
			}
			if f.Match != nil && !f.Match(body) {
				continue
			}
			f.fired++
			hit = f
			break
		}
		s.mu.Unlock()

		if hit != nil {
			writeError(w, hit.Status, "injected fault")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func lastBody(s *Server, method, path string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Method == method && s.calls[i].Path == path {
			return s.calls[i].Body
		}
	}
	return nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userFor(r *http.Request) *User {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(req.Email)]
	if !ok {
		writeError(w, s.LoginMissingStatus, "account not found")
		return
	}
	if u.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, s.issueToken(u))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		TenantName string `json:"tenantName"`
		TenantID   string `json:"tenantId"`
		Role       string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[strings.ToLower(req.Email)]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	var tenantID string
	switch {
	case req.TenantID != "":
		if _, ok := s.tenants[req.TenantID]; !ok {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		tenantID = req.TenantID
	case req.TenantName != "":
		tenantID = s.tenantByName(req.TenantName)
	default:
		writeError(w, http.StatusBadRequest, "tenantName or tenantId is required")
		return
	}

	role := req.Role
	if role == "" {
		role = "Admin"
	}
	u := &User{ID: uuid.NewString(), TenantID: tenantID, Email: req.Email, Password: req.Password, Role: role}
	s.users[strings.ToLower(req.Email)] = u
	writeJSON(w, http.StatusCreated, s.issueToken(u))
}

// issueToken must be called with s.mu held.
func (s *Server) issueToken(u *User) map[string]any {
	token := uuid.NewString()
	s.tokens[token] = u
	return map[string]any{"token": token, "userId": u.ID, "tenantId": u.TenantID}
}

type uniqueKey func(body map[string]any) string

func uniqueBy(fields ...string) uniqueKey {
	return func(body map[string]any) string {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = strings.ToLower(toString(body[f]))
		}
		return strings.Join(parts, "|")
	}
}

func required(fields ...string) func(body map[string]any) bool {
	return func(body map[string]any) bool {
		for _, f := range fields {
			v, ok := body[f]
			if !ok || v == nil || v == "" {
				return false
			}
		}
		return true
	}
}

func (s *Server) handleCreate(kind string, key uniqueKey, valid func(map[string]any) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !valid(body) {
			writeError(w, http.StatusBadRequest, "validation failed")
			return
		}
		u := s.userFor(r)

		s.mu.Lock()
		defer s.mu.Unlock()
		uk := kind + "|" + u.TenantID + "|" + key(body)
		if _, exists := s.unique[uk]; exists {
			writeError(w, http.StatusConflict, kind+" already exists")
			return
		}

		id := uuid.NewString()
		body["id"] = id
		body["tenantId"] = u.TenantID
		if kind == "proposals" {
			body["status"] = "Draft"
		}
		if s.entities[kind] == nil {
			s.entities[kind] = make(map[string]map[string]any)
		}
		s.entities[kind][id] = body
		s.unique[uk] = id
		writeJSON(w, http.StatusCreated, body)
	}
}

func (s *Server) handleTransition(kind, from, to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mu.Lock()
		defer s.mu.Unlock()
		rec, ok := s.entities[kind][id]
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if rec["status"] != from {
			writeError(w, http.StatusBadRequest, "cannot move from "+toString(rec["status"])+" to "+to)
			return
		}
		rec["status"] = to
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCompleteActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Outcome string `json:"outcome"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.entities["activities"][id]
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if rec["completed"] == true {
		writeError(w, http.StatusConflict, "already completed")
		return
	}
	rec["completed"] = true
	rec["outcome"] = body.Outcome
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleList(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := s.userFor(r)
		s.mu.Lock()
		defer s.mu.Unlock()
		items := []map[string]any{}
		for _, rec := range s.entities[kind] {
			if rec["tenantId"] == u.TenantID {
				items = append(items, rec)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items":    items,
			"total":    len(items),
			"page":     r.URL.Query().Get("page"),
			"pageSize": r.URL.Query().Get("pageSize"),
		})
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"name":          chi.URLParam(r, "name"),
		"clients":       len(s.entities["clients"]),
		"opportunities": len(s.entities["opportunities"]),
		"activities":    len(s.entities["activities"]),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "status": status})
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

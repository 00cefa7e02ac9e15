// ABOUTME: Admin authentication and staff account resolution phases
// ABOUTME: Falls back to tenant registration and re-authenticates as admin after staff
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harperreed/salesseed/api"
	"github.com/harperreed/salesseed/models"
)

// accountMissing are login statuses treated as "no such account yet".
var accountMissing = []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusNotFound}

func (r *run) authenticate(ctx context.Context) error {
	sess, err := r.base.Login(ctx, r.admin.Email, r.admin.Password)
	if err == nil {
		r.report.Session = sess
		r.useSession(sess)
		r.result(ItemResult{
			Phase: PhaseAuthenticate, Entity: "admin", Key: r.admin.Email,
			Outcome: Created, ID: sess.UserID, Reason: "logged in",
		}, "")
		return nil
	}
	if !api.HasStatus(err, accountMissing...) {
		return r.failed(PhaseAuthenticate, "admin", r.admin.Email, err)
	}

	status, _ := api.StatusOf(err)
	sess, err = r.base.Register(ctx, models.RegisterRequest{
		Email:      r.admin.Email,
		Password:   r.admin.Password,
		FirstName:  r.admin.FirstName,
		LastName:   r.admin.LastName,
		TenantName: r.admin.TenantName,
	})
	if err != nil {
		return r.failed(PhaseAuthenticate, "admin", r.admin.Email, err)
	}
	r.report.Session = sess
	r.useSession(sess)
	r.result(ItemResult{
		Phase: PhaseAuthenticate, Entity: "admin", Key: r.admin.Email,
		Outcome: Created, ID: sess.UserID,
		Reason: fmt.Sprintf("login answered %d, registered tenant %q", status, r.admin.TenantName),
	}, "")
	return nil
}

func (r *run) resolveStaff(ctx context.Context) error {
	for _, s := range r.data.Staff {
		id, reason, err := r.resolveMember(ctx, s)
		if err != nil {
			return r.failed(PhaseStaff, "staff", s.Key, err)
		}
		if id == "" {
			r.skipped(PhaseStaff, "staff", s.Key, reason)
			continue
		}
		r.report.StaffIDs[s.Key] = id
		r.result(ItemResult{Phase: PhaseStaff, Entity: "staff", Key: s.Key, Outcome: Created, ID: id, Reason: reason}, "")
	}

	// Staff logins replace the active session; everything after this point
	// must run as the admin.
	sess, err := r.base.Login(ctx, r.admin.Email, r.admin.Password)
	if err != nil {
		return r.failed(PhaseStaff, "admin", r.admin.Email, fmt.Errorf("re-authenticate: %w", err))
	}
	r.report.Session = sess
	r.useSession(sess)
	return nil
}

// resolveMember logs in as s, registering the account under the admin's
// tenant when login is refused. An empty id with a nil error means the
// registration conflict was tolerated.
func (r *run) resolveMember(ctx context.Context, s models.StaffSeed) (models.ID, string, error) {
	sess, err := r.client.Login(ctx, s.Email, s.Password)
	if err == nil {
		r.useSession(sess)
		return sess.UserID, "existing account", nil
	}
	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) {
		return "", "", err
	}

	sess, err = r.client.RegisterTolerant(ctx, models.RegisterRequest{
		Email:     s.Email,
		Password:  s.Password,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		TenantID:  r.report.Session.TenantID,
		Role:      s.Role,
	})
	if err != nil {
		return "", "", err
	}
	if sess == nil {
		return "", fmt.Sprintf("login answered %d and registration was refused (tolerated)", reqErr.Status), nil
	}
	r.useSession(sess)
	return sess.UserID, "registered", nil
}

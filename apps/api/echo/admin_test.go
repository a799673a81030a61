package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/studash/dashboard/apps/api/echo"
	"github.com/studash/dashboard/core/audit"
	"github.com/studash/dashboard/core/user"
)

func transitionPath(id int64, action string) string {
	return fmt.Sprintf("/api/admin/users/%d/%s", id, action)
}

func Test_adminApi_permissions(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	suspendedAdmin := app.createUser(t, "Old", "oldadmin", user.RoleAdmin, user.StatusSuspended)
	pending := app.createUser(t, "Newbie", "newbie", user.RoleStudent, user.StatusPending)

	forbidden := marshalObj(t, httpErr{Error: "permission denied"})
	var tests []httpTest
	for _, path := range []string{"/api/admin/dashboard", "/api/admin/users", "/api/admin/audit", "/api/admin/roles"} {
		tests = append(tests,
			httpTest{
				name:     "anonymous " + path,
				method:   http.MethodGet,
				path:     path,
				wantCode: http.StatusUnauthorized,
				wantData: marshalObj(t, errMissingToken),
			},
			httpTest{
				name:     "student " + path,
				method:   http.MethodGet,
				path:     path,
				token:    app.getToken(t, student),
				wantCode: http.StatusForbidden,
				wantData: forbidden,
			},
		)
	}
	tests = append(tests,
		httpTest{
			name:     "student approving",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "approve"),
			token:    app.getToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		httpTest{
			name:     "suspended admin approving",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "approve"),
			token:    app.getToken(t, suspendedAdmin),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account is not active"}),
		},
	)
	runHTTPTests(t, app, tests)

	saved, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: pending.ID})
	require.NoError(t, err)
	assert.Equal(t, user.StatusPending, saved.Status)
	assert.Empty(t, app.mailSvc.SentMessages())
}

func Test_adminApi_transition(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin, user.StatusActive)
	pending := app.createUser(t, "Newbie", "newbie", user.RoleStudent, user.StatusPending)
	adminToken := app.getToken(t, admin)

	// approve
	req, rec := newAuthRequest(http.MethodPost, transitionPath(pending.ID, "approve"), adminToken)
	req.Header.Set("X-Real-IP", "10.1.2.3")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	requestID := rec.Header().Get("X-Request-ID")
	assert.NotEmpty(t, requestID)

	var approved user.User
	decode(t, rec, &approved)
	assert.Equal(t, user.StatusActive, approved.Status)
	if assert.NotNil(t, approved.ApprovedBy) {
		assert.Equal(t, admin.ID, *approved.ApprovedBy)
	}
	assert.NotNil(t, approved.ApprovalDate)

	sent := app.mailSvc.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, pending.Email, sent[0].To[0].Address)
	}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "approve active",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "approve"),
			token:    adminToken,
			wantCode: http.StatusConflict,
		},
		{
			name:     "unknown action",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "promote"),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"action": "unknown action"}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     transitionPath(999, "suspend"),
			token:    adminToken,
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: user.ErrNotFound.Error()}),
		},
		{
			name:     "bad id",
			method:   http.MethodPost,
			path:     "/api/admin/users/abc/suspend",
			token:    adminToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "self suspension",
			method:   http.MethodPost,
			path:     transitionPath(admin.ID, "suspend"),
			token:    adminToken,
			wantCode: http.StatusConflict,
		},
		{
			name:     "suspend",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "suspend"),
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "reactivate",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "approve"),
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "delete",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "delete"),
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "delete deleted",
			method:   http.MethodPost,
			path:     transitionPath(pending.ID, "delete"),
			token:    adminToken,
			wantCode: http.StatusConflict,
		},
	})

	// only the first approval sends an email
	assert.Len(t, app.mailSvc.SentMessages(), 1)

	rec = app.do(http.MethodGet, "/api/admin/audit", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entries []audit.Entry
	decode(t, rec, &entries)
	require.Len(t, entries, 4)

	wantActions := []audit.Action{
		audit.ActionUserDeleted,
		audit.ActionUserApproved,
		audit.ActionUserSuspended,
		audit.ActionUserApproved,
	}
	for i, e := range entries {
		assert.Equal(t, wantActions[i], e.Action)
		assert.Equal(t, admin.ID, e.AdminID)
		assert.Equal(t, pending.ID, e.TargetUserID)
	}
	first := entries[3]
	assert.Equal(t, "10.1.2.3", first.IPAddress)
	assert.Equal(t, requestID, first.RequestID)
	assert.Equal(t, "pending", first.OldValue["status"])
	assert.Equal(t, "active", first.NewValue["status"])

	// filters
	rec = app.do(http.MethodGet, "/api/admin/audit?action=user_suspended&limit=10", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entries = nil
	decode(t, rec, &entries)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, audit.ActionUserSuspended, entries[0].Action)
	}

	rec = app.do(http.MethodGet, "/api/admin/audit?action=bogus", adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_adminApi_users(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin, user.StatusActive)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	pending := app.createUser(t, "Newbie", "newbie", user.RoleStudent, user.StatusPending)
	deleted := app.createUser(t, "Gone", "gone", user.RoleStudent, user.StatusDeleted)
	adminToken := app.getToken(t, admin)

	userIDs := func(rec []user.User) []int64 {
		ids := make([]int64, 0, len(rec))
		for _, u := range rec {
			ids = append(ids, u.ID)
		}
		return ids
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{name: "default hides deleted", query: "", wantIDs: []int64{admin.ID, student.ID, pending.ID}},
		{name: "include deleted", query: "?include_deleted=true", wantIDs: []int64{admin.ID, student.ID, pending.ID, deleted.ID}},
		{name: "status", query: "?status=pending", wantIDs: []int64{pending.ID}},
		{name: "status deleted", query: "?status=deleted", wantIDs: []int64{deleted.ID}},
		{name: "role", query: "?role=admin", wantIDs: []int64{admin.ID}},
		{name: "search", query: "?search=HER", wantIDs: []int64{student.ID}},
		{name: "no match", query: "?search=nobody", wantIDs: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodGet, "/api/admin/users"+tt.query, adminToken)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var users []user.User
			decode(t, rec, &users)
			assert.ElementsMatch(t, tt.wantIDs, userIDs(users))
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "roles",
			method:   http.MethodGet,
			path:     "/api/admin/roles",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, user.Roles),
		},
	})
}

func Test_adminApi_dashboard(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin, user.StatusActive)
	p1 := app.createUser(t, "One", "pending1", user.RoleStudent, user.StatusPending)
	p2 := app.createUser(t, "Two", "pending2", user.RoleStudent, user.StatusPending)
	app.createUser(t, "Gone", "gone", user.RoleStudent, user.StatusSuspended)
	adminToken := app.getToken(t, admin)

	rec := app.do(http.MethodPost, transitionPath(p1.ID, "approve"), adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/admin/dashboard", adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data echoapi.DashboardResponse
	decode(t, rec, &data)
	assert.Equal(t, user.Stats{Total: 4, Pending: 1, Active: 2, Suspended: 1}, data.Users)
	if assert.Len(t, data.Pending, 1) {
		assert.Equal(t, p2.ID, data.Pending[0].ID)
	}
	if assert.Len(t, data.RecentApprovals, 1) {
		assert.Equal(t, p1.ID, data.RecentApprovals[0].UserID)
		assert.Equal(t, "Admin Test", data.RecentApprovals[0].ApprovedByName)
	}
	assert.Equal(t, 0, data.Grades.Total)
	assert.Equal(t, 0, data.Tasks.Total)
}

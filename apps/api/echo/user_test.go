package echoapi_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/studash/dashboard/apps/api/echo"
	"github.com/studash/dashboard/core/user"
)

func Test_userApi_registerAndLogin(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin, user.StatusActive)
	adminToken := app.getToken(t, admin)

	register := marshalObj(t, user.NewUser{
		Username:        "hero",
		Email:           "Hero@Test.cd",
		Password:        pwd,
		PasswordConfirm: pwd,
		FirstName:       "Hero",
		LastName:        "Test",
	})
	login := marshalObj(t, echoapi.LoginRequest{Email: "hero@test.cd", Password: pwd})

	rec := app.do(http.MethodPost, "/api/users/register", "", register)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered echoapi.RegisterResponse
	decode(t, rec, &registered)
	assert.Equal(t, user.StatusPending, registered.User.Status)
	assert.Equal(t, user.RoleStudent, registered.User.Role)
	assert.Equal(t, "hero@test.cd", registered.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "duplicate registration",
			method:   http.MethodPost,
			path:     "/api/users/register",
			body:     register,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name:     "pending login",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     login,
			wantCode: http.StatusAccepted,
			wantData: marshalObj(t, map[string]string{"info": user.ErrPendingApproval.Error()}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     marshalObj(t, echoapi.LoginRequest{Email: "hero@test.cd", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     marshalObj(t, echoapi.LoginRequest{Email: "ghost@test.cd", Password: pwd}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
	})

	// approval unlocks login
	approvePath := "/api/admin/users/" + strconv.FormatInt(registered.User.ID, 10) + "/approve"
	rec = app.do(http.MethodPost, approvePath, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/api/users/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	if assert.NotNil(t, resp.User) {
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLogin)
	}

	// the issued token works
	rec = app.do(http.MethodGet, "/api/users/me", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me user.User
	decode(t, rec, &me)
	assert.Equal(t, "hero", me.Username)
}

func Test_userApi_auth(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	suspended := app.createUser(t, "Naughty", "ndog", user.RoleStudent, user.StatusSuspended)
	pending := app.createUser(t, "Newbie", "newbie", user.RoleStudent, user.StatusPending)

	forbidden := marshalObj(t, httpErr{Error: "account is not active"})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "suspended user",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    app.getToken(t, suspended),
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "pending user",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    app.getToken(t, pending),
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "active user",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    app.getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, student),
		},
		{
			name:     "trailing slash",
			method:   http.MethodGet,
			path:     "/api/users/me/",
			token:    app.getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, student),
		},
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)

	rec := app.do(http.MethodPost, "/api/users/token-refresh", app.getToken(t, student))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echoapi.LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Nil(t, resp.User)

	rec = app.do(http.MethodPost, "/api/users/token-refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_userApi_profile(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	token := app.getToken(t, student)

	rec := app.do(http.MethodPut, "/api/users/me", token, marshalObj(t, user.UpdateProfile{
		FirstName: "  Super ",
		LastName:  "Hero",
		City:      "Kinshasa",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated user.User
	decode(t, rec, &updated)
	assert.Equal(t, "Super", updated.FirstName)
	assert.Equal(t, "Kinshasa", updated.City)
	assert.Equal(t, student.Status, updated.Status)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "blank name",
			method:   http.MethodPut,
			path:     "/api/users/me",
			token:    token,
			body:     marshalObj(t, user.UpdateProfile{FirstName: "Hero"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"last_name": "this field is required"}),
		},
		{
			name:     "wrong current password",
			method:   http.MethodPost,
			path:     "/api/users/me/password",
			token:    token,
			body:     marshalObj(t, user.ChangePassword{CurrentPassword: "nope", Password: "N3wPassw0rd!", PasswordConfirm: "N3wPassw0rd!"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"current_password": "current password is incorrect"}),
		},
		{
			name:     "change password",
			method:   http.MethodPost,
			path:     "/api/users/me/password",
			token:    token,
			body:     marshalObj(t, user.ChangePassword{CurrentPassword: pwd, Password: "N3wPassw0rd!", PasswordConfirm: "N3wPassw0rd!"}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.SuccessResponse{Success: "Password has been changed."}),
		},
	})

	rec = app.do(http.MethodPost, "/api/users/login", "", marshalObj(t, echoapi.LoginRequest{Email: student.Email, Password: "N3wPassw0rd!"}))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	student := app.createUser(t, "Hero", "hero", user.RoleStudent, user.StatusActive)
	success := marshalObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/api/users/password-reset",
			body:     marshalObj(t, echoapi.PasswordResetRequest{Email: "ghost@test.cd"}),
			wantCode: http.StatusOK,
			wantData: success,
		},
		{
			name:     "known email",
			method:   http.MethodPost,
			path:     "/api/users/password-reset",
			body:     marshalObj(t, echoapi.PasswordResetRequest{Email: student.Email}),
			wantCode: http.StatusOK,
			wantData: success,
		},
	})

	sent := app.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	data, ok := sent[0].TemplateData.(map[string]string)
	require.True(t, ok)

	newPwd := "An0therPassw0rd"
	runHTTPTests(t, app, []httpTest{
		{
			name:   "bad token",
			method: http.MethodPost,
			path:   "/api/users/password-reset-confirm",
			body: marshalObj(t, user.ResetUserPassword{
				UID: data["UID"], Token: "bad-token", Password: newPwd, PasswordConfirm: newPwd,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"token": user.ErrInvalidResetToken.Error()}),
		},
		{
			name:   "valid token",
			method: http.MethodPost,
			path:   "/api/users/password-reset-confirm",
			body: marshalObj(t, user.ResetUserPassword{
				UID: data["UID"], Token: data["Token"], Password: newPwd, PasswordConfirm: newPwd,
			}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	})
}

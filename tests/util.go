// Package testutil holds fixtures shared by the test suites.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/user"
)

// Config returns a test configuration with the cheapest bcrypt cost.
func Config() *core.Config {
	return &core.Config{
		Debug:                     false,
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "Student Dashboard",
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:3000",
		BcryptCost:                4,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
		},
		Scheduler: core.SchedulerConfig{OverdueSweepSpec: "@every 15m"},
	}
}

// Validator returns a validator & translator with every custom tag registered.
func Validator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, uname, email, pwd string,
	role user.Role,
	status user.Status,
	registeredAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(registeredAt) > 0 {
		tstamp = registeredAt[0].UTC()
	}
	usr := user.User{
		Username:         uname,
		Email:            email,
		FirstName:        firstName,
		LastName:         "Test",
		Role:             role,
		Status:           status,
		RegistrationDate: tstamp,
		UpdatedAt:        tstamp,
	}
	if status == user.StatusActive && role == user.RoleStudent {
		usr.ApprovalDate = &tstamp
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd, 4); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

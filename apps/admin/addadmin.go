package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/user"
)

// addAdmin creates an active admin account. Registration's password policy applies.
func (cli *commandLine) addAdmin(nu user.NewUser) error {
	ctx := context.Background()
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)

	if err := cli.validate.Struct(nu); err != nil {
		return err
	}
	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, nu.Username, nu.Email, nil); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Username:         nu.Username,
		Email:            nu.Email,
		FirstName:        nu.FirstName,
		LastName:         nu.LastName,
		Role:             user.RoleAdmin,
		Status:           user.StatusActive,
		RegistrationDate: now,
		ApprovalDate:     &now,
		UpdatedAt:        now,
	}
	if err := usr.SetPassword(nu.Password, cli.conf.BcryptCost); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	if _, err := cli.usrRepo.CreateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return nil
}

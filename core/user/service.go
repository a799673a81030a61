package user

import (
	"context"
	"net/mail"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnauthorized       = errors.New("not authorized to perform this action")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPendingApproval    = errors.New("your account is pending approval by an administrator")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
	errIncorrectPassword  = errors.New("current password is incorrect")

	NowFunc = time.Now // mockable
)

const (
	recentApprovalsLimit = 5

	tmplAccountApproved = "account_approved"
	tmplPasswordReset   = "password_reset"
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of username, email, first or last name.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		// UpdateUser saves the User's profile and password hash.
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// SetLastLogin only touches the last_login column.
		SetLastLogin(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
		// UpdateUserStatus saves the User's status, approval date and approver.
		UpdateUserStatus(ctx context.Context, usr User, exec ...core.DBExecutor) error
		UserStats(ctx context.Context, exec ...core.DBExecutor) (Stats, error)
		RecentApprovals(ctx context.Context, limit int, exec ...core.DBExecutor) ([]Approval, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error
		Register(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id int64) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		Pending(ctx context.Context) ([]User, error)
		Stats(ctx context.Context) (Stats, error)
		RecentApprovals(ctx context.Context) ([]Approval, error)
		Transition(ctx context.Context, targetID int64, action Action, principal Principal, meta audit.RequestMeta) (User, error)
		UpdateProfile(ctx context.Context, principal Principal, up UpdateProfile) (User, error)
		ChangePassword(ctx context.Context, principal Principal, cp ChangePassword) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	Service struct {
		db        core.Transactor
		repo      Repository
		auditRepo audit.Repository
		mailSvc   core.EmailService
		tokens    tokenGenerator
		opts      TransitionOptions
		pwdCost   int

		dummyHashOnce sync.Once
		dummyHash     []byte
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	db core.Transactor,
	repo Repository,
	auditRepo audit.Repository,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		auditRepo: auditRepo,
		mailSvc:   mailSvc,
		tokens:    newTokenGenerator([]byte(conf.SecretKey), conf.PasswordResetTimeoutDelta),
		opts:      TransitionOptions{DistinctReactivation: conf.Audit.DistinctReactivation},
		pwdCost:   conf.BcryptCost,
	}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking user uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register creates a new student account awaiting admin approval.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := NowFunc().UTC()
	usr := User{
		Username:         nu.Username,
		Email:            nu.Email,
		FirstName:        nu.FirstName,
		LastName:         nu.LastName,
		Role:             RoleStudent,
		Status:           StatusPending,
		RegistrationDate: now,
		UpdatedAt:        now,
	}
	if err := usr.SetPassword(nu.Password, svc.pwdCost); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) compareDummyHash(pwd string) {
	svc.dummyHashOnce.Do(func() {
		svc.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), svc.cost())
	})
	_ = bcrypt.CompareHashAndPassword(svc.dummyHash, []byte(pwd))
}

func (svc *Service) cost() int {
	if svc.pwdCost == 0 {
		return bcrypt.DefaultCost
	}
	return svc.pwdCost
}

// Authenticate verifies the credentials first and only then looks at the account status.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			svc.compareDummyHash(pwd)
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}

	switch usr.Status {
	case StatusActive:
	case StatusPending:
		return User{}, ErrPendingApproval
	default:
		return User{}, ErrInvalidCredentials
	}

	now := NowFunc().UTC()
	if err = svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin = &now
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

// Pending returns the approval queue, oldest registration first.
func (svc *Service) Pending(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(
		ctx,
		&QueryFilter{Status: StatusPending},
		[]core.DBOrdering{{Field: "registration_date", Ascending: true}},
	)
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	return svc.repo.UserStats(ctx)
}

func (svc *Service) RecentApprovals(ctx context.Context) ([]Approval, error) {
	return svc.repo.RecentApprovals(ctx, recentApprovalsLimit)
}

// Transition applies a lifecycle action to the target user on behalf of principal.
// The status update and its audit entry are committed together or not at all.
func (svc *Service) Transition(
	ctx context.Context,
	targetID int64,
	action Action,
	principal Principal,
	meta audit.RequestMeta,
) (User, error) {
	var (
		prev    User
		updated User
	)
	err := svc.db.InTx(ctx, func(exec core.DBExecutor) error {
		actor, err := svc.repo.GetUser(ctx, GetFilter{ID: principal.ID}, exec)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return ErrUnauthorized
			}
			return errors.Wrap(err, "finding acting user")
		}
		if !(actor.IsAdmin() && actor.IsActive()) {
			return ErrUnauthorized
		}

		prev, err = svc.repo.GetUser(ctx, GetFilter{ID: targetID, ForUpdate: true}, exec)
		if err != nil {
			return err
		}

		var entry audit.Entry
		updated, entry, err = Apply(prev, action, actor, NowFunc(), svc.opts)
		if err != nil {
			return err
		}
		entry.IPAddress = meta.IPAddress
		entry.RequestID = meta.RequestID

		if err = svc.repo.UpdateUserStatus(ctx, updated, exec); err != nil {
			return errors.Wrap(err, "updating user status")
		}
		if _, err = svc.auditRepo.InsertEntry(ctx, entry, exec); err != nil {
			return errors.Wrap(err, "inserting audit entry")
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}

	if prev.Status == StatusPending && updated.Status == StatusActive {
		svc.sendAccountApprovedMail(updated)
	}
	return updated, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, principal Principal, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: principal.ID})
	if err != nil {
		return User{}, err
	}
	usr.FirstName = up.FirstName
	usr.LastName = up.LastName
	usr.Bio = up.Bio
	usr.Phone = up.Phone
	usr.City = up.City
	usr.Country = up.Country
	usr.UpdatedAt = NowFunc().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating profile")
	}
	return usr, nil
}

// ChangePassword sets a new password after verifying the current one. cp is expected to be validated.
func (svc *Service) ChangePassword(ctx context.Context, principal Principal, cp ChangePassword) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: principal.ID})
	if err != nil {
		return err
	}
	if err = usr.CheckPassword(cp.CurrentPassword); err != nil {
		return core.NewValidationError(
			errIncorrectPassword,
			core.FieldError{Field: "current_password", Error: errIncorrectPassword.Error()},
		)
	}
	if err = usr.SetPassword(cp.Password, svc.pwdCost); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = NowFunc().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}

// RequestPasswordReset emails a password reset link to the active user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !usr.IsActive() {
		return ErrNotFound
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalidTokenErr := core.NewValidationError(
		ErrInvalidResetToken,
		core.FieldError{Field: "token", Error: ErrInvalidResetToken.Error()},
	)

	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidTokenErr
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalidTokenErr
		}
		return err
	}
	if !usr.IsActive() {
		return invalidTokenErr
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return invalidTokenErr
	}

	if err = usr.SetPassword(data.Password, svc.pwdCost); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = NowFunc().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}

func (svc *Service) sendAccountApprovedMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Your account has been approved",
		TemplateName: tmplAccountApproved,
		TemplateData: map[string]string{
			"Name":     usr.FirstName,
			"Username": usr.Username,
		},
	})
}

func (svc *Service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: tmplPasswordReset,
		TemplateData: map[string]string{
			"Name":     usr.FirstName,
			"Username": usr.Username,
			"UID":      EncodeUID(usr),
			"Token":    svc.tokens.makeToken(usr),
		},
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

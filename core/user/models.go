package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/studash/dashboard/core"
)

type (
	Role   string
	Status string
)

// Roles
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Statuses
const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

var (
	AllRoles    = []Role{RoleStudent, RoleAdmin}
	AllStatuses = []Status{StatusPending, StatusActive, StatusSuspended, StatusDeleted}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Role             Role       `json:"role"`
	Status           Status     `json:"status"`
	PasswordHash     []byte     `json:"-"`
	Bio              string     `json:"bio"`
	Phone            string     `json:"phone"`
	City             string     `json:"city"`
	Country          string     `json:"country"`
	RegistrationDate time.Time  `json:"registration_date"`       // UTC
	ApprovalDate     *time.Time `json:"approval_date,omitempty"` // UTC
	ApprovedBy       *int64     `json:"approved_by,omitempty"`
	LastLogin        *time.Time `json:"last_login,omitempty"` // UTC
	UpdatedAt        time.Time  `json:"updated_at"`           // UTC
}

func (u *User) SetPassword(pwd string, cost int) error {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// Principal is the authenticated caller an operation runs on behalf of.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,max=50,username"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,notblank,max=100"`
	LastName        string `json:"last_name" validate:"required,notblank,max=100"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.Username = core.CleanString(nu.Username)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateProfile defines what information a User may modify on their own profile.
type UpdateProfile struct {
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
	Bio       string `json:"bio" validate:"max=1000"`
	Phone     string `json:"phone" validate:"max=20"`
	City      string `json:"city" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Bio = core.CleanString(up.Bio)
	up.Phone = core.CleanString(up.Phone)
	up.City = core.CleanString(up.City)
	up.Country = core.CleanString(up.Country)
	return validate.Struct(up)
}

type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// used by the password similarity check
	usr User
}

func (cp *ChangePassword) Validate(validate *validator.Validate, usr User) error {
	cp.usr = usr
	return validate.Struct(cp)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search         string `query:"search"`
	Status         Status `query:"status"`
	Role           Role   `query:"role"`
	IncludeDeleted bool   `query:"include_deleted"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
	qf.Role = Role(core.CleanString(string(qf.Role), true /* lower */))
}

// GetFilter selects a single User. Exactly one lookup field is expected to be set.
type GetFilter struct {
	ID              int64
	Username        string
	Email           string
	UsernameOrEmail string
	// ForUpdate locks the selected row until the end of the enclosing transaction.
	ForUpdate bool
}

// Stats holds user counts per status.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Suspended int `json:"suspended"`
	Deleted   int `json:"deleted"`
}

// Approval is a recently approved User along with the approving admin's name.
type Approval struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ApprovalDate   time.Time `json:"approval_date"`
	ApprovedByID   int64     `json:"approved_by_id"`
	ApprovedByName string    `json:"approved_by_name"`
}

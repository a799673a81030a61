package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/user"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, status, bio, phone, city, country,
	registration_date, approval_date, approved_by, last_login, updated_at`

// userOrderingFields are the columns users can be ordered by.
var userOrderingFields = map[string]bool{
	"id": true, "username": true, "email": true, "first_name": true, "last_name": true,
	"status": true, "role": true, "registration_date": true, "approval_date": true, "last_login": true,
}

type userRow struct {
	ID               int64      `db:"id"`
	Username         string     `db:"username"`
	Email            string     `db:"email"`
	PasswordHash     []byte     `db:"password_hash"`
	FirstName        string     `db:"first_name"`
	LastName         string     `db:"last_name"`
	Role             string     `db:"role"`
	Status           string     `db:"status"`
	Bio              string     `db:"bio"`
	Phone            string     `db:"phone"`
	City             string     `db:"city"`
	Country          string     `db:"country"`
	RegistrationDate time.Time  `db:"registration_date"`
	ApprovalDate     null.Time  `db:"approval_date"`
	ApprovedBy       null.Int64 `db:"approved_by"`
	LastLogin        null.Time  `db:"last_login"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	return getExec(repo.exec, svcExec)
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:               usr.ID,
		Username:         usr.Username,
		Email:            usr.Email,
		PasswordHash:     usr.PasswordHash,
		FirstName:        usr.FirstName,
		LastName:         usr.LastName,
		Role:             string(usr.Role),
		Status:           string(usr.Status),
		Bio:              usr.Bio,
		Phone:            usr.Phone,
		City:             usr.City,
		Country:          usr.Country,
		RegistrationDate: usr.RegistrationDate.UTC(),
		ApprovalDate:     null.TimeFromPtr(utcPtr(usr.ApprovalDate)),
		ApprovedBy:       null.Int64FromPtr(usr.ApprovedBy),
		LastLogin:        null.TimeFromPtr(utcPtr(usr.LastLogin)),
		UpdatedAt:        usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	return user.User{
		ID:               row.ID,
		Username:         row.Username,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		Role:             user.Role(row.Role),
		Status:           user.Status(row.Status),
		Bio:              row.Bio,
		Phone:            row.Phone,
		City:             row.City,
		Country:          row.Country,
		RegistrationDate: row.RegistrationDate.UTC(),
		ApprovalDate:     utcPtr(row.ApprovalDate.Ptr()),
		ApprovedBy:       row.ApprovedBy.Ptr(),
		LastLogin:        utcPtr(row.LastLogin.Ptr()),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func (repo userRepository) unboilSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, repo.unboil(r))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(
	ctx context.Context,
	username, email string,
	excludedUsers []user.User,
	exec ...core.DBExecutor,
) error {
	q := "SELECT username, email FROM users WHERE (LOWER(username) = LOWER(?) OR email = ?)"
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]int64, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += " AND id NOT IN (?)"
		args = append(args, ids)
	}
	q += " LIMIT 1"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}
	exe := repo.getExec(exec)

	var match struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err = exe.GetContext(ctx, &match, exe.Rebind(q), args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	if strings.EqualFold(match.Username, username) {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	row := repo.boil(usr)
	q := `INSERT INTO users (username, email, password_hash, first_name, last_name, role, status, bio, phone, city,
		country, registration_date, approval_date, approved_by, last_login, updated_at)
		VALUES (:username, :email, :password_hash, :first_name, :last_name, :role, :status, :bio, :phone, :city,
		:country, :registration_date, :approval_date, :approved_by, :last_login, :updated_at)
		RETURNING id`

	exe := repo.getExec(exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "binding user")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE "
	var arg interface{}
	switch {
	case filter.ID != 0:
		q += "id = ?"
		arg = filter.ID
	case filter.Username != "":
		q += "LOWER(username) = LOWER(?)"
		arg = filter.Username
	case filter.Email != "":
		q += "email = ?"
		arg = filter.Email
	case filter.UsernameOrEmail != "":
		q += "(LOWER(username) = LOWER(?) OR email = LOWER(?))"
		return repo.getOne(ctx, q, filter.ForUpdate, exec, filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}
	return repo.getOne(ctx, q, filter.ForUpdate, exec, arg)
}

func (repo userRepository) getOne(ctx context.Context, q string, forUpdate bool, exec []core.DBExecutor, args ...interface{}) (user.User, error) {
	if forUpdate {
		q += " FOR UPDATE"
	}
	exe := repo.getExec(exec)

	var row userRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(q), args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) QueryUsers(
	ctx context.Context,
	filter *user.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]user.User, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter != nil {
		// users with username, email, first or last name matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where = append(where, "(username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)")
			args = append(args, val, val, val, val)
		}
		if filter.Status != "" {
			where = append(where, "status = ?")
			args = append(args, string(filter.Status))
		} else if !filter.IncludeDeleted {
			where = append(where, "status <> ?")
			args = append(args, string(user.StatusDeleted))
		}
		if filter.Role != "" {
			where = append(where, "role = ?")
			args = append(args, string(filter.Role))
		}
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(ordering, userOrderingFields, "registration_date DESC")

	exe := repo.getExec(exec)
	var rows []userRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	row := repo.boil(usr)
	q := `UPDATE users SET first_name = :first_name, last_name = :last_name, password_hash = :password_hash,
		bio = :bio, phone = :phone, city = :city, country = :country, updated_at = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return repo.unboil(row), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, "UPDATE users SET last_login = $1 WHERE id = $2", at.UTC(), id)
	if err != nil {
		return errors.Wrap(err, "setting last login")
	}
	return checkAffected(res, user.ErrNotFound)
}

func (repo userRepository) UpdateUserStatus(ctx context.Context, usr user.User, exec ...core.DBExecutor) error {
	row := repo.boil(usr)
	q := `UPDATE users SET status = :status, approval_date = :approval_date, approved_by = :approved_by,
		updated_at = :updated_at WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row)
	if err != nil {
		return errors.Wrap(err, "updating user status")
	}
	return checkAffected(res, user.ErrNotFound)
}

func (repo userRepository) UserStats(ctx context.Context, exec ...core.DBExecutor) (user.Stats, error) {
	q := `SELECT COUNT(*) FILTER (WHERE status <> 'deleted') AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'active') AS active,
		COUNT(*) FILTER (WHERE status = 'suspended') AS suspended,
		COUNT(*) FILTER (WHERE status = 'deleted') AS deleted
		FROM users`

	var row struct {
		Total     int `db:"total"`
		Pending   int `db:"pending"`
		Active    int `db:"active"`
		Suspended int `db:"suspended"`
		Deleted   int `db:"deleted"`
	}
	if err := repo.getExec(exec).GetContext(ctx, &row, q); err != nil {
		return user.Stats{}, errors.Wrap(err, "counting users")
	}
	return user.Stats(row), nil
}

func (repo userRepository) RecentApprovals(ctx context.Context, limit int, exec ...core.DBExecutor) ([]user.Approval, error) {
	q := `SELECT u.id, u.username, u.first_name, u.last_name, u.approval_date,
		a.id AS approved_by_id, a.first_name || ' ' || a.last_name AS approved_by_name
		FROM users u JOIN users a ON a.id = u.approved_by
		WHERE u.approval_date IS NOT NULL
		ORDER BY u.approval_date DESC
		LIMIT $1`

	var rows []struct {
		ID             int64     `db:"id"`
		Username       string    `db:"username"`
		FirstName      string    `db:"first_name"`
		LastName       string    `db:"last_name"`
		ApprovalDate   time.Time `db:"approval_date"`
		ApprovedByID   int64     `db:"approved_by_id"`
		ApprovedByName string    `db:"approved_by_name"`
	}
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying recent approvals")
	}

	approvals := make([]user.Approval, 0, len(rows))
	for _, r := range rows {
		approvals = append(approvals, user.Approval{
			UserID:         r.ID,
			Username:       r.Username,
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			ApprovalDate:   r.ApprovalDate.UTC(),
			ApprovedByID:   r.ApprovedByID,
			ApprovedByName: r.ApprovedByName,
		})
	}
	return approvals, nil
}

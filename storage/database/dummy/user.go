package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(
	_ context.Context,
	username, email string,
	excludedUsers []user.User,
	_ ...core.DBExecutor,
) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[int64]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.query() {
		if excluded[usr.ID] {
			continue
		}
		if strings.EqualFold(usr.Username, username) {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	usr.ID = repo.db.pk
	repo.db.table[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.table[filter.ID]; ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.table {
		switch {
		case filter.Username != "" && strings.EqualFold(usr.Username, filter.Username),
			filter.Email != "" && usr.Email == filter.Email,
			filter.UsernameOrEmail != "" &&
				(strings.EqualFold(usr.Username, filter.UsernameOrEmail) || usr.Email == strings.ToLower(filter.UsernameOrEmail)):
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(
	_ context.Context,
	filter *user.QueryFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()
	if filter != nil {
		search := strings.ToLower(filter.Search)
		filtered := users[:0]
		for _, u := range users {
			// users with search keyword matching any of username, email, first or last name ?
			if search != "" &&
				!strings.Contains(strings.ToLower(u.Username), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) &&
				!strings.Contains(strings.ToLower(u.FirstName), search) &&
				!strings.Contains(strings.ToLower(u.LastName), search) {
				continue
			}
			if filter.Status != "" {
				if u.Status != filter.Status {
					continue
				}
			} else if !filter.IncludeDeleted && u.Status == user.StatusDeleted {
				continue
			}
			if filter.Role != "" && u.Role != filter.Role {
				continue
			}
			filtered = append(filtered, u)
		}
		users = filtered
	}

	less := func(a, b user.User) bool { return a.RegistrationDate.After(b.RegistrationDate) }
	if len(ordering) > 0 && ordering[0].Field == "registration_date" && ordering[0].Ascending {
		less = func(a, b user.User) bool { return a.RegistrationDate.Before(b.RegistrationDate) }
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].RegistrationDate.Equal(users[j].RegistrationDate) {
			return users[i].ID < users[j].ID
		}
		return less(users[i], users[j])
	})
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.FirstName = usr.FirstName
	orig.LastName = usr.LastName
	orig.PasswordHash = usr.PasswordHash
	orig.Bio = usr.Bio
	orig.Phone = usr.Phone
	orig.City = usr.City
	orig.Country = usr.Country
	orig.UpdatedAt = usr.UpdatedAt

	repo.db.table[usr.ID] = orig
	return orig, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return user.ErrNotFound
	}
	orig.LastLogin = &at
	repo.db.table[id] = orig
	return nil
}

func (repo *userRepository) UpdateUserStatus(_ context.Context, usr user.User, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	orig.Status = usr.Status
	orig.ApprovalDate = usr.ApprovalDate
	orig.ApprovedBy = usr.ApprovedBy
	orig.UpdatedAt = usr.UpdatedAt

	repo.db.table[usr.ID] = orig
	return nil
}

func (repo *userRepository) UserStats(_ context.Context, _ ...core.DBExecutor) (user.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats user.Stats
	for _, u := range repo.db.table {
		if u.Status != user.StatusDeleted {
			stats.Total++
		}
		switch u.Status {
		case user.StatusPending:
			stats.Pending++
		case user.StatusActive:
			stats.Active++
		case user.StatusSuspended:
			stats.Suspended++
		case user.StatusDeleted:
			stats.Deleted++
		}
	}
	return stats, nil
}

func (repo *userRepository) RecentApprovals(_ context.Context, limit int, _ ...core.DBExecutor) ([]user.Approval, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var approvals []user.Approval
	for _, u := range repo.db.table {
		if u.ApprovalDate == nil || u.ApprovedBy == nil {
			continue
		}
		approver, ok := repo.db.table[*u.ApprovedBy]
		if !ok {
			continue
		}
		approvals = append(approvals, user.Approval{
			UserID:         u.ID,
			Username:       u.Username,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			ApprovalDate:   *u.ApprovalDate,
			ApprovedByID:   approver.ID,
			ApprovedByName: approver.FullName(),
		})
	}
	sort.Slice(approvals, func(i, j int) bool { return approvals[i].ApprovalDate.After(approvals[j].ApprovalDate) })
	if limit > 0 && len(approvals) > limit {
		approvals = approvals[:limit]
	}
	return approvals, nil
}

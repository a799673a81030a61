package dummydb

import (
	"context"
	"sort"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
)

type auditRepository struct {
	db *auditTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) InsertEntry(_ context.Context, entry audit.Entry, _ ...core.DBExecutor) (audit.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	entry.ID = repo.db.pk
	repo.db.table[entry.ID] = entry
	return entry, nil
}

func (repo *auditRepository) QueryEntries(_ context.Context, filter audit.QueryFilter, _ ...core.DBExecutor) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]audit.Entry, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		if filter.AdminID != 0 && e.AdminID != filter.AdminID {
			continue
		}
		if filter.TargetUserID != 0 && e.TargetUserID != filter.TargetUserID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(entries) {
			return []audit.Entry{}, nil
		}
		entries = entries[filter.Offset:]
	}
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

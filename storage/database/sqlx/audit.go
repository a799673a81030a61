package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
)

type auditRow struct {
	ID             int64          `db:"id"`
	AdminID        int64          `db:"admin_id"`
	Action         string         `db:"action"`
	TargetUserID   null.Int64     `db:"target_user_id"`
	TargetTable    string         `db:"target_table"`
	TargetRecordID null.Int64     `db:"target_record_id"`
	OldValue       audit.Snapshot `db:"old_value"`
	NewValue       audit.Snapshot `db:"new_value"`
	IPAddress      string         `db:"ip_address"`
	RequestID      string         `db:"request_id"`
	CreatedAt      time.Time      `db:"created_at"`
}

type auditRepository struct {
	exec core.DBExecutor
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(exec core.DBExecutor) *auditRepository {
	return &auditRepository{exec: exec}
}

func (repo auditRepository) boil(e audit.Entry) auditRow {
	return auditRow{
		ID:             e.ID,
		AdminID:        e.AdminID,
		Action:         string(e.Action),
		TargetUserID:   null.NewInt64(e.TargetUserID, e.TargetUserID != 0),
		TargetTable:    e.TargetTable,
		TargetRecordID: null.NewInt64(e.TargetRecordID, e.TargetRecordID != 0),
		OldValue:       e.OldValue,
		NewValue:       e.NewValue,
		IPAddress:      e.IPAddress,
		RequestID:      e.RequestID,
		CreatedAt:      e.CreatedAt.UTC(),
	}
}

func (repo auditRepository) unboil(row auditRow) audit.Entry {
	return audit.Entry{
		ID:             row.ID,
		AdminID:        row.AdminID,
		Action:         audit.Action(row.Action),
		TargetUserID:   row.TargetUserID.Int64,
		TargetTable:    row.TargetTable,
		TargetRecordID: row.TargetRecordID.Int64,
		OldValue:       row.OldValue,
		NewValue:       row.NewValue,
		IPAddress:      row.IPAddress,
		RequestID:      row.RequestID,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}

func (repo auditRepository) InsertEntry(ctx context.Context, entry audit.Entry, exec ...core.DBExecutor) (audit.Entry, error) {
	row := repo.boil(entry)
	q := `INSERT INTO admin_audit_log (admin_id, action, target_user_id, target_table, target_record_id, old_value,
		new_value, ip_address, request_id, created_at)
		VALUES (:admin_id, :action, :target_user_id, :target_table, :target_record_id, :old_value,
		:new_value, :ip_address, :request_id, :created_at)
		RETURNING id`

	exe := getExec(repo.exec, exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "binding audit entry")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return repo.unboil(row), nil
}

func (repo auditRepository) QueryEntries(ctx context.Context, filter audit.QueryFilter, exec ...core.DBExecutor) ([]audit.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.AdminID != 0 {
		where = append(where, "admin_id = ?")
		args = append(args, filter.AdminID)
	}
	if filter.TargetUserID != 0 {
		where = append(where, "target_user_id = ?")
		args = append(args, filter.TargetUserID)
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(filter.Action))
	}

	q := `SELECT id, admin_id, action, target_user_id, target_table, target_record_id, old_value, new_value,
		ip_address, request_id, created_at FROM admin_audit_log`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	exe := getExec(repo.exec, exec)
	var rows []auditRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying audit entries")
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, repo.unboil(r))
	}
	return entries, nil
}

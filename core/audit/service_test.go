package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/audit"
	dummydb "github.com/studash/dashboard/storage/database/dummy"
)

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	repo := dummydb.NewAuditRepository(dummydb.Open())
	svc := audit.NewService(repo)

	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		act := audit.ActionUserApproved
		if i%2 == 1 {
			act = audit.ActionUserSuspended
		}
		_, err := repo.InsertEntry(ctx, audit.Entry{
			AdminID:      1,
			Action:       act,
			TargetUserID: int64(i%3 + 2),
			TargetTable:  "users",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		filter    audit.QueryFilter
		wantLen   int
		wantFirst time.Time
	}{
		{name: "default limit", filter: audit.QueryFilter{}, wantLen: 50, wantFirst: base.Add(59 * time.Minute)},
		{name: "limit & offset", filter: audit.QueryFilter{Limit: 5, Offset: 10}, wantLen: 5, wantFirst: base.Add(49 * time.Minute)},
		{name: "max limit", filter: audit.QueryFilter{Limit: 1000}, wantLen: 60, wantFirst: base.Add(59 * time.Minute)},
		{name: "by action", filter: audit.QueryFilter{Action: audit.ActionUserApproved}, wantLen: 30, wantFirst: base.Add(58 * time.Minute)},
		{name: "by target", filter: audit.QueryFilter{TargetUserID: 2}, wantLen: 20, wantFirst: base.Add(57 * time.Minute)},
		{name: "offset past end", filter: audit.QueryFilter{Offset: 100}, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, entries, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, entries[0].CreatedAt)
			}
			for i := 1; i < len(entries); i++ {
				assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt), "entries are newest first")
			}
		})
	}

	_, err := svc.Query(ctx, audit.QueryFilter{Action: "user_promoted"})
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok)
}

func TestSnapshot_ValueScan(t *testing.T) {
	snap := audit.Snapshot{"status": "active", "approved_by": float64(3)}
	v, err := snap.Value()
	require.NoError(t, err)

	var got audit.Snapshot
	require.NoError(t, got.Scan(v))
	assert.Equal(t, snap, got)

	var empty audit.Snapshot
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
	assert.Error(t, empty.Scan(42))
}

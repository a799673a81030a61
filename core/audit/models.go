package audit

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Action string

// Actions
const (
	ActionUserApproved    Action = "user_approved"
	ActionUserSuspended   Action = "user_suspended"
	ActionUserDeleted     Action = "user_deleted"
	ActionUserReactivated Action = "user_reactivated"
)

var AllActions = []Action{ActionUserApproved, ActionUserSuspended, ActionUserDeleted, ActionUserReactivated}

func (a Action) IsValid() bool {
	for _, act := range AllActions {
		if a == act {
			return true
		}
	}
	return false
}

// Snapshot is a JSON object capturing a record's state before or after a change.
type Snapshot map[string]interface{}

func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Snapshot) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("audit.Snapshot: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, s)
}

// Entry is an append-only record of an admin action.
type Entry struct {
	ID             int64     `json:"id"`
	AdminID        int64     `json:"admin_id"`
	Action         Action    `json:"action"`
	TargetUserID   int64     `json:"target_user_id"`
	TargetTable    string    `json:"target_table"`
	TargetRecordID int64     `json:"target_record_id"`
	OldValue       Snapshot  `json:"old_value"`
	NewValue       Snapshot  `json:"new_value"`
	IPAddress      string    `json:"ip_address"`
	RequestID      string    `json:"request_id"`
	CreatedAt      time.Time `json:"created_at"` // UTC
}

// RequestMeta carries the request details recorded with an Entry.
type RequestMeta struct {
	IPAddress string
	RequestID string
}

type QueryFilter struct {
	AdminID      int64  `query:"admin_id"`
	TargetUserID int64  `query:"target_user_id"`
	Action       Action `query:"action"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

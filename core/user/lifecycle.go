package user

import (
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core/audit"
)

type Action string

// Lifecycle actions
const (
	ActionApprove Action = "approve"
	ActionSuspend Action = "suspend"
	ActionDelete  Action = "delete"
)

const usersTable = "users"

// transitions maps a status to the actions allowed from it and their resulting status.
// deleted is terminal.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusActive,
		ActionDelete:  StatusDeleted,
	},
	StatusActive: {
		ActionSuspend: StatusSuspended,
		ActionDelete:  StatusDeleted,
	},
	StatusSuspended: {
		ActionApprove: StatusActive,
		ActionDelete:  StatusDeleted,
	},
}

func ParseAction(s string) (Action, error) {
	switch act := Action(s); act {
	case ActionApprove, ActionSuspend, ActionDelete:
		return act, nil
	}
	return "", errors.Wrapf(ErrInvalidTransition, "unknown action %q", s)
}

// NextStatus returns the status reached by applying action from status `from`.
func NextStatus(from Status, action Action) (Status, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return "", errors.Wrapf(ErrInvalidTransition, "cannot %s a %s user", action, from)
}

type TransitionOptions struct {
	// DistinctReactivation audits suspended -> active as user_reactivated.
	DistinctReactivation bool
}

// Apply computes the result of `actor` applying `action` to `target` at `now`: the updated User
// and the audit Entry recording it. It does not persist anything.
func Apply(target User, action Action, actor User, now time.Time, opts TransitionOptions) (User, audit.Entry, error) {
	if !(actor.IsAdmin() && actor.IsActive()) {
		return User{}, audit.Entry{}, ErrUnauthorized
	}
	if actor.ID == target.ID {
		return User{}, audit.Entry{}, errors.Wrap(ErrInvalidTransition, "cannot change the status of your own account")
	}

	next, err := NextStatus(target.Status, action)
	if err != nil {
		return User{}, audit.Entry{}, err
	}

	now = now.UTC()
	updated := target
	updated.Status = next
	updated.UpdatedAt = now

	var auditAction audit.Action
	switch action {
	case ActionApprove:
		auditAction = audit.ActionUserApproved
		if target.Status == StatusPending {
			approvedBy := actor.ID
			updated.ApprovalDate = &now
			updated.ApprovedBy = &approvedBy
		} else if opts.DistinctReactivation {
			auditAction = audit.ActionUserReactivated
		}
	case ActionSuspend:
		auditAction = audit.ActionUserSuspended
	case ActionDelete:
		auditAction = audit.ActionUserDeleted
	}

	entry := audit.Entry{
		AdminID:        actor.ID,
		Action:         auditAction,
		TargetUserID:   target.ID,
		TargetTable:    usersTable,
		TargetRecordID: target.ID,
		OldValue:       statusSnapshot(target),
		NewValue:       statusSnapshot(updated),
		CreatedAt:      now,
	}
	return updated, entry, nil
}

func statusSnapshot(usr User) audit.Snapshot {
	snap := audit.Snapshot{"status": string(usr.Status)}
	if usr.ApprovalDate != nil {
		snap["approval_date"] = usr.ApprovalDate.Format(time.RFC3339)
	}
	if usr.ApprovedBy != nil {
		snap["approved_by"] = *usr.ApprovedBy
	}
	return snap
}

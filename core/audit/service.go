package audit

import (
	"context"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 200
)

type (
	Repository interface {
		InsertEntry(ctx context.Context, entry Entry, exec ...core.DBExecutor) (Entry, error)
		// QueryEntries returns matching entries, newest first.
		QueryEntries(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Entry, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	if filter.Action != "" && !filter.Action.IsValid() {
		return nil, core.NewValidationError(
			errors.New("invalid audit action"),
			core.FieldError{Field: "action", Error: "invalid audit action"},
		)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultQueryLimit
	} else if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return svc.repo.QueryEntries(ctx, filter)
}

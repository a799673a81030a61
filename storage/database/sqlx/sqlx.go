// Package sqlxrepos implements the domain repositories on top of PostgreSQL with sqlx.
package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

func getExec(repoExec core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repoExec
}

// orderBy builds an ORDER BY clause from the allowed ordering fields, falling back to def.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool, def string) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			orderList = append(orderList, ord.String())
		}
	}
	if len(orderList) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

// checkAffected returns notFoundErr when res did not touch any row.
func checkAffected(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking affected rows")
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUnnamedPreparedStatementMissing matches the error a transaction pooler
// returns when the unnamed statement was prepared on another backend.
func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "26000" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unnamed prepared statement does not exist") || strings.Contains(msg, "(26000)")
}

// retryStatement runs fn again once when the pooler lost the prepared statement.
func retryStatement(fn func() error) error {
	err := fn()
	if isUnnamedPreparedStatementMissing(err) {
		return fn()
	}
	return err
}

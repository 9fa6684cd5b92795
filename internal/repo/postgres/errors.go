package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrClientNotFound     = errors.New("client not found")
	ErrExecutorNotFound   = errors.New("executor not found")
	ErrManagerNotFound    = errors.New("manager not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderLineNotFound  = errors.New("order line not found")
	ErrModerationNotFound = errors.New("moderation record not found")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsPgDuplicateError checks if err is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return hasPgCode(err, codeUniqueViolation)
}

// IsPgForeignKeyError checks if err is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return hasPgCode(err, codeForeignKeyViolation)
}

// IsPgNoRowsError checks if err is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

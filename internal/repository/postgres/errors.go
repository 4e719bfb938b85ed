package postgres

import (
	"errors"

	"go-profile-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapWriteError turns constraint violations into AppErrors and leaves every
// other failure as is for the usecase layer to wrap.
func mapWriteError(err error, conflictMessage string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.Conflict(conflictMessage)
		case pgForeignKeyViolation:
			return apperror.NotFound("User not found")
		}
	}
	return err
}

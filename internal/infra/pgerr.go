package infra

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
	pgCodeExclusionViolation  = "23P01"
	pgCodeCheckViolation      = "23514"
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// KindFromPgError classifies constraint violations so callers can translate
// them into domain errors without inspecting SQLSTATE codes themselves.
func KindFromPgError(err error) RepositoryErrorKind {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindDBFailure
	}
	switch pgErr.Code {
	case pgCodeUniqueViolation:
		return KindDuplicateKey
	case pgCodeExclusionViolation, pgCodeCheckViolation:
		return KindConflict
	case pgCodeForeignKeyViolation:
		return KindForeignKeyViolated
	default:
		return KindDBFailure
	}
}

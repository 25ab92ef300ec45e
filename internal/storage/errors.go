package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConstraintKind identifies which class of integrity constraint was violated.
type ConstraintKind int

const (
	UniqueViolation ConstraintKind = iota + 1
	CheckViolation
	ForeignKeyViolation
)

// PostgreSQL SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
)

func (k ConstraintKind) String() string {
	switch k {
	case UniqueViolation:
		return "unique"
	case CheckViolation:
		return "check"
	case ForeignKeyViolation:
		return "foreign key"
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

// ConstraintError reports a named constraint violation raised by the database.
// Services decide whether a given constraint name maps to a domain error.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// AsConstraintError extracts a ConstraintError from err's chain.
func AsConstraintError(err error) (*ConstraintError, bool) {
	var cErr *ConstraintError
	if errors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}

// IsConstraintViolation reports whether err is a violation of the named constraint.
func IsConstraintViolation(err error, kind ConstraintKind, name string) bool {
	cErr, ok := AsConstraintError(err)
	return ok && cErr.Kind == kind && cErr.Constraint == name
}

// translateError turns PostgreSQL integrity violations into *ConstraintError.
// Every other error is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind ConstraintKind
	switch pgErr.Code {
	case pgUniqueViolation:
		kind = UniqueViolation
	case pgCheckViolation:
		kind = CheckViolation
	case pgForeignKeyViolation:
		kind = ForeignKeyViolation
	default:
		return err
	}

	name := pgErr.ConstraintName
	if name == "" {
		name = "<unnamed " + kind.String() + " constraint>"
	}
	return &ConstraintError{Kind: kind, Constraint: name, Err: err}
}

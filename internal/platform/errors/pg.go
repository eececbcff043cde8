package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos care about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgRightTruncation     = "22001"
	pgInvalidText         = "22P02"
	pgNumericOutOfRange   = "22003"

	pgSerializationFailure = "40001"
	pgDeadlock             = "40P01"
	pgLockNotAvailable     = "55P03"
	pgReadOnly             = "25006"
	pgCannotConnectNow     = "57P03"
	pgAdminShutdown        = "57P01"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pg *pgconn.PgError
	if stderrs.As(err, &pg) {
		return pg, true
	}
	return nil, false
}

func hasState(err error, state string) bool {
	pg, ok := pgError(err)
	return ok && pg.Code == state
}

// IsNotNullViolation reports a NOT NULL constraint failure
func IsNotNullViolation(err error) bool { return hasState(err, pgNotNullViolation) }

// IsCheckViolation reports a CHECK constraint failure
func IsCheckViolation(err error) bool { return hasState(err, pgCheckViolation) }

// IsForeignKeyViolation reports a foreign key failure
func IsForeignKeyViolation(err error) bool { return hasState(err, pgForeignKeyViolation) }

// DBErrorCode maps a Postgres error to a code; ok is false for anything else
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pg, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pg.Code {
	case pgUniqueViolation:
		return ErrorCodeConflict, true
	case pgNotNullViolation, pgCheckViolation:
		return ErrorCodeValidation, true
	case pgForeignKeyViolation, pgRightTruncation, pgInvalidText, pgNumericOutOfRange:
		return ErrorCodeInvalidArgument, true
	case pgReadOnly, pgCannotConnectNow, pgAdminShutdown:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a database error with its mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	var pg *pgconn.PgError
	if stderrs.As(err, &pg) && pg.ColumnName != "" {
		return WithField(Wrap(err, code, msg), pg.ColumnName)
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a database error is transient contention
// local cancellations are never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pg, ok := pgError(err); ok {
		switch pg.Code {
		case pgSerializationFailure, pgDeadlock, pgLockNotAvailable, pgCannotConnectNow, pgAdminShutdown:
			return true
		}
		return false
	}
	msg := strings.ToLower(Root(err).Error())
	for _, s := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"canceling statement due to lock timeout",
		"terminating connection due to administrator command",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

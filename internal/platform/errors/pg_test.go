package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDBErrorCode(t *testing.T) {
	cases := []struct {
		state string
		want  ErrorCode
	}{
		{pgUniqueViolation, ErrorCodeConflict},
		{pgNotNullViolation, ErrorCodeValidation},
		{pgForeignKeyViolation, ErrorCodeInvalidArgument},
		{pgNumericOutOfRange, ErrorCodeInvalidArgument},
		{pgCannotConnectNow, ErrorCodeUnavailable},
		{"XX000", ErrorCodeDB},
	}
	for _, tc := range cases {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: tc.state})
		got, ok := DBErrorCode(err)
		if !ok || got != tc.want {
			t.Errorf("%s: got %d ok=%v want %d", tc.state, got, ok, tc.want)
		}
	}
	if _, ok := DBErrorCode(context.Canceled); ok {
		t.Fatal("non pg error must not map")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatal("nil should stay nil")
	}
	pg := &pgconn.PgError{Code: pgNotNullViolation, ColumnName: "title"}
	err := FromPostgresf(pg, "upsert offer %s", "a-1")
	e, ok := As(err)
	if !ok || e.Code() != ErrorCodeValidation || e.Field() != "title" {
		t.Fatalf("err = %#v", err)
	}
	if !IsNotNullViolation(err) || IsCheckViolation(err) {
		t.Fatal("state predicates should see through the wrap")
	}
	if !IsCode(FromPostgres(context.DeadlineExceeded, "q"), ErrorCodeDB) {
		t.Fatal("non pg errors default to DB")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(context.Canceled) || IsRetryable(nil) {
		t.Fatal("cancellation is not retryable")
	}
	if !IsRetryable(FromPostgres(&pgconn.PgError{Code: pgSerializationFailure}, "commit")) {
		t.Fatal("serialization failure is retryable")
	}
	if IsRetryable(&pgconn.PgError{Code: pgUniqueViolation}) {
		t.Fatal("unique violation is not retryable")
	}
}

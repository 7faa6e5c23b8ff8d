package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
)

func TestMapConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintEmail}, entity.ErrDuplicateEmail},
		{"username", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintUsername}, entity.ErrDuplicateUsername},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintEmail}), entity.ErrDuplicateEmail},
		{"other constraint", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_pkey"}, nil},
		{"other code", &pgconn.PgError{Code: "23502", ConstraintName: constraintEmail}, nil},
		{"value too long", &pgconn.PgError{Code: stringTooLong, Message: "value too long for type character varying(100)"}, entity.ErrInvalidArgument},
		{"not pg", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapConstraintError(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("driver error lost from chain: %v", got)
			}
			for _, domainErr := range []error{entity.ErrDuplicateEmail, entity.ErrDuplicateUsername, entity.ErrInvalidArgument} {
				if errors.Is(got, domainErr) != (domainErr == tt.want) {
					t.Errorf("errors.Is(%v, %v) mismatch", got, domainErr)
				}
			}
		})
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Error("empty string must map to NULL")
	}
	if p := nullable("555"); p == nil || *p != "555" {
		t.Errorf("nullable(555) = %v", p)
	}
}

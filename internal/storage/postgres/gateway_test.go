package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

func TestMapWriteError(t *testing.T) {
	cases := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantConflict: true},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, wantConflict: true},
		{name: "deadlock detected", err: &pgconn.PgError{Code: "40P01"}, wantConflict: true},
		{name: "wrapped unique violation", err: fmt.Errorf("commit tx: %w", &pgconn.PgError{Code: "23505"}), wantConflict: true},
		{name: "check violation stays internal", err: &pgconn.PgError{Code: "23514"}, wantConflict: false},
		{name: "plain error stays as is", err: errors.New("connection reset"), wantConflict: false},
		{name: "domain error passes through", err: domain.ErrOrderNotFound, wantConflict: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapWriteError(tc.err)
			if got := errors.Is(mapped, domain.ErrConflict); got != tc.wantConflict {
				t.Fatalf("expected conflict=%v, got %v (err: %v)", tc.wantConflict, got, mapped)
			}
			if !tc.wantConflict && !errors.Is(mapped, tc.err) && mapped.Error() != tc.err.Error() {
				t.Fatalf("non-conflict error must pass through unchanged, got %v", mapped)
			}
		})
	}
}

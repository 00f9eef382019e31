package postgres

import (
	"context"
	"testing"
	"time"
)

func TestStorePingAndMigrationStatus_Integration(t *testing.T) {
	store := openStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version < 1 || count < 1 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}
}

func TestStoreMigrateDownAndUp_Integration(t *testing.T) {
	store := openStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	if err := store.ApplySeed(ctx); err != nil {
		t.Fatalf("apply seed after re-migration: %v", err)
	}
}

func TestStoreNilSafety(t *testing.T) {
	var store *Store

	if err := store.Close(); err != nil {
		t.Fatalf("nil store close must be a no-op, got %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("nil store ping must fail")
	}
	if _, _, err := store.MigrationStatus(context.Background()); err == nil {
		t.Fatal("nil store migration status must fail")
	}
}

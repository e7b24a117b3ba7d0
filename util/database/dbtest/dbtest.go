// Package dbtest opens a migrated, empty PostgreSQL database for integration
// tests, or skips the test when none is configured.
package dbtest

import (
	"context"
	"os"
	"testing"

	"carrental/util/database"
)

const lockKey = 7_041_988

// Open connects to $TEST_DATABASE_URL (falling back to $DATABASE_URL).
func Open(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("no TEST_DATABASE_URL or DATABASE_URL set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dsn)
	if err != nil {
		t.Skipf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	// packages run in parallel against one database; serialise them
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		conn.Release()
		t.Fatalf("advisory lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Release()
	})

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Pool.Exec(ctx,
		`TRUNCATE messages, payments, bookings, cars, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

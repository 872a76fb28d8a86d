//go:build integration

// Package testutil starts a disposable Postgres for adapter tests.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	postgres "github.com/vatelanka/waste-admin-api/internal/adapters/postgres"
)

var (
	once      sync.Once
	dsn       string
	dsnErr    error
	container testcontainers.Container
)

// DatabaseURL returns a migrated database URL. TEST_DATABASE_URL wins when set;
// otherwise one container is started per test binary and left for Ryuk to reap.
// Packages sharing TEST_DATABASE_URL must run with -p 1.
func DatabaseURL(t *testing.T) string {
	t.Helper()
	once.Do(func() {
		ctx := context.Background()
		if v := os.Getenv("TEST_DATABASE_URL"); v != "" {
			dsn = v
		} else {
			var c *tcpostgres.PostgresContainer
			c, dsnErr = tcpostgres.Run(ctx, "postgres:16-alpine",
				tcpostgres.WithDatabase("wasteadmin"),
				tcpostgres.WithUsername("wasteadmin"),
				tcpostgres.WithPassword("wasteadmin"),
				tcpostgres.BasicWaitStrategies(),
			)
			if dsnErr != nil {
				return
			}
			container = c
			dsn, dsnErr = c.ConnectionString(ctx, "sslmode=disable")
			if dsnErr != nil {
				return
			}
		}
		dsnErr = postgres.Migrate(ctx, dsn, zerolog.Nop())
	})
	if dsnErr != nil {
		t.Fatalf("postgres test database: %v", dsnErr)
	}
	return dsn
}

// OpenMigratedPool returns a pool on a migrated database with every table emptied.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, DatabaseURL(t), zerolog.Nop(), postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE directory_documents, accounts, idempotency_keys`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

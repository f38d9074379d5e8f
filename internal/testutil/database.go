package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/troopvault/tv-backend/internal/database"
	"github.com/troopvault/tv-backend/internal/store"
)

// TestDatabase wraps a real PostgreSQL container for integration tests.
type TestDatabase struct {
	container testcontainers.Container
	pool      *pgxpool.Pool
	store     *store.Store
}

// NewTestDatabase starts a PostgreSQL container and applies the embedded
// migrations. Call with testing.Short() guarding the test.
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")
	require.NoError(t, pool.Ping(ctx), "Failed to ping database")

	sqlDB := stdlib.OpenDBFromPool(pool)
	require.NoError(t, database.Migrate(ctx, sqlDB), "Failed to run migrations")
	require.NoError(t, sqlDB.Close())

	testDB := &TestDatabase{
		container: postgresContainer,
		pool:      pool,
		store:     store.New(pool),
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	return testDB
}

func (tdb *TestDatabase) Store() *store.Store {
	return tdb.store
}

func (tdb *TestDatabase) Pool() *pgxpool.Pool {
	return tdb.pool
}

// TruncateAll resets every table for test isolation, keeping the schema.
func (tdb *TestDatabase) TruncateAll(t *testing.T) {
	ctx := context.Background()

	tables := []string{
		"audit_events",
		"sales",
		"privilege_overrides",
		"memberships",
		"household_members",
		"households",
		"dens",
		"users",
		"troops",
		"organizations",
	}
	for _, table := range tables {
		_, err := tdb.pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err, "Failed to truncate %s", table)
	}
}

package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	pool  *pgxpool.Pool
	store *store.Store
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	pool, err := pgxpool.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Activate and test the connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		pool:  pool,
		store: store.New(pool),
	}, nil
}

// Migrate applies the embedded goose migrations.
func (d *Database) Migrate(ctx context.Context) error {
	return Migrate(ctx, stdlib.OpenDBFromPool(d.pool))
}

// Migrate runs the embedded migrations against an existing *sql.DB. Exposed
// separately so the test harness can migrate its container database.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *Database) Store() *store.Store {
	return d.store
}

func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

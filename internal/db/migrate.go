package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/geocoder89/jobtrail/internal/db/migrations"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations for dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	var dir string

	switch dialect {
	case DialectPostgres:
		dir = "postgres"
	case DialectSQLite:
		dir = "sqlite"
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseUp(ctx, db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// MigratePool runs the postgres migrations through a database/sql view of
// the pgx pool.
func MigratePool(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	return Migrate(ctx, sqlDB, DialectPostgres)
}

package db

import (
	"context"
	"fmt"

	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/jobs"
	"github.com/geocoder89/jobtrail/internal/repo/memory"
	"github.com/geocoder89/jobtrail/internal/repo/postgres"
	"github.com/geocoder89/jobtrail/internal/repo/sqlite"
	"github.com/geocoder89/jobtrail/internal/users"
)

// Observer times DB operations; satisfied by *observability.Prom.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

// Stores is the datastore selected by config.Store, already migrated.
type Stores struct {
	Kind  string
	Users users.Store
	Jobs  jobs.Store
	Ping  func(ctx context.Context) error
	Close func()
}

func OpenStores(ctx context.Context, cfg config.Config, obs Observer) (*Stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := NewPool(ctx, cfg.DBURL, int32(cfg.DBMaxConns))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := MigratePool(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}

		return &Stores{
			Kind:  config.StorePostgres,
			Users: postgres.NewUsersRepo(pool, obs),
			Jobs:  postgres.NewJobsRepo(pool, obs),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case config.StoreSQLite:
		lite, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}

		if err := Migrate(ctx, lite.DB, DialectSQLite); err != nil {
			_ = lite.Close()
			return nil, err
		}

		return &Stores{
			Kind:  config.StoreSQLite,
			Users: sqlite.NewUsersRepo(lite.DB, obs),
			Jobs:  sqlite.NewJobsRepo(lite.DB, obs),
			Ping:  lite.DB.PingContext,
			Close: func() { _ = lite.Close() },
		}, nil

	case config.StoreMemory:
		return &Stores{
			Kind:  config.StoreMemory,
			Users: memory.NewUsersRepo(),
			Jobs:  memory.NewJobsRepo(),
			Close: func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

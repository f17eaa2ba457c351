package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

var ErrStoreLocked = errors.New("sqlite datastore is locked by another process")

// SQLite is a single-file datastore owned by exactly one process at a time.
type SQLite struct {
	DB   *sql.DB
	lock *flock.Flock
}

// OpenSQLite opens (creating if needed) the database at path and takes an
// exclusive lock next to it. ":memory:" skips the lock.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	var lock *flock.Flock

	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")

	if !inMemory {
		lock = flock.New(path + ".lock")

		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock sqlite file: %w", err)
		}
		if !locked {
			return nil, ErrStoreLocked
		}
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		releaseLock(lock)
		return nil, err
	}

	// sqlite typically wants 1 writer; an in-memory db lives only as long
	// as its single connection
	pool.SetMaxOpenConns(1)
	if !inMemory {
		pool.SetConnMaxLifetime(5 * time.Minute)
	} else {
		pool.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		releaseLock(lock)
		return nil, err
	}

	return &SQLite{DB: pool, lock: lock}, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	err := s.DB.Close()
	releaseLock(s.lock)
	return err
}

func releaseLock(lock *flock.Flock) {
	if lock != nil {
		_ = lock.Unlock()
	}
}

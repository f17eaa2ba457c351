// Package sqlite stores users and jobs in a single-file SQLite database.
// Timestamps are fixed-width UTC text so string order is time order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/geocoder89/jobtrail/internal/domain/user"
)

const tsLayout = "2006-01-02T15:04:05.000000000Z"

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(tsLayout, s)
}

// DBObserver times logical DB operations; *observability.Prom implements it.
type DBObserver interface {
	ObserveDB(op string, fn func() error) error
}

type noopObserver struct{}

func (noopObserver) ObserveDB(_ string, fn func() error) error { return fn() }

func observerOrNoop(obs DBObserver) DBObserver {
	if obs == nil {
		return noopObserver{}
	}
	return obs
}

type UsersRepo struct {
	db  *sql.DB
	obs DBObserver
}

func NewUsersRepo(db *sql.DB, obs DBObserver) *UsersRepo {
	return &UsersRepo{db: db, obs: observerOrNoop(obs)}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	return r.obs.ObserveDB("users.create", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?)`,
			u.ID, user.NormalizeEmail(u.Email), u.PasswordHash, u.Name, string(u.Role),
			formatTS(u.CreatedAt), formatTS(u.UpdatedAt),
		)

		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return user.ErrDuplicateEmail
		}

		return err
	})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.scanOne(ctx, "users.get_by_email",
		`SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE email = ?`,
		user.NormalizeEmail(email),
	)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.scanOne(ctx, "users.get_by_id",
		`SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users WHERE id = ?`,
		id,
	)
}

func (r *UsersRepo) scanOne(ctx context.Context, op, query string, args ...any) (user.User, error) {
	var u user.User
	var role, created, updated string

	err := r.obs.ObserveDB(op, func() error {
		err := r.db.QueryRowContext(ctx, query, args...).Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &created, &updated,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrNotFound
		}
		return err
	})
	if err != nil {
		return user.User{}, err
	}

	if u.Role, err = user.ParseRole(role); err != nil {
		return user.User{}, err
	}
	if u.CreatedAt, err = parseTS(created); err != nil {
		return user.User{}, err
	}
	if u.UpdatedAt, err = parseTS(updated); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/jobtrail/internal/domain/user"
)

const uniqueViolation = "23505"

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
	pool *pgxpool.Pool
	obs  DBObserver
}

func NewUsersRepo(pool *pgxpool.Pool, obs DBObserver) *UsersRepo {
	return &UsersRepo{pool: pool, obs: observerOrNoop(obs)}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	return r.obs.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, user.NormalizeEmail(u.Email), u.PasswordHash, u.Name, string(u.Role), u.CreatedAt, u.UpdatedAt,
		)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateEmail
		}

		return err
	})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.get_by_email", func() error {
		return r.scanOne(ctx, &u,
			`SELECT id, email, password_hash, name, role, created_at, updated_at
			FROM users
			WHERE LOWER(email) = $1`,
			user.NormalizeEmail(email),
		)
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveDB("users.get_by_id", func() error {
		return r.scanOne(ctx, &u,
			`SELECT id, email, password_hash, name, role, created_at, updated_at
			FROM users
			WHERE id = $1`,
			id,
		)
	})

	return u, err
}

func (r *UsersRepo) scanOne(ctx context.Context, u *user.User, query string, args ...any) error {
	var role string

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}

		return err
	}

	parsed, err := user.ParseRole(role)
	if err != nil {
		return err
	}
	u.Role = parsed

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

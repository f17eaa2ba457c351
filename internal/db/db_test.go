package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/repo/memory"
	"github.com/geocoder89/jobtrail/internal/users"
)

func TestMigrate_UnsupportedDialect(t *testing.T) {
	err := Migrate(context.Background(), nil, "mysql")
	require.ErrorContains(t, err, "unsupported migration dialect")
}

func TestMigrate_WrapsRunnerError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil, DialectPostgres)
	require.ErrorContains(t, err, "run migrations: boom")
	require.Equal(t, "postgres", gotDir)
}

func TestOpenSQLite_ExclusiveLock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobtrail.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	_, err = OpenSQLite(ctx, path)
	require.ErrorIs(t, err, ErrStoreLocked)

	require.NoError(t, first.Close())

	again, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		wantPing bool
	}{
		{"memory", config.Config{Store: config.StoreMemory}, false},
		{"sqlite", config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "stores.db")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := OpenStores(ctx, tt.cfg, nil)
			require.NoError(t, err)
			t.Cleanup(st.Close)

			require.Equal(t, tt.cfg.Store, st.Kind)
			require.Equal(t, tt.wantPing, st.Ping != nil)
			if st.Ping != nil {
				require.NoError(t, st.Ping(ctx))
			}

			dir := users.NewDirectory(st.Users)
			u, err := dir.Create(ctx, users.CreateInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
			require.NoError(t, err)

			got, err := st.Users.GetByID(ctx, u.ID)
			require.NoError(t, err)
			require.Equal(t, u.Email, got.Email)
		})
	}

	_, err := OpenStores(ctx, config.Config{Store: "mongo"}, nil)
	require.ErrorContains(t, err, "unknown store")
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	dir := users.NewDirectory(memory.NewUsersRepo())

	created, err := EnsureAdminUser(ctx, dir, config.Config{})
	require.NoError(t, err)
	require.False(t, created, "no admin configured")

	cfg := config.Config{AdminEmail: "Admin@Example.com", AdminPassword: "s3cret"}

	created, err = EnsureAdminUser(ctx, dir, cfg)
	require.NoError(t, err)
	require.True(t, created)

	u, err := dir.Authenticate(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, user.RoleAdmin, u.Role)
	require.Equal(t, "Administrator", u.Name)

	created, err = EnsureAdminUser(ctx, dir, cfg)
	require.NoError(t, err)
	require.False(t, created, "second run is a no-op")
}

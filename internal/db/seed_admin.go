package db

import (
	"context"
	"errors"

	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/users"
)

// EnsureAdminUser creates the configured admin account once. It is a no-op
// when no admin is configured or the email is already registered.
func EnsureAdminUser(ctx context.Context, dir *users.Directory, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	// check if the user exists
	_, err = dir.FindByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}

	_, err = dir.Create(ctx, users.CreateInput{
		Name:     name,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(user.RoleAdmin),
	})

	if errors.Is(err, user.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

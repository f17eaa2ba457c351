// Package users is the user directory: registration, lookup and credential
// checks over a pluggable Store.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/security"
	"github.com/geocoder89/jobtrail/internal/validation"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store persists users. Create must return user.ErrDuplicateEmail when the
// (normalized) email is already taken; lookups return user.ErrNotFound.
type Store interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Directory struct {
	store Store
	now   func() time.Time
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store, now: time.Now}
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Role     string `json:"role"`
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return d.store.GetByEmail(ctx, user.NormalizeEmail(email))
}

func (d *Directory) FindByID(ctx context.Context, id string) (user.User, error) {
	return d.store.GetByID(ctx, id)
}

// Create registers a new user. Only the bcrypt hash of the password is kept.
func (d *Directory) Create(ctx context.Context, in CreateInput) (user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = user.NormalizeEmail(in.Email)

	fieldErrs, err := validation.Struct(in)
	if err != nil {
		return user.User{}, err
	}
	if len(fieldErrs) > 0 {
		return user.User{}, &validation.Error{Fields: fieldErrs}
	}

	_, err = d.store.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return user.User{}, user.ErrDuplicateEmail
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, fmt.Errorf("lookup email: %w", err)
	}

	role, err := user.ParseRole(in.Role)
	if err != nil {
		return user.User{}, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return user.User{}, err
	}

	now := d.now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// the store's unique index still has the last word on races
	if err := d.store.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// Authenticate checks a login attempt. Unknown email and wrong password
// both yield ErrInvalidCredentials.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := d.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("lookup email: %w", err)
	}

	if !security.VerifyPassword(u.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

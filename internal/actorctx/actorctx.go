// Package actorctx carries the authenticated caller on a context.Context so
// code below the HTTP layer can see who is acting without importing gin.
package actorctx

import (
	"context"

	"github.com/geocoder89/jobtrail/internal/domain/user"
)

type ctxKey struct{}

type Identity struct {
	UserID string
	Role   user.Role
}

func With(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func From(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(ctxKey{}).(Identity)

	return v, ok && v.UserID != ""
}

package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/actorctx"
	"github.com/geocoder89/jobtrail/internal/auth"
	"github.com/geocoder89/jobtrail/internal/domain/user"
)

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserResolver interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserResolver
	log   *slog.Logger
}

func NewAuthMiddleware(jwt TokenVerifier, users UserResolver, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{jwt: jwt, users: users, log: log}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Not authorized, token failed")
			return
		}

		// the account may have been removed since the token was issued
		u, err := m.users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				m.log.ErrorContext(c.Request.Context(), "resolve token subject", "err", err)
			}
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Not authorized, token failed")
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxRole, u.Role)
		c.Request = c.Request.WithContext(actorctx.With(c.Request.Context(), actorctx.Identity{
			UserID: u.ID,
			Role:   u.Role,
		}))

		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}

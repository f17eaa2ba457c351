package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/http/middlewares"
	"github.com/geocoder89/jobtrail/internal/users"
)

type UserDirectory interface {
	Create(ctx context.Context, in users.CreateInput) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	FindByID(ctx context.Context, id string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string, role user.Role) (string, error)
}

type AuthHandler struct {
	users UserDirectory
	jwt   TokenIssuer
	log   *slog.Logger
}

func NewAuthHandler(users UserDirectory, jwt TokenIssuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, log: log}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /users/register.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req users.CreateInput

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt dominates this request
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Role)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(false),
	})
}

// Login handles POST /users/login. Unknown email and wrong password get the
// same 401.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Role)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(true),
	})
}

// Me handles GET /users/me.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "Not authorized")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.FindByID(cctx, userID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u.Public(true))
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/utils"
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

type AdminUsersHandler struct {
	users UserFinder
	log   *slog.Logger
}

func NewAdminUsersHandler(users UserFinder, log *slog.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{users: users, log: log}
}

// GET /admin/users/:id
func (h *AdminUsersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "User not found")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.FindByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondOK(ctx, http.StatusOK, u)
}

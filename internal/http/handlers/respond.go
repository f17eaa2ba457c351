package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/job"
	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/users"
	"github.com/geocoder89/jobtrail/internal/validation"
)

type APIError struct {
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondOK writes {success:true, data}.
func RespondOK(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{"success": true, "data": data})
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error": APIError{
			Code:      code,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondValidation(ctx *gin.Context, fields []validation.FieldError) {
	RespondBadRequest(ctx, "Validation failed", gin.H{"fields": fields})
}

func RespondUnAuthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondDomainError maps a service error onto the HTTP taxonomy. Anything
// unrecognised is logged and answered with a generic 500.
func RespondDomainError(ctx *gin.Context, log *slog.Logger, err error) {
	var verr *validation.Error

	switch {
	case errors.As(err, &verr):
		RespondValidation(ctx, verr.Fields)
	case errors.Is(err, user.ErrDuplicateEmail):
		RespondError(ctx, http.StatusBadRequest, "duplicate_email", "Email is already registered", nil)
	case errors.Is(err, user.ErrInvalidRole):
		RespondError(ctx, http.StatusBadRequest, "invalid_role", "Role must be one of user, admin", nil)
	case errors.Is(err, users.ErrInvalidCredentials):
		RespondUnAuthorized(ctx, "Invalid credentials")
	case errors.Is(err, job.ErrForbidden):
		RespondForbidden(ctx, "Not authorized to modify this job")
	case errors.Is(err, job.ErrNotFound):
		RespondNotFound(ctx, "Job not found")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	default:
		log.ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"request_id", requestIDFrom(ctx),
			"route", ctx.FullPath(),
		)
		RespondInternal(ctx, "Server error")
	}
}

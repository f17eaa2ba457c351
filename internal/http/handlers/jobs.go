package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/job"
	"github.com/geocoder89/jobtrail/internal/http/middlewares"
	"github.com/geocoder89/jobtrail/internal/utils"
)

type JobsService interface {
	Create(ctx context.Context, ownerID string, req job.CreateRequest) (job.Job, error)
	ListByOwner(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error)
	Get(ctx context.Context, id string) (job.Job, error)
	Update(ctx context.Context, id, requesterID string, req job.UpdateRequest) (job.Job, error)
	Delete(ctx context.Context, id, requesterID string) error
	Stats(ctx context.Context, ownerID string) (job.Stats, error)
}

type JobsHandler struct {
	jobs JobsService
	log  *slog.Logger
}

func NewJobsHandler(jobs JobsService, log *slog.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, log: log}
}

func (h *JobsHandler) requester(ctx *gin.Context) (string, bool) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "Not authorized")
		return "", false
	}
	return userID, true
}

// jobID answers 404 for ids that cannot exist.
func (h *JobsHandler) jobID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondNotFound(ctx, "Job not found")
		return "", false
	}
	ctx.Set(middlewares.CtxJobID, id)
	return id, true
}

// GET /jobs?status=&startDate=&endDate=&searchTerm=
func (h *JobsHandler) List(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}

	var params job.FilterParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(ctx, "Invalid query", gin.H{"reason": err.Error()})
		return
	}

	f, err := job.ParseFilter(params)
	if err != nil {
		var ferr *job.FilterError
		if errors.As(err, &ferr) {
			RespondBadRequest(ctx, "Invalid filter", gin.H{"params": ferr.Params})
			return
		}
		RespondDomainError(ctx, h.log, err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.jobs.ListByOwner(cctx, userID, f)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// POST /jobs
func (h *JobsHandler) Create(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}

	var req job.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	j, err := h.jobs.Create(cctx, userID, req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.Set(middlewares.CtxJobID, j.ID)
	RespondOK(ctx, http.StatusCreated, j)
}

// GET /jobs/:id
func (h *JobsHandler) Get(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}
	id, ok := h.jobID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	j, err := h.jobs.Get(cctx, id)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	if !job.CanMutate(userID, j) {
		RespondForbidden(ctx, "Not authorized to view this job")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"success": true, "data": j})
}

// PUT /jobs/:id
func (h *JobsHandler) Update(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}
	id, ok := h.jobID(ctx)
	if !ok {
		return
	}

	var req job.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	j, err := h.jobs.Update(cctx, id, userID, req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondOK(ctx, http.StatusOK, j)
}

// DELETE /jobs/:id
func (h *JobsHandler) Delete(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}
	id, ok := h.jobID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.jobs.Delete(cctx, id, userID); err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Job removed"})
}

// GET /jobs/stats
func (h *JobsHandler) Stats(ctx *gin.Context) {
	userID, ok := h.requester(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	st, err := h.jobs.Stats(cctx, userID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondOK(ctx, http.StatusOK, st)
}

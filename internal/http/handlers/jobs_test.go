package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/job"
	"github.com/geocoder89/jobtrail/internal/http/handlers"
	"github.com/geocoder89/jobtrail/internal/http/middlewares"
)

const jobID = "5f0c6a3e-9c1b-4a43-9d8e-0f6f0d5b9a11"

type fakeJobsService struct {
	createFn func(ctx context.Context, ownerID string, req job.CreateRequest) (job.Job, error)
	listFn   func(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error)
	getFn    func(ctx context.Context, id string) (job.Job, error)
	updateFn func(ctx context.Context, id, requesterID string, req job.UpdateRequest) (job.Job, error)
	deleteFn func(ctx context.Context, id, requesterID string) error
	statsFn  func(ctx context.Context, ownerID string) (job.Stats, error)
}

func (f *fakeJobsService) Create(ctx context.Context, ownerID string, req job.CreateRequest) (job.Job, error) {
	return f.createFn(ctx, ownerID, req)
}

func (f *fakeJobsService) ListByOwner(ctx context.Context, ownerID string, fl job.Filter) ([]job.Job, error) {
	return f.listFn(ctx, ownerID, fl)
}

func (f *fakeJobsService) Get(ctx context.Context, id string) (job.Job, error) {
	return f.getFn(ctx, id)
}

func (f *fakeJobsService) Update(ctx context.Context, id, requesterID string, req job.UpdateRequest) (job.Job, error) {
	return f.updateFn(ctx, id, requesterID, req)
}

func (f *fakeJobsService) Delete(ctx context.Context, id, requesterID string) error {
	return f.deleteFn(ctx, id, requesterID)
}

func (f *fakeJobsService) Stats(ctx context.Context, ownerID string) (job.Stats, error) {
	return f.statsFn(ctx, ownerID)
}

// newJobsRouter fakes authentication by stamping userID on the context.
func newJobsRouter(svc handlers.JobsService, userID string, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := handlers.NewJobsHandler(svc, log)

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middlewares.CtxUserID, userID)
		}
		c.Next()
	})
	r.GET("/jobs", h.List)
	r.POST("/jobs", h.Create)
	r.GET("/jobs/stats", h.Stats)
	r.GET("/jobs/:id", h.Get)
	r.PUT("/jobs/:id", h.Update)
	r.DELETE("/jobs/:id", h.Delete)
	return r
}

func TestJobsHandler_ListPassesParsedFilter(t *testing.T) {
	var gotOwner string
	var gotFilter job.Filter

	svc := &fakeJobsService{listFn: func(_ context.Context, ownerID string, f job.Filter) ([]job.Job, error) {
		gotOwner, gotFilter = ownerID, f
		return []job.Job{{ID: jobID, Company: "Meta", Status: job.StatusInterview, OwnerID: ownerID}}, nil
	}}

	w := httptest.NewRecorder()
	newJobsRouter(svc, "u-1", nil).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/jobs?status=Interview&endDate=2024-02-28&searchTerm=%20MeTa%20", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}
	if gotOwner != "u-1" {
		t.Fatalf("owner = %q", gotOwner)
	}
	if gotFilter.Status == nil || *gotFilter.Status != job.StatusInterview {
		t.Fatalf("status filter = %v", gotFilter.Status)
	}
	wantEnd := time.Date(2024, 2, 28, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if gotFilter.EndDate == nil || !gotFilter.EndDate.Equal(wantEnd) {
		t.Fatalf("end date = %v, want %v", gotFilter.EndDate, wantEnd)
	}
	if gotFilter.SearchTerm == nil || *gotFilter.SearchTerm != "meta" {
		t.Fatalf("search term = %v", gotFilter.SearchTerm)
	}

	var body struct {
		Success bool      `json:"success"`
		Count   int       `json:"count"`
		Data    []job.Job `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Count != 1 || body.Data[0].ID != jobID {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestJobsHandler_ListBadFilter(t *testing.T) {
	svc := &fakeJobsService{listFn: func(context.Context, string, job.Filter) ([]job.Job, error) {
		t.Fatalf("service must not be called")
		return nil, nil
	}}

	w := httptest.NewRecorder()
	newJobsRouter(svc, "u-1", nil).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/jobs?status=Ghosted&startDate=nope", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}

	var body struct {
		Error struct {
			Details struct {
				Params []string `json:"params"`
			} `json:"details"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if strings.Join(body.Error.Details.Params, ",") != "status,startDate" {
		t.Fatalf("params = %v", body.Error.Details.Params)
	}
}

func TestJobsHandler_GetEnforcesOwnership(t *testing.T) {
	svc := &fakeJobsService{getFn: func(_ context.Context, id string) (job.Job, error) {
		return job.Job{ID: id, OwnerID: "owner"}, nil
	}}

	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"owner", "owner", http.StatusOK},
		{"stranger", "stranger", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newJobsRouter(svc, tt.userID, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/"+jobID, nil))

			if w.Code != tt.want {
				t.Fatalf("status %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestJobsHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not_found", job.ErrNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", job.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&logs, nil))

			svc := &fakeJobsService{deleteFn: func(context.Context, string, string) error { return tt.err }}

			w := httptest.NewRecorder()
			newJobsRouter(svc, "u-1", log).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/jobs/"+jobID, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status %d, want %d", w.Code, tt.wantCode)
			}

			var body struct {
				Message string `json:"message"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body.Error.Code != tt.wantErr {
				t.Fatalf("code = %q, want %q", body.Error.Code, tt.wantErr)
			}

			if tt.wantCode == http.StatusInternalServerError {
				if strings.Contains(w.Body.String(), "connection reset") {
					t.Fatalf("internal detail leaked: %s", w.Body.String())
				}
				if !strings.Contains(logs.String(), "connection reset") {
					t.Fatalf("cause was not logged")
				}
			}
		})
	}
}

func TestJobsHandler_NonUUIDNeverReachesService(t *testing.T) {
	svc := &fakeJobsService{
		getFn: func(context.Context, string) (job.Job, error) {
			t.Fatalf("service must not be called")
			return job.Job{}, nil
		},
	}

	w := httptest.NewRecorder()
	newJobsRouter(svc, "u-1", nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/123", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestJobsHandler_CreateUsesCallerAsOwner(t *testing.T) {
	svc := &fakeJobsService{createFn: func(_ context.Context, ownerID string, req job.CreateRequest) (job.Job, error) {
		return job.New(ownerID, req, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	}}

	req := httptest.NewRequest(http.MethodPost, "/jobs",
		bytes.NewBufferString(`{"company":"Acme","role":"Dev","ownerId":"someone-else"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	newJobsRouter(svc, "u-1", nil).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}

	var body struct {
		Data job.Job `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.OwnerID != "u-1" || body.Data.Status != job.StatusApplied {
		t.Fatalf("unexpected job: %+v", body.Data)
	}
}

func TestJobsHandler_MissingIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	newJobsRouter(&fakeJobsService{}, "", nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/stats", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
}

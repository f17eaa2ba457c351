package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/auth"
	"github.com/geocoder89/jobtrail/internal/cache"
	"github.com/geocoder89/jobtrail/internal/config"
	apphttp "github.com/geocoder89/jobtrail/internal/http"
	"github.com/geocoder89/jobtrail/internal/jobs"
	"github.com/geocoder89/jobtrail/internal/repo/memory"
	"github.com/geocoder89/jobtrail/internal/users"
)

type testApp struct {
	router http.Handler
	jwt    *auth.Manager
	dir    *users.Directory
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Config{
		Env:                 "test",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		MaxBodyBytes:        1 << 20,
	}

	dir := users.NewDirectory(memory.NewUsersRepo())
	jwt := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	svc := jobs.NewService(memory.NewJobsRepo(), cache.New(time.Minute), logger)

	router := apphttp.NewRouter(apphttp.Deps{
		Log:   logger,
		Cfg:   cfg,
		Users: dir,
		Jobs:  svc,
		JWT:   jwt,
	})

	return &testApp{router: router, jwt: jwt, dir: dir}
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type apiErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code      string          `json:"code"`
		RequestID string          `json:"requestId"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
}

type jobBody struct {
	ID              string    `json:"id"`
	Company         string    `json:"company"`
	Role            string    `json:"role"`
	Status          string    `json:"status"`
	ApplicationDate time.Time `json:"applicationDate"`
	Link            string    `json:"link"`
	Notes           string    `json:"notes"`
	OwnerID         string    `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type jobResponse struct {
	Success bool    `json:"success"`
	Data    jobBody `json:"data"`
}

type jobListResponse struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Data    []jobBody `json:"data"`
}

// register signs a user up and returns the token and user id.
func register(t *testing.T, app *testApp, name, email, password string) (string, string) {
	t.Helper()

	body := `{"name":"` + name + `","email":"` + email + `","password":"` + password + `"}`
	w := doRequest(app.router, http.MethodPost, "/users/register", body, "")
	expectStatus(t, w, http.StatusCreated)

	var resp authResponse
	mustReadJSON(t, w, &resp)
	if resp.Token == "" || resp.User.ID == "" {
		t.Fatalf("register returned no token/user: %s", w.Body.String())
	}
	return resp.Token, resp.User.ID
}

func createJob(t *testing.T, app *testApp, token, body string) jobBody {
	t.Helper()

	w := doRequest(app.router, http.MethodPost, "/jobs", body, token)
	expectStatus(t, w, http.StatusCreated)

	var resp jobResponse
	mustReadJSON(t, w, &resp)
	return resp.Data
}

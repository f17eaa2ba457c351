package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/jobtrail/internal/auth"
	"github.com/geocoder89/jobtrail/internal/config"
	"github.com/geocoder89/jobtrail/internal/domain/user"
	"github.com/geocoder89/jobtrail/internal/http/handlers"
	"github.com/geocoder89/jobtrail/internal/http/middlewares"
	"github.com/geocoder89/jobtrail/internal/jobs"
	"github.com/geocoder89/jobtrail/internal/observability"
	"github.com/geocoder89/jobtrail/internal/users"
)

type Deps struct {
	Log   *slog.Logger
	Cfg   config.Config
	Users *users.Directory
	Jobs  *jobs.Service
	JWT   *auth.Manager

	// Ping reports datastore readiness; nil means always ready.
	Ping func(ctx context.Context) error
	// ShuttingDown flips /readyz to 503 while the server drains.
	ShuttingDown func() bool

	// Prom and Gatherer are optional; /metrics is mounted when Gatherer is set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("jobtrail-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))
	}

	// health
	ping := d.Ping
	if ping != nil {
		inner := ping
		ping = func(ctx context.Context) error {
			cctx, cancel := context.WithTimeout(ctx, 1*time.Second)
			defer cancel()
			return inner(cctx)
		}
	}
	h := handlers.NewHealthHandler(ping).WithShutdownProbe(d.ShuttingDown)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(d.JWT, d.Users, d.Log)
	authHandler := handlers.NewAuthHandler(d.Users, d.JWT, d.Log)
	jobsHandler := handlers.NewJobsHandler(d.Jobs, d.Log)
	adminUsersHandler := handlers.NewAdminUsersHandler(d.Users, d.Log)

	// the web client talks to /api; both prefixes serve the same routes
	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api")} {
		g.GET("/docs", handlers.SwaggerUI)
		g.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

		usersGroup := g.Group("/users")
		usersGroup.POST("/register", middlewares.RequireJSON(), authHandler.Register)
		usersGroup.POST("/login", middlewares.RequireJSON(), authHandler.Login)
		usersGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)

		jobsGroup := g.Group("/jobs", authMW.RequireAuth(), middlewares.RequireJSON())
		jobsGroup.GET("", jobsHandler.List)
		jobsGroup.POST("", jobsHandler.Create)
		jobsGroup.GET("/stats", jobsHandler.Stats)
		jobsGroup.GET("/:id", jobsHandler.Get)
		jobsGroup.PUT("/:id", jobsHandler.Update)
		jobsGroup.DELETE("/:id", jobsHandler.Delete)

		adminGroup := g.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin))
		adminGroup.GET("/users/:id", adminUsersHandler.Get)
	}

	return r
}

package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrapp/internal/domain/audit"
	"hrapp/internal/domain/auth"
	"hrapp/internal/domain/dimension"
	"hrapp/internal/domain/profile"
	"hrapp/internal/domain/survey"
	"hrapp/internal/platform/config"
	"hrapp/internal/platform/db"
	"hrapp/internal/platform/jobs"
	"hrapp/internal/platform/metrics"
	"hrapp/internal/transport/http/api"
	audithandler "hrapp/internal/transport/http/handlers/audit"
	authhandler "hrapp/internal/transport/http/handlers/auth"
	dimensionshandler "hrapp/internal/transport/http/handlers/dimensions"
	profileshandler "hrapp/internal/transport/http/handlers/profiles"
	surveyshandler "hrapp/internal/transport/http/handlers/surveys"
	"hrapp/internal/transport/http/middleware"
)

// App bundles everything a running instance owns. Tests construct one with
// New and drive App.Router directly through httptest.
type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Jobs    *jobs.Service

	cancel context.CancelFunc
}

// New connects, migrates, seeds, and wires the full router. It does not
// start listening; Run does that on top.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()

	authService := auth.NewService(auth.NewStore(pool))
	auditService := audit.New(pool)
	dimensionService := dimension.NewService(dimension.NewStore(pool))
	profileService := profile.NewService(profile.NewStore(pool), dimensionService)
	surveyService := survey.NewService(survey.NewStore(pool))
	idempotency := middleware.NewIdempotencyStore(pool)

	jobsCtx, cancel := context.WithCancel(context.Background())
	jobService := jobs.New(pool, cfg, surveyService, collector)
	jobService.Retention = idempotency
	jobService.Start(jobsCtx)

	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, authService)).
			Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)

		dimensionshandler.NewHandler(dimensionService, authService).RegisterRoutes(r)
		profileshandler.NewHandler(profileService, authService, auditService, collector, cfg.ReportsDir).RegisterRoutes(r)
		surveyshandler.NewHandler(surveyService, authService, auditService, idempotency).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authService).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Metrics: collector,
		Jobs:    jobService,
		cancel:  cancel,
	}, nil
}

// Close stops background jobs and releases the pool.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/config"
	"github.com/pharmascript/pharmascript/internal/domain/doctor"
	"github.com/pharmascript/pharmascript/internal/domain/drug"
	"github.com/pharmascript/pharmascript/internal/domain/patient"
	"github.com/pharmascript/pharmascript/internal/domain/prescription"
	"github.com/pharmascript/pharmascript/internal/platform/auth"
	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/internal/platform/metrics"
	"github.com/pharmascript/pharmascript/internal/platform/middleware"
	"github.com/pharmascript/pharmascript/internal/platform/rest"
	"github.com/pharmascript/pharmascript/pkg/models"
)

const version = "0.1.0"

// caches holds the reference-data caches. The zero value caches nothing.
type caches struct {
	doctors  *cache.Entities[models.Doctor]
	drugs    *cache.Entities[models.Drug]
	patients *cache.Entities[models.Patient]
}

func newCaches(store cache.Store, ttl time.Duration, logger zerolog.Logger) caches {
	if store == nil {
		return caches{}
	}
	return caches{
		doctors:  cache.NewEntities[models.Doctor](store, models.EntityDoctor, ttl, logger),
		drugs:    cache.NewEntities[models.Drug](store, models.EntityDrug, ttl, logger),
		patients: cache.NewEntities[models.Patient](store, models.EntityPatient, ttl, logger),
	}
}

type services struct {
	doctors       *doctor.Service
	drugs         *drug.Service
	patients      *patient.Service
	prescriptions *prescription.Service
}

func newServices(q db.Querier, tx db.Beginner, c caches) services {
	s := services{
		doctors:  doctor.NewService(doctor.NewRepoPG(q), tx, c.doctors),
		drugs:    drug.NewService(drug.NewRepoPG(q), tx, c.drugs),
		patients: patient.NewService(patient.NewRepoPG(q), tx, c.patients),
	}
	s.prescriptions = prescription.NewService(prescription.NewRepoPG(q), prescription.References{
		Drugs:    s.drugs,
		Patients: s.patients,
		Doctors:  s.doctors,
	}, tx)
	return s
}

func (s services) track(r *metrics.Refresher) {
	r.TrackEntity(models.EntityDoctor, s.doctors.Count)
	r.TrackEntity(models.EntityDrug, s.drugs.Count)
	r.TrackEntity(models.EntityPatient, s.patients.Count)
	r.TrackEntity(models.EntityPrescription, s.prescriptions.Count)
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: []byte(cfg.JWTSecret),
	}
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	rl.Skipper = auth.AuthSkipper
	rl.OnBucketsChanged = func(n int) {
		metrics.RateLimiterBucketsTotal.Set(float64(n))
	}
	return rl
}

// healthChecks are the readiness endpoints. Nil checks are not registered.
type healthChecks struct {
	db    echo.HandlerFunc
	cache echo.HandlerFunc
}

// newEcho builds the HTTP server.
func newEcho(cfg *config.Config, logger zerolog.Logger, svcs services, limiter *middleware.RateLimiter, health healthChecks) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = rest.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Link", "X-Total-Count", rest.AlertHeader, rest.ErrorHeader, rest.ParamsHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.Metrics())

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(jwtConfig(cfg)))
	} else {
		e.Use(auth.JWTMiddleware(jwtConfig(cfg)))
	}

	e.Use(limiter.Middleware())
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if health.db != nil {
		e.GET("/health/db", health.db)
	}
	if health.cache != nil {
		e.GET("/health/cache", health.cache)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	doctor.RegisterRoutes(e, svcs.doctors)
	drug.RegisterRoutes(e, svcs.drugs)
	patient.RegisterRoutes(e, svcs.patients)
	prescription.RegisterRoutes(e, svcs.prescriptions)

	return e
}

func poolSnapshot(pool *pgxpool.Pool) func() metrics.PoolSnapshot {
	return func() metrics.PoolSnapshot {
		s := pool.Stat()
		return metrics.PoolSnapshot{
			Total:    s.TotalConns(),
			Idle:     s.IdleConns(),
			Acquired: s.AcquiredConns(),
			Max:      s.MaxConns(),
		}
	}
}

// cacheHealth checks the cache backend, when there is one.
func cacheHealth(store cache.Store, cfg *config.Config) echo.HandlerFunc {
	p, ok := store.(cache.Pinger)
	if !ok {
		return nil
	}
	backend := "memory"
	if cfg.RedisURL != "" {
		backend = "redis"
	}
	return cache.HealthHandler(p, backend)
}

// openStore picks the cache backend: Redis when configured, an in-process
// store in development, nothing otherwise.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch {
	case cfg.RedisURL != "":
		return cache.NewRedisStore(ctx, cfg.RedisURL)
	case cfg.IsDev():
		return cache.NewMemoryStore(), nil
	default:
		return nil, nil
	}
}

func runServer(migrate bool) error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBSchema)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	if migrate {
		files, err := migrationFiles(cfg.MigrationsDir)
		if err != nil {
			return err
		}
		n, err := db.NewMigrator(pool, files, cfg.DBSchema).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	// Cache
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if store != nil {
		defer store.Close()
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("entity cache enabled")
	}

	svcs := newServices(pool, pool, newCaches(store, cfg.CacheTTL, logger))
	limiter := middleware.NewRateLimiter(rateLimitConfig(cfg))

	refresher := metrics.NewRefresher(logger, cfg.MetricsInterval)
	svcs.track(refresher)
	refresher.TrackPool(poolSnapshot(pool))
	refresher.AddJob(func() { limiter.Cleanup() })
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()

	e := newEcho(cfg, logger, svcs, limiter, healthChecks{
		db: db.HealthHandler(pool, func() *db.PoolStats {
			return db.GetPoolStats(pool)
		}),
		cache: cacheHealth(store, cfg),
	})

	// Graceful shutdown
	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

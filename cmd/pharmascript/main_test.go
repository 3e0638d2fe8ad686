package main

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/config"
	"github.com/pharmascript/pharmascript/internal/platform/auth"
	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/internal/platform/middleware"
	"github.com/pharmascript/pharmascript/migrations"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "shown") {
		t.Errorf("expected a JSON warn line, got %q", out)
	}
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "chatty")

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	if strings.Contains(buf.String(), `"message":"debug"`) {
		t.Error("debug line written at default level")
	}
	if !strings.Contains(buf.String(), `"message":"info"`) {
		t.Errorf("expected info line, got %q", buf.String())
	}
}

func TestNewLogger_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "info")
	logger.Info().Msg("hello")

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected console output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("message missing from %q", buf.String())
	}
}

func TestPrintStatuses(t *testing.T) {
	applied := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	printStatuses(&buf, []db.MigrationStatus{
		{Version: 1, Name: "pharmascript", Applied: true, AppliedAt: &applied},
		{Version: 2, Name: "indexes"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and two rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[2], "1 ") || !strings.Contains(lines[2], "applied") || !strings.HasSuffix(lines[2], "2024-03-01 09:30:00") {
		t.Errorf("unexpected applied row %q", lines[2])
	}
	if !strings.Contains(lines[3], "pending") {
		t.Errorf("unexpected pending row %q", lines[3])
	}
}

func TestMigrationFiles(t *testing.T) {
	files, err := migrationFiles("")
	if err != nil || files != migrations.FS {
		t.Errorf("expected the embedded migrations by default, got %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err = migrationFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fs.Stat(files, "001_init.sql"); err != nil {
		t.Errorf("expected files from %s: %v", dir, err)
	}

	if _, err := migrationFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if _, err := migrationFiles(filepath.Join(dir, "001_init.sql")); err == nil {
		t.Error("expected an error for a file")
	}
}

func TestTokenCmd_UsesConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("k", 32))
	t.Setenv("JWT_ISSUER", "pharmascript-test")
	t.Setenv("DATABASE_URL", "")

	var out bytes.Buffer
	cmd := tokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "pharmacist", "--role", auth.RoleUser})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token: %v", err)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(strings.Repeat("k", 32)), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["iss"] != "pharmascript-test" || claims["sub"] != "pharmacist" {
		t.Errorf("unexpected claims %v", claims)
	}
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cmd := tokenCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error without JWT_SECRET")
	}
}

func TestRateLimitConfig(t *testing.T) {
	cfg := &config.Config{}
	rl := rateLimitConfig(cfg)
	def := middleware.DefaultRateLimitConfig()
	if rl.RequestsPerSecond != def.RequestsPerSecond || rl.BurstSize != def.BurstSize {
		t.Errorf("expected defaults, got %+v", rl)
	}
	if rl.Skipper == nil || rl.OnBucketsChanged == nil {
		t.Error("expected skipper and bucket gauge hooks")
	}

	cfg.RateLimitRPS, cfg.RateLimitBurst = 5, 10
	rl = rateLimitConfig(cfg)
	if rl.RequestsPerSecond != 5 || rl.BurstSize != 10 {
		t.Errorf("expected configured limits, got %+v", rl)
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(t.Context(), &config.Config{Env: "development"})
	if err != nil || store == nil {
		t.Fatalf("expected an in-process store in development, got %v, %v", store, err)
	}
	store, err = openStore(t.Context(), &config.Config{Env: "production"})
	if err != nil || store != nil {
		t.Fatalf("expected no store, got %v, %v", store, err)
	}
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{
		Env:            "production",
		JWTSecret:      strings.Repeat("s", 32),
		JWTIssuer:      "pharmascript",
		CORSOrigins:    []string{"http://localhost:9000"},
		BodyLimit:      "1M",
		RequestTimeout: 5 * time.Second,
	}
	logger := zerolog.Nop()
	svcs := newServices(nil, nil, caches{})
	return newEcho(cfg, logger, svcs, middleware.NewRateLimiter(rateLimitConfig(cfg)), healthChecks{
		cache: cacheHealth(cache.NewMemoryStore(), cfg),
	})
}

func TestNewEcho_Health(t *testing.T) {
	e := newTestEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestNewEcho_CacheHealthIsPublic(t *testing.T) {
	e := newTestEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/cache", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"backend":"memory"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestCacheHealth(t *testing.T) {
	if cacheHealth(nil, &config.Config{}) != nil {
		t.Error("expected no check without a store")
	}
}

func TestNewEcho_APIRequiresToken(t *testing.T) {
	e := newTestEcho(t)

	for _, path := range []string{"/api/doctors", "/api/drugs", "/api/patients", "/api/prescriptions"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestNewEcho_Metrics(t *testing.T) {
	e := newTestEcho(t)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_request_total") {
		t.Error("expected request counters in the scrape")
	}
}

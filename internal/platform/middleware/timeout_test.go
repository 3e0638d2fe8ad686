package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/patients")

	var hasDeadline bool
	handler := func(c echo.Context) error {
		_, hasDeadline = c.Request().Context().Deadline()
		return nil
	}
	if err := RequestTimeout(5 * time.Second)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasDeadline {
		t.Error("expected a deadline on the request context")
	}
}

func TestRequestTimeout_DeadlineExceeded(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/patients")
	handler := func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	}

	if err := RequestTimeout(20 * time.Millisecond)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if p := decodeProblem(t, rec); p.ErrorKey != "timeout" {
		t.Errorf("expected timeout key, got %s", p.ErrorKey)
	}
}

func TestRequestTimeout_WrappedDeadline(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/patients")
	handler := func(c echo.Context) error {
		return errors.Join(errors.New("query doctors"), context.DeadlineExceeded)
	}
	_ = RequestTimeout(time.Second)(handler)(c)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}

func TestRequestTimeout_PassesOtherErrors(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/patients")
	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	err := RequestTimeout(time.Second)(handler)(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 passthrough, got %v", err)
	}
}

func TestRequestTimeout_Disabled(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/patients")
	handler := func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline when disabled")
		}
		return nil
	}
	_ = RequestTimeout(0)(handler)(c)
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/pkg/problem"
)

// statusOf is the status the client will see for a handled request. Errors
// are rendered by the error handler after the chain unwinds, so an
// uncommitted response takes its status from err, mirroring
// rest.ErrorHandler.
func statusOf(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var p *problem.Problem
	var he *echo.HTTPError
	switch {
	case errors.As(err, &p):
		return p.Status
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

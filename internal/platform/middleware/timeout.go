package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/pkg/problem"
)

// RequestTimeout puts a deadline on the request context. Handlers and the
// database calls below them observe it; a handler that gives up with
// context.DeadlineExceeded is answered with 504.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				return writeProblem(c, http.StatusGatewayTimeout, "Gateway Timeout", problem.KeyTimeout,
					"request processing exceeded the allowed time limit")
			}
			return err
		}
	}
}

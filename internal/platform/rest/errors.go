package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/pagination"
	"github.com/pharmascript/pharmascript/pkg/problem"
)

// WriteProblem sends p as application/problem+json and mirrors its key in
// the failure alert headers.
func WriteProblem(c echo.Context, p *problem.Problem) error {
	if c.Response().Committed {
		return nil
	}
	if p.Path == "" {
		p.Path = c.Request().URL.Path
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, problem.ContentType)
	if p.ErrorKey != "" && p.EntityName != "" {
		h.Set(ErrorHeader, p.Message)
		h.Set(ParamsHeader, p.EntityName)
	}
	return c.JSON(p.Status, p)
}

// BadRequest builds a 400 problem about entity.
func BadRequest(entity, title, key string) *problem.Problem {
	return problem.New(http.StatusBadRequest, title, entity, key)
}

// problemFor maps a service error to a problem body. ok is false for errors
// that should surface as 500s through the central error handler.
func problemFor(entity string, err error) (*problem.Problem, bool) {
	var ve *crud.ValidationError
	switch {
	case errors.As(err, &ve):
		p := problem.New(http.StatusBadRequest, "Constraint Violation", entity, problem.KeyValidation)
		p.Type = problem.TypeValidation
		p.Detail = ve.Error()
		for _, f := range ve.Fields {
			p.FieldErrors = append(p.FieldErrors, problem.FieldError{
				ObjectName: entity,
				Field:      f.Field,
				Message:    f.Message,
			})
		}
		return p, true
	case errors.Is(err, crud.ErrReferenceNotFound):
		p := BadRequest(entity, "Referenced entity not found", problem.KeyReferenceNotFound)
		p.Detail = err.Error()
		return p, true
	case errors.Is(err, crud.ErrNotFound):
		p := problem.New(http.StatusNotFound, "Not Found", entity, problem.KeyNotFound)
		p.Type = problem.TypeEntityNotFound
		return p, true
	case errors.Is(err, pagination.ErrInvalidSort):
		p := BadRequest(entity, "Bad Request", problem.KeyBadRequest)
		p.Detail = err.Error()
		return p, true
	}
	return nil, false
}

func keyForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return problem.KeyBadRequest
	case http.StatusUnauthorized:
		return problem.KeyUnauthorized
	case http.StatusForbidden:
		return problem.KeyForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return problem.KeyNotFound
	case http.StatusRequestEntityTooLarge:
		return problem.KeyPayloadTooLarge
	case http.StatusTooManyRequests:
		return problem.KeyTooManyRequests
	case http.StatusGatewayTimeout:
		return problem.KeyTimeout
	}
	if status >= 500 {
		return problem.KeyInternal
	}
	return problem.KeyBadRequest
}

// ErrorHandler renders every error that reaches echo as a problem body.
// Unexpected errors are logged and hidden behind a generic 500.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var p *problem.Problem
		var he *echo.HTTPError
		switch {
		case errors.As(err, &p):
		case errors.As(err, &he):
			title := http.StatusText(he.Code)
			var detail string
			if msg, ok := he.Message.(string); ok && msg != title {
				detail = msg
			}
			p = problem.New(he.Code, title, "", keyForStatus(he.Code))
			p.Detail = detail
		case errors.Is(err, context.DeadlineExceeded):
			p = problem.New(http.StatusGatewayTimeout, http.StatusText(http.StatusGatewayTimeout), "", problem.KeyTimeout)
		default:
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
			p = problem.New(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "", problem.KeyInternal)
		}

		if c.Request().Method == http.MethodHead {
			c.Response().Header().Set(echo.HeaderContentType, problem.ContentType)
			_ = c.NoContent(p.Status)
			return
		}
		if werr := WriteProblem(c, p); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

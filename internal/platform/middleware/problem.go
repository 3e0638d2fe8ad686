package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/pkg/problem"
)

func writeProblem(c echo.Context, status int, title, key, detail string) error {
	if c.Response().Committed {
		return nil
	}
	p := problem.New(status, title, "", key)
	p.Detail = detail
	p.Path = c.Request().URL.Path
	c.Response().Header().Set(echo.HeaderContentType, problem.ContentType)
	return c.JSON(status, p)
}

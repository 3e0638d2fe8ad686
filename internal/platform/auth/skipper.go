package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication: liveness, readiness and scraping.
var publicPaths = map[string]bool{
	"/health":       true,
	"/health/db":    true,
	"/health/cache": true,
	"/metrics":      true,
}

// AuthSkipper returns true for requests whose route should skip
// authentication.
func AuthSkipper(c echo.Context) bool {
	p := c.Path()
	if p == "" {
		p = c.Request().URL.Path
	}
	return publicPaths[p]
}

// IsPublicPath reports whether the given path is a public infrastructure
// endpoint.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

package drug

import (
	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/internal/platform/auth"
	"github.com/pharmascript/pharmascript/internal/platform/rest"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func NewHandler(svc *Service) *rest.Handler[models.Drug, *models.Drug] {
	return rest.NewHandler[models.Drug](svc, models.DrugsPath)
}

// RegisterRoutes mounts /api/drugs for any signed-in user.
func RegisterRoutes(e *echo.Echo, svc *Service) {
	NewHandler(svc).RegisterRoutes(e, auth.RequireRole(auth.RoleUser))
}

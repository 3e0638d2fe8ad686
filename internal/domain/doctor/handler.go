package doctor

import (
	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/internal/platform/auth"
	"github.com/pharmascript/pharmascript/internal/platform/rest"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func NewHandler(svc *Service) *rest.Handler[models.Doctor, *models.Doctor] {
	return rest.NewHandler[models.Doctor](svc, models.DoctorsPath)
}

func RegisterRoutes(e *echo.Echo, svc *Service) {
	NewHandler(svc).RegisterRoutes(e, auth.RequireRole(auth.RoleUser))
}

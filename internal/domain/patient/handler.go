package patient

import (
	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/internal/platform/auth"
	"github.com/pharmascript/pharmascript/internal/platform/rest"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func NewHandler(svc *Service) *rest.Handler[models.Patient, *models.Patient] {
	return rest.NewHandler[models.Patient](svc, models.PatientsPath)
}

func RegisterRoutes(e *echo.Echo, svc *Service) {
	NewHandler(svc).RegisterRoutes(e, auth.RequireRole(auth.RoleUser))
}

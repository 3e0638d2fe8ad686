package doctor

import (
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Repository = crud.Repository[models.Doctor, *models.Doctor]

var sortColumns = map[string]string{
	"id":            "id",
	"firstName":     "first_name",
	"lastName":      "last_name",
	"licenseNumber": "license_number",
	"createdDate":   "created_date",
	"updatedDate":   "updated_date",
}

package patient

import (
	"time"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Repository = crud.Repository[models.Patient, *models.Patient]

var sortColumns = map[string]string{
	"id":          "id",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"birthdate":   "birthdate",
	"createdDate": "created_date",
	"updatedDate": "updated_date",
}

// birthdateArg converts a calendar date to a value pgx encodes as DATE.
func birthdateArg(d *models.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateOf(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}

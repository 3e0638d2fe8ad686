// Package doctor serves prescribing physicians.
package doctor

import (
	"context"

	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Service = crud.Service[models.Doctor, *models.Doctor]

func NewService(repo Repository, tx db.Beginner, c *cache.Entities[models.Doctor]) *Service {
	return crud.NewService[models.Doctor](repo, crud.Config[models.Doctor, *models.Doctor]{
		Entity:   models.EntityDoctor,
		Validate: Validate,
		Merge:    Merge,
		Cache:    c,
		Tx:       tx,
	})
}

func Validate(_ context.Context, d *models.Doctor) error {
	c := crud.NewChecker(models.EntityDoctor)
	c.NotBlank("firstName", d.FirstName)
	c.NotBlank("lastName", d.LastName)
	c.NotBlank("licenseNumber", d.LicenseNumber)
	return c.Err()
}

func Merge(dst, patch *models.Doctor) {
	if patch.FirstName != nil {
		dst.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		dst.LastName = patch.LastName
	}
	if patch.LicenseNumber != nil {
		dst.LicenseNumber = patch.LicenseNumber
	}
}

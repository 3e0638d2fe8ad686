// Package patient serves the people prescriptions are written for.
package patient

import (
	"context"
	"time"

	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Service = crud.Service[models.Patient, *models.Patient]

func NewService(repo Repository, tx db.Beginner, c *cache.Entities[models.Patient]) *Service {
	return crud.NewService[models.Patient](repo, crud.Config[models.Patient, *models.Patient]{
		Entity:   models.EntityPatient,
		Validate: Validate,
		Merge:    Merge,
		Cache:    c,
		Tx:       tx,
	})
}

// Validate requires both names and a birthdate that is not in the future.
func Validate(_ context.Context, p *models.Patient) error {
	c := crud.NewChecker(models.EntityPatient)
	c.NotBlank("firstName", p.FirstName)
	c.NotBlank("lastName", p.LastName)
	c.Required("birthdate", p.Birthdate != nil)
	if p.Birthdate != nil {
		c.Check("birthdate", !p.Birthdate.After(time.Now().UTC()), "must not be in the future")
	}
	return c.Err()
}

func Merge(dst, patch *models.Patient) {
	if patch.FirstName != nil {
		dst.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		dst.LastName = patch.LastName
	}
	if patch.Birthdate != nil {
		dst.Birthdate = patch.Birthdate
	}
}

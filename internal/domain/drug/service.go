// Package drug serves the drug catalogue.
package drug

import (
	"context"

	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Service = crud.Service[models.Drug, *models.Drug]

// NewService wires the drug rules into a crud service. tx and c may be nil.
func NewService(repo Repository, tx db.Beginner, c *cache.Entities[models.Drug]) *Service {
	return crud.NewService[models.Drug](repo, crud.Config[models.Drug, *models.Drug]{
		Entity:   models.EntityDrug,
		Validate: Validate,
		Merge:    Merge,
		Cache:    c,
		Tx:       tx,
	})
}

// Validate requires maker, brand name and generic name.
func Validate(_ context.Context, d *models.Drug) error {
	c := crud.NewChecker(models.EntityDrug)
	c.NotBlank("maker", d.Maker)
	c.NotBlank("brandName", d.BrandName)
	c.NotBlank("genericName", d.GenericName)
	return c.Err()
}

// Merge copies the fields set in patch onto dst.
func Merge(dst, patch *models.Drug) {
	if patch.Maker != nil {
		dst.Maker = patch.Maker
	}
	if patch.BrandName != nil {
		dst.BrandName = patch.BrandName
	}
	if patch.GenericName != nil {
		dst.GenericName = patch.GenericName
	}
}

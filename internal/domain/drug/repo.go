package drug

import (
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Repository = crud.Repository[models.Drug, *models.Drug]

// sortColumns maps the sortable JSON properties to columns.
var sortColumns = map[string]string{
	"id":          "id",
	"maker":       "maker",
	"brandName":   "brand_name",
	"genericName": "generic_name",
	"createdDate": "created_date",
	"updatedDate": "updated_date",
}

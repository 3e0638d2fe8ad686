package screen

import (
	"context"
	"fmt"

	"github.com/pharmascript/pharmascript/pkg/entity"
)

// DeleteDialog asks for confirmation before deleting one record.
type DeleteDialog[T any, P entity.Ref[T]] struct {
	res    Resource[P]
	Record P
	// Outcome is empty until the dialog is closed.
	Outcome Outcome
}

func NewDeleteDialog[T any, P entity.Ref[T]](res Resource[P], record P) *DeleteDialog[T, P] {
	return &DeleteDialog[T, P]{res: res, Record: record}
}

// Cancel dismisses the dialog without deleting anything.
func (d *DeleteDialog[T, P]) Cancel() Outcome {
	d.Outcome = Dismissed
	return d.Outcome
}

// ConfirmDelete deletes the record and closes the dialog with Deleted. On
// failure the dialog stays open.
func (d *DeleteDialog[T, P]) ConfirmDelete(ctx context.Context) (Outcome, error) {
	id, ok := entity.Identifier[T](d.Record)
	if !ok {
		return "", fmt.Errorf("delete: record has no id")
	}
	if err := d.res.Delete(ctx, id); err != nil {
		return "", err
	}
	d.Outcome = Deleted
	return d.Outcome, nil
}

package screen

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/pkg/entity"
)

// Editor is the form behind an update screen.
type Editor[P any] interface {
	Reset(v P)
	Value() (P, error)
}

// Update creates or edits one record.
type Update[T any, P entity.Ref[T]] struct {
	res     Resource[P]
	form    Editor[P]
	history History
	logger  zerolog.Logger

	// Record is the resolved record, nil when creating.
	Record   P
	IsSaving bool
}

func NewUpdate[T any, P entity.Ref[T]](res Resource[P], form Editor[P], history History, logger zerolog.Logger) *Update[T, P] {
	return &Update[T, P]{res: res, form: form, history: history, logger: logger}
}

// Init shows record in the form. A nil record leaves the form at its
// defaults.
func (u *Update[T, P]) Init(record P) {
	u.Record = record
	if record != nil {
		u.form.Reset(record)
	}
}

// Save sends the form: Update when it carries an id, Create otherwise. On
// success the screen goes back; on failure the form is left as it is.
func (u *Update[T, P]) Save(ctx context.Context) error {
	u.IsSaving = true
	defer func() { u.IsSaving = false }()

	v, err := u.form.Value()
	if err != nil {
		return err
	}
	if _, ok := v.Identifier(); ok {
		_, err = u.res.Update(ctx, v)
	} else {
		_, err = u.res.Create(ctx, v)
	}
	if err != nil {
		u.logger.Debug().Err(err).Msg("save failed")
		return err
	}
	u.PreviousState()
	return nil
}

func (u *Update[T, P]) PreviousState() {
	u.history.Back()
}

// Package screen holds the state and actions of the admin screens: the
// entity list, the detail view, the create/edit form and the delete
// confirmation. Rendering is left to the caller.
package screen

import (
	"context"

	"github.com/pharmascript/pharmascript/pkg/client"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// Resource is the REST surface the screens use. *client.Resource
// implements it.
type Resource[P any] interface {
	Create(ctx context.Context, v P) (P, error)
	Update(ctx context.Context, v P) (P, error)
	Find(ctx context.Context, id int64) (P, error)
	Query(ctx context.Context, params pagination.Params) (client.Page[P], error)
	Delete(ctx context.Context, id int64) error
}

// History goes back to the previous location.
type History interface {
	Back()
}

type HistoryFunc func()

func (f HistoryFunc) Back() { f() }

// Outcome is how a delete dialog was closed.
type Outcome string

const (
	Deleted   Outcome = "deleted"
	Dismissed Outcome = "dismissed"
)

package route

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/pkg/client"
)

// Navigator moves the admin UI to another location.
type Navigator interface {
	Navigate(path ...string)
}

type NavigatorFunc func(path ...string)

func (f NavigatorFunc) Navigate(path ...string) { f(path...) }

// Finder fetches one record by id. *client.Resource implements it.
type Finder[P any] interface {
	Find(ctx context.Context, id int64) (P, error)
}

// Resolver looks up the record named by a route's id parameter.
type Resolver[T any, P interface{ *T }] struct {
	finder Finder[P]
	nav    Navigator
	logger zerolog.Logger
}

func NewResolver[T any, P interface{ *T }](finder Finder[P], nav Navigator, logger zerolog.Logger) *Resolver[T, P] {
	return &Resolver[T, P]{finder: finder, nav: nav, logger: logger}
}

// Resolve returns the record for params["id"]. Without an id it returns a
// nil record and ok, which screens treat as "new". When the record does
// not exist it navigates to NotFound and reports !ok. Other failures are
// returned as is.
func (r *Resolver[T, P]) Resolve(ctx context.Context, params Params) (v P, ok bool, err error) {
	raw := params["id"]
	if raw == "" {
		return nil, true, nil
	}
	id, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		r.logger.Debug().Str("id", raw).Msg("unparseable id in route")
		r.nav.Navigate(NotFound)
		return nil, false, nil
	}

	v, err = r.finder.Find(ctx, id)
	if errors.Is(err, client.ErrNotFound) || (err == nil && v == nil) {
		r.logger.Debug().Int64("id", id).Msg("record not found")
		r.nav.Navigate(NotFound)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

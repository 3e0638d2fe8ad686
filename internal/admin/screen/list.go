package screen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// List shows one page of an entity collection. Items is the only client-side
// copy of the data and is replaced on every load.
type List[T any, P entity.Ref[T]] struct {
	res    Resource[P]
	logger zerolog.Logger

	Items     []P
	Total     int64
	Page      int
	Size      int
	Sort      pagination.Order
	IsLoading bool
}

// NewList returns a list sorted by defaultSort, e.g. "id,asc".
func NewList[T any, P entity.Ref[T]](res Resource[P], defaultSort string, logger zerolog.Logger) (*List[T, P], error) {
	order, err := pagination.ParseOrder(defaultSort)
	if err != nil {
		return nil, fmt.Errorf("default sort: %w", err)
	}
	return &List[T, P]{
		res:    res,
		logger: logger,
		Size:   pagination.DefaultSize,
		Sort:   order,
	}, nil
}

func (l *List[T, P]) params() pagination.Params {
	p := pagination.Params{Page: l.Page, Size: l.Size, Sort: []pagination.Order{l.Sort}}
	if l.Sort.Property != "id" {
		p.Sort = append(p.Sort, pagination.Order{Property: "id"})
	}
	return p
}

// Load fetches the current page. On failure the previous items are kept.
func (l *List[T, P]) Load(ctx context.Context) error {
	l.IsLoading = true
	defer func() { l.IsLoading = false }()

	page, err := l.res.Query(ctx, l.params())
	if err != nil {
		l.logger.Debug().Err(err).Msg("load list")
		return err
	}
	l.Items = page.Items
	l.Total = page.Total
	return nil
}

// SortBy sorts on property, flipping the direction when it is already the
// sort property, and reloads from the first page.
func (l *List[T, P]) SortBy(ctx context.Context, property string) error {
	if l.Sort.Property == property {
		l.Sort.Desc = !l.Sort.Desc
	} else {
		l.Sort = pagination.Order{Property: property}
	}
	l.Page = 0
	return l.Load(ctx)
}

// GoTo loads page n, counted from zero.
func (l *List[T, P]) GoTo(ctx context.Context, n int) error {
	if n < 0 {
		n = 0
	}
	l.Page = n
	return l.Load(ctx)
}

// DialogClosed reloads the list when a delete dialog removed a record.
func (l *List[T, P]) DialogClosed(ctx context.Context, outcome Outcome) error {
	if outcome != Deleted {
		return nil
	}
	return l.Load(ctx)
}

// TrackID is the identity used to key rendered rows.
func (l *List[T, P]) TrackID(v P) int64 {
	id, _ := entity.Identifier[T](v)
	return id
}

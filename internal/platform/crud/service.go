// Package crud implements the create/read/update/delete workflow shared by
// every pharmascript entity: validation, server-owned timestamps, merge-patch
// updates inside a transaction and an optional read-through cache.
package crud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmascript/pharmascript/internal/platform/cache"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// Record is a pointer to an entity whose id and timestamps the server owns.
type Record[E any] interface {
	*E
	entity.Identifiable
	SetID(id int64)
	Created() *time.Time
	Stamp(created, updated time.Time)
}

// Repository is the storage contract each entity package implements.
// GetByID, Update and Delete return ErrNotFound for unknown ids.
type Repository[E any, P Record[E]] interface {
	Create(ctx context.Context, v P) error
	Update(ctx context.Context, v P) error
	GetByID(ctx context.Context, id int64) (P, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]P, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type Config[E any, P Record[E]] struct {
	// Entity is the singular name used in errors and logs.
	Entity string
	// Validate checks a complete record before it is written.
	Validate func(ctx context.Context, v P) error
	// Merge copies the non-nil fields of patch onto dst.
	Merge func(dst, patch P)
	// Reload re-reads a record after writing it, for repositories that
	// derive fields on read.
	Reload bool
	Cache  *cache.Entities[E]
	Tx     db.Beginner
	Now    func() time.Time
}

type Service[E any, P Record[E]] struct {
	repo Repository[E, P]
	cfg  Config[E, P]
}

func NewService[E any, P Record[E]](repo Repository[E, P], cfg Config[E, P]) *Service[E, P] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service[E, P]{repo: repo, cfg: cfg}
}

func (s *Service[E, P]) Entity() string { return s.cfg.Entity }

// now is truncated to the precision PostgreSQL stores.
func (s *Service[E, P]) now() time.Time {
	return s.cfg.Now().UTC().Truncate(time.Microsecond)
}

func (s *Service[E, P]) validate(ctx context.Context, v P) error {
	if s.cfg.Validate == nil {
		return nil
	}
	return s.cfg.Validate(ctx, v)
}

func (s *Service[E, P]) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.cfg.Tx == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.cfg.Tx, fn)
}

func (s *Service[E, P]) reload(ctx context.Context, v P) (P, error) {
	if !s.cfg.Reload {
		return v, nil
	}
	id, _ := v.Identifier()
	return s.repo.GetByID(ctx, id)
}

// Create stores a new record. Any id on v is ignored by the repository.
func (s *Service[E, P]) Create(ctx context.Context, v P) (P, error) {
	if v == nil {
		return nil, &ValidationError{Entity: s.cfg.Entity, Fields: []FieldError{{Field: "body", Message: "is required"}}}
	}
	if err := s.validate(ctx, v); err != nil {
		return nil, err
	}

	now := s.now()
	v.Stamp(now, now)

	var out P
	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, v); err != nil {
			return fmt.Errorf("create %s: %w", s.cfg.Entity, err)
		}
		var err error
		out, err = s.reload(ctx, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, out)
	return out, nil
}

// Update replaces a stored record. createdDate is kept from the stored row.
func (s *Service[E, P]) Update(ctx context.Context, v P) (P, error) {
	id, ok := v.Identifier()
	if !ok {
		return nil, &ValidationError{Entity: s.cfg.Entity, Fields: []FieldError{{Field: "id", Message: "is required"}}}
	}
	if err := s.validate(ctx, v); err != nil {
		return nil, err
	}

	var out P
	err := s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		s.stampUpdate(v, existing)
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("update %s %d: %w", s.cfg.Entity, id, err)
		}
		out, err = s.reload(ctx, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, out)
	return out, nil
}

// PartialUpdate merges the non-nil fields of patch onto the stored record and
// writes the result. The read and the write share one transaction.
func (s *Service[E, P]) PartialUpdate(ctx context.Context, patch P) (P, error) {
	id, ok := patch.Identifier()
	if !ok {
		return nil, &ValidationError{Entity: s.cfg.Entity, Fields: []FieldError{{Field: "id", Message: "is required"}}}
	}
	if s.cfg.Merge == nil {
		return nil, fmt.Errorf("partial update of %s is not supported", s.cfg.Entity)
	}

	var out P
	err := s.inTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		merged := s.clone(existing)
		s.cfg.Merge(merged, patch)
		merged.SetID(id)

		if err := s.validate(ctx, merged); err != nil {
			return err
		}
		s.stampUpdate(merged, existing)
		if err := s.repo.Update(ctx, merged); err != nil {
			return fmt.Errorf("patch %s %d: %w", s.cfg.Entity, id, err)
		}
		out, err = s.reload(ctx, merged)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.remember(ctx, out)
	return out, nil
}

func (s *Service[E, P]) clone(v P) P {
	c := new(E)
	*c = *v
	return P(c)
}

func (s *Service[E, P]) stampUpdate(v, existing P) {
	now := s.now()
	created := now
	if c := existing.Created(); c != nil {
		created = *c
	}
	v.Stamp(created, now)
}

// Get returns one record, from the cache when possible.
func (s *Service[E, P]) Get(ctx context.Context, id int64) (P, error) {
	if v, ok := s.cfg.Cache.Get(ctx, id); ok {
		return P(v), nil
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cfg.Cache.Put(ctx, id, (*E)(v))
	return v, nil
}

func (s *Service[E, P]) Exists(ctx context.Context, id int64) (bool, error) {
	if _, ok := s.cfg.Cache.Get(ctx, id); ok {
		return true, nil
	}
	return s.repo.Exists(ctx, id)
}

// List returns one page of records and the total number stored.
func (s *Service[E, P]) List(ctx context.Context, params pagination.Params) ([]P, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", s.cfg.Entity, err)
	}
	if total == 0 || int64(params.Offset()) >= total {
		return []P{}, total, nil
	}
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.cfg.Entity, err)
	}
	return items, total, nil
}

func (s *Service[E, P]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *Service[E, P]) Delete(ctx context.Context, id int64) error {
	s.cfg.Cache.Evict(ctx, id)
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s %d: %w", s.cfg.Entity, id, err)
	}
	return nil
}

func (s *Service[E, P]) remember(ctx context.Context, v P) {
	if id, ok := v.Identifier(); ok {
		s.cfg.Cache.Put(ctx, id, (*E)(v))
	}
}

package store

import (
	"context"

	"mop/internal/entity"
	"mop/internal/modelcfg"
)

// Functions builds the data-layer bindings for one entity type. The core
// packages only ever see these closures, never the store itself.
func (s *Store) Functions(t entity.Type) modelcfg.Functions {
	return modelcfg.Functions{
		Query: func(ctx context.Context, page, pageSize int, search, sortBy, sortOrder string) (*modelcfg.Page, error) {
			return s.QueryPage(ctx, t, page, pageSize, search, sortBy, sortOrder)
		},
		QueryAllFn: func(ctx context.Context) ([]*entity.Entity, error) {
			return s.List(ctx, t)
		},
		GroupedByEmne: func(ctx context.Context) ([]modelcfg.EmneGroup, error) {
			return s.GroupedByEmne(ctx, t)
		},
		GetByID: func(ctx context.Context, id int64) (any, error) {
			return s.Get(ctx, t, id)
		},
		Create: func(ctx context.Context, e *entity.Entity) (any, error) {
			created, err := s.Create(ctx, t, e)
			if err != nil {
				return nil, err
			}
			// Mirrors the HTTP backend: saves resolve to {data: entity}.
			return &entity.Envelope{Data: created}, nil
		},
		Update: func(ctx context.Context, id int64, e *entity.Entity) (any, error) {
			updated, err := s.Update(ctx, t, id, e, 0)
			if err != nil {
				return nil, err
			}
			return &entity.Envelope{Data: updated}, nil
		},
		Delete: func(ctx context.Context, id int64) error {
			return s.Delete(ctx, t, id)
		},
	}
}

// Fetcher adapts the store to the inheritance coordinator's lookup shape.
func (s *Store) Fetcher(t entity.Type) func(ctx context.Context, id int64) (any, error) {
	return func(ctx context.Context, id int64) (any, error) {
		return s.Get(ctx, t, id)
	}
}

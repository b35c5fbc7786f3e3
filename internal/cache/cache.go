// Package cache translates entity mutations into query-cache invalidations.
// The service owns only the rule table; the cache itself lives with the
// injected Invalidator.
package cache

import (
	"go.uber.org/zap"

	"mop/internal/entity"
)

// Operation names a completed mutation.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Invalidator is the external query cache. Injected, never a package-level
// singleton.
type Invalidator interface {
	Invalidate(keys ...string)
}

// relatedKeys is the static dependency map: mutating one entity type must
// also drop the caches of everything that renders or inherits from it.
// Krav edits reach tiltak through emne inheritance; project-scoped types
// reach the project combined view.
var relatedKeys = map[entity.Type][]string{
	entity.TypeKrav:           {"emne", "tiltak", string(entity.TypeProsjektKrav), string(entity.TypeCombined)},
	entity.TypeTiltak:         {"emne", string(entity.TypeCombined)},
	entity.TypeProsjektKrav:   {"emne", string(entity.TypeProsjektTiltak), string(entity.TypeProsjektCombined)},
	entity.TypeProsjektTiltak: {"emne", string(entity.TypeProsjektCombined)},
}

type Service struct {
	inv Invalidator
	log *zap.Logger
}

func NewService(inv Invalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{inv: inv, log: log}
}

// Keys returns the cache keys affected by an operation on entityType,
// starting with the type's own list key.
func (s *Service) Keys(entityType entity.Type, op Operation) []string {
	keys := []string{string(entityType)}
	keys = append(keys, relatedKeys[entityType]...)
	return keys
}

// NotifySaved reports a completed mutation and invalidates the affected keys.
func (s *Service) NotifySaved(entityType entity.Type, op Operation, e *entity.Entity) {
	keys := s.Keys(entityType, op)
	s.log.Debug("cache invalidation",
		zap.String("entityType", string(entityType)),
		zap.String("operation", string(op)),
		zap.Strings("keys", keys))
	if s.inv != nil {
		s.inv.Invalidate(keys...)
	}
}

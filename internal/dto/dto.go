// Package dto unifies one or two adapters behind a single contract so the
// workspace layer never branches on "is this a combined view". Any code
// written against DTO works unmodified whether one or two entity types are
// active.
package dto

import (
	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/inherit"
)

// DTO is the facade contract consumed by the workspace layer.
type DTO interface {
	DisplayConfig() adapter.DisplayConfig
	FilterConfig() adapter.FilterConfig
	QueryFunctions() map[entity.Type]adapter.QueryBindings

	TransformResponse(raw any) []*entity.Entity
	FilterEntities(list []*entity.Entity, f adapter.Filters) []*entity.Entity
	SortEntities(list []*entity.Entity, sortBy, sortOrder string) []*entity.Entity
	ExtractAvailableFilters(list []*entity.Entity) adapter.AvailableFilters

	ExtractUID(e *entity.Entity) string
	ExtractTitle(e *entity.Entity) string
	BadgeColor(e *entity.Entity) string
	DisplayType(e *entity.Entity) string

	OnSaveComplete(result any, isCreate bool, selectFn func(*entity.Entity)) (*entity.Entity, error)

	// EffectiveEmne fails with a contract violation when the underlying
	// adapter does not support emne inheritance.
	EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) (inherit.Result, error)

	IsCombinedView() bool
	PrimaryEntityType() entity.Type
	SupportedEntityTypes() []entity.Type
}

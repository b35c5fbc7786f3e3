package dto

import (
	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
)

// SingleEntityDTO wraps exactly one adapter.
type SingleEntityDTO struct {
	a adapter.Adapter
}

func NewSingle(a adapter.Adapter) *SingleEntityDTO {
	return &SingleEntityDTO{a: a}
}

func (d *SingleEntityDTO) DisplayConfig() adapter.DisplayConfig { return d.a.DisplayConfig() }
func (d *SingleEntityDTO) FilterConfig() adapter.FilterConfig   { return d.a.FilterConfig() }

func (d *SingleEntityDTO) QueryFunctions() map[entity.Type]adapter.QueryBindings {
	return d.a.QueryFunctions()
}

// TransformResponse flattens whatever the injected query functions resolved
// to — a page, a grouped-by-emne response, a plain slice, a single record or
// an envelope — into enhanced entities.
func (d *SingleEntityDTO) TransformResponse(raw any) []*entity.Entity {
	return enhanceAll(d.a, flattenResponse(raw))
}

func (d *SingleEntityDTO) FilterEntities(list []*entity.Entity, f adapter.Filters) []*entity.Entity {
	return d.a.FilterEntities(list, f)
}

func (d *SingleEntityDTO) SortEntities(list []*entity.Entity, sortBy, sortOrder string) []*entity.Entity {
	return d.a.SortEntities(list, sortBy, sortOrder)
}

func (d *SingleEntityDTO) ExtractAvailableFilters(list []*entity.Entity) adapter.AvailableFilters {
	return d.a.ExtractAvailableFilters(list)
}

func (d *SingleEntityDTO) ExtractUID(e *entity.Entity) string   { return d.a.ExtractUID(e) }
func (d *SingleEntityDTO) ExtractTitle(e *entity.Entity) string { return d.a.ExtractTitle(e) }
func (d *SingleEntityDTO) BadgeColor(*entity.Entity) string     { return d.a.BadgeColor() }
func (d *SingleEntityDTO) DisplayType(*entity.Entity) string    { return d.a.DisplayType() }

func (d *SingleEntityDTO) OnSaveComplete(result any, isCreate bool, selectFn func(*entity.Entity)) (*entity.Entity, error) {
	return d.a.OnSaveComplete(result, isCreate, selectFn)
}

func (d *SingleEntityDTO) EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) (inherit.Result, error) {
	inh, ok := d.a.(adapter.EmneInheritor)
	if !ok {
		return inherit.Result{}, &adapter.ContractViolationError{Method: "EffectiveEmne"}
	}
	return inh.EffectiveEmne(form, parent, krav), nil
}

func (d *SingleEntityDTO) IsCombinedView() bool              { return false }
func (d *SingleEntityDTO) PrimaryEntityType() entity.Type    { return d.a.EntityType() }
func (d *SingleEntityDTO) SupportedEntityTypes() []entity.Type {
	return []entity.Type{d.a.EntityType()}
}

// ==== shared response flattening ====

func flattenResponse(raw any) []*entity.Entity {
	switch t := raw.(type) {
	case nil:
		return nil
	case []*entity.Entity:
		return t
	case *modelcfg.Page:
		if t == nil {
			return nil
		}
		return t.Items
	case modelcfg.Page:
		return t.Items
	case []modelcfg.EmneGroup:
		var out []*entity.Entity
		for _, g := range t {
			out = append(out, g.Entities...)
		}
		return out
	default:
		if e, ok := entity.Unwrap(raw); ok {
			return []*entity.Entity{e}
		}
		return nil
	}
}

func enhanceAll(a adapter.Adapter, list []*entity.Entity) []*entity.Entity {
	if list == nil {
		return nil
	}
	out := make([]*entity.Entity, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		out = append(out, a.EnhanceEntity(e))
	}
	return out
}

package dto

import (
	"fmt"
	"sort"
	"strings"

	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
)

// CombinedViewConfig carries the mixing rules for a two-type view: how the
// union sorts by default and whether the types stay visually separated.
type CombinedViewConfig struct {
	Title            string `yaml:"title" json:"title"`
	NewButtonLabel   string `yaml:"newButtonLabel" json:"newButtonLabel"`
	DefaultSortField string `yaml:"defaultSortField" json:"defaultSortField"`
	DefaultSortOrder string `yaml:"defaultSortOrder" json:"defaultSortOrder"`
	SeparateByType   bool   `yaml:"separateByType" json:"separateByType"`
}

// CombinedResponse pairs the raw payloads of the two underlying queries.
type CombinedResponse struct {
	Primary   any
	Secondary any
}

// CombinedEntityDTO coordinates two adapters (krav + tiltak family) behind
// the same surface as SingleEntityDTO.
type CombinedEntityDTO struct {
	viewType  entity.Type
	primary   adapter.Adapter
	secondary adapter.Adapter
	view      CombinedViewConfig
}

func NewCombined(viewType entity.Type, primary, secondary adapter.Adapter, view CombinedViewConfig) (*CombinedEntityDTO, error) {
	if primary == nil || secondary == nil {
		return nil, &modelcfg.ConfigurationError{
			Value: string(viewType),
			Msg:   fmt.Sprintf("combined view %q needs two adapters", viewType),
		}
	}
	if view.DefaultSortField == "" {
		view.DefaultSortField = "title"
	}
	if view.DefaultSortOrder == "" {
		view.DefaultSortOrder = "asc"
	}
	if view.Title == "" {
		view.Title = primary.Config().Title + " og " + strings.ToLower(secondary.Config().Title)
	}
	return &CombinedEntityDTO{viewType: viewType, primary: primary, secondary: secondary, view: view}, nil
}

func (d *CombinedEntityDTO) adapterFor(e *entity.Entity) adapter.Adapter {
	if e != nil && e.EntityType == d.secondary.EntityType() {
		return d.secondary
	}
	return d.primary
}

func (d *CombinedEntityDTO) DisplayConfig() adapter.DisplayConfig {
	p := d.primary.DisplayConfig()
	s := d.secondary.DisplayConfig()
	return adapter.DisplayConfig{
		Title:               d.view.Title,
		EntityTypes:         []entity.Type{d.primary.EntityType(), d.secondary.EntityType()},
		SupportsGroupByEmne: p.SupportsGroupByEmne && s.SupportsGroupByEmne,
		Layout:              p.Layout,
		NewButtonLabel:      d.view.NewButtonLabel,
	}
}

// FilterConfig merges both sides: a filter input is enabled when either
// underlying type enables it, defaults come from the view config.
func (d *CombinedEntityDTO) FilterConfig() adapter.FilterConfig {
	p := d.primary.FilterConfig()
	s := d.secondary.FilterConfig()
	merged := p
	merged.Fields.Status.Enabled = p.Fields.Status.Enabled || s.Fields.Status.Enabled
	merged.Fields.Vurdering.Enabled = p.Fields.Vurdering.Enabled || s.Fields.Vurdering.Enabled
	merged.Fields.Prioritet.Enabled = p.Fields.Prioritet.Enabled || s.Fields.Prioritet.Enabled
	merged.Fields.Emne.Enabled = p.Fields.Emne.Enabled || s.Fields.Emne.Enabled
	merged.Fields.Obligatorisk.Enabled = p.Fields.Obligatorisk.Enabled || s.Fields.Obligatorisk.Enabled
	merged.Defaults = adapter.FilterDefaults{
		SortBy:    d.view.DefaultSortField,
		SortOrder: d.view.DefaultSortOrder,
		FilterBy:  "all",
	}
	return merged
}

func (d *CombinedEntityDTO) QueryFunctions() map[entity.Type]adapter.QueryBindings {
	out := make(map[entity.Type]adapter.QueryBindings, 2)
	for t, b := range d.primary.QueryFunctions() {
		out[t] = b
	}
	for t, b := range d.secondary.QueryFunctions() {
		out[t] = b
	}
	return out
}

// CombineEntities tags untagged records with their source type and merges the
// two streams according to the mixing rules.
func (d *CombinedEntityDTO) CombineEntities(primary, secondary []*entity.Entity) []*entity.Entity {
	out := make([]*entity.Entity, 0, len(primary)+len(secondary))
	out = append(out, tagAll(primary, d.primary.EntityType())...)
	out = append(out, tagAll(secondary, d.secondary.EntityType())...)
	if d.view.SeparateByType {
		return out
	}
	return d.SortEntities(out, d.view.DefaultSortField, d.view.DefaultSortOrder)
}

func tagAll(list []*entity.Entity, t entity.Type) []*entity.Entity {
	out := make([]*entity.Entity, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		if e.EntityType == "" {
			e = e.Clone()
			e.EntityType = t
		}
		out = append(out, e)
	}
	return out
}

// TransformResponse accepts the paired payloads of the two queries, or a
// plain payload treated as primary-only.
func (d *CombinedEntityDTO) TransformResponse(raw any) []*entity.Entity {
	if cr, ok := raw.(CombinedResponse); ok {
		p := enhanceAll(d.primary, flattenResponse(cr.Primary))
		s := enhanceAll(d.secondary, flattenResponse(cr.Secondary))
		return d.CombineEntities(p, s)
	}
	return d.CombineEntities(enhanceAll(d.primary, flattenResponse(raw)), nil)
}

func (d *CombinedEntityDTO) FilterEntities(list []*entity.Entity, f adapter.Filters) []*entity.Entity {
	if f.Empty() {
		return list
	}
	out := make([]*entity.Entity, 0, len(list))
	for _, e := range list {
		if len(d.adapterFor(e).FilterEntities([]*entity.Entity{e}, f)) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// SortEntities orders the mixed set with each record's own adapter supplying
// the comparable value, so UIDs compare by the right field per type.
func (d *CombinedEntityDTO) SortEntities(list []*entity.Entity, sortBy, sortOrder string) []*entity.Entity {
	out := append([]*entity.Entity(nil), list...)
	if sortBy == "" {
		return out
	}
	desc := strings.EqualFold(sortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(d.adapterFor(out[i]).SortValue(out[i], sortBy))
		b := strings.ToLower(d.adapterFor(out[j]).SortValue(out[j], sortBy))
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

func (d *CombinedEntityDTO) ExtractAvailableFilters(list []*entity.Entity) adapter.AvailableFilters {
	// name extraction is type-independent, either adapter works on the union
	return d.primary.ExtractAvailableFilters(list)
}

func (d *CombinedEntityDTO) ExtractUID(e *entity.Entity) string   { return d.adapterFor(e).ExtractUID(e) }
func (d *CombinedEntityDTO) ExtractTitle(e *entity.Entity) string { return d.adapterFor(e).ExtractTitle(e) }
func (d *CombinedEntityDTO) BadgeColor(e *entity.Entity) string   { return d.adapterFor(e).BadgeColor() }
func (d *CombinedEntityDTO) DisplayType(e *entity.Entity) string  { return d.adapterFor(e).DisplayType() }

func (d *CombinedEntityDTO) OnSaveComplete(result any, isCreate bool, selectFn func(*entity.Entity)) (*entity.Entity, error) {
	e, ok := entity.Unwrap(result)
	if !ok {
		return nil, fmt.Errorf("save result for %s: unexpected payload shape", d.viewType)
	}
	return d.adapterFor(e).OnSaveComplete(e, isCreate, selectFn)
}

func (d *CombinedEntityDTO) EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) (inherit.Result, error) {
	for _, a := range []adapter.Adapter{d.secondary, d.primary} {
		if inh, ok := a.(adapter.EmneInheritor); ok {
			return inh.EffectiveEmne(form, parent, krav), nil
		}
	}
	return inherit.Result{}, &adapter.ContractViolationError{Method: "EffectiveEmne"}
}

func (d *CombinedEntityDTO) IsCombinedView() bool           { return true }
func (d *CombinedEntityDTO) PrimaryEntityType() entity.Type { return d.primary.EntityType() }
func (d *CombinedEntityDTO) SupportedEntityTypes() []entity.Type {
	return []entity.Type{d.primary.EntityType(), d.secondary.EntityType()}
}

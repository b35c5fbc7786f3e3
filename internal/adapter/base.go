package adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"mop/internal/entity"
	"mop/internal/modelcfg"
)

// base carries everything the four concrete adapters share. Concrete types
// only pin down the UID field, display labels and inheritance behavior.
type base struct {
	entityType  entity.Type
	cfg         *modelcfg.Config
	uidField    string // "kravUID" | "tiltakUID" | ""
	displayType string
	badgeColor  string
}

func (b *base) EntityType() entity.Type    { return b.entityType }
func (b *base) Config() *modelcfg.Config   { return b.cfg }
func (b *base) DisplayType() string        { return b.displayType }
func (b *base) BadgeColor() string         { return b.badgeColor }

func (b *base) DisplayConfig() DisplayConfig {
	return DisplayConfig{
		Title:               b.cfg.Title,
		EntityTypes:         []entity.Type{b.entityType},
		SupportsGroupByEmne: b.cfg.Workspace.GroupBy == "emne",
		Layout:              b.cfg.Workspace.Layout,
		NewButtonLabel:      b.cfg.NewButtonLabel,
	}
}

func (b *base) FilterConfig() FilterConfig {
	ui := b.cfg.Workspace.UI
	return FilterConfig{
		Fields: FilterFields{
			Status: FilterField{
				Enabled:     modelcfg.BoolOr(ui.ShowStatus, true),
				Label:       "Status",
				Placeholder: "Alle statuser",
			},
			Vurdering: FilterField{
				Enabled:     modelcfg.BoolOr(ui.ShowVurdering, true),
				Label:       "Vurdering",
				Placeholder: "Alle vurderinger",
			},
			Prioritet: FilterField{
				Enabled:     modelcfg.BoolOr(ui.ShowPrioritet, true),
				Label:       "Prioritet",
				Placeholder: "Alle prioriteter",
			},
			Emne: FilterField{
				Enabled:     modelcfg.BoolOr(ui.ShowHierarchy, true),
				Label:       "Emne",
				Placeholder: "Alle emner",
			},
			Obligatorisk: FilterField{
				Enabled: modelcfg.BoolOr(ui.ShowObligatorisk, true),
				Label:   "Obligatorisk",
			},
		},
		SortFields: []SortField{
			{Key: "title", Label: "Tittel"},
			{Key: "status", Label: "Status"},
			{Key: "emne", Label: "Emne"},
			{Key: "uid", Label: "UID"},
		},
		Defaults: FilterDefaults{
			SortBy:    b.cfg.List.Sorting.Field,
			SortOrder: b.cfg.List.Sorting.Direction,
			FilterBy:  "all",
		},
	}
}

func (b *base) QueryFunctions() map[entity.Type]QueryBindings {
	return map[entity.Type]QueryBindings{
		b.entityType: {
			Standard: b.cfg.Functions.Query,
			Grouped:  b.cfg.Functions.GroupedByEmne,
		},
	}
}

// ExtractUID resolves the type-specific UID, then uid, then the id.
func (b *base) ExtractUID(e *entity.Entity) string {
	if e == nil {
		return ""
	}
	switch b.uidField {
	case "kravUID":
		if e.KravUID != "" {
			return e.KravUID
		}
	case "tiltakUID":
		if e.TiltakUID != "" {
			return e.TiltakUID
		}
	}
	if e.UID != "" {
		return e.UID
	}
	return e.IDString()
}

func (b *base) ExtractTitle(e *entity.Entity) string {
	return e.DisplayTitle()
}

// FilterEntities applies the active criteria, AND-combined, preserving input
// order. The free-text search matches a case-insensitive substring over
// title + description + uid + emne name.
func (b *base) FilterEntities(list []*entity.Entity, f Filters) []*entity.Entity {
	if f.Empty() {
		return list
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*entity.Entity, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(b.ExtractTitle(e) + " " + e.Description() + " " + b.ExtractUID(e) + " " + e.EmneName())
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		if f.Status != "" && e.StatusName() != f.Status {
			continue
		}
		if f.Vurdering != "" && e.VurderingName() != f.Vurdering {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortEntities returns a stable-sorted copy. String keys compare
// lower-cased; "desc" negates the comparison. Unknown keys fall through to a
// raw field lookup.
func (b *base) SortEntities(list []*entity.Entity, sortBy, sortOrder string) []*entity.Entity {
	out := append([]*entity.Entity(nil), list...)
	if sortBy == "" {
		return out
	}
	desc := strings.EqualFold(sortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		a := strings.ToLower(b.SortValue(out[i], sortBy))
		c := strings.ToLower(b.SortValue(out[j], sortBy))
		if desc {
			return a > c
		}
		return a < c
	})
	return out
}

// SortValue resolves the comparable string for one sort key.
func (b *base) SortValue(e *entity.Entity, key string) string {
	if e == nil {
		return ""
	}
	switch key {
	case "title", "tittel", "navn", "name":
		return b.ExtractTitle(e)
	case "status":
		return e.StatusName()
	case "emne":
		return e.EmneName()
	case "uid":
		return b.ExtractUID(e)
	case "vurdering":
		return e.VurderingName()
	case "prioritet":
		return e.Prioritet
	case "beskrivelse", "descriptionCard":
		return e.Description()
	case "id":
		return e.IDString()
	default:
		return ""
	}
}

// ExtractAvailableFilters collects the distinct display names present in the
// given collection, deduplicated and alphabetically sorted.
func (b *base) ExtractAvailableFilters(list []*entity.Entity) AvailableFilters {
	statuses := map[string]struct{}{}
	vurderinger := map[string]struct{}{}
	emner := map[string]struct{}{}
	for _, e := range list {
		if e == nil {
			continue
		}
		if s := e.StatusName(); s != "" {
			statuses[s] = struct{}{}
		}
		if v := e.VurderingName(); v != "" {
			vurderinger[v] = struct{}{}
		}
		if em := e.EmneName(); em != "" {
			emner[em] = struct{}{}
		}
	}
	return AvailableFilters{
		Statuses:    sortedKeys(statuses),
		Vurderinger: sortedKeys(vurderinger),
		Emner:       sortedKeys(emner),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EnhanceEntity tags a copy of e with its entity type, a fresh render-scoped
// id and display metadata. Records from combined views keep the type they
// already carry.
func (b *base) EnhanceEntity(e *entity.Entity) *entity.Entity {
	if e == nil {
		return nil
	}
	out := e.Clone()
	if out.EntityType == "" {
		out.EntityType = b.entityType
	}
	out.RenderID = ulid.Make().String()
	out.DisplayType = b.displayType
	out.BadgeColor = b.badgeColor
	return out
}

// OnSaveComplete unwraps a resolved create/update payload (bare entity or
// {data: entity} envelope), enhances it and hands it to selectFn so the UI
// can show the fresh record without a refetch.
func (b *base) OnSaveComplete(result any, isCreate bool, selectFn func(*entity.Entity)) (*entity.Entity, error) {
	e, ok := entity.Unwrap(result)
	if !ok {
		return nil, fmt.Errorf("save result for %s: unexpected payload shape", b.entityType)
	}
	enhanced := b.EnhanceEntity(e)
	if selectFn != nil {
		selectFn(enhanced)
	}
	return enhanced, nil
}

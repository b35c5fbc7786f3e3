package adapter

import (
	"fmt"

	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
)

// ContractViolationError signals that a facade method was invoked on an
// adapter that does not implement the required capability. A programming
// error, never a recoverable runtime condition.
type ContractViolationError struct {
	Method string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s() must be implemented", e.Method)
}

// DisplayConfig is the workspace-facing summary of one adapter.
type DisplayConfig struct {
	Title               string        `json:"title"`
	EntityTypes         []entity.Type `json:"entityTypes"`
	SupportsGroupByEmne bool          `json:"supportsGroupByEmne"`
	Layout              string        `json:"layout"`
	NewButtonLabel      string        `json:"newButtonLabel"`
}

// FilterField describes one filter input of the workspace toolbar.
type FilterField struct {
	Enabled     bool   `json:"enabled"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
}

type FilterFields struct {
	Status       FilterField `json:"status"`
	Vurdering    FilterField `json:"vurdering"`
	Prioritet    FilterField `json:"prioritet"`
	Emne         FilterField `json:"emne"`
	Obligatorisk FilterField `json:"obligatorisk"`
}

type SortField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type FilterDefaults struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	FilterBy  string `json:"filterBy"`
}

type FilterConfig struct {
	Fields     FilterFields   `json:"fields"`
	SortFields []SortField    `json:"sortFields"`
	Defaults   FilterDefaults `json:"defaults"`
}

// Filters are the active list criteria. All optional, AND-combined.
type Filters struct {
	Search    string `json:"search,omitempty"`
	Status    string `json:"status,omitempty"`
	Vurdering string `json:"vurdering,omitempty"`
}

func (f Filters) Empty() bool {
	return f.Search == "" && f.Status == "" && f.Vurdering == ""
}

// AvailableFilters are the distinct display names seen in a loaded entity
// collection, used to populate dropdowns from data instead of static lists.
type AvailableFilters struct {
	Statuses    []string `json:"statuses"`
	Vurderinger []string `json:"vurderinger"`
	Emner       []string `json:"emner"`
}

// QueryBindings exposes the injected list functions for one entity type.
// The adapter never calls transport itself.
type QueryBindings struct {
	Standard modelcfg.QueryFunc
	Grouped  modelcfg.GroupedFunc
}

// Adapter is the uniform capability set every concrete entity type
// implements. Adapters are stateless request/response transformers.
type Adapter interface {
	EntityType() entity.Type
	Config() *modelcfg.Config

	DisplayConfig() DisplayConfig
	FilterConfig() FilterConfig
	QueryFunctions() map[entity.Type]QueryBindings

	ExtractUID(e *entity.Entity) string
	ExtractTitle(e *entity.Entity) string

	FilterEntities(list []*entity.Entity, f Filters) []*entity.Entity
	SortEntities(list []*entity.Entity, sortBy, sortOrder string) []*entity.Entity
	SortValue(e *entity.Entity, key string) string
	ExtractAvailableFilters(list []*entity.Entity) AvailableFilters

	EnhanceEntity(e *entity.Entity) *entity.Entity
	OnSaveComplete(result any, isCreate bool, selectFn func(*entity.Entity)) (*entity.Entity, error)

	DisplayType() string
	BadgeColor() string
}

// EmneInheritor is the extra capability of tiltak-family adapters: resolving
// which subject an entity effectively belongs to during editing.
type EmneInheritor interface {
	EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) inherit.Result
}

package modelcfg

import (
	"context"

	"mop/internal/entity"
)

// Layout values for the workspace.
const (
	LayoutSplit = "split"
	LayoutList  = "list"
)

// Config is one entity type's model configuration. Raw configs in the
// registry may leave any optional key unset; Process fills the gaps from the
// default tables below. Boolean knobs are tri-state pointers so an explicit
// false survives the merge.
type Config struct {
	EntityType     entity.Type `yaml:"entityType" json:"entityType"`
	Title          string      `yaml:"title" json:"title"`
	ModelPrintName string      `yaml:"modelPrintName" json:"modelPrintName"`
	NewButtonLabel string      `yaml:"newButtonLabel" json:"newButtonLabel,omitempty"`

	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace"`
	Display   SectionConfig   `yaml:"display" json:"display"`
	Form      SectionConfig   `yaml:"form" json:"form"`
	List      ListConfig      `yaml:"list" json:"list"`

	// Functions are the data-layer bindings supplied at wiring time,
	// never from config files.
	Functions Functions `yaml:"-" json:"-"`
}

type WorkspaceConfig struct {
	Enabled     *bool          `yaml:"enabled" json:"enabled"`
	Layout      string         `yaml:"layout" json:"layout"`
	AllowCreate *bool          `yaml:"allowCreate" json:"allowCreate"`
	AllowEdit   *bool          `yaml:"allowEdit" json:"allowEdit"`
	AllowDelete *bool          `yaml:"allowDelete" json:"allowDelete"`
	GroupBy     string         `yaml:"groupBy" json:"groupBy,omitempty"`
	Features    FeatureToggles `yaml:"features" json:"features"`
	UI          UIToggles      `yaml:"ui" json:"ui"`
}

type FeatureToggles struct {
	Grouping    *bool `yaml:"grouping" json:"grouping"`
	Hierarchy   *bool `yaml:"hierarchy" json:"hierarchy"`
	InlineEdit  *bool `yaml:"inlineEdit" json:"inlineEdit"`
	Search      *bool `yaml:"search" json:"search"`
	Filters     *bool `yaml:"filters" json:"filters"`
	BulkActions *bool `yaml:"bulkActions" json:"bulkActions"`
}

type UIToggles struct {
	ShowStatus       *bool `yaml:"showStatus" json:"showStatus"`
	ShowVurdering    *bool `yaml:"showVurdering" json:"showVurdering"`
	ShowPrioritet    *bool `yaml:"showPrioritet" json:"showPrioritet"`
	ShowMerknader    *bool `yaml:"showMerknader" json:"showMerknader"`
	ShowHierarchy    *bool `yaml:"showHierarchy" json:"showHierarchy"`
	ShowObligatorisk *bool `yaml:"showObligatorisk" json:"showObligatorisk"`
	ShowRelations    *bool `yaml:"showRelations" json:"showRelations"`
}

type SectionConfig struct {
	Fields []FieldConfig `yaml:"fields" json:"fields"`
}

type FieldConfig struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label" json:"label,omitempty"`
	Type     string `yaml:"type" json:"type,omitempty"`
	Required bool   `yaml:"required" json:"required,omitempty"`
}

type ListConfig struct {
	Fields     []FieldConfig    `yaml:"fields" json:"fields"`
	Sorting    SortSpec         `yaml:"sorting" json:"sorting"`
	Filtering  *bool            `yaml:"filtering" json:"filtering"`
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`
}

type SortSpec struct {
	Field     string `yaml:"field" json:"field"`
	Direction string `yaml:"direction" json:"direction"`
}

type PaginationConfig struct {
	PageSize int `yaml:"pageSize" json:"pageSize"`
}

// ==== data-layer bindings ====

// Page is one page of a standard list query.
type Page struct {
	Items      []*entity.Entity `json:"items"`
	TotalPages int              `json:"totalPages"`
}

// EmneGroup is one bucket of a grouped-by-emne query. Entities whose emneId
// is null land in a group with a nil Emne.
type EmneGroup struct {
	Emne     *entity.Emne     `json:"emne"`
	Entities []*entity.Entity `json:"entities"`
}

type (
	QueryFunc   func(ctx context.Context, page, pageSize int, search, sortBy, sortOrder string) (*Page, error)
	QueryAll    func(ctx context.Context) ([]*entity.Entity, error)
	GroupedFunc func(ctx context.Context) ([]EmneGroup, error)
	GetByIDFunc func(ctx context.Context, id int64) (any, error)
	CreateFunc  func(ctx context.Context, e *entity.Entity) (any, error)
	UpdateFunc  func(ctx context.Context, id int64, e *entity.Entity) (any, error)
	DeleteFunc  func(ctx context.Context, id int64) error
)

// Functions groups the injected data-layer callables for one entity type.
// The core only invokes them; it never implements transport itself.
type Functions struct {
	Query          QueryFunc
	QueryAllFn     QueryAll
	GroupedByEmne  GroupedFunc
	GetByID        GetByIDFunc
	Create         CreateFunc
	Update         UpdateFunc
	Delete         DeleteFunc
}

// ==== default tables ====

func boolPtr(v bool) *bool { return &v }

// BoolOr dereferences a tri-state toggle with a fallback.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

var workspaceDefaults = WorkspaceConfig{
	Enabled:     boolPtr(true),
	Layout:      LayoutSplit,
	AllowCreate: boolPtr(true),
	AllowEdit:   boolPtr(true),
	AllowDelete: boolPtr(true),
	Features: FeatureToggles{
		Grouping:    boolPtr(true),
		Hierarchy:   boolPtr(false),
		InlineEdit:  boolPtr(false),
		Search:      boolPtr(true),
		Filters:     boolPtr(true),
		BulkActions: boolPtr(false),
	},
	UI: UIToggles{
		ShowStatus:       boolPtr(true),
		ShowVurdering:    boolPtr(true),
		ShowPrioritet:    boolPtr(true),
		ShowMerknader:    boolPtr(true),
		ShowHierarchy:    boolPtr(true),
		ShowObligatorisk: boolPtr(true),
		ShowRelations:    boolPtr(true),
	},
}

var listDefaults = ListConfig{
	Sorting:    SortSpec{Field: "tittel", Direction: "asc"},
	Filtering:  boolPtr(true),
	Pagination: PaginationConfig{PageSize: 50},
}

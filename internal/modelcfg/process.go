package modelcfg

import (
	"fmt"
	"strings"
	"sync"

	"mop/internal/entity"
)

// ConfigurationError marks a wiring mistake: unsupported entity type, missing
// base config, unknown adapter kind. Always fatal at setup time.
type ConfigurationError struct {
	Value string
	Msg   string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func supportedList() string {
	names := make([]string, 0, 4)
	for _, t := range entity.SupportedTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// Registry maps entity-type names to raw model configs. It is supplied once
// at startup; Process never mutates it.
type Registry struct {
	mu    sync.RWMutex
	bases map[entity.Type]*Config
}

// NewRegistry returns a registry seeded with the built-in MOP model configs.
func NewRegistry() *Registry {
	r := &Registry{bases: make(map[entity.Type]*Config)}
	for _, c := range builtinConfigs() {
		r.bases[c.EntityType] = c
	}
	return r
}

// NewEmptyRegistry returns a registry with no base configs. Used by tests and
// by embedders that supply the whole registry themselves.
func NewEmptyRegistry() *Registry {
	return &Registry{bases: make(map[entity.Type]*Config)}
}

// Put replaces the base config for its entity type.
func (r *Registry) Put(c *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bases[c.EntityType] = c
}

func (r *Registry) base(t entity.Type) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.bases[t]
	return c, ok
}

// BindFunctions attaches the data-layer callables for one entity type.
func (r *Registry) BindFunctions(t entity.Type, fns Functions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.bases[t]
	if !ok {
		return &ConfigurationError{Value: string(t), Msg: fmt.Sprintf("no configuration found for type %q", t)}
	}
	c.Functions = fns
	return nil
}

// Process validates the entity type, looks up its base config and returns a
// normalized copy with every workspace/display/form/list gap filled from the
// default tables. Explicit base values always win; processing an already
// normalized config again yields the same result.
func (r *Registry) Process(entityType string) (*Config, error) {
	t := entity.Type(entityType)
	if !entity.IsSupported(t) {
		return nil, &ConfigurationError{
			Value: entityType,
			Msg:   fmt.Sprintf("unsupported entity type %q (supported: %s)", entityType, supportedList()),
		}
	}
	base, ok := r.base(t)
	if !ok {
		return nil, &ConfigurationError{
			Value: entityType,
			Msg:   fmt.Sprintf("no configuration found for type %q", entityType),
		}
	}

	out := cloneConfig(base)
	out.EntityType = t
	mergeWorkspace(&out.Workspace)
	mergeList(&out.List)
	if out.Title == "" {
		out.Title = string(t)
	}
	if out.ModelPrintName == "" {
		out.ModelPrintName = out.Title
	}
	return out, nil
}

// ==== shallow merge with defaults ====

func mergeWorkspace(w *WorkspaceConfig) {
	d := workspaceDefaults
	if w.Enabled == nil {
		w.Enabled = d.Enabled
	}
	if w.Layout == "" {
		w.Layout = d.Layout
	}
	if w.AllowCreate == nil {
		w.AllowCreate = d.AllowCreate
	}
	if w.AllowEdit == nil {
		w.AllowEdit = d.AllowEdit
	}
	if w.AllowDelete == nil {
		w.AllowDelete = d.AllowDelete
	}
	mergeFeatures(&w.Features, d.Features)
	mergeUI(&w.UI, d.UI)
}

func mergeFeatures(f *FeatureToggles, d FeatureToggles) {
	if f.Grouping == nil {
		f.Grouping = d.Grouping
	}
	if f.Hierarchy == nil {
		f.Hierarchy = d.Hierarchy
	}
	if f.InlineEdit == nil {
		f.InlineEdit = d.InlineEdit
	}
	if f.Search == nil {
		f.Search = d.Search
	}
	if f.Filters == nil {
		f.Filters = d.Filters
	}
	if f.BulkActions == nil {
		f.BulkActions = d.BulkActions
	}
}

func mergeUI(u *UIToggles, d UIToggles) {
	if u.ShowStatus == nil {
		u.ShowStatus = d.ShowStatus
	}
	if u.ShowVurdering == nil {
		u.ShowVurdering = d.ShowVurdering
	}
	if u.ShowPrioritet == nil {
		u.ShowPrioritet = d.ShowPrioritet
	}
	if u.ShowMerknader == nil {
		u.ShowMerknader = d.ShowMerknader
	}
	if u.ShowHierarchy == nil {
		u.ShowHierarchy = d.ShowHierarchy
	}
	if u.ShowObligatorisk == nil {
		u.ShowObligatorisk = d.ShowObligatorisk
	}
	if u.ShowRelations == nil {
		u.ShowRelations = d.ShowRelations
	}
}

func mergeList(l *ListConfig) {
	d := listDefaults
	if l.Sorting.Field == "" {
		l.Sorting.Field = d.Sorting.Field
	}
	if l.Sorting.Direction == "" {
		l.Sorting.Direction = d.Sorting.Direction
	}
	if l.Filtering == nil {
		l.Filtering = d.Filtering
	}
	if l.Pagination.PageSize <= 0 {
		l.Pagination.PageSize = d.Pagination.PageSize
	}
}

func cloneConfig(c *Config) *Config {
	cp := *c
	cp.Workspace.Features = c.Workspace.Features
	cp.Workspace.UI = c.Workspace.UI
	cp.Display.Fields = append([]FieldConfig(nil), c.Display.Fields...)
	cp.Form.Fields = append([]FieldConfig(nil), c.Form.Fields...)
	cp.List.Fields = append([]FieldConfig(nil), c.List.Fields...)
	return &cp
}

// Package perm derives action permissions from a processed model config.
// Adapters never enforce these; the workspace layer gates buttons with them.
package perm

import "mop/internal/modelcfg"

type Permissions struct {
	CanCreate      bool `json:"canCreate"`
	CanEdit        bool `json:"canEdit"`
	CanDelete      bool `json:"canDelete"`
	CanBulkActions bool `json:"canBulkActions"`
}

// Compute resolves the booleans from the workspace config. A disabled
// workspace forbids everything regardless of the allow flags.
func Compute(cfg *modelcfg.Config) Permissions {
	if cfg == nil {
		return Permissions{}
	}
	w := cfg.Workspace
	if !modelcfg.BoolOr(w.Enabled, true) {
		return Permissions{}
	}
	return Permissions{
		CanCreate:      modelcfg.BoolOr(w.AllowCreate, true),
		CanEdit:        modelcfg.BoolOr(w.AllowEdit, true),
		CanDelete:      modelcfg.BoolOr(w.AllowDelete, true),
		CanBulkActions: modelcfg.BoolOr(w.Features.BulkActions, false),
	}
}

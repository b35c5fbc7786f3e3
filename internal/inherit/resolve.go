// Package inherit computes which subject (emne) a tiltak-family entity
// effectively belongs to while it is being edited. The effective emneId is
// derived, never stored: it can be inherited from a parent entity or from the
// first linked krav, and those two sources are mutually exclusive.
package inherit

import "mop/internal/entity"

// Source names where an inherited emne came from.
type Source string

const (
	SourceParent Source = "parent"
	SourceKrav   Source = "krav"
)

// FormData is the slice of an edit form the resolver depends on.
type FormData struct {
	EmneID          *int64  `json:"emneId,omitempty"`
	ParentID        *int64  `json:"parentId,omitempty"`
	KravIDs         []int64 `json:"kravIds,omitempty"`
	ProsjektKravIDs []int64 `json:"prosjektKravIds,omitempty"`
}

// LinkedKravIDs returns whichever krav-link list the form carries.
func (f FormData) LinkedKravIDs() []int64 {
	if len(f.KravIDs) > 0 {
		return f.KravIDs
	}
	return f.ProsjektKravIDs
}

// Result is the computed inheritance state for one edit session. It is
// recomputed on every input change and never persisted.
type Result struct {
	EmneID              *int64         `json:"emneId"`
	Source              Source         `json:"source,omitempty"`
	SourceData          *entity.Entity `json:"sourceData,omitempty"`
	IsInherited         bool           `json:"isInherited"`
	HasParentConnection bool           `json:"hasParentConnection"`
	HasKravConnection   bool           `json:"hasKravConnection"`
	EmneDisabled        bool           `json:"emneDisabled"`
	ParentDisabled      bool           `json:"parentDisabled"`
	KravDisabled        bool           `json:"kravDisabled"`
}

// Resolve evaluates the inheritance sources in strict priority order:
//
//  1. parent: parentId set and the parent record loaded — the parent's emne
//     wins, the emne and krav-link fields are disabled.
//  2. krav: at least one linked krav and the first one loaded — that krav's
//     emne wins, the emne and parent fields are disabled.
//  3. neither: the form's own emneId (possibly nil), nothing disabled.
//
// When both a parent link and a krav link exist in already-persisted data,
// parent priority wins silently. That is observed behavior, not a defect.
// A missing (not yet loaded or failed) record falls through the same as an
// absent link.
func Resolve(form FormData, parent, krav *entity.Entity) Result {
	if form.ParentID != nil && parent != nil {
		return Result{
			EmneID:              parent.EmneID,
			Source:              SourceParent,
			SourceData:          parent,
			IsInherited:         true,
			HasParentConnection: true,
			EmneDisabled:        true,
			KravDisabled:        true,
		}
	}
	if len(form.LinkedKravIDs()) > 0 && krav != nil {
		return Result{
			EmneID:            krav.EmneID,
			Source:            SourceKrav,
			SourceData:        krav,
			IsInherited:       true,
			HasKravConnection: true,
			EmneDisabled:      true,
			ParentDisabled:    true,
		}
	}
	return Result{EmneID: form.EmneID}
}

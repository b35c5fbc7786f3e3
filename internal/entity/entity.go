package entity

import (
	"encoding/json"
	"strconv"
)

// Type identifies a MOP entity type.
type Type string

const (
	TypeKrav           Type = "krav"
	TypeTiltak         Type = "tiltak"
	TypeProsjektKrav   Type = "prosjektKrav"
	TypeProsjektTiltak Type = "prosjektTiltak"
)

// Combined-view identifiers. Derived views, not members of the supported set.
const (
	TypeCombined         Type = "combinedEntities"
	TypeProsjektCombined Type = "prosjektCombined"
)

// SupportedTypes is the closed set of concrete entity types.
func SupportedTypes() []Type {
	return []Type{TypeKrav, TypeTiltak, TypeProsjektKrav, TypeProsjektTiltak}
}

func IsSupported(t Type) bool {
	switch t {
	case TypeKrav, TypeTiltak, TypeProsjektKrav, TypeProsjektTiltak:
		return true
	}
	return false
}

// IsKravFamily reports whether t carries a kravUID.
func IsKravFamily(t Type) bool { return t == TypeKrav || t == TypeProsjektKrav }

// IsTiltakFamily reports whether t carries a tiltakUID and participates in
// emne inheritance.
func IsTiltakFamily(t Type) bool { return t == TypeTiltak || t == TypeProsjektTiltak }

func IsProjectScoped(t Type) bool { return t == TypeProsjektKrav || t == TypeProsjektTiltak }

// NamedRef is a backend-populated relation carrying a display name under
// either key, depending on which service produced it.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Navn string `json:"navn,omitempty"`
}

func (r *NamedRef) DisplayName() string {
	if r == nil {
		return ""
	}
	if r.Navn != "" {
		return r.Navn
	}
	return r.Name
}

// Emne is the subject/topic classification entity.
type Emne struct {
	ID     int64  `json:"id"`
	Navn   string `json:"navn,omitempty"`
	Name   string `json:"name,omitempty"`
	Tittel string `json:"tittel,omitempty"`
	Color  string `json:"color,omitempty"`
}

func (e *Emne) DisplayName() string {
	if e == nil {
		return ""
	}
	if e.Navn != "" {
		return e.Navn
	}
	if e.Name != "" {
		return e.Name
	}
	return e.Tittel
}

// Entity is one Krav/Tiltak/ProsjektKrav/ProsjektTiltak record as returned by
// the data layer. Fields double as both wire shape and store shape; nullable
// references are pointers.
type Entity struct {
	ID int64 `json:"id,omitempty"`

	// EntityType is set only on records coming from combined views.
	EntityType Type `json:"entityType,omitempty"`

	KravUID   string `json:"kravUID,omitempty"`
	TiltakUID string `json:"tiltakUID,omitempty"`
	UID       string `json:"uid,omitempty"`

	Tittel string `json:"tittel,omitempty"`
	Title  string `json:"title,omitempty"`
	Navn   string `json:"navn,omitempty"`
	Name   string `json:"name,omitempty"`

	Beskrivelse     string `json:"beskrivelse,omitempty"`
	DescriptionCard string `json:"descriptionCard,omitempty"`

	EmneID   *int64  `json:"emneId,omitempty"`
	ParentID *int64  `json:"parentId,omitempty"`
	KravIDs  []int64 `json:"kravIds,omitempty"`
	// ProsjektKravIDs replaces KravIDs on project-scoped Tiltak.
	ProsjektKravIDs []int64 `json:"prosjektKravIds,omitempty"`

	Obligatorisk *bool  `json:"obligatorisk,omitempty"`
	Prioritet    string `json:"prioritet,omitempty"`
	Merknader    string `json:"merknader,omitempty"`

	Status       *NamedRef `json:"status,omitempty"`
	Vurdering    *NamedRef `json:"vurdering,omitempty"`
	Emne         *Emne     `json:"emne,omitempty"`
	Parent       *Entity   `json:"parent,omitempty"`
	Krav         []*Entity `json:"krav,omitempty"`
	ProsjektKrav []*Entity `json:"prosjektKrav,omitempty"`

	// Enhancement output, never persisted. RenderID is unique per enhancement
	// so list UIs can key rows across combined views.
	RenderID    string `json:"renderId,omitempty"`
	DisplayType string `json:"displayType,omitempty"`
	BadgeColor  string `json:"badgeColor,omitempty"`
}

// DisplayTitle resolves the display title fallback chain.
// The literal fallback is used when every title field is empty.
func (e *Entity) DisplayTitle() string {
	if e == nil {
		return ""
	}
	for _, s := range []string{e.Tittel, e.Title, e.Navn, e.Name} {
		if s != "" {
			return s
		}
	}
	return "Uten tittel"
}

func (e *Entity) Description() string {
	if e == nil {
		return ""
	}
	if e.Beskrivelse != "" {
		return e.Beskrivelse
	}
	return e.DescriptionCard
}

func (e *Entity) StatusName() string    { return e.refName(e.Status) }
func (e *Entity) VurderingName() string { return e.refName(e.Vurdering) }

func (e *Entity) refName(r *NamedRef) string {
	if e == nil {
		return ""
	}
	return r.DisplayName()
}

func (e *Entity) EmneName() string {
	if e == nil {
		return ""
	}
	return e.Emne.DisplayName()
}

// RelatedKravIDs returns whichever krav-link list the record carries.
func (e *Entity) RelatedKravIDs() []int64 {
	if e == nil {
		return nil
	}
	if len(e.KravIDs) > 0 {
		return e.KravIDs
	}
	return e.ProsjektKravIDs
}

func (e *Entity) IDString() string {
	if e == nil {
		return ""
	}
	return strconv.FormatInt(e.ID, 10)
}

// Clone makes a shallow-plus-slices copy, enough for enhancement to not
// mutate store-owned records.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	cp := *e
	cp.KravIDs = append([]int64(nil), e.KravIDs...)
	cp.ProsjektKravIDs = append([]int64(nil), e.ProsjektKravIDs...)
	cp.Krav = append([]*Entity(nil), e.Krav...)
	cp.ProsjektKrav = append([]*Entity(nil), e.ProsjektKrav...)
	return &cp
}

// Envelope is the axios-style {data: entity} wrapper some data-layer
// functions resolve to.
type Envelope struct {
	Data *Entity `json:"data"`
}

// Unwrap tolerates both a bare entity and an {data: entity} envelope.
// Unknown shapes (including JSON maps) are decoded through encoding/json.
func Unwrap(v any) (*Entity, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *Entity:
		return t, t != nil
	case Entity:
		cp := t
		return &cp, true
	case *Envelope:
		if t == nil {
			return nil, false
		}
		return t.Data, t.Data != nil
	case Envelope:
		return t.Data, t.Data != nil
	case map[string]any:
		if inner, ok := t["data"]; ok {
			if m, ok := inner.(map[string]any); ok {
				return decodeMap(m)
			}
			return Unwrap(inner)
		}
		return decodeMap(t)
	}
	return nil, false
}

func decodeMap(m map[string]any) (*Entity, bool) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var e Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	return &e, true
}

package adapter

import (
	"fmt"
	"strings"

	"mop/internal/entity"
	"mop/internal/modelcfg"
)

// Adapter kinds. The workspace kind builds the full per-type adapter; the
// simple kind builds the generic fallback. Both accept one alias.
const (
	KindEntityWorkspace = "entityWorkspace"
	KindComplex         = "complex"
	KindSimple          = "simple"
	KindBasic           = "basic"
)

// CanonicalType resolves an entity-type spelling to its canonical camelCase
// form. Matching ignores case and separators, so "prosjekt-krav",
// "ProsjektKrav" and "prosjektkrav" all resolve to prosjektKrav.
func CanonicalType(raw string) (entity.Type, bool) {
	key := strings.ToLower(raw)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "krav":
		return entity.TypeKrav, true
	case "tiltak":
		return entity.TypeTiltak, true
	case "prosjektkrav":
		return entity.TypeProsjektKrav, true
	case "prosjekttiltak":
		return entity.TypeProsjektTiltak, true
	case "combinedentities", "combined":
		return entity.TypeCombined, true
	case "prosjektcombined":
		return entity.TypeProsjektCombined, true
	}
	return "", false
}

// PrimaryType maps a combined-view identifier to the concrete type its
// adapter is built from. Concrete types map to themselves.
func PrimaryType(t entity.Type) entity.Type {
	switch t {
	case entity.TypeCombined:
		return entity.TypeKrav
	case entity.TypeProsjektCombined:
		return entity.TypeProsjektKrav
	}
	return t
}

// SecondaryType maps a combined-view identifier to its second concrete type,
// or "" for non-combined types.
func SecondaryType(t entity.Type) entity.Type {
	switch t {
	case entity.TypeCombined:
		return entity.TypeTiltak
	case entity.TypeProsjektCombined:
		return entity.TypeProsjektTiltak
	}
	return ""
}

// New builds an adapter of the requested kind. Unknown kinds and, for the
// workspace kind, unknown entity types are configuration errors.
func New(kind, entityType string, cfg *modelcfg.Config) (Adapter, error) {
	switch kind {
	case KindEntityWorkspace, KindComplex:
		t, ok := CanonicalType(entityType)
		if !ok {
			return nil, &modelcfg.ConfigurationError{
				Value: entityType,
				Msg:   fmt.Sprintf("unknown entity type %q for %s adapter", entityType, KindEntityWorkspace),
			}
		}
		return newConcrete(PrimaryType(t), cfg), nil
	case KindSimple, KindBasic:
		t, ok := CanonicalType(entityType)
		if !ok {
			t = entity.Type(entityType)
		}
		return NewSimpleAdapter(t, cfg), nil
	default:
		return nil, &modelcfg.ConfigurationError{
			Value: kind,
			Msg: fmt.Sprintf("unknown adapter kind %q (allowed: %s|%s, %s|%s)",
				kind, KindEntityWorkspace, KindComplex, KindSimple, KindBasic),
		}
	}
}

// NewByEntityType builds the full adapter for the four known MOP types (and
// combined views, through their primary type) and degrades to the simple
// adapter for anything else. It never fails on a well-formed type name.
func NewByEntityType(entityType string, cfg *modelcfg.Config) Adapter {
	t, ok := CanonicalType(entityType)
	if !ok {
		return NewSimpleAdapter(entity.Type(entityType), cfg)
	}
	return newConcrete(PrimaryType(t), cfg)
}

func newConcrete(t entity.Type, cfg *modelcfg.Config) Adapter {
	switch t {
	case entity.TypeKrav:
		return NewKravAdapter(cfg)
	case entity.TypeTiltak:
		return NewTiltakAdapter(cfg)
	case entity.TypeProsjektKrav:
		return NewProsjektKravAdapter(cfg)
	case entity.TypeProsjektTiltak:
		return NewProsjektTiltakAdapter(cfg)
	default:
		return NewSimpleAdapter(t, cfg)
	}
}

// ValidationResult is an upfront diagnostic, not control flow.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateConfig reports whether cfg is usable for the given adapter kind.
// It returns diagnostics instead of failing.
func ValidateConfig(kind string, cfg *modelcfg.Config) ValidationResult {
	var errs []string
	switch kind {
	case KindEntityWorkspace, KindComplex, KindSimple, KindBasic:
	default:
		errs = append(errs, fmt.Sprintf("unknown adapter kind %q", kind))
	}
	if cfg == nil {
		errs = append(errs, "config is nil")
	} else {
		if cfg.EntityType == "" {
			errs = append(errs, "config has no entityType")
		}
		if kind == KindEntityWorkspace || kind == KindComplex {
			if _, ok := CanonicalType(string(cfg.EntityType)); !ok {
				errs = append(errs, fmt.Sprintf("entity type %q is not a workspace type", cfg.EntityType))
			}
			if cfg.Title == "" {
				errs = append(errs, "config has no title")
			}
		}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

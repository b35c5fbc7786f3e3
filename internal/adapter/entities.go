package adapter

import (
	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
)

// KravAdapter handles general requirements.
type KravAdapter struct{ base }

func NewKravAdapter(cfg *modelcfg.Config) *KravAdapter {
	return &KravAdapter{base{
		entityType:  entity.TypeKrav,
		cfg:         cfg,
		uidField:    "kravUID",
		displayType: "Krav",
		badgeColor:  "blue",
	}}
}

// TiltakAdapter handles measures. Tiltak inherit their emne from a parent
// tiltak or from the first linked krav.
type TiltakAdapter struct{ base }

func NewTiltakAdapter(cfg *modelcfg.Config) *TiltakAdapter {
	return &TiltakAdapter{base{
		entityType:  entity.TypeTiltak,
		cfg:         cfg,
		uidField:    "tiltakUID",
		displayType: "Tiltak",
		badgeColor:  "green",
	}}
}

func (a *TiltakAdapter) EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) inherit.Result {
	return inherit.Resolve(form, parent, krav)
}

// ProsjektKravAdapter handles project-scoped requirements.
type ProsjektKravAdapter struct{ base }

func NewProsjektKravAdapter(cfg *modelcfg.Config) *ProsjektKravAdapter {
	return &ProsjektKravAdapter{base{
		entityType:  entity.TypeProsjektKrav,
		cfg:         cfg,
		uidField:    "kravUID",
		displayType: "Prosjektkrav",
		badgeColor:  "indigo",
	}}
}

// ProsjektTiltakAdapter handles project-scoped measures.
type ProsjektTiltakAdapter struct{ base }

func NewProsjektTiltakAdapter(cfg *modelcfg.Config) *ProsjektTiltakAdapter {
	return &ProsjektTiltakAdapter{base{
		entityType:  entity.TypeProsjektTiltak,
		cfg:         cfg,
		uidField:    "tiltakUID",
		displayType: "Prosjekttiltak",
		badgeColor:  "teal",
	}}
}

func (a *ProsjektTiltakAdapter) EffectiveEmne(form inherit.FormData, parent, krav *entity.Entity) inherit.Result {
	return inherit.Resolve(form, parent, krav)
}

// SimpleAdapter is the generic fallback for well-formed but unrecognized
// entity types. It has no type-specific UID field and no inheritance.
type SimpleAdapter struct{ base }

func NewSimpleAdapter(entityType entity.Type, cfg *modelcfg.Config) *SimpleAdapter {
	if cfg == nil {
		cfg = &modelcfg.Config{EntityType: entityType, Title: string(entityType)}
	}
	return &SimpleAdapter{base{
		entityType:  entityType,
		cfg:         cfg,
		displayType: cfg.Title,
		badgeColor:  "gray",
	}}
}

package dto

import (
	"sync"

	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/modelcfg"
)

// Builder runs the workspace pipeline for one entity-type selection:
// registry → processed config → adapter(s) → DTO. Built DTOs are memoized
// per canonical type; the cache is pure memoization and can be dropped at
// any time without changing behavior.
type Builder struct {
	reg *modelcfg.Registry

	mu    sync.Mutex
	cache map[entity.Type]DTO
}

func NewBuilder(reg *modelcfg.Registry) *Builder {
	return &Builder{reg: reg, cache: make(map[entity.Type]DTO)}
}

// For returns the DTO for an entity-type selection, accepting any casing the
// factory accepts. Combined views wire both underlying adapters.
func (b *Builder) For(entityType string) (DTO, error) {
	t, ok := adapter.CanonicalType(entityType)
	if !ok {
		t = entity.Type(entityType)
	}

	b.mu.Lock()
	if d, hit := b.cache[t]; hit {
		b.mu.Unlock()
		return d, nil
	}
	b.mu.Unlock()

	d, err := b.build(t)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.cache[t] = d
	b.mu.Unlock()
	return d, nil
}

func (b *Builder) build(t entity.Type) (DTO, error) {
	secondary := adapter.SecondaryType(t)
	if secondary == "" {
		cfg, err := b.reg.Process(string(t))
		if err != nil {
			return nil, err
		}
		return NewSingle(adapter.NewByEntityType(string(t), cfg)), nil
	}

	primary := adapter.PrimaryType(t)
	pcfg, err := b.reg.Process(string(primary))
	if err != nil {
		return nil, err
	}
	scfg, err := b.reg.Process(string(secondary))
	if err != nil {
		return nil, err
	}
	return NewCombined(t,
		adapter.NewByEntityType(string(primary), pcfg),
		adapter.NewByEntityType(string(secondary), scfg),
		CombinedViewConfig{})
}

// Reset drops every memoized DTO, forcing rebuilds against the current
// registry contents. Called after an admin reload.
func (b *Builder) Reset() {
	b.mu.Lock()
	b.cache = make(map[entity.Type]DTO)
	b.mu.Unlock()
}

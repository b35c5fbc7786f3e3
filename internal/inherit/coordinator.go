package inherit

import (
	"context"
	"fmt"
	"time"

	"mop/internal/entity"
	"mop/internal/modelcfg"
)

// Coordinator resolves inheritance for one entity type, lazily fetching the
// parent record and the first linked krav through the injected single-record
// functions. Fetches are deduplicated through a keyed request cache so
// duplicate triggers collapse into one in-flight request; a changed id maps
// to a different key, which is how stale results get discarded.
type Coordinator struct {
	entityType entity.Type
	parentType entity.Type
	kravType   entity.Type
	getParent  modelcfg.GetByIDFunc
	getKrav    modelcfg.GetByIDFunc
	cache      *requestCache
}

// NewCoordinator wires a coordinator for entityType. getParent fetches the
// same-type parent; getKrav fetches the linked krav-family record and is nil
// for krav-family types (they do not inherit).
func NewCoordinator(entityType entity.Type, getParent, getKrav modelcfg.GetByIDFunc, ttl time.Duration) *Coordinator {
	kravType := entity.TypeKrav
	if entity.IsProjectScoped(entityType) {
		kravType = entity.TypeProsjektKrav
	}
	return &Coordinator{
		entityType: entityType,
		parentType: entityType,
		kravType:   kravType,
		getParent:  getParent,
		getKrav:    getKrav,
		cache:      newRequestCache(ttl),
	}
}

// Resolve fetches whichever related records the form requires and computes
// the inheritance result from the snapshots it has. Parent and krav fetches
// are independent; a failed fetch degrades to "not loaded" and the result is
// still computed, with the first fetch error returned for surfacing.
func (c *Coordinator) Resolve(ctx context.Context, form FormData) (Result, error) {
	var parent, krav *entity.Entity
	var firstErr error

	if form.ParentID != nil && c.getParent != nil {
		p, err := c.fetch(ctx, c.parentType, *form.ParentID, c.getParent)
		if err != nil {
			firstErr = err
		} else {
			parent = p
		}
	}

	if ids := form.LinkedKravIDs(); len(ids) > 0 && c.getKrav != nil && entity.IsTiltakFamily(c.entityType) {
		k, err := c.fetch(ctx, c.kravType, ids[0], c.getKrav)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			krav = k
		}
	}

	return Resolve(form, parent, krav), firstErr
}

func (c *Coordinator) fetch(ctx context.Context, t entity.Type, id int64, fn modelcfg.GetByIDFunc) (*entity.Entity, error) {
	key := fmt.Sprintf("%s/%d", t, id)
	return c.cache.get(ctx, key, func(ctx context.Context) (*entity.Entity, error) {
		raw, err := fn(ctx, id)
		if err != nil {
			return nil, err
		}
		e, ok := entity.Unwrap(raw)
		if !ok {
			return nil, fmt.Errorf("fetch %s: unexpected payload shape", key)
		}
		return e, nil
	})
}

// Invalidate drops the cached record for (type, id), forcing the next
// resolve to refetch. Called after saves touching related records.
func (c *Coordinator) Invalidate(t entity.Type, id int64) {
	c.cache.drop(fmt.Sprintf("%s/%d", t, id))
}

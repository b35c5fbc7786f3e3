// Package store is the in-memory data layer: per-type record maps guarded by
// one RWMutex, soft delete, optimistic versioning and reference joins against
// the loaded catalogs. Postgres persistence lives in internal/pg; this store
// is the default backend and the fixture for tests.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mop/internal/entity"
	"mop/internal/reference"
)

type record struct {
	ent       *entity.Entity
	version   int64
	createdAt time.Time
	updatedAt time.Time
	deleted   bool
}

type Store struct {
	mu       sync.RWMutex
	data     map[entity.Type]map[int64]*record
	seq      map[entity.Type]int64
	catalogs map[string]reference.Catalog

	now func() time.Time
}

func New(catalogs map[string]reference.Catalog) *Store {
	s := &Store{
		data:     make(map[entity.Type]map[int64]*record),
		seq:      make(map[entity.Type]int64),
		catalogs: catalogs,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if s.catalogs == nil {
		s.catalogs = make(map[string]reference.Catalog)
	}
	for _, t := range entity.SupportedTypes() {
		s.data[t] = make(map[int64]*record)
	}
	return s
}

// ReplaceCatalogs swaps the reference catalogs after an admin reload.
func (s *Store) ReplaceCatalogs(catalogs map[string]reference.Catalog) {
	s.mu.Lock()
	s.catalogs = catalogs
	s.mu.Unlock()
}

func uidPrefix(t entity.Type) string {
	switch t {
	case entity.TypeKrav:
		return "K"
	case entity.TypeTiltak:
		return "T"
	case entity.TypeProsjektKrav:
		return "PK"
	case entity.TypeProsjektTiltak:
		return "PT"
	}
	return "X"
}

// kravLinkTarget is the type a tiltak-family record links krav against.
func kravLinkTarget(t entity.Type) entity.Type {
	if t == entity.TypeProsjektTiltak {
		return entity.TypeProsjektKrav
	}
	return entity.TypeKrav
}

// Get returns a joined copy of one live record.
func (s *Store) Get(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.data[t][id]
	if rec == nil || rec.deleted {
		return nil, &NotFoundError{EntityType: string(t), ID: id}
	}
	return s.joinLocked(t, rec.ent), nil
}

// Version returns the current optimistic-lock version of a live record.
func (s *Store) Version(t entity.Type, id int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.data[t][id]
	if rec == nil || rec.deleted {
		return 0, false
	}
	return rec.version, true
}

// List returns joined copies of every live record of the type.
func (s *Store) List(ctx context.Context, t entity.Type) ([]*entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recMap := s.data[t]
	out := make([]*entity.Entity, 0, len(recMap))
	for _, rec := range recMap {
		if rec.deleted {
			continue
		}
		out = append(out, s.joinLocked(t, rec.ent))
	}
	sortByID(out)
	return out, nil
}

// Create validates and inserts a new record, assigning id and uid.
func (s *Store) Create(ctx context.Context, t entity.Type, e *entity.Entity) (*entity.Entity, error) {
	if !entity.IsSupported(t) {
		return nil, &NotFoundError{EntityType: string(t)}
	}
	if e == nil {
		return nil, &ValidationError{Errors: []FieldError{ferr(ErrRequired, "body", "Request body is required")}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.validateLocked(t, e, 0); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	s.seq[t]++
	id := s.seq[t]
	now := s.now()

	stored := e.Clone()
	stored.ID = id
	s.assignUID(t, stored)
	stored.EntityType = ""
	stored.RenderID, stored.DisplayType, stored.BadgeColor = "", "", ""

	s.data[t][id] = &record{ent: stored, version: 1, createdAt: now, updatedAt: now}
	return s.joinLocked(t, stored), nil
}

// Update replaces a live record. expectedVersion 0 skips the optimistic
// check; callers carrying an If-Match hint pass the client's version.
func (s *Store) Update(ctx context.Context, t entity.Type, id int64, e *entity.Entity, expectedVersion int64) (*entity.Entity, error) {
	if e == nil {
		return nil, &ValidationError{Errors: []FieldError{ferr(ErrRequired, "body", "Request body is required")}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.validateLocked(t, e, id); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	rec := s.data[t][id]
	if rec == nil || rec.deleted {
		return nil, &NotFoundError{EntityType: string(t), ID: id}
	}
	if expectedVersion != 0 && expectedVersion != rec.version {
		return nil, &VersionConflictError{Expected: expectedVersion, Current: rec.version}
	}

	stored := e.Clone()
	stored.ID = id
	s.assignUID(t, stored)
	stored.EntityType = ""
	stored.RenderID, stored.DisplayType, stored.BadgeColor = "", "", ""

	rec.ent = stored
	rec.version++
	rec.updatedAt = s.now()
	return s.joinLocked(t, stored), nil
}

// Delete soft-deletes a live record.
func (s *Store) Delete(ctx context.Context, t entity.Type, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data[t][id]
	if rec == nil || rec.deleted {
		return &NotFoundError{EntityType: string(t), ID: id}
	}
	if refType, refField, inUse := s.findIncomingRefsLocked(t, id); inUse {
		return &ValidationError{Errors: []FieldError{{
			Code:    "fk_in_use",
			Field:   refField,
			Message: fmt.Sprintf("record is referenced by %s.%s", refType, refField),
		}}}
	}
	rec.deleted = true
	rec.version++
	rec.updatedAt = s.now()
	return nil
}

// Restore brings a soft-deleted record back.
func (s *Store) Restore(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data[t][id]
	if rec == nil {
		return nil, &NotFoundError{EntityType: string(t), ID: id}
	}
	if rec.deleted {
		rec.deleted = false
		rec.version++
		rec.updatedAt = s.now()
	}
	return s.joinLocked(t, rec.ent), nil
}

func (s *Store) assignUID(t entity.Type, e *entity.Entity) {
	uid := fmt.Sprintf("%s-%d", uidPrefix(t), e.ID)
	if entity.IsKravFamily(t) {
		e.KravUID = uid
		e.TiltakUID = ""
	} else {
		e.TiltakUID = uid
		e.KravUID = ""
	}
	e.UID = uid
}

// findIncomingRefsLocked reports the first live record referencing (t, id)
// through parentId or krav links. Caller holds at least a read lock.
func (s *Store) findIncomingRefsLocked(t entity.Type, id int64) (entity.Type, string, bool) {
	for _, childType := range entity.SupportedTypes() {
		for _, rec := range s.data[childType] {
			if rec == nil || rec.deleted {
				continue
			}
			if childType == t && rec.ent.ParentID != nil && *rec.ent.ParentID == id {
				return childType, "parentId", true
			}
			if entity.IsTiltakFamily(childType) && kravLinkTarget(childType) == t {
				for _, kid := range rec.ent.RelatedKravIDs() {
					if kid == id {
						if childType == entity.TypeProsjektTiltak {
							return childType, "prosjektKravIds", true
						}
						return childType, "kravIds", true
					}
				}
			}
		}
	}
	return "", "", false
}

// validateLocked checks the write against the reference catalogs and the live
// records. Caller holds the write lock so the checked references cannot be
// deleted before the mutation lands. excludeID is the record being updated,
// 0 on create.
func (s *Store) validateLocked(t entity.Type, e *entity.Entity, excludeID int64) []FieldError {
	var errs []FieldError

	if e.Tittel == "" && e.Title == "" && e.Navn == "" && e.Name == "" {
		errs = append(errs, ferr(ErrRequired, "tittel", "Field 'tittel' is required"))
	}

	hasParent := e.ParentID != nil
	hasKrav := entity.IsTiltakFamily(t) && len(e.RelatedKravIDs()) > 0
	if e.EmneID != nil && (hasParent || hasKrav) {
		errs = append(errs, ferr(ErrEmneConflict, "emneId",
			"Emne is inherited while a parent or krav connection is active"))
	}

	if e.EmneID != nil {
		if _, ok := s.catalogs[reference.CatalogEmner].Find(*e.EmneID); !ok {
			errs = append(errs, ferr(ErrRefNotFound, "emneId",
				fmt.Sprintf("Referenced emne %d not found", *e.EmneID)))
		}
	}
	if e.Status != nil {
		if _, ok := s.catalogs[reference.CatalogStatuser].Find(e.Status.ID); !ok {
			errs = append(errs, ferr(ErrRefNotFound, "status",
				fmt.Sprintf("Referenced status %d not found", e.Status.ID)))
		}
	}
	if e.Vurdering != nil {
		if _, ok := s.catalogs[reference.CatalogVurderinger].Find(e.Vurdering.ID); !ok {
			errs = append(errs, ferr(ErrRefNotFound, "vurdering",
				fmt.Sprintf("Referenced vurdering %d not found", e.Vurdering.ID)))
		}
	}
	if e.ParentID != nil {
		if *e.ParentID == excludeID && excludeID != 0 {
			errs = append(errs, ferr(ErrTypeMismatch, "parentId", "Record cannot be its own parent"))
		} else if !s.existsLocked(t, *e.ParentID) {
			errs = append(errs, ferr(ErrRefNotFound, "parentId",
				fmt.Sprintf("Referenced parent %d not found", *e.ParentID)))
		}
	}
	if entity.IsTiltakFamily(t) {
		target := kravLinkTarget(t)
		field := "kravIds"
		if t == entity.TypeProsjektTiltak {
			field = "prosjektKravIds"
		}
		for _, kid := range e.RelatedKravIDs() {
			if !s.existsLocked(target, kid) {
				errs = append(errs, ferr(ErrRefNotFound, field,
					fmt.Sprintf("Referenced %s %d not found", target, kid)))
				break
			}
		}
	} else if len(e.KravIDs) > 0 || len(e.ProsjektKravIDs) > 0 {
		errs = append(errs, ferr(ErrTypeMismatch, "kravIds",
			fmt.Sprintf("%s records do not carry krav links", t)))
	}

	return errs
}

func (s *Store) existsLocked(t entity.Type, id int64) bool {
	rec := s.data[t][id]
	return rec != nil && !rec.deleted
}

// joinLocked returns a copy with catalog references and one level of record
// relations resolved. Caller holds at least a read lock.
func (s *Store) joinLocked(t entity.Type, e *entity.Entity) *entity.Entity {
	out := e.Clone()

	if out.EmneID != nil {
		if item, ok := s.catalogs[reference.CatalogEmner].Find(*out.EmneID); ok {
			out.Emne = item.Emne()
		}
	}
	if out.Status != nil {
		if item, ok := s.catalogs[reference.CatalogStatuser].Find(out.Status.ID); ok {
			out.Status = item.Ref()
		}
	}
	if out.Vurdering != nil {
		if item, ok := s.catalogs[reference.CatalogVurderinger].Find(out.Vurdering.ID); ok {
			out.Vurdering = item.Ref()
		}
	}
	if out.ParentID != nil {
		if rec := s.data[t][*out.ParentID]; rec != nil && !rec.deleted {
			parent := rec.ent.Clone()
			if parent.EmneID != nil {
				if item, ok := s.catalogs[reference.CatalogEmner].Find(*parent.EmneID); ok {
					parent.Emne = item.Emne()
				}
			}
			out.Parent = parent
		}
	}
	if entity.IsTiltakFamily(t) {
		target := kravLinkTarget(t)
		linked := make([]*entity.Entity, 0, len(out.RelatedKravIDs()))
		for _, kid := range out.RelatedKravIDs() {
			rec := s.data[target][kid]
			if rec == nil || rec.deleted {
				continue
			}
			k := rec.ent.Clone()
			if k.EmneID != nil {
				if item, ok := s.catalogs[reference.CatalogEmner].Find(*k.EmneID); ok {
					k.Emne = item.Emne()
				}
			}
			linked = append(linked, k)
		}
		if t == entity.TypeProsjektTiltak {
			out.ProsjektKrav = linked
		} else {
			out.Krav = linked
		}
	}
	return out
}

func sortByID(items []*entity.Entity) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

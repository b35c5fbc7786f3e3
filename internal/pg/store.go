package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mop/internal/entity"
	"mop/internal/modelcfg"
	"mop/internal/reference"
	"mop/internal/store"
)

// Store is the Postgres-backed record store. Records live as jsonb payloads
// next to the system columns; reference joins against the catalogs happen in
// Go, the same way the in-memory backend does them.
type Store struct {
	db       *sql.DB
	catalogs map[string]reference.Catalog
	log      *zap.Logger
}

func NewStore(db *sql.DB, catalogs map[string]reference.Catalog, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if catalogs == nil {
		catalogs = make(map[string]reference.Catalog)
	}
	return &Store{db: db, catalogs: catalogs, log: log}
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

func (s *Store) Get(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select data from %s where id = $1 and not deleted`, qualified(t)), id)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, &store.NotFoundError{EntityType: string(t), ID: id}
		}
		return nil, err
	}
	e, err := decode(raw, id)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, t, e), nil
}

func (s *Store) List(ctx context.Context, t entity.Type) ([]*entity.Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select id, data from %s where not deleted order by id`, qualified(t)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		e, err := decode(raw, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s.join(ctx, t, e))
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, t entity.Type, e *entity.Entity) (*entity.Entity, error) {
	if !entity.IsSupported(t) {
		return nil, &store.NotFoundError{EntityType: string(t)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	errs, err := s.validateTx(ctx, tx, t, e, 0)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &store.ValidationError{Errors: errs}
	}

	stored := sanitize(e)
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	var id int64
	err = tx.QueryRowContext(ctx, fmt.Sprintf(
		`insert into %s (uid, version, created_at, updated_at, emne_id, parent_id, data)
		 values ('', 1, now(), now(), $1, $2, $3) returning id`, qualified(t)),
		stored.EmneID, stored.ParentID, raw).Scan(&id)
	if err != nil {
		return nil, err
	}

	stored.ID = id
	assignUID(t, stored)
	raw, err = json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`update %s set uid = $1, data = $2 where id = $3`, qualified(t)),
		stored.UID, raw, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.join(ctx, t, stored), nil
}

func (s *Store) Update(ctx context.Context, t entity.Type, id int64, e *entity.Entity, expectedVersion int64) (*entity.Entity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	errs, err := s.validateTx(ctx, tx, t, e, id)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &store.ValidationError{Errors: errs}
	}

	var current int64
	err = tx.QueryRowContext(ctx, fmt.Sprintf(
		`select version from %s where id = $1 and not deleted for update`, qualified(t)), id).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &store.NotFoundError{EntityType: string(t), ID: id}
		}
		return nil, err
	}
	if expectedVersion != 0 && expectedVersion != current {
		return nil, &store.VersionConflictError{Expected: expectedVersion, Current: current}
	}

	stored := sanitize(e)
	stored.ID = id
	assignUID(t, stored)
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`update %s set uid = $1, version = version + 1, updated_at = now(),
		 emne_id = $2, parent_id = $3, data = $4 where id = $5`, qualified(t)),
		stored.UID, stored.EmneID, stored.ParentID, raw, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.join(ctx, t, stored), nil
}

// Delete soft-deletes a live record. Like the in-memory backend it refuses
// while another live record still points at the target through parentId or a
// krav link; soft deletes are updates, so the schema-level FK never fires and
// the check has to happen here.
func (s *Store) Delete(ctx context.Context, t entity.Type, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int64
	err = tx.QueryRowContext(ctx, fmt.Sprintf(
		`select version from %s where id = $1 and not deleted for update`, qualified(t)), id).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return &store.NotFoundError{EntityType: string(t), ID: id}
		}
		return err
	}

	var hasChild bool
	err = tx.QueryRowContext(ctx, fmt.Sprintf(
		`select exists(select 1 from %s where not deleted and parent_id = $1)`, qualified(t)), id).Scan(&hasChild)
	if err != nil {
		return err
	}
	if hasChild {
		return &store.ValidationError{Errors: []store.FieldError{{
			Code:    "fk_in_use",
			Field:   "parentId",
			Message: fmt.Sprintf("record is referenced by %s.parentId", t),
		}}}
	}

	if entity.IsKravFamily(t) {
		child, field := entity.TypeTiltak, "kravIds"
		if t == entity.TypeProsjektKrav {
			child, field = entity.TypeProsjektTiltak, "prosjektKravIds"
		}
		var linked bool
		err = tx.QueryRowContext(ctx, fmt.Sprintf(
			`select exists(select 1 from %s where not deleted and
			 (coalesce(data->'kravIds', '[]'::jsonb) || coalesce(data->'prosjektKravIds', '[]'::jsonb))
			 @> to_jsonb($1::bigint))`, qualified(child)), id).Scan(&linked)
		if err != nil {
			return err
		}
		if linked {
			return &store.ValidationError{Errors: []store.FieldError{{
				Code:    "fk_in_use",
				Field:   field,
				Message: fmt.Sprintf("record is referenced by %s.%s", child, field),
			}}}
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`update %s set deleted = true, version = version + 1, updated_at = now()
		 where id = $1`, qualified(t)), id); err != nil {
		return err
	}
	return tx.Commit()
}

// Functions builds the data-layer bindings on the Postgres backend, with the
// search/sort/group steps shared with the in-memory store.
func (s *Store) Functions(t entity.Type) modelcfg.Functions {
	return modelcfg.Functions{
		Query: func(ctx context.Context, page, pageSize int, search, sortBy, sortOrder string) (*modelcfg.Page, error) {
			all, err := s.List(ctx, t)
			if err != nil {
				return nil, err
			}
			return store.Paginate(store.ApplySearchSort(all, search, sortBy, sortOrder), page, pageSize), nil
		},
		QueryAllFn: func(ctx context.Context) ([]*entity.Entity, error) {
			return s.List(ctx, t)
		},
		GroupedByEmne: func(ctx context.Context) ([]modelcfg.EmneGroup, error) {
			all, err := s.List(ctx, t)
			if err != nil {
				return nil, err
			}
			return store.GroupByEmne(all, s.catalogs[reference.CatalogEmner]), nil
		},
		GetByID: func(ctx context.Context, id int64) (any, error) {
			return s.Get(ctx, t, id)
		},
		Create: func(ctx context.Context, e *entity.Entity) (any, error) {
			created, err := s.Create(ctx, t, e)
			if err != nil {
				return nil, err
			}
			return &entity.Envelope{Data: created}, nil
		},
		Update: func(ctx context.Context, id int64, e *entity.Entity) (any, error) {
			updated, err := s.Update(ctx, t, id, e, 0)
			if err != nil {
				return nil, err
			}
			return &entity.Envelope{Data: updated}, nil
		},
		Delete: func(ctx context.Context, id int64) error {
			return s.Delete(ctx, t, id)
		},
	}
}

// validateTx applies the same write checks as the in-memory backend, with the
// record-existence lookups running inside the caller's transaction so the
// checked references cannot vanish before the write commits. excludeID is the
// record being updated, 0 on create.
func (s *Store) validateTx(ctx context.Context, tx *sql.Tx, t entity.Type, e *entity.Entity, excludeID int64) ([]store.FieldError, error) {
	if e == nil {
		return []store.FieldError{{Code: store.ErrRequired, Field: "body", Message: "Request body is required"}}, nil
	}

	var errs []store.FieldError
	if e.Tittel == "" && e.Title == "" && e.Navn == "" && e.Name == "" {
		errs = append(errs, store.FieldError{Code: store.ErrRequired, Field: "tittel", Message: "Field 'tittel' is required"})
	}
	hasKrav := entity.IsTiltakFamily(t) && len(e.RelatedKravIDs()) > 0
	if e.EmneID != nil && (e.ParentID != nil || hasKrav) {
		errs = append(errs, store.FieldError{Code: store.ErrEmneConflict, Field: "emneId",
			Message: "Emne is inherited while a parent or krav connection is active"})
	}
	if e.EmneID != nil {
		if _, ok := s.catalogs[reference.CatalogEmner].Find(*e.EmneID); !ok {
			errs = append(errs, store.FieldError{Code: store.ErrRefNotFound, Field: "emneId",
				Message: fmt.Sprintf("Referenced emne %d not found", *e.EmneID)})
		}
	}
	if e.Status != nil {
		if _, ok := s.catalogs[reference.CatalogStatuser].Find(e.Status.ID); !ok {
			errs = append(errs, store.FieldError{Code: store.ErrRefNotFound, Field: "status",
				Message: fmt.Sprintf("Referenced status %d not found", e.Status.ID)})
		}
	}
	if e.Vurdering != nil {
		if _, ok := s.catalogs[reference.CatalogVurderinger].Find(e.Vurdering.ID); !ok {
			errs = append(errs, store.FieldError{Code: store.ErrRefNotFound, Field: "vurdering",
				Message: fmt.Sprintf("Referenced vurdering %d not found", e.Vurdering.ID)})
		}
	}
	if e.ParentID != nil {
		if *e.ParentID == excludeID && excludeID != 0 {
			errs = append(errs, store.FieldError{Code: store.ErrTypeMismatch, Field: "parentId",
				Message: "Record cannot be its own parent"})
		} else {
			ok, err := existsTx(ctx, tx, t, *e.ParentID)
			if err != nil {
				return nil, err
			}
			if !ok {
				errs = append(errs, store.FieldError{Code: store.ErrRefNotFound, Field: "parentId",
					Message: fmt.Sprintf("Referenced parent %d not found", *e.ParentID)})
			}
		}
	}
	if entity.IsTiltakFamily(t) {
		target := linkTarget(t)
		field := "kravIds"
		if t == entity.TypeProsjektTiltak {
			field = "prosjektKravIds"
		}
		for _, kid := range e.RelatedKravIDs() {
			ok, err := existsTx(ctx, tx, target, kid)
			if err != nil {
				return nil, err
			}
			if !ok {
				errs = append(errs, store.FieldError{Code: store.ErrRefNotFound, Field: field,
					Message: fmt.Sprintf("Referenced %s %d not found", target, kid)})
				break
			}
		}
	} else if len(e.KravIDs) > 0 || len(e.ProsjektKravIDs) > 0 {
		errs = append(errs, store.FieldError{Code: store.ErrTypeMismatch, Field: "kravIds",
			Message: fmt.Sprintf("%s records do not carry krav links", t)})
	}
	return errs, nil
}

func existsTx(ctx context.Context, tx *sql.Tx, t entity.Type, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRowContext(ctx, fmt.Sprintf(
		`select exists(select 1 from %s where id = $1 and not deleted)`, qualified(t)), id).Scan(&ok)
	return ok, err
}

// linkTarget is the type a tiltak-family record links krav against.
func linkTarget(t entity.Type) entity.Type {
	if t == entity.TypeProsjektTiltak {
		return entity.TypeProsjektKrav
	}
	return entity.TypeKrav
}

func sanitize(e *entity.Entity) *entity.Entity {
	stored := e.Clone()
	stored.EntityType = ""
	stored.RenderID, stored.DisplayType, stored.BadgeColor = "", "", ""
	stored.Emne, stored.Parent = nil, nil
	stored.Krav, stored.ProsjektKrav = nil, nil
	return stored
}

func assignUID(t entity.Type, e *entity.Entity) {
	uid := fmt.Sprintf("%s-%d", uidPrefix(t), e.ID)
	if entity.IsKravFamily(t) {
		e.KravUID, e.TiltakUID = uid, ""
	} else {
		e.TiltakUID, e.KravUID = uid, ""
	}
	e.UID = uid
}

func decode(raw []byte, id int64) (*entity.Entity, error) {
	var e entity.Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

// join resolves catalog references and one level of record relations.
func (s *Store) join(ctx context.Context, t entity.Type, e *entity.Entity) *entity.Entity {
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
		if parent, err := s.fetchBare(ctx, t, *out.ParentID); err == nil {
			out.Parent = parent
		} else {
			s.log.Debug("parent join skipped", zap.Int64("parentId", *out.ParentID), zap.Error(err))
		}
	}
	if entity.IsTiltakFamily(t) {
		target := linkTarget(t)
		var linked []*entity.Entity
		for _, kid := range out.RelatedKravIDs() {
			k, err := s.fetchBare(ctx, target, kid)
			if err != nil {
				continue
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

// fetchBare reads one record with catalog refs resolved but no relation
// recursion.
func (s *Store) fetchBare(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select data from %s where id = $1 and not deleted`, qualified(t)), id)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	e, err := decode(raw, id)
	if err != nil {
		return nil, err
	}
	if e.EmneID != nil {
		if item, ok := s.catalogs[reference.CatalogEmner].Find(*e.EmneID); ok {
			e.Emne = item.Emne()
		}
	}
	return e, nil
}

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mop/internal/adapter"
	"mop/internal/cache"
	"mop/internal/dto"
	"mop/internal/entity"
	"mop/internal/store"
)

// GET /api/:entityType
func (s *Server) list(c *gin.Context) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return
	}
	lp := parseListParams(c.Request.URL.Query())

	items, err := s.loadAll(c, d)
	if err != nil {
		writeError(c, err)
		return
	}

	items = d.FilterEntities(items, lp.Filters)

	sortBy, sortOrder := lp.SortBy, lp.SortOrder
	if sortBy == "" {
		defaults := d.FilterConfig().Defaults
		sortBy, sortOrder = defaults.SortBy, defaults.SortOrder
	}
	items = d.SortEntities(items, sortBy, sortOrder)

	total := len(items)
	page := store.Paginate(items, lp.Page, lp.PageSize)
	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, gin.H{
		"items":      page.Items,
		"totalPages": page.TotalPages,
		"total":      total,
	})
}

// loadAll fetches and transforms the raw lists behind a DTO. Combined views
// pair both underlying queries into one response.
func (s *Server) loadAll(c *gin.Context, d dto.DTO) ([]*entity.Entity, error) {
	ctx := c.Request.Context()
	types := d.SupportedEntityTypes()
	if !d.IsCombinedView() {
		raw, err := s.backend.List(ctx, types[0])
		if err != nil {
			return nil, err
		}
		return d.TransformResponse(raw), nil
	}
	primary, err := s.backend.List(ctx, types[0])
	if err != nil {
		return nil, err
	}
	secondary, err := s.backend.List(ctx, types[1])
	if err != nil {
		return nil, err
	}
	return d.TransformResponse(dto.CombinedResponse{Primary: primary, Secondary: secondary}), nil
}

// GET /api/:entityType/grouped
func (s *Server) grouped(c *gin.Context) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return
	}
	if d.IsCombinedView() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grouping is not available on combined views"})
		return
	}
	t := d.PrimaryEntityType()
	bindings, ok := d.QueryFunctions()[t]
	if !ok || bindings.Grouped == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("no grouped query bound for %s", t)})
		return
	}
	groups, err := bindings.Grouped(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	for i := range groups {
		groups[i].Entities = d.TransformResponse(groups[i].Entities)
	}
	c.JSON(http.StatusOK, groups)
}

// GET /api/:entityType/filters
func (s *Server) availableFilters(c *gin.Context) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return
	}
	items, err := s.loadAll(c, d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.ExtractAvailableFilters(items))
}

// GET /api/:entityType/:id
func (s *Server) getOne(c *gin.Context) {
	d, t, id, ok := s.resolveRecord(c)
	if !ok {
		return
	}
	e, err := s.backend.Get(c.Request.Context(), t, id)
	if err != nil {
		writeError(c, err)
		return
	}
	s.setETag(c, t, id)
	out := d.TransformResponse(e)
	if len(out) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, out[0])
}

// POST /api/:entityType
func (s *Server) create(c *gin.Context) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return
	}
	var e entity.Entity
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	t := s.concreteType(d, &e)

	raw, err := s.backend.Functions(t).Create(c.Request.Context(), &e)
	if err != nil {
		writeError(c, err)
		return
	}
	tagSaved(d, raw, t)
	saved, err := d.OnSaveComplete(raw, true, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	s.afterSave(t, cache.OpCreate, saved)
	s.setETag(c, t, saved.ID)
	c.JSON(http.StatusCreated, saved)
}

// PUT /api/:entityType/:id
func (s *Server) update(c *gin.Context) {
	d, t, id, ok := s.resolveRecord(c)
	if !ok {
		return
	}
	var e entity.Entity
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if e.EntityType != "" {
		t = s.concreteType(d, &e)
	}

	expVer := readExpectedVersion(c.GetHeader("If-Match"))
	updated, err := s.backend.Update(c.Request.Context(), t, id, &e, expVer)
	if err != nil {
		writeError(c, err)
		return
	}
	raw := &entity.Envelope{Data: updated}
	tagSaved(d, raw, t)
	saved, err := d.OnSaveComplete(raw, false, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	s.afterSave(t, cache.OpUpdate, saved)
	s.setETag(c, t, id)
	c.JSON(http.StatusOK, saved)
}

// DELETE /api/:entityType/:id
func (s *Server) remove(c *gin.Context) {
	_, t, id, ok := s.resolveRecord(c)
	if !ok {
		return
	}
	if err := s.backend.Delete(c.Request.Context(), t, id); err != nil {
		writeError(c, err)
		return
	}
	s.afterSave(t, cache.OpDelete, nil)
	c.Status(http.StatusNoContent)
}

// POST /api/:entityType/:id/restore
func (s *Server) restore(c *gin.Context) {
	d, t, id, ok := s.resolveRecord(c)
	if !ok {
		return
	}
	r, supported := s.backend.(restorer)
	if !supported {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "restore is not supported by this backend"})
		return
	}
	e, err := r.Restore(c.Request.Context(), t, id)
	if err != nil {
		writeError(c, err)
		return
	}
	s.afterSave(t, cache.OpUpdate, e)
	out := d.TransformResponse(e)
	c.JSON(http.StatusOK, out[0])
}

// resolveRecord parses the type and id path segments, answering the request
// itself on failure.
func (s *Server) resolveRecord(c *gin.Context) (dto.DTO, entity.Type, int64, bool) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return nil, "", 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []store.FieldError{{
			Code: store.ErrTypeMismatch, Field: "id", Message: "id must be an integer",
		}}})
		return nil, "", 0, false
	}
	return d, d.PrimaryEntityType(), id, true
}

// concreteType picks the write target: the body's own tag when it names one
// of the view's types, the primary type otherwise.
func (s *Server) concreteType(d dto.DTO, e *entity.Entity) entity.Type {
	if e.EntityType != "" {
		if t, ok := adapter.CanonicalType(string(e.EntityType)); ok {
			for _, st := range d.SupportedEntityTypes() {
				if st == t {
					return t
				}
			}
		}
	}
	return d.PrimaryEntityType()
}

// tagSaved marks a stored write result with the concrete type it went to, so
// combined views enhance it with the right adapter. Stored records carry no
// entityType of their own.
func tagSaved(d dto.DTO, raw any, t entity.Type) {
	if !d.IsCombinedView() {
		return
	}
	if e, ok := entity.Unwrap(raw); ok && e.EntityType == "" {
		e.EntityType = t
	}
}

// afterSave fans a completed mutation out to the query cache and the
// inheritance coordinators.
func (s *Server) afterSave(t entity.Type, op cache.Operation, e *entity.Entity) {
	if s.cacheSvc != nil {
		s.cacheSvc.NotifySaved(t, op, e)
	}
	if e != nil {
		for _, coord := range s.coords {
			coord.Invalidate(t, e.ID)
		}
	}
}

func (s *Server) setETag(c *gin.Context, t entity.Type, id int64) {
	if v, ok := s.backend.(versioner); ok {
		if ver, live := v.Version(t, id); live {
			c.Header("ETag", fmt.Sprintf(`"%d"`, ver))
		}
	}
}

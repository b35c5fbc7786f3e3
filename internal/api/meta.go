package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/perm"
)

type metaListItem struct {
	EntityType     string `json:"entityType"`
	Title          string `json:"title"`
	ModelPrintName string `json:"modelPrintName,omitempty"`
	Combined       bool   `json:"combined"`
}

// GET /api/meta
func (s *Server) metaList(c *gin.Context) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	out := make([]metaListItem, 0, 6)
	for _, t := range entity.SupportedTypes() {
		cfg, err := reg.Process(string(t))
		if err != nil {
			continue
		}
		out = append(out, metaListItem{
			EntityType:     string(t),
			Title:          cfg.Title,
			ModelPrintName: cfg.ModelPrintName,
		})
	}
	for _, t := range []entity.Type{entity.TypeCombined, entity.TypeProsjektCombined} {
		d, err := s.dtoFor(string(t))
		if err != nil {
			continue
		}
		out = append(out, metaListItem{
			EntityType: string(t),
			Title:      d.DisplayConfig().Title,
			Combined:   true,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/meta/:entityType
func (s *Server) metaEntity(c *gin.Context) {
	d, err := s.dtoFor(c.Param("entityType"))
	if err != nil {
		writeError(c, err)
		return
	}
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	cfg, err := reg.Process(string(d.PrimaryEntityType()))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"displayConfig": d.DisplayConfig(),
		"filterConfig":  d.FilterConfig(),
		"permissions":   perm.Compute(cfg),
		"config":        cfg,
		"validation":    adapter.ValidateConfig(adapter.KindEntityWorkspace, cfg),
		"combined":      d.IsCombinedView(),
	})
}

// GET /api/catalogs/:name
func (s *Server) catalog(c *gin.Context) {
	name := c.Param("name")
	s.mu.RLock()
	cat, ok := s.catalogs[name]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catalog not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "items": cat.Items})
}

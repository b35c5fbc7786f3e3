package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mop/internal/dto"
	"mop/internal/entity"
	"mop/internal/modelcfg"
	"mop/internal/reference"
)

type reloadReq struct {
	CatalogsRoot string `json:"catalogsRoot"` // directory with reference *.yaml
	ModelsRoot   string `json:"modelsRoot"`   // directory with model config overlays
}

// catalogReplacer is implemented by backends that join against the catalogs.
type catalogReplacer interface {
	ReplaceCatalogs(map[string]reference.Catalog)
}

// POST /api/admin/reload
// Rebuilds the registry and catalogs from disk. The new registry is linted
// before anything is swapped; a broken overlay never reaches live traffic.
func (s *Server) adminReload(c *gin.Context) {
	var req reloadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	catalogsRoot := strings.TrimSpace(req.CatalogsRoot)
	if catalogsRoot == "" {
		catalogsRoot = "reference/catalogs"
	}

	catalogs, err := reference.LoadCatalogs(catalogsRoot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catalog load error", "details": err.Error()})
		return
	}

	newReg := modelcfg.NewRegistry()
	if root := strings.TrimSpace(req.ModelsRoot); root != "" {
		if err := newReg.LoadOverlay(root); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Model config load error", "details": err.Error()})
			return
		}
	}
	if issues := newReg.Lint(); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "model config has blocking issues",
			"issues": issues,
		})
		return
	}
	for _, t := range entity.SupportedTypes() {
		if err := newReg.BindFunctions(t, s.backend.Functions(t)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	s.mu.Lock()
	s.reg = newReg
	s.builder = dto.NewBuilder(newReg)
	s.catalogs = catalogs
	s.mu.Unlock()
	if cr, ok := s.backend.(catalogReplacer); ok {
		cr.ReplaceCatalogs(catalogs)
	}

	s.log.Info("configuration reloaded",
		zap.String("catalogsRoot", catalogsRoot),
		zap.String("modelsRoot", req.ModelsRoot),
		zap.Int("catalogs", len(catalogs)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "catalogs": len(catalogs)})
}

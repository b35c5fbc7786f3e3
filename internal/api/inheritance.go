package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mop/internal/adapter"
	"mop/internal/entity"
	"mop/internal/inherit"
)

// POST /api/:entityType/inheritance
// Previews the effective emne for form state the client has not saved yet.
func (s *Server) inheritancePreview(c *gin.Context) {
	t, ok := adapter.CanonicalType(c.Param("entityType"))
	if !ok || !entity.IsSupported(t) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity type not found"})
		return
	}
	if !entity.IsTiltakFamily(t) {
		c.JSON(http.StatusBadRequest, gin.H{"error": string(t) + " does not inherit emne"})
		return
	}

	var form inherit.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	coord := s.coords[t]
	result, err := coord.Resolve(c.Request.Context(), form)
	resp := gin.H{"result": result}
	if err != nil {
		// partial result: one of the related fetches failed
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

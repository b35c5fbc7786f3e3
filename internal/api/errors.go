package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mop/internal/adapter"
	"mop/internal/modelcfg"
	"mop/internal/store"
)

// writeError maps the error taxonomy onto HTTP statuses. Validation failures
// carry their field errors; configuration mistakes are the caller's fault;
// contract violations are ours and surface as 500 so they get fixed instead
// of swallowed.
func writeError(c *gin.Context, err error) {
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		c.JSON(statusForFieldErrors(ve.Errors), gin.H{"errors": ve.Errors})
		return
	}
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
		return
	}
	var vc *store.VersionConflictError
	if errors.As(err, &vc) {
		c.JSON(http.StatusConflict, gin.H{"errors": []store.FieldError{{
			Code:    store.ErrVersionConflict,
			Field:   "version",
			Message: vc.Error(),
		}}})
		return
	}
	var ce *modelcfg.ConfigurationError
	if errors.As(err, &ce) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ce.Error()})
		return
	}
	var cv *adapter.ContractViolationError
	if errors.As(err, &cv) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": cv.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func statusForFieldErrors(errs []store.FieldError) int {
	for _, e := range errs {
		switch e.Code {
		case store.ErrVersionConflict, "fk_in_use":
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}

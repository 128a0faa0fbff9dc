package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"files-manager-api/internal/application/services"
)

// respondError maps the service error taxonomy onto HTTP. Anything not
// classified is a server fault and is logged under op.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.Error(op+" error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func unauthorizedIfNotFound(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return services.ErrUnauthorized
	}
	return err
}

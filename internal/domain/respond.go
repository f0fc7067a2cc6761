package domain

import (
	"errors"
	"net/http"

	"formbase-api/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError writes {"error": ...} for err. Errors that do not carry a status
// are logged and reported as a generic 500.
func RespondError(c *gin.Context, action string, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		c.JSON(httpErr.StatusCode(), gin.H{"error": httpErr.Error()})
		return
	}

	logger.FromGin(c).Error(action+" error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

package logs

import (
	"net/http"

	"formbase-api/internal/domain"
	"formbase-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type LogController struct {
	LogService *LogService
}

// GetLogs searches the caller's audit trail. A user_id in the body is
// replaced by the authenticated user.
func (lc *LogController) GetLogs(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input LogFilterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.UserID = &userID

	entries, aggs, total, totalPages, err := lc.LogService.GetLogs(input)
	if err != nil {
		domain.RespondError(c, "get logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        entries,
		"page":        input.Page,
		"page_size":   input.PageSize,
		"total":       total,
		"total_pages": totalPages,
		"aggregates":  aggs,
	})
}

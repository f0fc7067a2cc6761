package stats

import (
	"net/http"

	"formbase-api/internal/domain"
	"formbase-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService StatsServiceAPI
}

func (sc *StatsController) GetStats(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	st, err := sc.StatsService.GetStats(userID)
	if err != nil {
		domain.RespondError(c, "get stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": st})
}

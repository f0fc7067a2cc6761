package stats

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, statsService *StatsService, auth gin.HandlerFunc) {
	sc := &StatsController{StatsService: statsService}

	r.GET("/api/stats", auth, sc.GetStats)
}

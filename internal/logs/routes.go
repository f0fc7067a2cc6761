package logs

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, logService *LogService, auth gin.HandlerFunc) {
	logController := &LogController{LogService: logService}

	logGroup := r.Group("/api/logs")
	logGroup.Use(auth)
	{
		logGroup.POST("", logController.GetLogs)
	}
}

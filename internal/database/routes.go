package database

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, databaseService *DatabaseService, logService LogServicePort, auth gin.HandlerFunc) {
	dc := &DatabaseController{DatabaseService: databaseService, LogService: logService}

	group := r.Group("/api/databases")
	group.Use(auth)
	{
		group.GET("", dc.GetDatabases)
		group.POST("", dc.CreateDatabase)
		group.GET("/:id", dc.GetDatabase)
		group.PUT("/:id", dc.UpdateDatabase)
		group.DELETE("/:id", dc.DeleteDatabase)

		group.POST("/:id/columns", dc.AddColumn)
		group.PUT("/:id/columns/:columnId", dc.UpdateColumn)
		group.DELETE("/:id/columns/:columnId", dc.DeleteColumn)

		group.GET("/:id/rows", dc.GetRows)
		group.POST("/:id/rows", dc.AddRow)
		group.PUT("/:id/rows/:rowId", dc.UpdateRow)
		group.DELETE("/:id/rows/:rowId", dc.DeleteRow)

		group.POST("/:id/restore", dc.RestoreDatabase)
		group.DELETE("/:id/permanent", dc.PurgeDatabase)
		group.POST("/rows/:id/restore", dc.RestoreRow)
		group.DELETE("/rows/:id/permanent", dc.PurgeRow)

		group.GET("/maintenance/drift", dc.GetDrift)
		group.POST("/maintenance/repair", dc.RepairDrift)
	}
}

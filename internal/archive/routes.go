package archive

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, archiveService *ArchiveService, logService LogServicePort, auth gin.HandlerFunc) {
	ac := &ArchiveController{ArchiveService: archiveService, LogService: logService}

	databases := r.Group("/api/databases/archives")
	databases.Use(auth)
	{
		databases.GET("/databases", ac.GetDeletedDatabases)
		databases.POST("/bulk-restore", ac.BulkRestoreDatabases)
		databases.POST("/bulk-delete", ac.BulkDeleteDatabases)

		databases.GET("/rows", ac.GetArchivedRows)
		databases.GET("/rows/databases", ac.GetDatabasesWithArchivedRows)
		databases.POST("/rows/bulk-restore", ac.BulkRestoreRows)
		databases.POST("/rows/bulk-delete", ac.BulkDeleteRows)
	}

	forms := r.Group("/api/forms/archives")
	forms.Use(auth)
	{
		forms.GET("/deleted", ac.GetDeletedForms)
		forms.POST("/bulk-restore", ac.BulkRestoreForms)
		forms.POST("/bulk-delete", ac.BulkDeleteForms)
	}
}

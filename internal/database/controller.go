package database

import (
	"fmt"
	"net/http"

	"formbase-api/internal/domain"
	"formbase-api/internal/logs"
	"formbase-api/internal/middlewares"
	"formbase-api/internal/rowquery"

	"github.com/gin-gonic/gin"
)

type DatabaseController struct {
	DatabaseService DatabaseServiceAPI
	LogService      LogServicePort
}

func (dc *DatabaseController) audit(c *gin.Context, level, action, message, userID string, ids ...string) {
	if dc.LogService == nil {
		return
	}
	logs.Record(c, dc.LogService, logs.Entry(level, "database", action, message, userID, ids...), nil)
}

func (dc *DatabaseController) GetDatabases(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	dbs, err := dc.DatabaseService.ListDatabases(userID)
	if err != nil {
		domain.RespondError(c, "get databases", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"databases": dbs})
}

func (dc *DatabaseController) GetDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	db, cols, err := dc.DatabaseService.GetDatabase(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "get database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"database": db, "columns": cols})
}

func (dc *DatabaseController) CreateDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input DatabaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db, err := dc.DatabaseService.CreateDatabase(userID, input)
	if err != nil {
		domain.RespondError(c, "create database", err)
		return
	}

	dc.audit(c, logs.LevelInfo, "CREATE_DATABASE", fmt.Sprintf("Database created : %s", db.Name), userID, db.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Database created successfully", "database": db})
}

func (dc *DatabaseController) UpdateDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input DatabaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db, err := dc.DatabaseService.RenameDatabase(userID, c.Param("id"), input)
	if err != nil {
		domain.RespondError(c, "update database", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database updated successfully", "database": db})
}

// DeleteDatabase archives the database and all of its rows.
func (dc *DatabaseController) DeleteDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	rows, err := dc.DatabaseService.ArchiveDatabase(userID, id)
	if err != nil {
		domain.RespondError(c, "delete database", err)
		return
	}

	dc.audit(c, logs.LevelWarn, "ARCHIVE_DATABASE", fmt.Sprintf("Database archived with %d rows", rows), userID, id)
	c.JSON(http.StatusOK, gin.H{"message": "Database deleted successfully", "rows_archived": rows})
}

func (dc *DatabaseController) RestoreDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	db, err := dc.DatabaseService.RestoreDatabase(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "restore database", err)
		return
	}

	dc.audit(c, logs.LevelInfo, "RESTORE_DATABASE", fmt.Sprintf("Database restored : %s", db.Name), userID, db.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Database restored successfully"})
}

func (dc *DatabaseController) PurgeDatabase(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	db, err := dc.DatabaseService.PurgeDatabase(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "permanent delete database", err)
		return
	}

	dc.audit(c, logs.LevelWarn, "PURGE_DATABASE", fmt.Sprintf("Database permanently deleted : %s", db.Name), userID, db.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Database permanently deleted successfully"})
}

// ----- columns -----

func (dc *DatabaseController) AddColumn(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input AddColumnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := dc.DatabaseService.AddColumn(userID, c.Param("id"), input)
	if err != nil {
		domain.RespondError(c, "add column", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Column added successfully", "column": col})
}

func (dc *DatabaseController) UpdateColumn(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input UpdateColumnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col, err := dc.DatabaseService.UpdateColumn(userID, c.Param("id"), c.Param("columnId"), input)
	if err != nil {
		domain.RespondError(c, "update column", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Column updated successfully", "column": col})
}

func (dc *DatabaseController) DeleteColumn(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	columnID := c.Param("columnId")
	stripped, err := dc.DatabaseService.DeleteColumn(userID, c.Param("id"), columnID)
	if err != nil {
		domain.RespondError(c, "delete column", err)
		return
	}

	dc.audit(c, logs.LevelInfo, "DELETE_COLUMN", fmt.Sprintf("Column deleted, stripped from %d archived rows", stripped), userID, columnID)
	c.JSON(http.StatusOK, gin.H{"message": "Column deleted successfully"})
}

// ----- rows -----

// GetRows lists rows with optional sort_by, sort_order and filters query
// parameters. filters is a JSON array of {column, operator, value}; malformed
// filters are ignored.
func (dc *DatabaseController) GetRows(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	q := rowquery.Query{
		Filters:   rowquery.ParseFilters(c.Query("filters")),
		SortBy:    c.Query("sort_by"),
		SortOrder: rowquery.ParseSortOrder(c.Query("sort_order")),
	}

	rows, err := dc.DatabaseService.ListRows(userID, c.Param("id"), q)
	if err != nil {
		domain.RespondError(c, "get rows", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func bindRowPayload(c *gin.Context) (rowquery.Payload, bool) {
	var input RowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return rowquery.Payload{}, false
	}
	payload, err := ParseRowData(input.Data)
	if err != nil {
		domain.RespondError(c, "parse row", err)
		return rowquery.Payload{}, false
	}
	return payload, true
}

func (dc *DatabaseController) AddRow(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}
	payload, ok := bindRowPayload(c)
	if !ok {
		return
	}

	row, err := dc.DatabaseService.AddRow(userID, c.Param("id"), payload)
	if err != nil {
		domain.RespondError(c, "add row", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Row added successfully", "row": row})
}

func (dc *DatabaseController) UpdateRow(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}
	payload, ok := bindRowPayload(c)
	if !ok {
		return
	}

	row, err := dc.DatabaseService.UpdateRow(userID, c.Param("id"), c.Param("rowId"), payload)
	if err != nil {
		domain.RespondError(c, "update row", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Row updated successfully", "row": row})
}

func (dc *DatabaseController) DeleteRow(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	rowID := c.Param("rowId")
	if err := dc.DatabaseService.ArchiveRow(userID, c.Param("id"), rowID); err != nil {
		domain.RespondError(c, "delete row", err)
		return
	}

	dc.audit(c, logs.LevelInfo, "ARCHIVE_ROW", "Row archived", userID, rowID)
	c.JSON(http.StatusOK, gin.H{"message": "Row deleted successfully"})
}

func (dc *DatabaseController) RestoreRow(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	rowID := c.Param("id")
	if err := dc.DatabaseService.RestoreRow(userID, rowID); err != nil {
		domain.RespondError(c, "restore row", err)
		return
	}

	dc.audit(c, logs.LevelInfo, "RESTORE_ROW", "Row restored", userID, rowID)
	c.JSON(http.StatusOK, gin.H{"message": "Row restored successfully"})
}

func (dc *DatabaseController) PurgeRow(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	rowID := c.Param("id")
	if err := dc.DatabaseService.PurgeRow(userID, rowID); err != nil {
		domain.RespondError(c, "permanent delete row", err)
		return
	}

	dc.audit(c, logs.LevelWarn, "PURGE_ROW", "Row permanently deleted", userID, rowID)
	c.JSON(http.StatusOK, gin.H{"message": "Row permanently deleted successfully"})
}

// ----- maintenance -----

func (dc *DatabaseController) GetDrift(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	drift, err := dc.DatabaseService.Drift(userID)
	if err != nil {
		domain.RespondError(c, "get drift", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": drift, "count": len(drift)})
}

func (dc *DatabaseController) RepairDrift(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	n, err := dc.DatabaseService.RepairDrift(userID)
	if err != nil {
		domain.RespondError(c, "repair drift", err)
		return
	}

	dc.audit(c, logs.LevelWarn, "REPAIR_DRIFT", fmt.Sprintf("%d drifted rows archived", n), userID)
	c.JSON(http.StatusOK, gin.H{"message": "Drift repaired", "count": n})
}

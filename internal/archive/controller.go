package archive

import (
	"fmt"
	"net/http"

	"formbase-api/internal/domain"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/logs"
	"formbase-api/internal/middlewares"
	"formbase-api/internal/rowquery"
	"formbase-api/internal/util"

	"github.com/gin-gonic/gin"
)

type ArchiveController struct {
	ArchiveService ArchiveServiceAPI
	LogService     LogServicePort
}

func listQuery(c *gin.Context) ListQuery {
	return ListQuery{
		Search: c.Query("search"),
		Page:   util.ParsePage(c.Query("page"), c.Query("limit"), defaultPageSize, maxPageSize),
	}
}

func (ac *ArchiveController) GetDeletedDatabases(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	q := listQuery(c)
	dbs, total, err := ac.ArchiveService.ListDeletedDatabases(userID, q)
	if err != nil {
		domain.RespondError(c, "get deleted databases", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"databases": dbs, "pagination": q.Page.Result(total)})
}

func (ac *ArchiveController) GetDeletedForms(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	q := listQuery(c)
	forms, total, err := ac.ArchiveService.ListDeletedForms(userID, q)
	if err != nil {
		domain.RespondError(c, "get deleted forms", err)
		return
	}

	out := make([]ArchivedForm, 0, len(forms))
	for _, f := range forms {
		out = append(out, ArchivedForm{
			ID:        f.ID,
			Name:      f.Name,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			DeletedAt: f.DeletedAt.Time,
		})
	}
	c.JSON(http.StatusOK, gin.H{"forms": out, "pagination": q.Page.Result(total)})
}

// GetArchivedRows lists archived rows of active databases. database_id narrows
// the listing to one database; search matches any value; filters takes the
// same JSON clauses as the live row listing.
func (ac *ArchiveController) GetArchivedRows(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	lq := listQuery(c)
	listing, err := ac.ArchiveService.ListArchivedRows(userID, RowQuery{
		DatabaseID: c.Query("database_id"),
		Search:     lq.Search,
		Filters:    rowquery.ParseFilters(c.Query("filters")),
		Page:       lq.Page,
	})
	if err != nil {
		domain.RespondError(c, "get deleted rows", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns":    listing.Columns,
		"rows":       listing.Rows,
		"pagination": lq.Page.Result(listing.Total),
	})
}

func (ac *ArchiveController) GetDatabasesWithArchivedRows(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	q := listQuery(c)
	dbs, total, err := ac.ArchiveService.DatabasesWithArchivedRows(userID, q)
	if err != nil {
		domain.RespondError(c, "get databases with deleted rows", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"databases": dbs, "pagination": q.Page.Result(total)})
}

type bulkFunc func(ownerID string, req BulkRequest, action lifecycle.Action) (BulkResult, error)

// bulk binds a BulkRequest, runs op and writes {message, count}.
func (ac *ArchiveController) bulk(c *gin.Context, kind lifecycle.Kind, action lifecycle.Action, op bulkFunc) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := op(userID, req, action)
	if err != nil {
		domain.RespondError(c, fmt.Sprintf("bulk %s %ss", action, kind), err)
		return
	}

	verb := "restored"
	level := logs.LevelInfo
	if action == lifecycle.Purge {
		verb = "permanently deleted"
		level = logs.LevelWarn
	}
	message := fmt.Sprintf("%d %s(s) %s successfully", res.Count, kind, verb)

	if res.Count > 0 {
		logAction := fmt.Sprintf("BULK_%s_%s", bulkVerb(action), kindLabel(kind))
		logs.Record(c, ac.LogService, logs.Entry(level, "archive", logAction, message, userID, res.IDs...),
			map[string]interface{}{"selected_all": req.SelectedAll, "search": req.Search})
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "count": res.Count})
}

func bulkVerb(a lifecycle.Action) string {
	if a == lifecycle.Purge {
		return "PURGE"
	}
	return "RESTORE"
}

func kindLabel(k lifecycle.Kind) string {
	switch k {
	case lifecycle.KindDatabase:
		return "DATABASES"
	case lifecycle.KindRow:
		return "ROWS"
	default:
		return "FORMS"
	}
}

func (ac *ArchiveController) BulkRestoreDatabases(c *gin.Context) {
	ac.bulk(c, lifecycle.KindDatabase, lifecycle.Restore, ac.ArchiveService.BulkDatabases)
}

func (ac *ArchiveController) BulkDeleteDatabases(c *gin.Context) {
	ac.bulk(c, lifecycle.KindDatabase, lifecycle.Purge, ac.ArchiveService.BulkDatabases)
}

func (ac *ArchiveController) BulkRestoreRows(c *gin.Context) {
	ac.bulk(c, lifecycle.KindRow, lifecycle.Restore, ac.ArchiveService.BulkRows)
}

func (ac *ArchiveController) BulkDeleteRows(c *gin.Context) {
	ac.bulk(c, lifecycle.KindRow, lifecycle.Purge, ac.ArchiveService.BulkRows)
}

func (ac *ArchiveController) BulkRestoreForms(c *gin.Context) {
	ac.bulk(c, lifecycle.KindForm, lifecycle.Restore, ac.ArchiveService.BulkForms)
}

func (ac *ArchiveController) BulkDeleteForms(c *gin.Context) {
	ac.bulk(c, lifecycle.KindForm, lifecycle.Purge, ac.ArchiveService.BulkForms)
}

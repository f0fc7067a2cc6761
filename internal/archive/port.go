package archive

import (
	"formbase-api/internal/database"
	"formbase-api/internal/form"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/logs"
)

type ArchiveServiceAPI interface {
	ListDeletedDatabases(ownerID string, q ListQuery) ([]database.Database, int64, error)
	ListDeletedForms(ownerID string, q ListQuery) ([]form.Form, int64, error)
	ListArchivedRows(ownerID string, q RowQuery) (*RowListing, error)
	DatabasesWithArchivedRows(ownerID string, q ListQuery) ([]DatabaseRowCount, int64, error)

	BulkDatabases(ownerID string, req BulkRequest, action lifecycle.Action) (BulkResult, error)
	BulkRows(ownerID string, req BulkRequest, action lifecycle.Action) (BulkResult, error)
	BulkForms(ownerID string, req BulkRequest, action lifecycle.Action) (BulkResult, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}

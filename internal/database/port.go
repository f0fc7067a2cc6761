package database

import (
	"formbase-api/internal/logs"
	"formbase-api/internal/rowquery"
)

type DatabaseServiceAPI interface {
	ListDatabases(ownerID string) ([]Database, error)
	GetDatabase(ownerID, id string) (*Database, []DatabaseColumn, error)
	CreateDatabase(ownerID string, in DatabaseInput) (*Database, error)
	RenameDatabase(ownerID, id string, in DatabaseInput) (*Database, error)

	AddColumn(ownerID, databaseID string, in AddColumnInput) (*DatabaseColumn, error)
	UpdateColumn(ownerID, databaseID, columnID string, in UpdateColumnInput) (*DatabaseColumn, error)
	DeleteColumn(ownerID, databaseID, columnID string) (int, error)

	ListRows(ownerID, databaseID string, q rowquery.Query) ([]DatabaseRow, error)
	AddRow(ownerID, databaseID string, payload rowquery.Payload) (*DatabaseRow, error)
	UpdateRow(ownerID, databaseID, rowID string, payload rowquery.Payload) (*DatabaseRow, error)

	ArchiveDatabase(ownerID, id string) (int64, error)
	RestoreDatabase(ownerID, id string) (*Database, error)
	PurgeDatabase(ownerID, id string) (*Database, error)
	ArchiveRow(ownerID, databaseID, rowID string) error
	RestoreRow(ownerID, rowID string) error
	PurgeRow(ownerID, rowID string) error

	Drift(ownerID string) ([]DriftRow, error)
	RepairDrift(ownerID string) (int64, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}

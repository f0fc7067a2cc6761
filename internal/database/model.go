package database

import (
	"encoding/json"
	"time"

	"formbase-api/internal/rowquery"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ColumnType string

const (
	ColumnText        ColumnType = "TEXT"
	ColumnLargeText   ColumnType = "LARGE_TEXT"
	ColumnJSON        ColumnType = "JSON"
	ColumnURL         ColumnType = "URL"
	ColumnNumber      ColumnType = "NUMBER"
	ColumnDate        ColumnType = "DATE"
	ColumnDateTime    ColumnType = "DATETIME"
	ColumnTime        ColumnType = "TIME"
	ColumnSelect      ColumnType = "SELECT"
	ColumnMultiSelect ColumnType = "MULTI_SELECT"
	ColumnPhone       ColumnType = "PHONE"
	ColumnEmail       ColumnType = "EMAIL"
	ColumnRatings     ColumnType = "RATINGS"
)

// ColumnTypes lists every accepted tag. Tags are display hints; row values
// are never checked against them.
var ColumnTypes = []interface{}{
	ColumnText, ColumnLargeText, ColumnJSON, ColumnURL, ColumnNumber,
	ColumnDate, ColumnDateTime, ColumnTime, ColumnSelect, ColumnMultiSelect,
	ColumnPhone, ColumnEmail, ColumnRatings,
}

type Database struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:varchar(64);not null;index;uniqueIndex:idx_databases_active_name,where:deleted_at IS NULL"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_databases_active_name,where:deleted_at IS NULL"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (Database) TableName() string { return "databases" }

func (d *Database) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type DatabaseColumn struct {
	ID         string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	DatabaseID string     `json:"database_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_columns_db_name;uniqueIndex:idx_columns_db_position"`
	Name       string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_columns_db_name"`
	Type       ColumnType `json:"type" gorm:"type:varchar(32);not null"`
	IsUnique   bool       `json:"is_unique" gorm:"not null;default:false"`
	Order      int        `json:"order" gorm:"column:position;not null;uniqueIndex:idx_columns_db_position"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (DatabaseColumn) TableName() string { return "database_columns" }

func (c *DatabaseColumn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type DatabaseRow struct {
	ID         string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	DatabaseID string         `json:"database_id" gorm:"type:varchar(36);not null;index"`
	Data       datatypes.JSON `json:"data" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (DatabaseRow) TableName() string { return "database_rows" }

func (r *DatabaseRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Payload decodes the stored data. Corrupt data reads as an empty payload.
func (r DatabaseRow) Payload() rowquery.Payload {
	p, err := rowquery.ParsePayload(r.Data)
	if err != nil {
		return rowquery.NewPayload()
	}
	return p
}

// encodePayload is the inverse of Payload; key order is kept.
func encodePayload(p rowquery.Payload) (datatypes.JSON, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// loadedRow pairs a row with its decoded payload so filtering and sorting
// decode each row once.
type loadedRow struct {
	row     DatabaseRow
	payload rowquery.Payload
}

func loadRows(rows []DatabaseRow) []loadedRow {
	out := make([]loadedRow, len(rows))
	for i, r := range rows {
		out[i] = loadedRow{row: r, payload: r.Payload()}
	}
	return out
}

func payloadOf(l loadedRow) rowquery.Payload { return l.payload }

func unloadRows(loaded []loadedRow) []DatabaseRow {
	out := make([]DatabaseRow, len(loaded))
	for i, l := range loaded {
		out[i] = l.row
	}
	return out
}

// Models lists the tables owned by this package, for migrations.
func Models() []interface{} {
	return []interface{}{&Database{}, &DatabaseColumn{}, &DatabaseRow{}}
}

// ----- request payloads -----

type DatabaseInput struct {
	Name string `json:"name"`
}

func (in DatabaseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
	)
}

type AddColumnInput struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	IsUnique bool       `json:"is_unique"`
}

func (in AddColumnInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Type, validation.Required, validation.In(ColumnTypes...)),
	)
}

// UpdateColumnInput is a partial update; nil fields are left alone.
type UpdateColumnInput struct {
	Name     *string     `json:"name"`
	Type     *ColumnType `json:"type"`
	IsUnique *bool       `json:"is_unique"`
}

func (in UpdateColumnInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&in.Type, validation.NilOrNotEmpty, validation.In(ColumnTypes...)),
	)
}

type RowInput struct {
	Data json.RawMessage `json:"data"`
}

// DriftRow is an active row whose database is deleted.
type DriftRow struct {
	RowID        string    `json:"row_id"`
	DatabaseID   string    `json:"database_id"`
	DatabaseName string    `json:"database_name"`
	DeletedAt    time.Time `json:"database_deleted_at"`
}

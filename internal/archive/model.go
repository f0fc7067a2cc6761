package archive

import (
	"time"

	"formbase-api/internal/database"
	"formbase-api/internal/rowquery"
	"formbase-api/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListQuery is a search-and-page request over one archive listing.
type ListQuery struct {
	Search string
	Page   util.Page
}

// RowQuery scopes the archived-rows listing. An empty DatabaseID covers every
// active database of the owner.
type RowQuery struct {
	DatabaseID string
	Search     string
	Filters    []rowquery.Clause
	Page       util.Page
}

// ArchivedRow is an archived row with the name of its database.
type ArchivedRow struct {
	ID           string         `json:"id"`
	DatabaseID   string         `json:"database_id"`
	DatabaseName string         `json:"database_name"`
	Data         datatypes.JSON `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    time.Time      `json:"deleted_at"`
}

func (r ArchivedRow) payload() rowquery.Payload {
	p, err := rowquery.ParsePayload(r.Data)
	if err != nil {
		return rowquery.NewPayload()
	}
	return p
}

type RowListing struct {
	Columns []database.DatabaseColumn
	Rows    []ArchivedRow
	Total   int64
}

// DatabaseRowCount is an active database holding archived rows.
type DatabaseRowCount struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DeletedRowsCount int64  `json:"deleted_rows_count"`
}

// BulkRequest selects the records of a bulk restore or delete. With
// SelectedAll the ids are ignored and the set is re-resolved from Search.
type BulkRequest struct {
	IDs         []string `json:"ids"`
	SelectedAll bool     `json:"selectedAll"`
	Search      string   `json:"search"`
	DatabaseID  string   `json:"database_id"`
}

func (r BulkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.When(!r.SelectedAll, validation.Required.Error("ids are required unless selectedAll is set"))),
	)
}

// BulkResult reports the records a bulk operation touched.
type BulkResult struct {
	Count int64
	IDs   []string
}

// ArchivedForm is the archive list view of a form.
type ArchivedForm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt time.Time `json:"deleted_at"`
}

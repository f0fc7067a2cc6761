package logs

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// IDList stores entity ids as text[] on postgres and as the array literal text elsewhere.
type IDList pq.StringArray

func (l IDList) Value() (driver.Value, error) { return pq.StringArray(l).Value() }

func (l *IDList) Scan(src any) error { return (*pq.StringArray)(l).Scan(src) }

func (IDList) GormDataType() string { return "text" }

func (IDList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

type SystemLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level     string         `gorm:"size:20;not null" json:"level"`
	Service   string         `gorm:"size:100;not null" json:"service"`
	UserID    *string        `gorm:"size:64;index" json:"user_id,omitempty"`
	Action    string         `gorm:"size:255;not null" json:"action"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	EntityIDs IDList         `gorm:"column:entity_ids" json:"entity_ids"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string {
	return "logs"
}

type LogFilterInput struct {
	UserID  *string `json:"user_id"`
	Level   *string `json:"level"`
	Service *string `json:"service"`
	Action  *string `json:"action"`
	// EntityID matches logs that touched the given record.
	EntityID *string `json:"entity_id"`

	StartDate *string `json:"start_date"` // "YYYY-MM-DD" or RFC3339
	EndDate   *string `json:"end_date"`

	Search   *string `json:"search"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type AggItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type LogAggregates struct {
	ByAction  []AggItem `json:"by_action"`
	ByService []AggItem `json:"by_service"`
}

package form

import (
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WidgetType string

const (
	WidgetText      WidgetType = "TEXT"
	WidgetLargeText WidgetType = "LARGE_TEXT"
	WidgetNumber    WidgetType = "NUMBER"
	WidgetJSON      WidgetType = "JSON"
	WidgetURL       WidgetType = "URL"
	WidgetDate      WidgetType = "DATE"
	WidgetDateTime  WidgetType = "DATETIME"
	WidgetTime      WidgetType = "TIME"
	WidgetDropdown  WidgetType = "DROPDOWN"
	WidgetPhone     WidgetType = "PHONE"
	WidgetEmail     WidgetType = "EMAIL"
	WidgetRatings   WidgetType = "RATINGS"
)

var WidgetTypes = []interface{}{
	WidgetText, WidgetLargeText, WidgetNumber, WidgetJSON, WidgetURL, WidgetDate,
	WidgetDateTime, WidgetTime, WidgetDropdown, WidgetPhone, WidgetEmail, WidgetRatings,
}

// FormField is one widget on the canvas. Submissions are keyed by ID.
type FormField struct {
	ID          string                 `json:"id"`
	Type        WidgetType             `json:"type"`
	Label       string                 `json:"label"`
	Description string                 `json:"description,omitempty"`
	IsRequired  bool                   `json:"is_required"`
	Order       int                    `json:"order"`
	Settings    map[string]interface{} `json:"settings"`
}

func (f FormField) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.Type, validation.Required, validation.In(WidgetTypes...)),
	)
}

// GridItem is a button or rich-text block in a header or footer cell. Its
// settings are stored as given.
type GridItem struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Content  string                 `json:"content,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

type HeaderFooterConfig struct {
	Enabled bool       `json:"enabled"`
	Left    []GridItem `json:"left"`
	Center  []GridItem `json:"center"`
	Right   []GridItem `json:"right"`
}

func DefaultHeaderFooter() HeaderFooterConfig {
	return HeaderFooterConfig{Left: []GridItem{}, Center: []GridItem{}, Right: []GridItem{}}
}

type Form struct {
	ID           string                                 `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string                                 `json:"user_id" gorm:"type:varchar(64);not null;index;uniqueIndex:idx_forms_active_name,where:deleted_at IS NULL"`
	Name         string                                 `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_forms_active_name,where:deleted_at IS NULL"`
	Fields       datatypes.JSONSlice[FormField]         `json:"fields"`
	HeaderConfig datatypes.JSONType[HeaderFooterConfig] `json:"header_config"`
	FooterConfig datatypes.JSONType[HeaderFooterConfig] `json:"footer_config"`
	IsPublished  bool                                   `json:"is_published" gorm:"not null;default:false"`
	CreatedAt    time.Time                              `json:"created_at"`
	UpdatedAt    time.Time                              `json:"updated_at"`
	DeletedAt    gorm.DeletedAt                         `json:"deleted_at,omitempty" gorm:"index"`
}

func (Form) TableName() string { return "forms" }

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FormSubmission is immutable once written and is only ever removed together
// with its form on purge.
type FormSubmission struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	FormID    string         `json:"form_id" gorm:"type:varchar(36);not null;index"`
	Data      datatypes.JSON `json:"data" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func Models() []interface{} {
	return []interface{}{&Form{}, &FormSubmission{}}
}

// FormSummary is the list view of a form.
type FormSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f Form) Summary() FormSummary {
	return FormSummary{ID: f.ID, Name: f.Name, IsPublished: f.IsPublished, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// PublicForm is what anonymous respondents see.
type PublicForm struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Fields       []FormField        `json:"fields"`
	HeaderConfig HeaderFooterConfig `json:"header_config"`
	FooterConfig HeaderFooterConfig `json:"footer_config"`
}

func (f Form) Public() PublicForm {
	return PublicForm{
		ID:           f.ID,
		Name:         f.Name,
		Fields:       f.Fields,
		HeaderConfig: f.HeaderConfig.Data(),
		FooterConfig: f.FooterConfig.Data(),
	}
}

// ----- request payloads -----

type CreateFormInput struct {
	Name string `json:"name"`
}

func (in CreateFormInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
	)
}

// UpdateFormInput is a partial update; nil fields are left alone.
type UpdateFormInput struct {
	Name         *string             `json:"name"`
	Fields       *[]FormField        `json:"fields"`
	HeaderConfig *HeaderFooterConfig `json:"header_config"`
	FooterConfig *HeaderFooterConfig `json:"footer_config"`
	IsPublished  *bool               `json:"is_published"`
}

func (in UpdateFormInput) Validate() error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
	); err != nil {
		return err
	}
	if in.Fields == nil {
		return nil
	}
	return validation.Validate(*in.Fields)
}

type SubmitInput struct {
	Data json.RawMessage `json:"data"`
}

package form

import (
	"formbase-api/internal/logs"
	"formbase-api/internal/rowquery"
)

type FormServiceAPI interface {
	ListForms(ownerID string) ([]Form, error)
	GetForm(ownerID, id string) (*Form, error)
	CreateForm(ownerID string, in CreateFormInput) (*Form, error)
	UpdateForm(ownerID, id string, in UpdateFormInput) (*Form, error)

	GetPublicForm(id string) (*PublicForm, error)
	Submit(id string, payload rowquery.Payload) (*FormSubmission, error)
	ListSubmissions(ownerID, formID string) ([]FormSubmission, error)

	ArchiveForm(ownerID, id string) error
	RestoreForm(ownerID, id string) (*Form, error)
	PurgeForm(ownerID, id string) (*Form, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}

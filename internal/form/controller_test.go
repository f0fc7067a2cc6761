package form

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"formbase-api/internal/domain"
	"formbase-api/internal/logs"
	"formbase-api/internal/rowquery"

	"github.com/gin-gonic/gin"
)

type mockFormService struct {
	listFormsFn       func(ownerID string) ([]Form, error)
	getFormFn         func(ownerID, id string) (*Form, error)
	createFormFn      func(ownerID string, in CreateFormInput) (*Form, error)
	updateFormFn      func(ownerID, id string, in UpdateFormInput) (*Form, error)
	getPublicFormFn   func(id string) (*PublicForm, error)
	submitFn          func(id string, payload rowquery.Payload) (*FormSubmission, error)
	listSubmissionsFn func(ownerID, formID string) ([]FormSubmission, error)
	archiveFormFn     func(ownerID, id string) error
	restoreFormFn     func(ownerID, id string) (*Form, error)
	purgeFormFn       func(ownerID, id string) (*Form, error)
}

func (m *mockFormService) ListForms(ownerID string) ([]Form, error) {
	if m.listFormsFn == nil {
		return nil, nil
	}
	return m.listFormsFn(ownerID)
}

func (m *mockFormService) GetForm(ownerID, id string) (*Form, error) {
	if m.getFormFn == nil {
		return &Form{ID: id}, nil
	}
	return m.getFormFn(ownerID, id)
}

func (m *mockFormService) CreateForm(ownerID string, in CreateFormInput) (*Form, error) {
	if m.createFormFn == nil {
		return &Form{ID: "f1", Name: in.Name}, nil
	}
	return m.createFormFn(ownerID, in)
}

func (m *mockFormService) UpdateForm(ownerID, id string, in UpdateFormInput) (*Form, error) {
	if m.updateFormFn == nil {
		return &Form{ID: id}, nil
	}
	return m.updateFormFn(ownerID, id, in)
}

func (m *mockFormService) GetPublicForm(id string) (*PublicForm, error) {
	if m.getPublicFormFn == nil {
		return &PublicForm{ID: id}, nil
	}
	return m.getPublicFormFn(id)
}

func (m *mockFormService) Submit(id string, payload rowquery.Payload) (*FormSubmission, error) {
	if m.submitFn == nil {
		return &FormSubmission{ID: "s1", FormID: id}, nil
	}
	return m.submitFn(id, payload)
}

func (m *mockFormService) ListSubmissions(ownerID, formID string) ([]FormSubmission, error) {
	if m.listSubmissionsFn == nil {
		return nil, nil
	}
	return m.listSubmissionsFn(ownerID, formID)
}

func (m *mockFormService) ArchiveForm(ownerID, id string) error {
	if m.archiveFormFn == nil {
		return nil
	}
	return m.archiveFormFn(ownerID, id)
}

func (m *mockFormService) RestoreForm(ownerID, id string) (*Form, error) {
	if m.restoreFormFn == nil {
		return &Form{ID: id}, nil
	}
	return m.restoreFormFn(ownerID, id)
}

func (m *mockFormService) PurgeForm(ownerID, id string) (*Form, error) {
	if m.purgeFormFn == nil {
		return &Form{ID: id}, nil
	}
	return m.purgeFormFn(ownerID, id)
}

type captureLogService struct {
	entries []logs.SystemLog
}

func (c *captureLogService) Log(l logs.SystemLog, _ interface{}) error {
	c.entries = append(c.entries, l)
	return nil
}

func setupControllerRouter(svc FormServiceAPI, logSvc LogServicePort, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fc := &FormController{FormService: svc, LogService: logSvc}

	r.GET("/api/forms/public/:id", fc.GetPublicForm)
	r.POST("/api/forms/public/:id/submit", fc.SubmitForm)

	g := r.Group("/api/forms", func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	g.GET("", fc.GetForms)
	g.POST("", fc.CreateForm)
	g.DELETE("/:id", fc.DeleteForm)
	g.POST("/:id/restore", fc.RestoreForm)
	g.GET("/:id/submissions", fc.GetSubmissions)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFormController_GetForms_Summaries(t *testing.T) {
	r := setupControllerRouter(&mockFormService{
		listFormsFn: func(string) ([]Form, error) {
			return []Form{{ID: "f1", Name: "Signup", IsPublished: true, Fields: []FormField{{ID: "x"}}}}, nil
		},
	}, nil, "u1")

	w := do(r, http.MethodGet, "/api/forms", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte(`"fields"`)) {
		t.Fatalf("list should not include fields: %s", w.Body.String())
	}
}

func TestFormController_Unauthorized(t *testing.T) {
	r := setupControllerRouter(&mockFormService{}, nil, "")
	if w := do(r, http.MethodGet, "/api/forms", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFormController_CreateForm_AuditsAndConflicts(t *testing.T) {
	logSvc := &captureLogService{}
	calls := 0
	r := setupControllerRouter(&mockFormService{
		createFormFn: func(ownerID string, in CreateFormInput) (*Form, error) {
			calls++
			if calls > 1 {
				return nil, duplicateFormName()
			}
			return &Form{ID: "f1", Name: in.Name}, nil
		},
	}, logSvc, "u1")

	if w := do(r, http.MethodPost, "/api/forms", `{"name":"Signup"}`); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/forms", `{"name":"Signup"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d", w.Code)
	}
	if len(logSvc.entries) != 1 || logSvc.entries[0].Action != "CREATE_FORM" {
		t.Fatalf("audit entries = %+v", logSvc.entries)
	}
}

func TestFormController_PublicRoutes(t *testing.T) {
	var gotKeys []string
	r := setupControllerRouter(&mockFormService{
		getPublicFormFn: func(id string) (*PublicForm, error) {
			return nil, notPublished()
		},
		submitFn: func(id string, p rowquery.Payload) (*FormSubmission, error) {
			gotKeys = p.Keys()
			return &FormSubmission{ID: "s1", FormID: id}, nil
		},
	}, nil, "")

	if w := do(r, http.MethodGet, "/api/forms/public/f1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("public get status = %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/forms/public/f1/submit", `{"data":{"b":1,"a":2}}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d body=%s", w.Code, w.Body.String())
	}
	if len(gotKeys) != 2 || gotKeys[0] != "b" {
		t.Fatalf("keys = %v", gotKeys)
	}

	if w := do(r, http.MethodPost, "/api/forms/public/f1/submit", `{"data":"text"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("non-object data status = %d", w.Code)
	}
}

func TestFormController_SubmitForm_Validation(t *testing.T) {
	r := setupControllerRouter(&mockFormService{
		submitFn: func(string, rowquery.Payload) (*FormSubmission, error) {
			return nil, domain.Invalid("Name is required")
		},
	}, nil, "")

	w := do(r, http.MethodPost, "/api/forms/public/f1/submit", `{"data":{}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Name is required")) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestFormController_RestoreForm_Errors(t *testing.T) {
	r := setupControllerRouter(&mockFormService{
		restoreFormFn: func(ownerID, id string) (*Form, error) {
			if id == "gone" {
				return nil, domain.NotFound("Deleted form not found")
			}
			return nil, errors.New("db down")
		},
	}, nil, "u1")

	if w := do(r, http.MethodPost, "/api/forms/gone/restore", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/forms/f1/restore", "")
	if w.Code != http.StatusInternalServerError || bytes.Contains(w.Body.Bytes(), []byte("db down")) {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestFormController_DeleteForm(t *testing.T) {
	logSvc := &captureLogService{}
	r := setupControllerRouter(&mockFormService{}, logSvc, "u1")

	if w := do(r, http.MethodDelete, "/api/forms/f1", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(logSvc.entries) != 1 || logSvc.entries[0].Action != "ARCHIVE_FORM" {
		t.Fatalf("audit entries = %+v", logSvc.entries)
	}
}

package form

import (
	"fmt"
	"net/http"

	"formbase-api/internal/domain"
	"formbase-api/internal/logs"
	"formbase-api/internal/middlewares"
	"formbase-api/internal/rowquery"

	"github.com/gin-gonic/gin"
)

type FormController struct {
	FormService FormServiceAPI
	LogService  LogServicePort
}

func (fc *FormController) audit(c *gin.Context, level, action, message, userID string, ids ...string) {
	if fc.LogService == nil {
		return
	}
	logs.Record(c, fc.LogService, logs.Entry(level, "form", action, message, userID, ids...), nil)
}

func (fc *FormController) GetForms(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	forms, err := fc.FormService.ListForms(userID)
	if err != nil {
		domain.RespondError(c, "get forms", err)
		return
	}

	out := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		out = append(out, f.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"forms": out})
}

func (fc *FormController) GetForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	f, err := fc.FormService.GetForm(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "get form", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": f})
}

func (fc *FormController) CreateForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input CreateFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fc.FormService.CreateForm(userID, input)
	if err != nil {
		domain.RespondError(c, "create form", err)
		return
	}

	fc.audit(c, logs.LevelInfo, "CREATE_FORM", fmt.Sprintf("Form created : %s", f.Name), userID, f.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Form created successfully", "form": f})
}

func (fc *FormController) UpdateForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	var input UpdateFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := fc.FormService.UpdateForm(userID, c.Param("id"), input)
	if err != nil {
		domain.RespondError(c, "update form", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Form updated successfully", "form": f})
}

func (fc *FormController) DeleteForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := fc.FormService.ArchiveForm(userID, id); err != nil {
		domain.RespondError(c, "delete form", err)
		return
	}

	fc.audit(c, logs.LevelWarn, "ARCHIVE_FORM", "Form archived", userID, id)
	c.JSON(http.StatusOK, gin.H{"message": "Form deleted successfully"})
}

func (fc *FormController) RestoreForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	f, err := fc.FormService.RestoreForm(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "restore form", err)
		return
	}

	fc.audit(c, logs.LevelInfo, "RESTORE_FORM", fmt.Sprintf("Form restored : %s", f.Name), userID, f.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Form restored successfully"})
}

func (fc *FormController) PurgeForm(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	f, err := fc.FormService.PurgeForm(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "permanent delete form", err)
		return
	}

	fc.audit(c, logs.LevelWarn, "PURGE_FORM", fmt.Sprintf("Form permanently deleted : %s", f.Name), userID, f.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Form permanently deleted successfully"})
}

func (fc *FormController) GetSubmissions(c *gin.Context) {
	userID, ok := middlewares.RequireUser(c)
	if !ok {
		return
	}

	subs, err := fc.FormService.ListSubmissions(userID, c.Param("id"))
	if err != nil {
		domain.RespondError(c, "get form submissions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// ----- public -----

// GET /api/forms/public/:id
func (fc *FormController) GetPublicForm(c *gin.Context) {
	f, err := fc.FormService.GetPublicForm(c.Param("id"))
	if err != nil {
		domain.RespondError(c, "get public form", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": f})
}

// POST /api/forms/public/:id/submit
func (fc *FormController) SubmitForm(c *gin.Context) {
	var input SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := rowquery.ParsePayload(input.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be a JSON object"})
		return
	}

	sub, err := fc.FormService.Submit(c.Param("id"), payload)
	if err != nil {
		domain.RespondError(c, "submit form", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Form submitted successfully", "submission": sub})
}

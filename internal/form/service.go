package form

import (
	"encoding/json"
	"errors"
	"strings"

	"formbase-api/internal/domain"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/metrics"
	"formbase-api/internal/rowquery"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FormService struct {
	DB *gorm.DB
}

var _ FormServiceAPI = (*FormService)(nil)

func (s *FormService) ListForms(ownerID string) ([]Form, error) {
	var forms []Form
	err := lifecycle.ActiveFor(ownerID).Apply(s.DB.Model(&Form{}), "forms").
		Order("forms.created_at DESC").
		Find(&forms).Error
	return forms, err
}

func (s *FormService) findForm(scope lifecycle.Scope, id string, notFound error) (*Form, error) {
	var f Form
	err := scope.Apply(s.DB.Model(&Form{}), "forms").
		Where("forms.id = ?", id).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FormService) GetForm(ownerID, id string) (*Form, error) {
	return s.findForm(lifecycle.ActiveFor(ownerID), id, lifecycle.NotInState(lifecycle.KindForm, lifecycle.Archive))
}

func (s *FormService) activeNameTaken(ownerID, name, exceptID string) (bool, error) {
	q := lifecycle.ActiveFor(ownerID).Apply(s.DB.Model(&Form{}), "forms").
		Where("forms.name = ?", name)
	if exceptID != "" {
		q = q.Where("forms.id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func duplicateFormName() error {
	return domain.Conflict(domain.CodeDuplicateName, "Form with this name already exists")
}

// CreateForm starts an empty, unpublished form with disabled header and footer.
func (s *FormService) CreateForm(ownerID string, in CreateFormInput) (*Form, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	taken, err := s.activeNameTaken(ownerID, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateFormName()
	}

	f := Form{
		UserID:       ownerID,
		Name:         in.Name,
		Fields:       datatypes.JSONSlice[FormField]{},
		HeaderConfig: datatypes.NewJSONType(DefaultHeaderFooter()),
		FooterConfig: datatypes.NewJSONType(DefaultHeaderFooter()),
	}
	if err := s.DB.Create(&f).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateFormName()
		}
		return nil, err
	}
	return &f, nil
}

func (s *FormService) UpdateForm(ownerID, id string, in UpdateFormInput) (*Form, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	f, err := s.GetForm(ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && *in.Name != f.Name {
		taken, err := s.activeNameTaken(ownerID, *in.Name, f.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, duplicateFormName()
		}
		updates["name"] = *in.Name
	}
	if in.Fields != nil {
		updates["fields"] = datatypes.JSONSlice[FormField](*in.Fields)
	}
	if in.HeaderConfig != nil {
		updates["header_config"] = datatypes.NewJSONType(*in.HeaderConfig)
	}
	if in.FooterConfig != nil {
		updates["footer_config"] = datatypes.NewJSONType(*in.FooterConfig)
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if len(updates) == 0 {
		return f, nil
	}

	if err := s.DB.Model(f).Updates(updates).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateFormName()
		}
		return nil, err
	}
	return s.GetForm(ownerID, id)
}

// ----- public -----

func notPublished() error {
	return domain.NotFound("Form not found or not published")
}

// publishedForm loads a form that is both published and active, regardless of owner.
func (s *FormService) publishedForm(id string) (*Form, error) {
	var f Form
	err := s.DB.Where("id = ? AND is_published = ?", id, true).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notPublished()
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FormService) GetPublicForm(id string) (*PublicForm, error) {
	f, err := s.publishedForm(id)
	if err != nil {
		return nil, err
	}
	pub := f.Public()
	return &pub, nil
}

// CheckRequired rejects payload when a required field is missing, falsy or
// blank, and when a filled EMAIL or URL field is malformed.
func CheckRequired(fields []FormField, payload rowquery.Payload) error {
	for _, field := range fields {
		v, ok := payload.Get(field.ID)
		filled := ok && v.Truthy() && (v.Kind() != rowquery.KindString || strings.TrimSpace(v.String()) != "")

		if field.IsRequired && !filled {
			return domain.Invalid(field.Label + " is required")
		}
		if !filled || v.Kind() != rowquery.KindString {
			continue
		}

		var rule validation.Rule
		switch field.Type {
		case WidgetEmail:
			rule = is.EmailFormat
		case WidgetURL:
			rule = is.URL
		default:
			continue
		}
		if err := validation.Validate(v.String(), rule); err != nil {
			return domain.Invalid(field.Label + ": " + err.Error())
		}
	}
	return nil
}

// Submit stores an anonymous response to a published, active form.
func (s *FormService) Submit(id string, payload rowquery.Payload) (*FormSubmission, error) {
	f, err := s.publishedForm(id)
	if err != nil {
		return nil, err
	}
	if err := CheckRequired(f.Fields, payload); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	sub := FormSubmission{FormID: f.ID, Data: datatypes.JSON(data)}
	if err := s.DB.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *FormService) ListSubmissions(ownerID, formID string) ([]FormSubmission, error) {
	f, err := s.GetForm(ownerID, formID)
	if err != nil {
		return nil, err
	}
	var subs []FormSubmission
	err = s.DB.Where("form_id = ?", f.ID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// ----- lifecycle -----

func (s *FormService) ArchiveForm(ownerID, id string) (err error) {
	defer func() { metrics.ObserveTransition("form", string(lifecycle.Archive), err, 1) }()

	f, err := s.findForm(lifecycle.ForAction(ownerID, lifecycle.Archive), id,
		lifecycle.NotInState(lifecycle.KindForm, lifecycle.Archive))
	if err != nil {
		return err
	}
	return s.DB.Delete(f).Error
}

// RestoreForm reactivates an archived form when no active form of the owner
// has its name.
func (s *FormService) RestoreForm(ownerID, id string) (f *Form, err error) {
	defer func() { metrics.ObserveTransition("form", string(lifecycle.Restore), err, 1) }()

	f, err = s.findForm(lifecycle.ForAction(ownerID, lifecycle.Restore), id,
		lifecycle.NotInState(lifecycle.KindForm, lifecycle.Restore))
	if err != nil {
		return nil, err
	}

	taken, err := s.activeNameTaken(ownerID, f.Name, f.ID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanRestore(lifecycle.RestoreCheck{Kind: lifecycle.KindForm, NameTaken: taken}); err != nil {
		return nil, err
	}

	if err := s.DB.Unscoped().Model(&Form{}).Where("id = ?", f.ID).Update("deleted_at", nil).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, lifecycle.CanRestore(lifecycle.RestoreCheck{Kind: lifecycle.KindForm, NameTaken: true})
		}
		return nil, err
	}
	f.DeletedAt = gorm.DeletedAt{}
	return f, nil
}

// PurgeForm permanently removes an archived form and its submissions.
func (s *FormService) PurgeForm(ownerID, id string) (f *Form, err error) {
	defer func() { metrics.ObserveTransition("form", string(lifecycle.Purge), err, 1) }()

	f, err = s.findForm(lifecycle.ForAction(ownerID, lifecycle.Purge), id,
		lifecycle.NotInState(lifecycle.KindForm, lifecycle.Purge))
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return PurgeForms(tx, []string{f.ID})
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// PurgeForms hard-deletes forms by id with their submissions. Callers have
// already checked ownership and state.
func PurgeForms(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("form_id IN ?", ids).Delete(&FormSubmission{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("id IN ?", ids).Delete(&Form{}).Error
}

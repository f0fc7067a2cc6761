package stats

import (
	"formbase-api/internal/database"
	"formbase-api/internal/form"

	"gorm.io/gorm"
)

type StatsService struct {
	DB *gorm.DB
}

var _ StatsServiceAPI = (*StatsService)(nil)

func (s *StatsService) GetStats(ownerID string) (*Stats, error) {
	var st Stats

	if err := s.DB.Model(&form.Form{}).
		Where("user_id = ?", ownerID).
		Count(&st.FormsCreated).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Model(&form.FormSubmission{}).
		Joins("JOIN forms ON forms.id = form_submissions.form_id").
		Where("forms.user_id = ? AND forms.deleted_at IS NULL", ownerID).
		Count(&st.FormsSubmitted).Error; err != nil {
		return nil, err
	}

	if err := s.DB.Model(&database.Database{}).
		Where("user_id = ?", ownerID).
		Count(&st.DatabasesCreated).Error; err != nil {
		return nil, err
	}

	return &st, nil
}

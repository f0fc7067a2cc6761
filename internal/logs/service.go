package logs

import (
	"encoding/json"
	"strings"
	"time"

	"formbase-api/internal/domain"
	"formbase-api/internal/util"

	"gorm.io/gorm"
)

type LogService struct {
	DB *gorm.DB
}

func (ls *LogService) Log(log SystemLog, metadata interface{}) error {
	newLog := SystemLog{
		Level:     log.Level,
		Service:   log.Service,
		UserID:    log.UserID,
		Action:    log.Action,
		Message:   log.Message,
		EntityIDs: log.EntityIDs,
		CreatedAt: time.Now(),
	}

	// Metadata that cannot be encoded is dropped, the entry itself is still written.
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			newLog.Metadata = b
		}
	}

	return ls.DB.Create(&newLog).Error
}

func (ls *LogService) GetLogs(input LogFilterInput) ([]SystemLog, LogAggregates, int64, int, error) {
	page := util.NewPage(input.Page, input.PageSize, 20, 100)
	input.Page, input.PageSize = page.Page, page.Limit

	base := ls.DB.Model(&SystemLog{})

	// Default: last 30 days if no dates
	if input.StartDate == nil && input.EndDate == nil {
		base = base.Where("logs.created_at >= ?", time.Now().AddDate(0, 0, -30))
	}

	if input.UserID != nil && strings.TrimSpace(*input.UserID) != "" {
		base = base.Where("logs.user_id = ?", strings.TrimSpace(*input.UserID))
	}
	if input.Level != nil && strings.TrimSpace(*input.Level) != "" {
		base = base.Where("logs.level = ?", strings.ToUpper(strings.TrimSpace(*input.Level)))
	}
	if input.Service != nil && strings.TrimSpace(*input.Service) != "" {
		base = base.Where("logs.service = ?", strings.TrimSpace(*input.Service))
	}
	if input.Action != nil && strings.TrimSpace(*input.Action) != "" {
		base = base.Where("logs.action = ?", strings.TrimSpace(*input.Action))
	}
	if input.EntityID != nil && strings.TrimSpace(*input.EntityID) != "" {
		base = base.Where("CAST(logs.entity_ids AS TEXT) LIKE ?"+util.LikeEscape, util.ContainsPattern(*input.EntityID))
	}

	start, hasStart, endExclusive, hasEnd, err := util.ParseDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, domain.Invalid(err.Error())
	}
	if hasStart {
		base = base.Where("logs.created_at >= ?", start)
	}
	if hasEnd {
		base = base.Where("logs.created_at < ?", endExclusive)
	}

	if input.Search != nil && strings.TrimSpace(*input.Search) != "" {
		like := util.ContainsPattern(*input.Search)
		base = base.Where(
			`LOWER(logs.level) LIKE ? ESCAPE '\'
			 OR LOWER(logs.service) LIKE ? ESCAPE '\'
			 OR LOWER(logs.action) LIKE ? ESCAPE '\'
			 OR LOWER(logs.message) LIKE ? ESCAPE '\'
			 OR LOWER(COALESCE(logs.user_id,'')) LIKE ? ESCAPE '\'`,
			like, like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	var rows []SystemLog
	if err := base.
		Session(&gorm.Session{}).
		Order("logs.created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	aggs, err := ls.getAggregatesFromBase(base)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	return rows, aggs, total, page.TotalPages(total), nil
}

func (ls *LogService) getAggregatesFromBase(base *gorm.DB) (LogAggregates, error) {
	aggs := LogAggregates{}
	limit := 12

	if err := base.Session(&gorm.Session{}).
		Select("logs.action AS label, COUNT(*) AS count").
		Group("logs.action").
		Order("count DESC").
		Limit(limit).
		Scan(&aggs.ByAction).Error; err != nil {
		return LogAggregates{}, err
	}

	if err := base.Session(&gorm.Session{}).
		Select("logs.service AS label, COUNT(*) AS count").
		Group("logs.service").
		Order("count DESC").
		Limit(limit).
		Scan(&aggs.ByService).Error; err != nil {
		return LogAggregates{}, err
	}

	return aggs, nil
}

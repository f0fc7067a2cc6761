package database

import (
	"time"

	"formbase-api/internal/metrics"
)

// Drift lists active rows that sit in a deleted database of ownerID. They
// appear when an archive cascade stops after stamping the database.
func (s *DatabaseService) Drift(ownerID string) ([]DriftRow, error) {
	var out []DriftRow
	err := s.DB.Unscoped().Model(&DatabaseRow{}).
		Select("database_rows.id AS row_id, databases.id AS database_id, databases.name AS database_name, databases.deleted_at AS deleted_at").
		Joins("JOIN databases ON databases.id = database_rows.database_id").
		Where("database_rows.deleted_at IS NULL").
		Where("databases.user_id = ? AND databases.deleted_at IS NOT NULL", ownerID).
		Order("databases.id, database_rows.created_at").
		Scan(&out).Error
	return out, err
}

// RepairDrift finishes interrupted cascades by stamping each drifted row with
// its database's deletion time. The update only touches rows that are still active.
func (s *DatabaseService) RepairDrift(ownerID string) (repaired int64, err error) {
	defer func() { metrics.ObserveTransition("row", "repair", err, int(repaired)) }()

	drift, err := s.Drift(ownerID)
	if err != nil {
		return 0, err
	}

	byDatabase := map[string]time.Time{}
	for _, d := range drift {
		byDatabase[d.DatabaseID] = d.DeletedAt
	}

	for dbID, stamp := range byDatabase {
		res := s.DB.Model(&DatabaseRow{}).
			Where("database_id = ?", dbID).
			Update("deleted_at", stamp)
		if res.Error != nil {
			return repaired, res.Error
		}
		repaired += res.RowsAffected
	}
	return repaired, nil
}

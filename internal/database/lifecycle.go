package database

import (
	"errors"
	"time"

	"formbase-api/internal/domain"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/metrics"

	"gorm.io/gorm"
)

// ArchiveDatabase soft-deletes the database and then every row in it,
// including rows that were already archived, which get the new timestamp.
// The two stamps are separate writes; see RepairDrift for the gap between them.
func (s *DatabaseService) ArchiveDatabase(ownerID, id string) (rows int64, err error) {
	defer func() { metrics.ObserveTransition("database", string(lifecycle.Archive), err, 1) }()

	db, err := s.findDatabase(s.DB, lifecycle.ForAction(ownerID, lifecycle.Archive), id)
	if err != nil {
		return 0, err
	}
	if err := lifecycle.Check(lifecycle.KindDatabase, db.DeletedAt, lifecycle.Archive); err != nil {
		return 0, err
	}

	now := time.Now()
	err = lifecycle.RunSaga("archive database",
		lifecycle.Step{
			Name:   "stamp database",
			Leaves: "database and rows unchanged",
			Run: func() error {
				return s.DB.Model(&Database{}).Where("id = ?", db.ID).Update("deleted_at", now).Error
			},
		},
		lifecycle.Step{
			Name:   "stamp rows",
			Leaves: "database archived with active rows",
			Run: func() error {
				res := s.DB.Unscoped().Model(&DatabaseRow{}).
					Where("database_id = ?", db.ID).
					Update("deleted_at", now)
				rows = res.RowsAffected
				return res.Error
			},
		},
	)
	return rows, err
}

// RestoreDatabase clears the database's deletion stamp. Its rows stay archived
// and must be restored on their own.
func (s *DatabaseService) RestoreDatabase(ownerID, id string) (*Database, error) {
	db, err := s.restoreDatabase(ownerID, id)
	metrics.ObserveTransition("database", string(lifecycle.Restore), err, 1)
	return db, err
}

func (s *DatabaseService) restoreDatabase(ownerID, id string) (*Database, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ForAction(ownerID, lifecycle.Restore), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, lifecycle.NotInState(lifecycle.KindDatabase, lifecycle.Restore)
	}
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Check(lifecycle.KindDatabase, db.DeletedAt, lifecycle.Restore); err != nil {
		return nil, err
	}

	taken, err := s.activeNameTaken(s.DB, ownerID, db.Name, db.ID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanRestore(lifecycle.RestoreCheck{Kind: lifecycle.KindDatabase, NameTaken: taken}); err != nil {
		return nil, err
	}

	if err := s.DB.Unscoped().Model(&Database{}).Where("id = ?", db.ID).Update("deleted_at", nil).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, lifecycle.CanRestore(lifecycle.RestoreCheck{Kind: lifecycle.KindDatabase, NameTaken: true})
		}
		return nil, err
	}
	db.DeletedAt = gorm.DeletedAt{}
	return db, nil
}

// PurgeDatabase permanently removes an archived database with its columns and rows.
func (s *DatabaseService) PurgeDatabase(ownerID, id string) (db *Database, err error) {
	defer func() { metrics.ObserveTransition("database", string(lifecycle.Purge), err, 1) }()

	db, err = s.findDatabase(s.DB, lifecycle.ForAction(ownerID, lifecycle.Purge), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, lifecycle.NotInState(lifecycle.KindDatabase, lifecycle.Purge)
	}
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Check(lifecycle.KindDatabase, db.DeletedAt, lifecycle.Purge); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return PurgeDatabases(tx, []string{db.ID})
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// PurgeDatabases hard-deletes databases by id together with their rows and
// columns. Callers have already checked ownership and state.
func PurgeDatabases(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Unscoped().Where("database_id IN ?", ids).Delete(&DatabaseRow{}).Error; err != nil {
		return err
	}
	if err := tx.Where("database_id IN ?", ids).Delete(&DatabaseColumn{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("id IN ?", ids).Delete(&Database{}).Error
}

// ArchiveRow soft-deletes one active row.
func (s *DatabaseService) ArchiveRow(ownerID, databaseID, rowID string) (err error) {
	defer func() { metrics.ObserveTransition("row", string(lifecycle.Archive), err, 1) }()

	row, err := s.findRow(ownerID, databaseID, rowID)
	if err != nil {
		return err
	}
	if err := lifecycle.Check(lifecycle.KindRow, row.DeletedAt, lifecycle.Archive); err != nil {
		return err
	}
	return s.DB.Delete(row).Error
}

// findArchivedRow loads an archived row whose database, in any state, belongs to ownerID.
func (s *DatabaseService) findArchivedRow(ownerID, rowID string, action lifecycle.Action) (*DatabaseRow, *Database, error) {
	var row DatabaseRow
	err := lifecycle.ForAction(ownerID, action).States(s.DB.Model(&DatabaseRow{}), "database_rows").
		Select("database_rows.*").
		Joins("JOIN databases ON databases.id = database_rows.database_id").
		Where("databases.user_id = ?", ownerID).
		Where("database_rows.id = ?", rowID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, lifecycle.NotInState(lifecycle.KindRow, action)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := lifecycle.Check(lifecycle.KindRow, row.DeletedAt, action); err != nil {
		return nil, nil, err
	}

	db, err := s.findDatabase(s.DB, lifecycle.AnyFor(ownerID), row.DatabaseID)
	if err != nil {
		return nil, nil, err
	}
	return &row, db, nil
}

// RestoreRow reactivates an archived row. The database must be active.
func (s *DatabaseService) RestoreRow(ownerID, rowID string) (err error) {
	defer func() { metrics.ObserveTransition("row", string(lifecycle.Restore), err, 1) }()

	row, db, err := s.findArchivedRow(ownerID, rowID, lifecycle.Restore)
	if err != nil {
		return err
	}
	if err := lifecycle.CanRestore(lifecycle.RestoreCheck{
		Kind:          lifecycle.KindRow,
		ParentDeleted: lifecycle.StateOf(db.DeletedAt) == lifecycle.Deleted,
	}); err != nil {
		return err
	}

	return s.DB.Unscoped().Model(&DatabaseRow{}).Where("id = ?", row.ID).Update("deleted_at", nil).Error
}

// PurgeRow permanently removes an archived row.
func (s *DatabaseService) PurgeRow(ownerID, rowID string) (err error) {
	defer func() { metrics.ObserveTransition("row", string(lifecycle.Purge), err, 1) }()

	row, _, err := s.findArchivedRow(ownerID, rowID, lifecycle.Purge)
	if err != nil {
		return err
	}
	return s.DB.Unscoped().Delete(&DatabaseRow{}, "id = ?", row.ID).Error
}

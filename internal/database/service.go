package database

import (
	"database/sql"
	"errors"
	"strings"

	"formbase-api/internal/domain"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DatabaseService struct {
	DB *gorm.DB
}

var _ DatabaseServiceAPI = (*DatabaseService)(nil)

func (s *DatabaseService) ListDatabases(ownerID string) ([]Database, error) {
	var dbs []Database
	err := lifecycle.ActiveFor(ownerID).Apply(s.DB.Model(&Database{}), "databases").
		Order("databases.created_at DESC").
		Find(&dbs).Error
	return dbs, err
}

// findDatabase loads one database visible under scope.
func (s *DatabaseService) findDatabase(tx *gorm.DB, scope lifecycle.Scope, id string) (*Database, error) {
	var db Database
	err := scope.Apply(tx.Model(&Database{}), "databases").
		Where("databases.id = ?", id).
		First(&db).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Database not found")
	}
	if err != nil {
		return nil, err
	}
	return &db, nil
}

func (s *DatabaseService) GetDatabase(ownerID, id string) (*Database, []DatabaseColumn, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), id)
	if err != nil {
		return nil, nil, err
	}
	cols, err := s.ListColumns(db.ID)
	if err != nil {
		return nil, nil, err
	}
	return db, cols, nil
}

// activeNameTaken reports whether another active database of ownerID is called name.
func (s *DatabaseService) activeNameTaken(tx *gorm.DB, ownerID, name, exceptID string) (bool, error) {
	q := lifecycle.ActiveFor(ownerID).Apply(tx.Model(&Database{}), "databases").
		Where("databases.name = ?", name)
	if exceptID != "" {
		q = q.Where("databases.id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func duplicateDatabaseName() error {
	return domain.Conflict(domain.CodeDuplicateName, "Database with this name already exists")
}

func (s *DatabaseService) CreateDatabase(ownerID string, in DatabaseInput) (*Database, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	taken, err := s.activeNameTaken(s.DB, ownerID, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateDatabaseName()
	}

	db := Database{UserID: ownerID, Name: in.Name}
	if err := s.DB.Create(&db).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateDatabaseName()
		}
		return nil, err
	}
	return &db, nil
}

func (s *DatabaseService) RenameDatabase(ownerID, id string, in DatabaseInput) (*Database, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), id)
	if err != nil {
		return nil, err
	}
	if db.Name == in.Name {
		return db, nil
	}

	taken, err := s.activeNameTaken(s.DB, ownerID, in.Name, db.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateDatabaseName()
	}

	if err := s.DB.Model(db).Update("name", in.Name).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateDatabaseName()
		}
		return nil, err
	}
	db.Name = in.Name
	return db, nil
}

// ----- columns -----

func (s *DatabaseService) ListColumns(databaseID string) ([]DatabaseColumn, error) {
	var cols []DatabaseColumn
	err := s.DB.Where("database_id = ?", databaseID).
		Order("position ASC").
		Find(&cols).Error
	return cols, err
}

func duplicateColumnName() error {
	return domain.Conflict(domain.CodeDuplicateName, "Column with this name already exists")
}

func (s *DatabaseService) columnNameTaken(databaseID, name, exceptID string) (bool, error) {
	q := s.DB.Model(&DatabaseColumn{}).Where("database_id = ? AND name = ?", databaseID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddColumn appends a column after the current last one. Names match exactly,
// so "Email" and "email" are different columns.
func (s *DatabaseService) AddColumn(ownerID, databaseID string, in AddColumnInput) (*DatabaseColumn, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), databaseID)
	if err != nil {
		return nil, err
	}

	taken, err := s.columnNameTaken(db.ID, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateColumnName()
	}

	var maxOrder sql.NullInt64
	if err := s.DB.Model(&DatabaseColumn{}).
		Where("database_id = ?", db.ID).
		Select("MAX(position)").
		Row().Scan(&maxOrder); err != nil {
		return nil, err
	}
	next := 0
	if maxOrder.Valid {
		next = int(maxOrder.Int64) + 1
	}

	col := DatabaseColumn{
		DatabaseID: db.ID,
		Name:       in.Name,
		Type:       in.Type,
		IsUnique:   in.IsUnique,
		Order:      next,
	}
	if err := s.DB.Create(&col).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateColumnName()
		}
		return nil, err
	}
	return &col, nil
}

func (s *DatabaseService) findColumn(ownerID, databaseID, columnID string) (*DatabaseColumn, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), databaseID)
	if err != nil {
		return nil, err
	}
	var col DatabaseColumn
	err = s.DB.Where("id = ? AND database_id = ?", columnID, db.ID).First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Column not found")
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// UpdateColumn applies the provided fields only. Order is never changed here.
// Renaming does not rewrite row payloads.
func (s *DatabaseService) UpdateColumn(ownerID, databaseID, columnID string, in UpdateColumnInput) (*DatabaseColumn, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := in.Validate(); err != nil {
		return nil, domain.Invalid(err.Error())
	}

	col, err := s.findColumn(ownerID, databaseID, columnID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil && *in.Name != col.Name {
		taken, err := s.columnNameTaken(col.DatabaseID, *in.Name, col.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, duplicateColumnName()
		}
		updates["name"] = *in.Name
	}
	if in.Type != nil {
		updates["type"] = *in.Type
	}
	if in.IsUnique != nil {
		updates["is_unique"] = *in.IsUnique
	}
	if len(updates) == 0 {
		return col, nil
	}

	if err := s.DB.Model(col).Updates(updates).Error; err != nil {
		if domain.IsUniqueViolation(err) {
			return nil, duplicateColumnName()
		}
		return nil, err
	}
	if err := s.DB.First(col, "id = ?", col.ID).Error; err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteColumn removes the column, then strips its key from every archived row
// of the database one row at a time. Active rows keep the key. A failure part
// way leaves the remaining archived rows unstripped; the column is gone either way.
func (s *DatabaseService) DeleteColumn(ownerID, databaseID, columnID string) (int, error) {
	col, err := s.findColumn(ownerID, databaseID, columnID)
	if err != nil {
		return 0, err
	}

	if err := s.DB.Delete(&DatabaseColumn{}, "id = ?", col.ID).Error; err != nil {
		return 0, err
	}

	var archived []DatabaseRow
	if err := lifecycle.DeletedFor(ownerID).States(s.DB.Model(&DatabaseRow{}), "database_rows").
		Where("database_rows.database_id = ?", col.DatabaseID).
		Find(&archived).Error; err != nil {
		return 0, err
	}

	stripped := 0
	for _, row := range archived {
		p := row.Payload()
		if !p.Delete(col.Name) {
			continue
		}
		data, err := encodePayload(p)
		if err != nil {
			return stripped, err
		}
		if err := s.DB.Unscoped().Model(&DatabaseRow{}).
			Where("id = ?", row.ID).
			UpdateColumn("data", data).Error; err != nil {
			logger.GetLogger().Warn("strip column from archived row failed",
				zap.String("column", col.Name),
				zap.String("row_id", row.ID),
				zap.Int("stripped", stripped),
				zap.Error(err))
			return stripped, err
		}
		stripped++
	}
	return stripped, nil
}

package database

import (
	"errors"

	"formbase-api/internal/domain"
	"formbase-api/internal/lifecycle"
	"formbase-api/internal/rowquery"

	"gorm.io/gorm"
)

// ParseRowData decodes a request's data field. Absent data is an empty row.
func ParseRowData(raw []byte) (rowquery.Payload, error) {
	p, err := rowquery.ParsePayload(raw)
	if err != nil {
		return rowquery.Payload{}, domain.Invalid("data must be a JSON object")
	}
	return p, nil
}

// ListRows loads every active row of the database and filters and sorts them
// in memory, newest first when no sort column is given.
func (s *DatabaseService) ListRows(ownerID, databaseID string, q rowquery.Query) ([]DatabaseRow, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), databaseID)
	if err != nil {
		return nil, err
	}

	var rows []DatabaseRow
	if err := s.DB.Where("database_id = ?", db.ID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return unloadRows(rowquery.Apply(loadRows(rows), payloadOf, q)), nil
}

// CheckUnique rejects payload if a unique column's truthy value is already
// held by another active row. Falsy values ("", 0, false, null) are never
// checked and archived rows never block. Values compare strictly: same type
// and same value, case-sensitive.
func (s *DatabaseService) CheckUnique(databaseID string, payload rowquery.Payload, excludeRowID string) error {
	var uniqueCols []DatabaseColumn
	if err := s.DB.Where("database_id = ? AND is_unique = ?", databaseID, true).
		Order("position ASC").
		Find(&uniqueCols).Error; err != nil {
		return err
	}

	type probe struct {
		column string
		value  rowquery.Value
	}
	probes := make([]probe, 0, len(uniqueCols))
	for _, col := range uniqueCols {
		if v, ok := payload.Get(col.Name); ok && v.Truthy() {
			probes = append(probes, probe{column: col.Name, value: v})
		}
	}
	if len(probes) == 0 {
		return nil
	}

	q := s.DB.Where("database_id = ?", databaseID)
	if excludeRowID != "" {
		q = q.Where("id <> ?", excludeRowID)
	}
	var others []DatabaseRow
	if err := q.Find(&others).Error; err != nil {
		return err
	}
	loaded := loadRows(others)

	for _, pr := range probes {
		for _, other := range loaded {
			if v, ok := other.payload.Get(pr.column); ok && v.StrictEqual(pr.value) {
				return domain.DuplicateValue(pr.column)
			}
		}
	}
	return nil
}

func (s *DatabaseService) AddRow(ownerID, databaseID string, payload rowquery.Payload) (*DatabaseRow, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), databaseID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckUnique(db.ID, payload, ""); err != nil {
		return nil, err
	}

	data, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	row := DatabaseRow{DatabaseID: db.ID, Data: data}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// findRow loads an active row of an active database owned by ownerID.
func (s *DatabaseService) findRow(ownerID, databaseID, rowID string) (*DatabaseRow, error) {
	db, err := s.findDatabase(s.DB, lifecycle.ActiveFor(ownerID), databaseID)
	if err != nil {
		return nil, err
	}
	var row DatabaseRow
	err = s.DB.Where("id = ? AND database_id = ?", rowID, db.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lifecycle.NotInState(lifecycle.KindRow, lifecycle.Archive)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateRow replaces the row's payload wholesale.
func (s *DatabaseService) UpdateRow(ownerID, databaseID, rowID string, payload rowquery.Payload) (*DatabaseRow, error) {
	row, err := s.findRow(ownerID, databaseID, rowID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckUnique(row.DatabaseID, payload, row.ID); err != nil {
		return nil, err
	}

	data, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(row).Update("data", data).Error; err != nil {
		return nil, err
	}
	row.Data = data
	return row, nil
}

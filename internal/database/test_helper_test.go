package database

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:database_test_%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func breakDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()
}

func newTestService(t *testing.T) (*DatabaseService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return &DatabaseService{DB: db}, db
}

func insertDatabase(t *testing.T, db *gorm.DB, owner, name string) Database {
	t.Helper()
	d := Database{UserID: owner, Name: name}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("insert database: %v", err)
	}
	return d
}

func insertColumn(t *testing.T, db *gorm.DB, databaseID, name string, unique bool, order int) DatabaseColumn {
	t.Helper()
	c := DatabaseColumn{DatabaseID: databaseID, Name: name, Type: ColumnText, IsUnique: unique, Order: order}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("insert column: %v", err)
	}
	return c
}

func insertRow(t *testing.T, db *gorm.DB, databaseID, data string) DatabaseRow {
	t.Helper()
	r := DatabaseRow{DatabaseID: databaseID, Data: datatypes.JSON(data)}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("insert row: %v", err)
	}
	return r
}

func archiveRowAt(t *testing.T, db *gorm.DB, rowID string, at time.Time) {
	t.Helper()
	if err := db.Unscoped().Model(&DatabaseRow{}).Where("id = ?", rowID).Update("deleted_at", at).Error; err != nil {
		t.Fatalf("archive row: %v", err)
	}
}

func reloadRow(t *testing.T, db *gorm.DB, id string) DatabaseRow {
	t.Helper()
	var r DatabaseRow
	if err := db.Unscoped().First(&r, "id = ?", id).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	return r
}

func reloadDatabase(t *testing.T, db *gorm.DB, id string) Database {
	t.Helper()
	var d Database
	if err := db.Unscoped().First(&d, "id = ?", id).Error; err != nil {
		t.Fatalf("reload database: %v", err)
	}
	return d
}

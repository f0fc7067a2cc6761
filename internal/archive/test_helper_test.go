package archive

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"formbase-api/internal/database"
	"formbase-api/internal/form"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:archive_test_%d?mode=memory&cache=shared", id)

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

	models := append(database.Models(), form.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
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

func newTestService(t *testing.T) (*ArchiveService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return &ArchiveService{DB: db}, db
}

func insertDatabase(t *testing.T, db *gorm.DB, owner, name string) database.Database {
	t.Helper()
	d := database.Database{UserID: owner, Name: name}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("insert database: %v", err)
	}
	return d
}

// archivedDatabase inserts a database that was archived at the given time.
func archivedDatabase(t *testing.T, db *gorm.DB, owner, name string, at time.Time) database.Database {
	t.Helper()
	d := insertDatabase(t, db, owner, name)
	stamp(t, db, &database.Database{}, d.ID, at)
	return d
}

func insertRow(t *testing.T, db *gorm.DB, databaseID, data string) database.DatabaseRow {
	t.Helper()
	r := database.DatabaseRow{DatabaseID: databaseID, Data: datatypes.JSON(data)}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("insert row: %v", err)
	}
	return r
}

func archivedRow(t *testing.T, db *gorm.DB, databaseID, data string, at time.Time) database.DatabaseRow {
	t.Helper()
	r := insertRow(t, db, databaseID, data)
	stamp(t, db, &database.DatabaseRow{}, r.ID, at)
	return r
}

func archivedForm(t *testing.T, db *gorm.DB, owner, name string, at time.Time) form.Form {
	t.Helper()
	f := form.Form{UserID: owner, Name: name, HeaderConfig: datatypes.NewJSONType(form.DefaultHeaderFooter()),
		FooterConfig: datatypes.NewJSONType(form.DefaultHeaderFooter())}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("insert form: %v", err)
	}
	stamp(t, db, &form.Form{}, f.ID, at)
	return f
}

func stamp(t *testing.T, db *gorm.DB, model interface{}, id string, at time.Time) {
	t.Helper()
	if err := db.Unscoped().Model(model).Where("id = ?", id).Update("deleted_at", at).Error; err != nil {
		t.Fatalf("stamp %T: %v", model, err)
	}
}

func countUnscoped(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Unscoped().Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

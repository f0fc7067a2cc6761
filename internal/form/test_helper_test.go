package form

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:form_test_%d?mode=memory&cache=shared", id)

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

func newTestService(t *testing.T) (*FormService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return &FormService{DB: db}, db
}

// createPublished creates a published form for owner with the given fields.
func createPublished(t *testing.T, svc *FormService, owner, name string, fields ...FormField) *Form {
	t.Helper()
	f, err := svc.CreateForm(owner, CreateFormInput{Name: name})
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	published := true
	if fields == nil {
		fields = []FormField{}
	}
	f, err = svc.UpdateForm(owner, f.ID, UpdateFormInput{Fields: &fields, IsPublished: &published})
	if err != nil {
		t.Fatalf("publish form: %v", err)
	}
	return f
}

func countSubmissions(t *testing.T, db *gorm.DB, formID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&FormSubmission{}).Where("form_id = ?", formID).Count(&n).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	return n
}

package logs

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	cleanup := func() { _ = db.Close() }
	return gdb, mock, cleanup
}

func expectInsert(mock sqlmock.Sqlmock, id int) {
	mock.ExpectQuery(`INSERT INTO "logs"`).
		WithArgs(
			sqlmock.AnyArg(), // level
			sqlmock.AnyArg(), // service
			sqlmock.AnyArg(), // user_id
			sqlmock.AnyArg(), // action
			sqlmock.AnyArg(), // message
			sqlmock.AnyArg(), // entity_ids
			sqlmock.AnyArg(), // metadata
			sqlmock.AnyArg(), // created_at
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

func TestLogService_Log_Inserts(t *testing.T) {
	t.Run("metadata nil", func(t *testing.T) {
		db, mock, cleanup := newMockGorm(t)
		defer cleanup()

		ls := &LogService{DB: db}
		expectInsert(mock, 1)

		err := ls.Log(SystemLog{
			Level:     LevelInfo,
			Service:   "database",
			UserID:    ptrStr("u-7"),
			Action:    "ARCHIVE_DATABASE",
			Message:   "Database archived : Contacts",
			EntityIDs: IDList{"db-1"},
		}, nil)

		if err != nil {
			t.Fatalf("expected nil err, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("metadata json", func(t *testing.T) {
		db, mock, cleanup := newMockGorm(t)
		defer cleanup()

		ls := &LogService{DB: db}
		expectInsert(mock, 2)

		err := ls.Log(SystemLog{
			Level:   LevelWarn,
			Service: "archive",
			Action:  "BULK_PURGE_ROWS",
			Message: "2 rows purged",
		}, map[string]any{"count": 2})

		if err != nil {
			t.Fatalf("expected nil err, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("metadata marshal fails (ignored)", func(t *testing.T) {
		db, mock, cleanup := newMockGorm(t)
		defer cleanup()

		ls := &LogService{DB: db}
		expectInsert(mock, 3)

		err := ls.Log(SystemLog{
			Level:   LevelInfo,
			Service: "form",
			Action:  "RESTORE_FORM",
			Message: "msg",
		}, func() {})

		if err != nil {
			t.Fatalf("expected nil err, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})

	t.Run("insert fails", func(t *testing.T) {
		db, mock, cleanup := newMockGorm(t)
		defer cleanup()

		ls := &LogService{DB: db}
		mock.ExpectQuery(`INSERT INTO "logs"`).WillReturnError(errors.New("insert failed"))

		if err := ls.Log(SystemLog{Level: LevelInfo, Service: "x", Action: "y", Message: "z"}, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLogService_GetLogs_InvalidDateRange_ReturnsError(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()
	_ = mock

	ls := &LogService{DB: db}

	start := "bad-date"
	_, _, _, _, err := ls.GetLogs(LogFilterInput{StartDate: &start, Page: 1, PageSize: 10})
	if err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestLogService_GetLogs_CountError_ReturnsError(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	ls := &LogService{DB: db}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "logs"`).
		WillReturnError(errors.New("count failed"))

	_, _, _, _, err := ls.GetLogs(LogFilterInput{Page: 1, PageSize: 10})
	if err == nil || err.Error() != "count failed" {
		t.Fatalf("expected count failed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLogService_GetLogs_HappyPath_WithAggregates(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	ls := &LogService{DB: db}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "logs" WHERE .*logs\.entity_ids AS TEXT\) LIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	cols := []string{"id", "level", "service", "user_id", "action", "message", "entity_ids", "metadata", "created_at"}
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "logs" WHERE .* ORDER BY logs\.created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "INFO", "database", "u1", "ARCHIVE_DATABASE", "ok", []byte(`{db-1,db-2}`), []byte(`{"rows":4}`), now).
			AddRow(2, "WARN", "database", nil, "PURGE_DATABASE", "gone", []byte(`{db-1}`), nil, now.Add(-time.Minute)))

	mock.ExpectQuery(`SELECT logs\.action AS label, COUNT\(\*\) AS count FROM "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).
			AddRow("ARCHIVE_DATABASE", 2).
			AddRow("PURGE_DATABASE", 1))

	mock.ExpectQuery(`SELECT logs\.service AS label, COUNT\(\*\) AS count FROM "logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"label", "count"}).AddRow("database", 3))

	entity := "db-1"
	rows, aggs, total, totalPages, err := ls.GetLogs(LogFilterInput{
		EntityID: &entity,
		Page:     1,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total=3 got %d", total)
	}
	if totalPages != 2 {
		t.Fatalf("expected totalPages=2 got %d", totalPages)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rows))
	}
	if len(rows[0].EntityIDs) != 2 || rows[0].EntityIDs[1] != "db-2" {
		t.Fatalf("entity ids not scanned: %#v", rows[0].EntityIDs)
	}
	if rows[1].UserID != nil {
		t.Fatalf("expected nil user id, got %v", *rows[1].UserID)
	}

	if len(aggs.ByAction) != 2 || aggs.ByAction[0].Label != "ARCHIVE_DATABASE" || aggs.ByAction[0].Count != 2 {
		t.Fatalf("unexpected ByAction: %#v", aggs.ByAction)
	}
	if len(aggs.ByService) != 1 || aggs.ByService[0].Count != 3 {
		t.Fatalf("unexpected ByService: %#v", aggs.ByService)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func ptrStr(s string) *string { return &s }

package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGSettingsSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO settings`).
		WithArgs("theme", "dark").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow("theme", "dark", now))

	repo := &PGSettingsRepo{DB: db}
	s, err := repo.Set(context.Background(), "theme", "dark")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Key != "theme" || s.Value != "dark" {
		t.Fatalf("unexpected setting: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGSettingsGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT key, value, updated_at FROM settings`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	repo := &PGSettingsRepo{DB: db}
	_, err = repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}
}

func TestPGAnalyticsSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"users", "documents", "suggestions", "avg"}).
			AddRow(int64(4), int64(9), int64(21), 87.5))
	mock.ExpectQuery(`FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-05-01", int64(3)).
			AddRow("2026-05-02", int64(6)))
	mock.ExpectQuery(`GROUP BY file_type`).
		WillReturnRows(sqlmock.NewRows([]string{"file_type", "count"}).
			AddRow("pdf", int64(7)).
			AddRow("docx", int64(2)))

	repo := &PGAnalyticsRepo{DB: db}
	snap, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.TotalUsers != 4 || snap.TotalDocuments != 9 || snap.TotalSuggestions != 21 {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	if snap.AverageOriginalityScore == nil || *snap.AverageOriginalityScore != 87.5 {
		t.Fatalf("unexpected average: %+v", snap.AverageOriginalityScore)
	}
	if len(snap.UploadsPerDay) != 2 || snap.UploadsPerDay[1].Count != 6 {
		t.Fatalf("unexpected uploads: %+v", snap.UploadsPerDay)
	}
	if snap.FileTypeCounts["pdf"] != 7 {
		t.Fatalf("unexpected file type counts: %+v", snap.FileTypeCounts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

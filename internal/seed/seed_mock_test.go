package seed

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRunRollsBackOnInsertFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO rate_snapshots").WillReturnError(errors.New("readonly database"))
	mock.ExpectRollback()

	stats, err := Run(database)
	if err == nil {
		t.Fatalf("expected seed error")
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts to be reported, got %d", stats.Inserts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunSkipsWhenSnapshotsExist(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	defer database.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	stats, err := Run(database)
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", stats.Inserts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

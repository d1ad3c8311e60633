package db_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/atinyakov/gophauth/internal/db"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "some=random", "ping postgres"},
		{"empty DSN", "", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.InitPostgres(context.Background(), tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestApplySchema(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta(db.Schema)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := db.ApplySchema(context.Background(), conn); err != nil {
		t.Fatalf("ApplySchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestApplySchema_Error(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta(db.Schema)).WillReturnError(errors.New("permission denied"))

	err = db.ApplySchema(context.Background(), conn)
	if err == nil || !strings.Contains(err.Error(), "create schema") {
		t.Fatalf("ApplySchema error = %v; want create schema failure", err)
	}
}

func TestSchema_EnforcesUniqueUsername(t *testing.T) {
	if !strings.Contains(db.Schema, "username TEXT UNIQUE NOT NULL") {
		t.Error("schema must declare a unique, non-null username column")
	}
}

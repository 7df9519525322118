package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var reviewRowColumns = []string{
	"id", "project_id", "stage", "reviewer_id", "decision", "score", "comments", "state",
	"created_at", "updated_at", "completed_at",
}

var projectRowColumns = []string{
	"id", "title", "description", "lead_id", "current_stage", "status",
	"budget_planned", "budget_spent", "currency", "created_at", "updated_at",
}

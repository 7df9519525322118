package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"stagegate/internal/gate"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
	"stagegate/internal/services"
)

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

func newReviewHandler(db *sql.DB) *ReviewHandler {
	svc := services.NewReviewService(db,
		repositories.NewReviewRepository(db),
		repositories.NewProjectRepository(db))
	notifier := services.NewNotificationService(
		repositories.NewNotificationRepository(db),
		repositories.NewActivityRepository(db),
		repositories.NewUserRepository(db),
		nil,
		services.NewTelegramService(""))
	return NewReviewHandler(svc, notifier)
}

func userRow(id int, email string) *sqlmock.Rows {
	now := time.Now()
	cols := []string{
		"id", "full_name", "email", "department", "password_hash", "role_id",
		"refresh_token", "refresh_expires_at", "refresh_revoked",
		"telegram_chat_id", "notify_telegram", "created_at",
	}
	return sqlmock.NewRows(cols).
		AddRow(id, "Dana Reviewer", email, "materials", "x", 30, nil, nil, false, 0, false, now)
}

func createdAtRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now())
}

// A RECYCLE outcome does not move the project, but it is still a gate
// outcome: the activity log and the recipients must hear about it.
func TestDispatchSendsRecycleOutcome(t *testing.T) {
	db, mock := newMockDB(t)
	h := newReviewHandler(db)

	now := time.Now()
	decision := gate.DecisionRecycle
	result := &services.GateResult{
		Review: &models.GateReview{
			ID: 5, ProjectID: 1, Stage: gate.StageConcept, ReviewerID: 7,
			Decision: &decision, State: models.ReviewCompleted,
			CreatedAt: now, UpdatedAt: now,
		},
		Project: &models.Project{
			ID: 1, Title: "Solid-state batteries", LeadID: 3,
			CurrentStage: gate.StageConcept, Status: gate.StatusActive,
		},
		Stage:    gate.StageConcept,
		Decision: gate.DecisionRecycle,
		Changed:  false,
		Effects: []gate.Effect{
			{Action: "gate_recycled", Detail: "gate decision RECYCLE at STAGE_0: project stays for rework"},
		},
	}

	// review_completed activity entry
	mock.ExpectQuery(`INSERT INTO activity_log`).
		WithArgs(sqlmock.AnyArg(), 1, 7, "review_completed", "completed").
		WillReturnRows(createdAtRow())
	// recipients: lead + everyone with a review row at the stage
	mock.ExpectQuery(`SELECT reviewer_id FROM gate_reviews`).
		WithArgs(1, "STAGE_0").
		WillReturnRows(sqlmock.NewRows([]string{"reviewer_id"}).AddRow(7))
	// gate_recycled activity entry
	mock.ExpectQuery(`INSERT INTO activity_log`).
		WithArgs(sqlmock.AnyArg(), 1, 7, "gate_recycled", sqlmock.AnyArg()).
		WillReturnRows(createdAtRow())
	// stored notification + user lookup, per recipient (lead 3, reviewer 7)
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(3, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(userRow(3, "lead@lab.example"))
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(7, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, now))
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(userRow(7, "dana@lab.example"))

	h.dispatch(7, result)
}

func TestDispatchSkipsWhenGateDidNotRun(t *testing.T) {
	db, mock := newMockDB(t)
	h := newReviewHandler(db)

	result := &services.GateResult{
		Review: &models.GateReview{
			ID: 5, ProjectID: 1, Stage: gate.StageConcept, ReviewerID: 7,
			State: models.ReviewCompleted,
		},
		Project: &models.Project{ID: 1, LeadID: 3, CurrentStage: gate.StagePlanning},
		Stage:   gate.StageConcept,
	}

	// only the review_completed entry; no effects means no fan-out
	mock.ExpectQuery(`INSERT INTO activity_log`).
		WithArgs(sqlmock.AnyArg(), 1, 7, "review_completed", "completed").
		WillReturnRows(createdAtRow())

	h.dispatch(7, result)
}

func TestReviewErrStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, reviewErrStatus(services.ErrProjectNotFound))
	assert.Equal(t, http.StatusNotFound, reviewErrStatus(services.ErrReviewNotFound))
	assert.Equal(t, http.StatusForbidden, reviewErrStatus(services.ErrNotYourReview))
	assert.Equal(t, http.StatusForbidden, reviewErrStatus(services.ErrForbidden))
	// wrapped sentinel keeps its status
	assert.Equal(t, http.StatusForbidden, reviewErrStatus(
		fmt.Errorf("%w: only gatekeepers can decide a gate", services.ErrForbidden)))
	assert.Equal(t, http.StatusConflict, reviewErrStatus(services.ErrReviewFinalized))
	assert.Equal(t, http.StatusBadRequest, reviewErrStatus(errors.New("unknown decision")))
}

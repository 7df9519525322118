package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagegate/internal/authz"
	"stagegate/internal/gate"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
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

func newReviewService(db *sql.DB) *ReviewService {
	return NewReviewService(db,
		repositories.NewReviewRepository(db),
		repositories.NewProjectRepository(db))
}

var reviewCols = []string{
	"id", "project_id", "stage", "reviewer_id", "decision", "score", "comments", "state",
	"created_at", "updated_at", "completed_at",
}

var projectCols = []string{
	"id", "title", "description", "lead_id", "current_stage", "status",
	"budget_planned", "budget_spent", "currency", "created_at", "updated_at",
}

func assignedReviewRow(id, projectID int, stage string, reviewerID int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reviewCols).
		AddRow(id, projectID, stage, reviewerID, nil, nil, "", "assigned", now, now, nil)
}

func activeProjectRow(id int, stage string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(projectCols).
		AddRow(id, "Solid-state batteries", "next-gen cells", 3, stage, "ACTIVE",
			250000.0, 40000.0, "EUR", now, now)
}

func decisionRows(decisions ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"decision"})
	for _, d := range decisions {
		rows.AddRow(d)
	}
	return rows
}

func TestCompleteAdvancesOnUnanimousGo(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_1", 7))
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM projects WHERE id=\$1 FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_1"))
	mock.ExpectExec(`UPDATE gate_reviews`).
		WithArgs("GO", nil, "strong feasibility case", "completed", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_1", "completed").
		WillReturnRows(decisionRows("GO"))
	mock.ExpectExec(`UPDATE projects SET current_stage=\$1, status=\$2`).
		WithArgs("STAGE_2", "ACTIVE", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), actor, 5, ReviewInput{
		Decision: "GO",
		Comments: "strong feasibility case",
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, gate.DecisionGo, result.Decision)
	assert.Equal(t, gate.StagePlanning, result.Stage)
	assert.Equal(t, gate.StageFeasibility, result.Project.CurrentStage)
	assert.Equal(t, gate.StatusActive, result.Project.Status)
	assert.Equal(t, models.ReviewCompleted, result.Review.State)
	assert.NotEmpty(t, result.Effects)
}

func TestCompleteStopTerminatesProject(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_1", 7))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_1"))
	mock.ExpectExec(`UPDATE gate_reviews`).
		WithArgs("STOP", nil, "no viable market", "completed", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_1", "completed").
		WillReturnRows(decisionRows("GO", "STOP"))
	mock.ExpectExec(`UPDATE projects SET current_stage=\$1, status=\$2`).
		WithArgs("STAGE_1", "TERMINATED", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), actor, 5, ReviewInput{
		Decision: "STOP",
		Comments: "no viable market",
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, gate.DecisionStop, result.Decision)
	assert.Equal(t, gate.StagePlanning, result.Project.CurrentStage)
	assert.Equal(t, gate.StatusTerminated, result.Project.Status)
}

func TestCompleteRecycleLeavesProjectInPlace(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_0", 7))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_0"))
	mock.ExpectExec(`UPDATE gate_reviews`).
		WithArgs("RECYCLE", nil, "needs a sharper problem statement", "completed", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_0", "completed").
		WillReturnRows(decisionRows("RECYCLE", "RECYCLE"))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), actor, 5, ReviewInput{
		Decision: "RECYCLE",
		Comments: "needs a sharper problem statement",
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, gate.DecisionRecycle, result.Decision)
	assert.Equal(t, gate.StageConcept, result.Project.CurrentStage)
	assert.Equal(t, gate.StatusActive, result.Project.Status)
	assert.NotEmpty(t, result.Effects)
}

func TestCompleteStaleStageNeverMovesGate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	// The review was assigned at STAGE_0 but the project has advanced since.
	// The completion is recorded, the gate does not run.
	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_0", 7))
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_1"))
	mock.ExpectExec(`UPDATE gate_reviews`).
		WithArgs("GO", nil, "late submission", "completed", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Complete(context.Background(), actor, 5, ReviewInput{
		Decision: "GO",
		Comments: "late submission",
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, gate.StagePlanning, result.Project.CurrentStage)
	assert.Empty(t, result.Effects)
}

func TestCompleteRejectsForeignReview(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_1", 9))

	_, err := svc.Complete(context.Background(), actor, 5, ReviewInput{Decision: "GO"})
	assert.ErrorIs(t, err, ErrNotYourReview)
}

func TestCompleteRejectsUnknownDecision(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(assignedReviewRow(5, 1, "STAGE_1", 7))

	_, err := svc.Complete(context.Background(), actor, 5, ReviewInput{Decision: "MAYBE"})
	assert.Error(t, err)
}

func TestDecideIndeterminateWithoutCompletedReviews(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_1"))
	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_1", "completed").
		WillReturnRows(decisionRows())
	mock.ExpectRollback()

	_, err := svc.Decide(context.Background(), actor, 1, nil)
	assert.ErrorIs(t, err, gate.ErrNoCompletedReviews)
}

func TestDecideOverrideHoldsProject(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(activeProjectRow(1, "STAGE_1"))
	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_1", "completed").
		WillReturnRows(decisionRows())
	mock.ExpectExec(`UPDATE projects SET current_stage=\$1, status=\$2`).
		WithArgs("STAGE_1", "ON_HOLD", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	override := "HOLD"
	result, err := svc.Decide(context.Background(), actor, 1, &override)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, gate.DecisionHold, result.Decision)
	assert.Equal(t, gate.StatusOnHold, result.Project.Status)
	assert.Equal(t, gate.StagePlanning, result.Project.CurrentStage)
}

func TestGateOperationsRequireGatekeeper(t *testing.T) {
	db, _ := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleResearcher}

	_, err := svc.Decide(context.Background(), actor, 1, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.Assign(actor, 1, 9)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Start(actor, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGateTransactionIsSerializable(t *testing.T) {
	// Complete and Decide both open their transaction with these options;
	// anything weaker would let two concurrent completions each observe the
	// pre-transition stage and advance the project twice.
	assert.Equal(t, sql.LevelSerializable, gateTxOpts.Isolation)
}

func TestSaveDraftRejectsCompletedReview(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newReviewService(db)
	actor := Actor{UserID: 7, RoleID: authz.RoleGatekeeper}

	now := time.Now()
	mock.ExpectQuery(`FROM gate_reviews WHERE id=\$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow(5, 1, "STAGE_1", 7, "GO", 8, "done", "completed", now, now, now))

	_, err := svc.SaveDraft(actor, 5, ReviewInput{Comments: "afterthought"})
	assert.ErrorIs(t, err, ErrReviewFinalized)
}

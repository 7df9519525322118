package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagegate/internal/gate"
	"stagegate/internal/models"
)

func TestFindOrCreateReturnsExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM gate_reviews WHERE project_id=\$1 AND stage=\$2 AND reviewer_id=\$3`).
		WithArgs(1, "STAGE_1", 7).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).
			AddRow(5, 1, "STAGE_1", 7, "GO", 8, "looks solid", "completed", now, now, now))

	rv, err := repo.FindOrCreate(1, gate.StagePlanning, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, rv.ID)
	assert.Equal(t, gate.StagePlanning, rv.Stage)
	assert.Equal(t, models.ReviewCompleted, rv.State)
	require.NotNil(t, rv.Decision)
	assert.Equal(t, gate.DecisionGo, *rv.Decision)
	require.NotNil(t, rv.Score)
	assert.Equal(t, 8, *rv.Score)
	assert.NotNil(t, rv.CompletedAt)
}

func TestFindOrCreateInsertsWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM gate_reviews WHERE project_id=\$1 AND stage=\$2 AND reviewer_id=\$3`).
		WithArgs(1, "STAGE_0", 7).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns))
	mock.ExpectQuery(`INSERT INTO gate_reviews`).
		WithArgs(1, "STAGE_0", 7, "assigned", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	rv, err := repo.FindOrCreate(1, gate.StageConcept, 7)
	require.NoError(t, err)
	assert.Equal(t, 42, rv.ID)
	assert.Equal(t, models.ReviewAssigned, rv.State)
	assert.Nil(t, rv.Decision)
	assert.Nil(t, rv.CompletedAt)
}

func TestCompleteRequiresDecision(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewReviewRepository(db)

	err := repo.Complete(db, &models.GateReview{ID: 5})
	assert.Error(t, err)
}

func TestCompletedDecisionsSkipsDrafts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT decision FROM gate_reviews`).
		WithArgs(1, "STAGE_2", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"decision"}).AddRow("GO").AddRow("RECYCLE"))

	decisions, err := repo.CompletedDecisions(db, 1, gate.StageFeasibility)
	require.NoError(t, err)
	assert.Equal(t, []gate.Decision{gate.DecisionGo, gate.DecisionRecycle}, decisions)
}

func TestReviewerIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(`SELECT reviewer_id FROM gate_reviews`).
		WithArgs(3, "STAGE_1").
		WillReturnRows(sqlmock.NewRows([]string{"reviewer_id"}).AddRow(7).AddRow(9))

	ids, err := repo.ReviewerIDs(3, gate.StagePlanning)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 9}, ids)
}

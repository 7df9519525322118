package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"stagegate/internal/gate"
	"stagegate/internal/models"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, project_id, stage, reviewer_id, decision, score, comments, state,
		created_at, updated_at, completed_at`

func scanReview(row interface{ Scan(...interface{}) error }) (*models.GateReview, error) {
	rv := &models.GateReview{}
	var (
		stage       string
		decision    sql.NullString
		score       sql.NullInt64
		state       string
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&rv.ID, &rv.ProjectID, &stage, &rv.ReviewerID, &decision, &score, &rv.Comments, &state,
		&rv.CreatedAt, &rv.UpdatedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	st, err := gate.ParseStage(stage)
	if err != nil {
		return nil, fmt.Errorf("review %d: %w", rv.ID, err)
	}
	rv.Stage = st
	rv.State = models.ReviewState(state)
	if decision.Valid {
		d := gate.Decision(decision.String)
		rv.Decision = &d
	}
	if score.Valid {
		n := int(score.Int64)
		rv.Score = &n
	}
	if completedAt.Valid {
		t := completedAt.Time
		rv.CompletedAt = &t
	}
	return rv, nil
}

// FindOrCreate returns the single review row for (project, stage, reviewer),
// creating it in the "assigned" state when it does not exist yet. The natural
// key is resolved with an explicit select-then-insert rather than an engine
// upsert.
func (r *ReviewRepository) FindOrCreate(projectID int, stage gate.Stage, reviewerID int) (*models.GateReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM gate_reviews WHERE project_id=$1 AND stage=$2 AND reviewer_id=$3`
	rv, err := scanReview(r.db.QueryRow(query, projectID, stage.String(), reviewerID))
	if err == nil {
		return rv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	const insert = `
		INSERT INTO gate_reviews (project_id, stage, reviewer_id, state, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		RETURNING id
	`
	now := time.Now()
	rv = &models.GateReview{
		ProjectID:  projectID,
		Stage:      stage,
		ReviewerID: reviewerID,
		State:      models.ReviewAssigned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.QueryRow(insert, projectID, stage.String(), reviewerID, string(models.ReviewAssigned), now).Scan(&rv.ID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *ReviewRepository) GetByID(id int) (*models.GateReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM gate_reviews WHERE id=$1`
	return scanReview(r.db.QueryRow(query, id))
}

// SaveDraft stores work-in-progress values without completing the review.
func (r *ReviewRepository) SaveDraft(rv *models.GateReview) error {
	const query = `
		UPDATE gate_reviews
		SET decision=$1, score=$2, comments=$3, state=$4, updated_at=now()
		WHERE id=$5
	`
	var decision interface{}
	if rv.Decision != nil {
		decision = string(*rv.Decision)
	}
	var score interface{}
	if rv.Score != nil {
		score = *rv.Score
	}
	_, err := r.db.Exec(query, decision, score, rv.Comments, string(models.ReviewDraftSaved), rv.ID)
	return err
}

// Complete marks the review completed, overwriting decision/score/comments.
// Re-completion updates the same row; the natural key guarantees no
// duplicates. Runs on the Queryer so it can join the gate transaction.
func (r *ReviewRepository) Complete(q Queryer, rv *models.GateReview) error {
	const query = `
		UPDATE gate_reviews
		SET decision=$1, score=$2, comments=$3, state=$4, completed_at=now(), updated_at=now()
		WHERE id=$5
	`
	if rv.Decision == nil {
		return errors.New("decision is required to complete a review")
	}
	var score interface{}
	if rv.Score != nil {
		score = *rv.Score
	}
	_, err := q.Exec(query, string(*rv.Decision), score, rv.Comments, string(models.ReviewCompleted), rv.ID)
	return err
}

// CompletedDecisions reads the decisions of all completed reviews for the
// project's stage. Run inside the gate transaction (after the project row
// lock) so aggregation sees a stable set.
func (r *ReviewRepository) CompletedDecisions(q Queryer, projectID int, stage gate.Stage) ([]gate.Decision, error) {
	const query = `
		SELECT decision FROM gate_reviews
		WHERE project_id=$1 AND stage=$2 AND state=$3 AND decision IS NOT NULL
	`
	rows, err := q.Query(query, projectID, stage.String(), string(models.ReviewCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gate.Decision
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, gate.Decision(d))
	}
	return out, rows.Err()
}

func (r *ReviewRepository) ListByProjectStage(projectID int, stage gate.Stage) ([]*models.GateReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM gate_reviews WHERE project_id=$1 AND stage=$2 ORDER BY id`
	return r.queryReviews(query, projectID, stage.String())
}

func (r *ReviewRepository) ListByReviewer(reviewerID, limit, offset int) ([]*models.GateReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM gate_reviews WHERE reviewer_id=$1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	return r.queryReviews(query, reviewerID, limit, offset)
}

// ReviewerIDs returns every reviewer with a review row for the stage,
// used to fan out gate-outcome notifications.
func (r *ReviewRepository) ReviewerIDs(projectID int, stage gate.Stage) ([]int, error) {
	const query = `SELECT reviewer_id FROM gate_reviews WHERE project_id=$1 AND stage=$2`
	rows, err := r.db.Query(query, projectID, stage.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ReviewRepository) queryReviews(query string, args ...interface{}) ([]*models.GateReview, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.GateReview
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

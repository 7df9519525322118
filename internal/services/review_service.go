package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stagegate/internal/authz"
	"stagegate/internal/gate"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotYourReview   = errors.New("review belongs to another reviewer")
	ErrReviewFinalized = errors.New("review is already completed")
	ErrForbidden       = errors.New("insufficient role")
)

// ReviewInput carries the reviewer's evaluation. Decision is required for
// completion, optional for drafts.
type ReviewInput struct {
	Decision string `json:"decision"`
	Score    *int   `json:"score"`
	Comments string `json:"comments"`
}

// GateResult reports what a completion or forced gate decision did to the
// project. Effects are dispatched by the caller after commit.
type GateResult struct {
	Review   *models.GateReview `json:"review,omitempty"`
	Project  *models.Project    `json:"project"`
	Stage    gate.Stage         `json:"gate_stage" swaggertype:"string"` // the stage the gate was decided at
	Decision gate.Decision      `json:"aggregate_decision,omitempty"`
	Changed  bool               `json:"changed"`
	Effects  []gate.Effect      `json:"-"`
}

// gateTxOpts: completion and forced decisions read-aggregate-write under
// serializable isolation, on top of the project row lock, so two reviewers
// finishing at once cannot double-advance a project.
var gateTxOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}

type ReviewService struct {
	db       *sql.DB
	Reviews  *repositories.ReviewRepository
	Projects *repositories.ProjectRepository
}

func NewReviewService(db *sql.DB, reviews *repositories.ReviewRepository, projects *repositories.ProjectRepository) *ReviewService {
	return &ReviewService{db: db, Reviews: reviews, Projects: projects}
}

// Assign creates (or returns) the review row for a reviewer at the project's
// current stage. Gatekeeper-only.
func (s *ReviewService) Assign(actor Actor, projectID, reviewerID int) (*models.GateReview, *models.Project, error) {
	if !authz.CanGatekeep(actor.RoleID) {
		return nil, nil, fmt.Errorf("%w: only gatekeepers can assign reviewers", ErrForbidden)
	}
	project, err := s.Projects.GetByID(projectID)
	if err != nil {
		return nil, nil, ErrProjectNotFound
	}
	review, err := s.Reviews.FindOrCreate(projectID, project.CurrentStage, reviewerID)
	if err != nil {
		return nil, nil, err
	}
	return review, project, nil
}

// Start is the ad hoc path: a gatekeeper opens their own review for the
// current stage without a prior assignment.
func (s *ReviewService) Start(actor Actor, projectID int) (*models.GateReview, error) {
	if !authz.CanGatekeep(actor.RoleID) {
		return nil, fmt.Errorf("%w: only gatekeepers can conduct gate reviews", ErrForbidden)
	}
	project, err := s.Projects.GetByID(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	return s.Reviews.FindOrCreate(projectID, project.CurrentStage, actor.UserID)
}

// SaveDraft stores work-in-progress values. Rejected once the review is
// completed: a completed review changes only through Complete.
func (s *ReviewService) SaveDraft(actor Actor, reviewID int, input ReviewInput) (*models.GateReview, error) {
	review, err := s.Reviews.GetByID(reviewID)
	if err != nil {
		return nil, ErrReviewNotFound
	}
	if review.ReviewerID != actor.UserID {
		return nil, ErrNotYourReview
	}
	if review.Completed() {
		return nil, ErrReviewFinalized
	}
	if input.Decision != "" {
		d, err := gate.ParseDecision(input.Decision)
		if err != nil {
			return nil, err
		}
		review.Decision = &d
	}
	review.Score = input.Score
	review.Comments = input.Comments
	if err := s.Reviews.SaveDraft(review); err != nil {
		return nil, err
	}
	review.State = models.ReviewDraftSaved
	return review, nil
}

// Complete submits the review and runs the aggregate-and-transition step in
// one serializable transaction locked on the project row, so two reviewers
// finishing at once cannot double-advance the project. Completion is
// idempotent: re-submitting overwrites the same row.
func (s *ReviewService) Complete(ctx context.Context, actor Actor, reviewID int, input ReviewInput) (*GateResult, error) {
	review, err := s.Reviews.GetByID(reviewID)
	if err != nil {
		return nil, ErrReviewNotFound
	}
	if review.ReviewerID != actor.UserID {
		return nil, ErrNotYourReview
	}
	decision, err := gate.ParseDecision(input.Decision)
	if err != nil {
		return nil, err
	}
	review.Decision = &decision
	review.Score = input.Score
	review.Comments = input.Comments

	tx, err := s.db.BeginTx(ctx, gateTxOpts)
	if err != nil {
		return nil, fmt.Errorf("begin gate transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	project, err := s.Projects.GetForUpdate(tx, review.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	if err := s.Reviews.Complete(tx, review); err != nil {
		return nil, err
	}
	review.State = models.ReviewCompleted

	result := &GateResult{Review: review, Project: project, Stage: review.Stage}

	// Reviews left over from an earlier stage never move the gate.
	if review.Stage == project.CurrentStage {
		if err := s.aggregateLocked(tx, project, nil, result); err != nil && !errors.Is(err, gate.ErrNoCompletedReviews) {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit gate transaction: %w", err)
	}
	return result, nil
}

// Decide forces aggregation for the project's current stage, optionally with
// a gatekeeper override decision. With no completed reviews and no override
// the gate is indeterminate and gate.ErrNoCompletedReviews comes back.
func (s *ReviewService) Decide(ctx context.Context, actor Actor, projectID int, override *string) (*GateResult, error) {
	if !authz.CanGatekeep(actor.RoleID) {
		return nil, fmt.Errorf("%w: only gatekeepers can decide a gate", ErrForbidden)
	}
	var overrideDecision *gate.Decision
	if override != nil && *override != "" {
		d, err := gate.ParseDecision(*override)
		if err != nil {
			return nil, err
		}
		overrideDecision = &d
	}

	tx, err := s.db.BeginTx(ctx, gateTxOpts)
	if err != nil {
		return nil, fmt.Errorf("begin gate transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	project, err := s.Projects.GetForUpdate(tx, projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}

	result := &GateResult{Project: project}
	if err := s.aggregateLocked(tx, project, overrideDecision, result); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit gate transaction: %w", err)
	}
	return result, nil
}

// aggregateLocked reads the completed reviews for the locked project's
// current stage, aggregates them and writes the resulting stage/status.
// Must be called with the project row already locked in tx.
func (s *ReviewService) aggregateLocked(tx repositories.Queryer, project *models.Project, override *gate.Decision, result *GateResult) error {
	result.Stage = project.CurrentStage
	decisions, err := s.Reviews.CompletedDecisions(tx, project.ID, project.CurrentStage)
	if err != nil {
		return err
	}
	aggregate, err := gate.Aggregate(decisions, override)
	if err != nil {
		return err
	}
	result.Decision = aggregate

	out := gate.ApplyOutcome(project.CurrentStage, project.Status, aggregate)
	result.Effects = out.Effects
	if out.Stage == project.CurrentStage && out.Status == project.Status {
		return nil
	}
	if err := s.Projects.ApplyOutcome(tx, project.ID, out.Stage, out.Status); err != nil {
		return err
	}
	project.CurrentStage = out.Stage
	project.Status = out.Status
	result.Changed = true
	return nil
}

// GateRecipients lists who should hear about a gate outcome: the project
// lead plus everyone with a review row at the stage.
func (s *ReviewService) GateRecipients(project *models.Project, stage gate.Stage) []int {
	ids := []int{project.LeadID}
	reviewers, err := s.Reviews.ReviewerIDs(project.ID, stage)
	if err != nil {
		return ids
	}
	return append(ids, reviewers...)
}

func (s *ReviewService) GetByID(id int) (*models.GateReview, error) {
	return s.Reviews.GetByID(id)
}

func (s *ReviewService) ListForProject(projectID int) ([]*models.GateReview, error) {
	project, err := s.Projects.GetByID(projectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	return s.Reviews.ListByProjectStage(projectID, project.CurrentStage)
}

func (s *ReviewService) ListMine(actor Actor, limit, offset int) ([]*models.GateReview, error) {
	return s.Reviews.ListByReviewer(actor.UserID, limit, offset)
}

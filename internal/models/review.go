package models

import (
	"time"

	"stagegate/internal/gate"
)

// ReviewState is the per-reviewer lifecycle of a gate review. A review is
// created in "assigned", may loop through "draft_saved" any number of times
// and ends in "completed"; completion is terminal but idempotent (a
// re-submission overwrites decision/score/comments in place).
type ReviewState string

const (
	ReviewAssigned   ReviewState = "assigned"
	ReviewDraftSaved ReviewState = "draft_saved"
	ReviewCompleted  ReviewState = "completed"
)

// GateReview is one reviewer's scored evaluation of a project at a stage.
// There is at most one row per (project, stage, reviewer).
type GateReview struct {
	ID         int            `json:"id"`
	ProjectID  int            `json:"project_id"`
	Stage      gate.Stage     `json:"stage" swaggertype:"string"`
	ReviewerID int            `json:"reviewer_id"`
	Decision   *gate.Decision `json:"decision,omitempty"`
	Score      *int           `json:"score,omitempty"`
	Comments   string         `json:"comments"`
	State      ReviewState    `json:"state"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (r *GateReview) Completed() bool {
	return r.State == ReviewCompleted
}

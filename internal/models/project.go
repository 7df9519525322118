package models

import (
	"time"

	"stagegate/internal/gate"
)

// Project is a research project moving through the stage-gate pipeline.
type Project struct {
	ID           int                `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	LeadID       int                `json:"lead_id"`
	CurrentStage gate.Stage         `json:"current_stage" swaggertype:"string"`
	Status       gate.ProjectStatus `json:"status"`

	BudgetPlanned float64 `json:"budget_planned"`
	BudgetSpent   float64 `json:"budget_spent"`
	Currency      string  `json:"currency"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectFilter defines the available parameters for filtering projects in reports.
type ProjectFilter struct {
	Status string
	Stage  string
	LeadID int
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// ProjectMember is a user on a project team.
type ProjectMember struct {
	ProjectID int       `json:"project_id"`
	UserID    int       `json:"user_id"`
	Role      string    `json:"role"` // free-form team role, e.g. "statistician"
	AddedAt   time.Time `json:"added_at"`
}

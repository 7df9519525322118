package models

import "time"

// RedFlagSeverity grades how serious a raised issue is.
type RedFlagSeverity string

const (
	SeverityLow      RedFlagSeverity = "low"
	SeverityMedium   RedFlagSeverity = "medium"
	SeverityHigh     RedFlagSeverity = "high"
	SeverityCritical RedFlagSeverity = "critical"
)

// RedFlag is an issue raised against a project, independent of the gate
// workflow: it never moves the stage by itself.
type RedFlag struct {
	ID          int             `json:"id"`
	ProjectID   int             `json:"project_id"`
	RaisedBy    int             `json:"raised_by"`
	Severity    RedFlagSeverity `json:"severity"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"` // open | resolved
	CreatedAt   time.Time       `json:"created_at"`
	ResolvedBy  *int            `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
}

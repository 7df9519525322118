package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a stored, per-user message about a project event. Delivery
// over email/telegram is best-effort; the row is the source of truth.
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProjectID int       `json:"project_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityEntry is one append-only line of the project activity log.
type ActivityEntry struct {
	ID        uuid.UUID `json:"id"`
	ProjectID int       `json:"project_id"`
	ActorID   int       `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

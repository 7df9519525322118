package repositories

import (
	"database/sql"
	"log"

	"github.com/google/uuid"

	"stagegate/internal/models"
)

// ActivityRepository is the append-only project activity log. Writes are
// best-effort from the caller's point of view; there is no update or delete.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(e *models.ActivityEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	const query = `
		INSERT INTO activity_log (id, project_id, actor_id, action, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
		RETURNING created_at
	`
	return r.db.QueryRow(query, e.ID, e.ProjectID, e.ActorID, e.Action, e.Detail).Scan(&e.CreatedAt)
}

func (r *ActivityRepository) ListByProject(projectID, limit, offset int) ([]*models.ActivityEntry, error) {
	const query = `
		SELECT id, project_id, actor_id, action, detail, created_at
		FROM activity_log
		WHERE project_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ActivityEntry
	for rows.Next() {
		e := &models.ActivityEntry{}
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.ActorID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

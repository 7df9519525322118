package repositories

import (
	"database/sql"
	"log"

	"stagegate/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	const query = `
		INSERT INTO notifications (user_id, project_id, subject, body, read, created_at)
		VALUES ($1,$2,$3,$4,FALSE,now())
		RETURNING id, created_at
	`
	return r.db.QueryRow(query, n.UserID, n.ProjectID, n.Subject, n.Body).Scan(&n.ID, &n.CreatedAt)
}

func (r *NotificationRepository) ListByUser(userID, limit, offset int) ([]*models.Notification, error) {
	const query = `
		SELECT id, user_id, project_id, subject, body, read, created_at
		FROM notifications
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProjectID, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag; scoped to the owning user so one user cannot
// ack another's notifications.
func (r *NotificationRepository) MarkRead(id, userID int) error {
	res, err := r.db.Exec(`UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *NotificationRepository) CountUnread(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read=FALSE`, userID).Scan(&count)
	return count, err
}

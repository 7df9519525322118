package repositories

import (
	"database/sql"
	"time"

	"stagegate/internal/models"
)

type PasswordResetRepository interface {
	Create(userID int, token string, expiresAt time.Time) (int, error)
	GetByToken(token string) (*models.PasswordReset, error)
	MarkUsed(id int) error
}

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(userID int, token string, expiresAt time.Time) (int, error) {
	const q = `
		INSERT INTO password_resets (user_id, token, expires_at, created_at)
		VALUES ($1,$2,$3,now())
		RETURNING id
	`
	var id int
	err := r.db.QueryRow(q, userID, token, expiresAt).Scan(&id)
	return id, err
}

func (r *passwordResetRepository) GetByToken(token string) (*models.PasswordReset, error) {
	const q = `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_resets
		WHERE token=$1
	`
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.db.QueryRow(q, token).Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		pr.UsedAt = &t
	}
	return pr, nil
}

func (r *passwordResetRepository) MarkUsed(id int) error {
	_, err := r.db.Exec(`UPDATE password_resets SET used_at=now() WHERE id=$1`, id)
	return err
}

package repositories

import (
	"database/sql"
	"time"

	"stagegate/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	Update(user *models.User) error
	UpdatePassword(userID int, passwordHash string) error
	Delete(id int) error
	List(limit, offset int) ([]*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetCount() (int, error)
	GetCountByRole(roleID int) (int, error)

	// refresh helpers
	UpdateRefresh(userID int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	ClearRefresh(userID int) error
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			full_name, email, department, password_hash, role_id,
			refresh_token, refresh_expires_at, refresh_revoked,
			telegram_chat_id, notify_telegram, created_at
		)
		VALUES ($1,$2,$3,$4,$5,NULL,NULL,FALSE,$6,$7,now())
		RETURNING id, created_at
	`
	var chatID interface{}
	if user.TelegramChatID != 0 {
		chatID = user.TelegramChatID
	}
	return r.DB.QueryRow(q,
		user.FullName,
		user.Email,
		user.Department,
		user.PasswordHash,
		user.RoleID,
		chatID,
		user.NotifyTelegram,
	).Scan(&user.ID, &user.CreatedAt)
}

const userColumnsFull = `
		id, full_name, email, department, password_hash, role_id,
		refresh_token, refresh_expires_at, refresh_revoked,
		COALESCE(telegram_chat_id,0), notify_telegram, created_at`

func scanUserFull(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	var (
		rt  sql.NullString
		rte sql.NullTime
	)
	if err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.Department, &u.PasswordHash, &u.RoleID,
		&rt, &rte, &u.RefreshRevoked,
		&u.TelegramChatID, &u.NotifyTelegram, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	return u, nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT` + userColumnsFull + ` FROM users WHERE id = $1`
	return scanUserFull(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT` + userColumnsFull + ` FROM users WHERE email = $1`
	return scanUserFull(r.DB.QueryRow(q, email))
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET full_name=$1, email=$2, department=$3, role_id=$4,
			telegram_chat_id=$5, notify_telegram=$6
		WHERE id=$7
	`
	var chatID interface{}
	if user.TelegramChatID != 0 {
		chatID = user.TelegramChatID
	}
	_, err := r.DB.Exec(q,
		user.FullName, user.Email, user.Department, user.RoleID,
		chatID, user.NotifyTelegram, user.ID,
	)
	return err
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	return err
}

func (r *userRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *userRepository) List(limit, offset int) ([]*models.User, error) {
	q := `SELECT` + userColumnsFull + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.User
	for rows.Next() {
		u, err := scanUserFull(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *userRepository) GetCountByRole(roleID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role_id=$1`, roleID).Scan(&count)
	return count, err
}

func (r *userRepository) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, token, expiresAt, userID)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING id
	`
	var id int
	if err := r.DB.QueryRow(q, newToken, newExpiresAt, oldToken).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r.GetByID(id)
}

func (r *userRepository) ClearRefresh(userID int) error {
	const q = `
		UPDATE users
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1
	`
	_, err := r.DB.Exec(q, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT` + userColumnsFull + ` FROM users WHERE refresh_token = $1`
	u, err := scanUserFull(r.DB.QueryRow(q, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

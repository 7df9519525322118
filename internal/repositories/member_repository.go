package repositories

import (
	"database/sql"
	"log"

	"stagegate/internal/models"
)

type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Add(m *models.ProjectMember) error {
	const query = `
		INSERT INTO project_members (project_id, user_id, role, added_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.Exec(query, m.ProjectID, m.UserID, m.Role)
	return err
}

func (r *MemberRepository) Remove(projectID, userID int) error {
	res, err := r.db.Exec(`DELETE FROM project_members WHERE project_id=$1 AND user_id=$2`, projectID, userID)
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

func (r *MemberRepository) ListByProject(projectID int) ([]*models.ProjectMember, error) {
	const query = `
		SELECT project_id, user_id, role, added_at
		FROM project_members
		WHERE project_id=$1
		ORDER BY added_at
	`
	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ProjectMember
	for rows.Next() {
		m := &models.ProjectMember{}
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MemberRepository) IsMember(projectID, userID int) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM project_members WHERE project_id=$1 AND user_id=$2`, projectID, userID).Scan(&n)
	return n > 0, err
}

package repositories

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"stagegate/internal/gate"
	"stagegate/internal/models"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx so the stage-critical
// reads and writes can run inside the gate transaction.
type Queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &ProjectRepository{db: db}
}

// DB exposes the underlying handle for transaction control in services.
func (r *ProjectRepository) DB() *sql.DB { return r.db }

const projectColumns = `id, title, description, lead_id, current_stage, status,
		budget_planned, budget_spent, currency, created_at, updated_at`

func scanProject(row interface{ Scan(...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	var stage, status string
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.LeadID, &stage, &status,
		&p.BudgetPlanned, &p.BudgetSpent, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := gate.ParseStage(stage)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", p.ID, err)
	}
	p.CurrentStage = st
	p.Status = gate.ProjectStatus(status)
	return p, nil
}

func (r *ProjectRepository) Create(p *models.Project) error {
	const query = `
		INSERT INTO projects (title, description, lead_id, current_stage, status,
			budget_planned, budget_spent, currency, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
		RETURNING id
	`
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.QueryRow(query,
		p.Title, p.Description, p.LeadID, p.CurrentStage.String(), string(p.Status),
		p.BudgetPlanned, p.BudgetSpent, p.Currency, now,
	).Scan(&p.ID)
}

func (r *ProjectRepository) GetByID(id int) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`
	return scanProject(r.db.QueryRow(query, id))
}

// GetForUpdate locks the project row for the rest of the transaction so
// concurrent gate completions serialize on it.
func (r *ProjectRepository) GetForUpdate(q Queryer, id int) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1 FOR UPDATE`
	return scanProject(q.QueryRow(query, id))
}

func (r *ProjectRepository) Update(p *models.Project) error {
	const query = `
		UPDATE projects
		SET title=$1, description=$2, lead_id=$3,
			budget_planned=$4, budget_spent=$5, currency=$6, updated_at=now()
		WHERE id=$7
	`
	_, err := r.db.Exec(query,
		p.Title, p.Description, p.LeadID,
		p.BudgetPlanned, p.BudgetSpent, p.Currency, p.ID,
	)
	return err
}

// ApplyOutcome writes the stage/status computed by the gate core. It runs on
// the Queryer so the write shares the transaction that read the reviews.
func (r *ProjectRepository) ApplyOutcome(q Queryer, id int, stage gate.Stage, status gate.ProjectStatus) error {
	const query = `UPDATE projects SET current_stage=$1, status=$2, updated_at=now() WHERE id=$3`
	_, err := q.Exec(query, stage.String(), string(status), id)
	return err
}

// UpdateStatus is the explicit admin/portfolio status override; the stage is
// never touched here.
func (r *ProjectRepository) UpdateStatus(id int, status gate.ProjectStatus) error {
	const query = `UPDATE projects SET status=$1, updated_at=now() WHERE id=$2`
	_, err := r.db.Exec(query, string(status), id)
	return err
}

func (r *ProjectRepository) Delete(id int) error {
	const query = `DELETE FROM projects WHERE id=$1`
	_, err := r.db.Exec(query, id)
	return err
}

func (r *ProjectRepository) ListPaginated(limit, offset int) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryProjects(query, limit, offset)
}

func (r *ProjectRepository) ListByLead(leadID, limit, offset int) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE lead_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryProjects(query, leadID, limit, offset)
}

// ListByMember lists projects the user leads or is a team member of.
func (r *ProjectRepository) ListByMember(userID, limit, offset int) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE lead_id=$1
		   OR id IN (SELECT project_id FROM project_members WHERE user_id=$1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryProjects(query, userID, limit, offset)
}

func (r *ProjectRepository) queryProjects(query string, args ...interface{}) ([]*models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Filter(f models.ProjectFilter) ([]*models.Project, error) {
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := f.Order
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	allowed := map[string]bool{"created_at": true, "lead_id": true, "status": true, "current_stage": true, "budget_planned": true}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	args := []interface{}{}
	i := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, f.Status)
		i++
	}
	if f.Stage != "" {
		query += fmt.Sprintf(" AND current_stage = $%d", i)
		args = append(args, f.Stage)
		i++
	}
	if f.LeadID > 0 {
		query += fmt.Sprintf(" AND lead_id = $%d", i)
		args = append(args, f.LeadID)
		i++
	}

	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortBy, order, i, i+1)
	args = append(args, f.Limit, f.Offset)

	return r.queryProjects(query, args...)
}

func (r *ProjectRepository) CountProjects() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// CountsByStage aggregates the portfolio by current stage for reporting.
func (r *ProjectRepository) CountsByStage() (map[string]int, error) {
	return r.groupCounts(`SELECT current_stage, COUNT(*) FROM projects GROUP BY current_stage`)
}

func (r *ProjectRepository) CountsByStatus() (map[string]int, error) {
	return r.groupCounts(`SELECT status, COUNT(*) FROM projects GROUP BY status`)
}

func (r *ProjectRepository) groupCounts(query string) (map[string]int, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// BudgetTotals sums planned and spent budget across the portfolio.
func (r *ProjectRepository) BudgetTotals() (planned, spent float64, err error) {
	const query = `SELECT COALESCE(SUM(budget_planned),0), COALESCE(SUM(budget_spent),0) FROM projects`
	err = r.db.QueryRow(query).Scan(&planned, &spent)
	return planned, spent, err
}

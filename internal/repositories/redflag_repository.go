package repositories

import (
	"database/sql"
	"log"
	"time"

	"stagegate/internal/models"
)

type RedFlagRepository struct {
	db *sql.DB
}

func NewRedFlagRepository(db *sql.DB) *RedFlagRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &RedFlagRepository{db: db}
}

func (r *RedFlagRepository) Create(f *models.RedFlag) error {
	const query = `
		INSERT INTO red_flags (project_id, raised_by, severity, title, description, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`
	if f.Status == "" {
		f.Status = "open"
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	return r.db.QueryRow(query,
		f.ProjectID, f.RaisedBy, string(f.Severity), f.Title, f.Description, f.Status, f.CreatedAt,
	).Scan(&f.ID)
}

const redFlagColumns = `id, project_id, raised_by, severity, title, description, status, created_at, resolved_by, resolved_at`

func scanRedFlag(row interface{ Scan(...interface{}) error }) (*models.RedFlag, error) {
	f := &models.RedFlag{}
	var (
		severity   string
		resolvedBy sql.NullInt64
		resolvedAt sql.NullTime
	)
	if err := row.Scan(
		&f.ID, &f.ProjectID, &f.RaisedBy, &severity, &f.Title, &f.Description, &f.Status,
		&f.CreatedAt, &resolvedBy, &resolvedAt,
	); err != nil {
		return nil, err
	}
	f.Severity = models.RedFlagSeverity(severity)
	if resolvedBy.Valid {
		n := int(resolvedBy.Int64)
		f.ResolvedBy = &n
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		f.ResolvedAt = &t
	}
	return f, nil
}

func (r *RedFlagRepository) GetByID(id int) (*models.RedFlag, error) {
	query := `SELECT ` + redFlagColumns + ` FROM red_flags WHERE id=$1`
	return scanRedFlag(r.db.QueryRow(query, id))
}

func (r *RedFlagRepository) ListByProject(projectID int) ([]*models.RedFlag, error) {
	query := `SELECT ` + redFlagColumns + ` FROM red_flags WHERE project_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RedFlag
	for rows.Next() {
		f, err := scanRedFlag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *RedFlagRepository) Resolve(id, resolverID int) error {
	const query = `
		UPDATE red_flags
		SET status='resolved', resolved_by=$1, resolved_at=now()
		WHERE id=$2 AND status='open'
	`
	res, err := r.db.Exec(query, resolverID, id)
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

func (r *RedFlagRepository) CountOpen() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM red_flags WHERE status='open'`).Scan(&count)
	return count, err
}

// CountOpenByProject aggregates open flags per project for the summary report.
func (r *RedFlagRepository) CountOpenByProject() (map[int]int, error) {
	rows, err := r.db.Query(`SELECT project_id, COUNT(*) FROM red_flags WHERE status='open' GROUP BY project_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]int{}
	for rows.Next() {
		var projectID, n int
		if err := rows.Scan(&projectID, &n); err != nil {
			return nil, err
		}
		out[projectID] = n
	}
	return out, rows.Err()
}

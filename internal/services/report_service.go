package services

import (
	"stagegate/internal/models"
	"stagegate/internal/pdf"
	"stagegate/internal/repositories"
)

// PortfolioSummary is the aggregated view of the whole project portfolio.
type PortfolioSummary struct {
	TotalProjects int            `json:"total_projects"`
	ByStage       map[string]int `json:"by_stage"`
	ByStatus      map[string]int `json:"by_status"`
	OpenRedFlags  int            `json:"open_red_flags"`
	BudgetPlanned float64        `json:"budget_planned"`
	BudgetSpent   float64        `json:"budget_spent"`
}

type ReportService struct {
	Projects *repositories.ProjectRepository
	Flags    *repositories.RedFlagRepository
	PDF      pdf.Generator
}

func NewReportService(projects *repositories.ProjectRepository, flags *repositories.RedFlagRepository, gen pdf.Generator) *ReportService {
	return &ReportService{Projects: projects, Flags: flags, PDF: gen}
}

func (s *ReportService) GetSummary() (*PortfolioSummary, error) {
	total, err := s.Projects.CountProjects()
	if err != nil {
		return nil, err
	}
	byStage, err := s.Projects.CountsByStage()
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Projects.CountsByStatus()
	if err != nil {
		return nil, err
	}
	openFlags, err := s.Flags.CountOpen()
	if err != nil {
		return nil, err
	}
	planned, spent, err := s.Projects.BudgetTotals()
	if err != nil {
		return nil, err
	}
	return &PortfolioSummary{
		TotalProjects: total,
		ByStage:       byStage,
		ByStatus:      byStatus,
		OpenRedFlags:  openFlags,
		BudgetPlanned: planned,
		BudgetSpent:   spent,
	}, nil
}

func (s *ReportService) FilterProjects(f models.ProjectFilter) ([]*models.Project, error) {
	return s.Projects.Filter(f)
}

// GeneratePortfolioPDF renders the summary plus the filtered project list
// into a PDF under the files root and returns its path.
func (s *ReportService) GeneratePortfolioPDF() (string, error) {
	summary, err := s.GetSummary()
	if err != nil {
		return "", err
	}
	projects, err := s.Projects.Filter(models.ProjectFilter{Limit: 500})
	if err != nil {
		return "", err
	}

	data := pdf.PortfolioData{
		TotalProjects: summary.TotalProjects,
		ByStage:       summary.ByStage,
		ByStatus:      summary.ByStatus,
		OpenRedFlags:  summary.OpenRedFlags,
		BudgetPlanned: summary.BudgetPlanned,
		BudgetSpent:   summary.BudgetSpent,
	}
	for _, p := range projects {
		data.Rows = append(data.Rows, pdf.PortfolioRow{
			ID:     p.ID,
			Title:  p.Title,
			Stage:  p.CurrentStage.String(),
			Status: string(p.Status),
			Budget: p.BudgetPlanned,
		})
	}
	return s.PDF.GeneratePortfolioReport(data)
}

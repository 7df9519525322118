package services

import (
	"errors"
	"strings"
	"time"

	"stagegate/internal/authz"
	"stagegate/internal/gate"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
)

type ProjectService struct {
	Repo    *repositories.ProjectRepository
	Members *repositories.MemberRepository
}

func NewProjectService(repo *repositories.ProjectRepository, members *repositories.MemberRepository) *ProjectService {
	return &ProjectService{Repo: repo, Members: members}
}

func (s *ProjectService) Create(p *models.Project) error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if p.LeadID == 0 {
		return errors.New("lead_id is required")
	}
	// every project starts at the concept stage
	p.CurrentStage = gate.StageConcept
	if p.Status == "" {
		p.Status = gate.StatusActive
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return s.Repo.Create(p)
}

func (s *ProjectService) GetByID(id int) (*models.Project, error) {
	return s.Repo.GetByID(id)
}

// Update changes descriptive and budget fields only. Stage and status move
// through the gate workflow or the explicit status override.
func (s *ProjectService) Update(p *models.Project) error {
	return s.Repo.Update(p)
}

func (s *ProjectService) Delete(id int) error {
	return s.Repo.Delete(id)
}

func (s *ProjectService) ListPaginated(limit, offset int) ([]*models.Project, error) {
	return s.Repo.ListPaginated(limit, offset)
}

func (s *ProjectService) ListMy(userID, limit, offset int) ([]*models.Project, error) {
	return s.Repo.ListByMember(userID, limit, offset)
}

// OverrideStatus is the explicit admin action that moves status outside the
// gate workflow. The stage never changes here.
func (s *ProjectService) OverrideStatus(actor Actor, id int, to string) (*models.Project, error) {
	if !authz.IsElevated(actor.RoleID) {
		return nil, errors.New("only portfolio or admin roles can override project status")
	}
	status, err := gate.ParseProjectStatus(to)
	if err != nil {
		return nil, err
	}
	project, err := s.Repo.GetByID(id)
	if err != nil || project == nil {
		return nil, errors.New("project not found")
	}
	if err := s.Repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	project.Status = status
	return project, nil
}

// CanView checks read access: elevated and auditor roles see everything,
// everyone else only projects they lead, review or are a member of.
func (s *ProjectService) CanView(actor Actor, project *models.Project) bool {
	if authz.IsElevated(actor.RoleID) || authz.IsReadOnly(actor.RoleID) || authz.CanGatekeep(actor.RoleID) {
		return true
	}
	if project.LeadID == actor.UserID {
		return true
	}
	isMember, err := s.Members.IsMember(project.ID, actor.UserID)
	if err != nil {
		return false
	}
	return isMember
}

// CanManage checks write access to the project record itself.
func (s *ProjectService) CanManage(actor Actor, project *models.Project) bool {
	return project.LeadID == actor.UserID || authz.IsElevated(actor.RoleID)
}

func (s *ProjectService) AddMember(m *models.ProjectMember) error {
	if m.UserID == 0 {
		return errors.New("user_id is required")
	}
	return s.Members.Add(m)
}

func (s *ProjectService) RemoveMember(projectID, userID int) error {
	return s.Members.Remove(projectID, userID)
}

func (s *ProjectService) ListMembers(projectID int) ([]*models.ProjectMember, error) {
	return s.Members.ListByProject(projectID)
}

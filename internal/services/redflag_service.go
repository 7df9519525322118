package services

import (
	"errors"
	"strings"

	"stagegate/internal/models"
	"stagegate/internal/repositories"
)

type RedFlagService struct {
	Repo     *repositories.RedFlagRepository
	Projects *repositories.ProjectRepository
	Notifier *NotificationService
}

func NewRedFlagService(repo *repositories.RedFlagRepository, projects *repositories.ProjectRepository, notifier *NotificationService) *RedFlagService {
	return &RedFlagService{Repo: repo, Projects: projects, Notifier: notifier}
}

func (s *RedFlagService) Raise(actor Actor, flag *models.RedFlag) (*models.RedFlag, error) {
	if strings.TrimSpace(flag.Title) == "" {
		return nil, errors.New("title is required")
	}
	switch flag.Severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
	case "":
		flag.Severity = models.SeverityMedium
	default:
		return nil, errors.New("invalid severity")
	}

	project, err := s.Projects.GetByID(flag.ProjectID)
	if err != nil {
		return nil, ErrProjectNotFound
	}
	flag.RaisedBy = actor.UserID
	flag.Status = "open"
	if err := s.Repo.Create(flag); err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.NotifyRedFlag(project, flag)
	}
	return flag, nil
}

func (s *RedFlagService) Resolve(actor Actor, flagID int) (*models.RedFlag, error) {
	flag, err := s.Repo.GetByID(flagID)
	if err != nil {
		return nil, errors.New("red flag not found")
	}
	if err := s.Repo.Resolve(flagID, actor.UserID); err != nil {
		return nil, errors.New("red flag is not open")
	}
	if s.Notifier != nil {
		s.Notifier.LogActivity(flag.ProjectID, actor.UserID, "red_flag_resolved", flag.Title)
	}
	return s.Repo.GetByID(flagID)
}

func (s *RedFlagService) ListByProject(projectID int) ([]*models.RedFlag, error) {
	return s.Repo.ListByProject(projectID)
}

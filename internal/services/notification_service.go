package services

import (
	"fmt"
	"log"

	"stagegate/internal/gate"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
)

// NotificationService fans project events out to stored notifications, the
// activity log, email and Telegram. Everything here runs after the core
// mutation has committed and is best-effort: failures are logged, never
// propagated back to the caller.
type NotificationService struct {
	Repo     *repositories.NotificationRepository
	Activity *repositories.ActivityRepository
	Users    repositories.UserRepository
	Emails   EmailService
	Telegram *TelegramService
}

func NewNotificationService(
	repo *repositories.NotificationRepository,
	activity *repositories.ActivityRepository,
	users repositories.UserRepository,
	emails EmailService,
	telegram *TelegramService,
) *NotificationService {
	return &NotificationService{
		Repo:     repo,
		Activity: activity,
		Users:    users,
		Emails:   emails,
		Telegram: telegram,
	}
}

// DispatchGateEffects records the gate outcome in the activity log and
// notifies every recipient. Called post-commit with the effects collected by
// the transactional core.
func (s *NotificationService) DispatchGateEffects(project *models.Project, actorID int, effects []gate.Effect, recipientIDs []int) {
	for _, eff := range effects {
		s.LogActivity(project.ID, actorID, eff.Action, eff.Detail)
		for _, uid := range dedupe(recipientIDs) {
			s.notify(uid, project, fmt.Sprintf("Gate outcome: %s", project.Title), eff.Detail, true)
		}
	}
}

// NotifyAssignment tells a reviewer they have a gate review to do.
func (s *NotificationService) NotifyAssignment(project *models.Project, reviewerID int, stage gate.Stage) {
	s.LogActivity(project.ID, reviewerID, "reviewer_assigned",
		fmt.Sprintf("reviewer %d assigned at %s", reviewerID, stage))
	subject := fmt.Sprintf("Review assigned: %s", project.Title)
	body := fmt.Sprintf("You have been assigned to review %q at the %s gate.", project.Title, stage.Label())
	s.notify(reviewerID, project, subject, body, false)

	if s.Emails != nil {
		user, err := s.Users.GetByID(reviewerID)
		if err != nil {
			log.Printf("[notify] lookup reviewer %d failed: %v", reviewerID, err)
			return
		}
		if err := s.Emails.SendReviewAssignedEmail(user.Email, project.Title, project.CurrentStage.Label()); err != nil {
			log.Printf("[notify] assignment email to %s failed: %v", user.Email, err)
		}
	}
}

// NotifyRedFlag alerts the project lead about a newly raised flag.
func (s *NotificationService) NotifyRedFlag(project *models.Project, flag *models.RedFlag) {
	s.LogActivity(project.ID, flag.RaisedBy, "red_flag_raised",
		fmt.Sprintf("red flag %q raised (severity %s)", flag.Title, flag.Severity))
	subject := fmt.Sprintf("Red flag: %s", project.Title)
	body := fmt.Sprintf("%s (severity: %s)", flag.Title, flag.Severity)
	s.notify(project.LeadID, project, subject, body, false)

	if s.Emails != nil {
		lead, err := s.Users.GetByID(project.LeadID)
		if err != nil {
			log.Printf("[notify] lookup lead %d failed: %v", project.LeadID, err)
			return
		}
		if err := s.Emails.SendRedFlagEmail(lead.Email, project.Title, flag.Title, string(flag.Severity)); err != nil {
			log.Printf("[notify] red flag email to %s failed: %v", lead.Email, err)
		}
	}
}

// LogActivity appends to the project activity log, best-effort.
func (s *NotificationService) LogActivity(projectID, actorID int, action, detail string) {
	if s.Activity == nil {
		return
	}
	entry := &models.ActivityEntry{ProjectID: projectID, ActorID: actorID, Action: action, Detail: detail}
	if err := s.Activity.Append(entry); err != nil {
		log.Printf("[activity] append %s for project %d failed: %v", action, projectID, err)
	}
}

// notify stores the notification row and mirrors it to email/telegram when
// the user opted in. gateOutcome selects the email template.
func (s *NotificationService) notify(userID int, project *models.Project, subject, body string, gateOutcome bool) {
	n := &models.Notification{UserID: userID, ProjectID: project.ID, Subject: subject, Body: body}
	if err := s.Repo.Create(n); err != nil {
		log.Printf("[notify] store notification for user %d failed: %v", userID, err)
	}

	user, err := s.Users.GetByID(userID)
	if err != nil {
		log.Printf("[notify] lookup user %d failed: %v", userID, err)
		return
	}
	if gateOutcome && s.Emails != nil {
		if err := s.Emails.SendGateOutcomeEmail(user.Email, project.Title, body); err != nil {
			log.Printf("[notify] gate outcome email to %s failed: %v", user.Email, err)
		}
	}
	if s.Telegram.Enabled() && user.NotifyTelegram && user.TelegramChatID != 0 {
		text := fmt.Sprintf("<b>%s</b>\n%s", subject, body)
		if err := s.Telegram.SendMessage(user.TelegramChatID, text); err != nil {
			log.Printf("[notify] telegram to chat %d failed: %v", user.TelegramChatID, err)
		}
	}
}

func dedupe(ids []int) []int {
	seen := map[int]struct{}{}
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

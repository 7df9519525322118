package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, fullName string) error
	SendPasswordResetEmail(email, token string) error
	SendReviewAssignedEmail(email, projectTitle, stageLabel string) error
	SendGateOutcomeEmail(email, projectTitle, detail string) error
	SendRedFlagEmail(email, projectTitle, flagTitle, severity string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email %q to %s: %w", subject, to, err)
	}
	return nil
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account on the research portfolio platform has been created.</p>
		<p>You can now sign in and view the projects you are part of.</p>
	`, fullName)
	return s.send(email, "Your research portfolio account", body)
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p>Use the following token to reset your password: <strong>%s</strong></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, token)
	return s.send(email, "Password reset request", body)
}

func (s *emailService) SendReviewAssignedEmail(email, projectTitle, stageLabel string) error {
	body := fmt.Sprintf(`
		<h3>Gate review assigned</h3>
		<p>You have been assigned as a reviewer for project <strong>%s</strong> at the %s gate.</p>
		<p>Please submit your evaluation before the gate meeting.</p>
	`, projectTitle, stageLabel)
	return s.send(email, fmt.Sprintf("Review assigned: %s", projectTitle), body)
}

func (s *emailService) SendGateOutcomeEmail(email, projectTitle, detail string) error {
	body := fmt.Sprintf(`
		<h3>Gate outcome for %s</h3>
		<p>%s</p>
	`, projectTitle, detail)
	return s.send(email, fmt.Sprintf("Gate outcome: %s", projectTitle), body)
}

func (s *emailService) SendRedFlagEmail(email, projectTitle, flagTitle, severity string) error {
	body := fmt.Sprintf(`
		<h3>Red flag raised on %s</h3>
		<p><strong>%s</strong> (severity: %s)</p>
	`, projectTitle, flagTitle, severity)
	return s.send(email, fmt.Sprintf("Red flag: %s", projectTitle), body)
}

package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stagegate/internal/models"
	"stagegate/internal/repositories"
	"stagegate/internal/utils"
)

// ErrResetTokenInvalid covers unknown, expired and already-consumed reset
// tokens. The handler reports all three the same way so the endpoint cannot
// be used to probe token state.
var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// ResetPolicy controls how long a reset link stays valid and what the
// replacement password must look like. Values come from the auth config
// section; zero fields fall back to the defaults.
type ResetPolicy struct {
	TokenTTL          time.Duration
	MinPasswordLength int
}

func DefaultResetPolicy() ResetPolicy {
	return ResetPolicy{TokenTTL: time.Hour, MinPasswordLength: 8}
}

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	users  repositories.UserRepository
	resets repositories.PasswordResetRepository
	emails EmailService
	auth   AuthService
	policy ResetPolicy
}

func NewPasswordResetService(
	users repositories.UserRepository,
	resets repositories.PasswordResetRepository,
	emails EmailService,
	auth AuthService,
	policy ResetPolicy,
) PasswordResetService {
	def := DefaultResetPolicy()
	if policy.TokenTTL <= 0 {
		policy.TokenTTL = def.TokenTTL
	}
	if policy.MinPasswordLength <= 0 {
		policy.MinPasswordLength = def.MinPasswordLength
	}
	return &passwordResetService{users: users, resets: resets, emails: emails, auth: auth, policy: policy}
}

// RequestReset issues a single-use reset token for the account behind the
// email. Unknown addresses succeed silently so the endpoint cannot be used
// to enumerate which researchers have accounts.
func (s *passwordResetService) RequestReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("email is required")
	}
	user, err := s.users.GetByEmail(email)
	if err != nil || user == nil {
		log.Printf("[password-reset] no account for %q: %v", email, err)
		return nil
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	if _, err := s.resets.Create(user.ID, token, time.Now().Add(s.policy.TokenTTL)); err != nil {
		return err
	}
	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[password-reset] email to %s failed: %v", user.Email, err)
		}
	}
	return nil
}

// ResetPassword consumes the token and installs the new password hash. A
// token works exactly once and only inside its TTL.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < s.policy.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", s.policy.MinPasswordLength)
	}

	pr, err := s.liveToken(token)
	if err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(pr.UserID, hash); err != nil {
		return err
	}
	return s.resets.MarkUsed(pr.ID)
}

// liveToken resolves the token to an unused, unexpired reset row.
func (s *passwordResetService) liveToken(token string) (*models.PasswordReset, error) {
	pr, err := s.resets.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if pr == nil || pr.UsedAt != nil || time.Now().After(pr.ExpiresAt) {
		return nil, ErrResetTokenInvalid
	}
	return pr, nil
}

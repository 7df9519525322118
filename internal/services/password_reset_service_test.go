package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagegate/internal/repositories"
)

var resetCols = []string{"id", "user_id", "token", "expires_at", "used_at", "created_at"}

func newResetService(t *testing.T, policy ResetPolicy) (PasswordResetService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	svc := NewPasswordResetService(
		repositories.NewUserRepository(db),
		repositories.NewPasswordResetRepository(db),
		nil,
		NewAuthService(),
		policy,
	)
	return svc, mock
}

func TestResetPasswordConsumesTokenOnce(t *testing.T) {
	svc, mock := newResetService(t, ResetPolicy{})

	now := time.Now()
	mock.ExpectQuery(`FROM password_resets`).
		WithArgs("tok-live").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow(3, 11, "tok-live", now.Add(30*time.Minute), nil, now))
	mock.ExpectExec(`UPDATE users SET password_hash=\$1`).
		WithArgs(sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_resets SET used_at=now\(\)`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ResetPassword("tok-live", "correct-horse")
	assert.NoError(t, err)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	svc, mock := newResetService(t, ResetPolicy{})

	now := time.Now()
	mock.ExpectQuery(`FROM password_resets`).
		WithArgs("tok-old").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow(3, 11, "tok-old", now.Add(-time.Minute), nil, now.Add(-2*time.Hour)))

	err := svc.ResetPassword("tok-old", "correct-horse")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordRejectsUsedToken(t *testing.T) {
	svc, mock := newResetService(t, ResetPolicy{})

	now := time.Now()
	used := now.Add(-10 * time.Minute)
	mock.ExpectQuery(`FROM password_resets`).
		WithArgs("tok-used").
		WillReturnRows(sqlmock.NewRows(resetCols).
			AddRow(3, 11, "tok-used", now.Add(30*time.Minute), used, now))

	err := svc.ResetPassword("tok-used", "correct-horse")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordEnforcesMinimumLength(t *testing.T) {
	svc, _ := newResetService(t, ResetPolicy{MinPasswordLength: 12})

	err := svc.ResetPassword("tok-live", "short")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResetTokenInvalid)
}

func TestRequestResetHidesUnknownAccounts(t *testing.T) {
	svc, mock := newResetService(t, ResetPolicy{})

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@lab.example").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.RequestReset("Nobody@Lab.example")
	assert.NoError(t, err)
}

func TestResetPolicyDefaults(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewPasswordResetService(
		repositories.NewUserRepository(db),
		repositories.NewPasswordResetRepository(db),
		nil,
		NewAuthService(),
		ResetPolicy{},
	).(*passwordResetService)

	assert.Equal(t, time.Hour, svc.policy.TokenTTL)
	assert.Equal(t, 8, svc.policy.MinPasswordLength)
}

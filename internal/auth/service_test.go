package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/config"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

type mockAuthRepo struct {
	users map[string]*User
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*User{}}
}

func (m *mockAuthRepo) Create(user *User, roles []Role) error {
	for _, r := range roles {
		user.Roles = append(user.Roles, UserRole{UserID: user.ID, Role: r})
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockAuthRepo) FindByID(id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthRepo) FindByStaffID(staffID string) (*User, error) {
	for _, u := range m.users {
		if u.StaffID == staffID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthRepo) FindByEmail(email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthRepo) FindByVerificationToken(token string) (*User, error) {
	for _, u := range m.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthRepo) FindByResetToken(token string) (*User, error) {
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthRepo) Update(user *User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockAuthRepo) SetVerificationToken(userID, token string, expiry time.Time) error {
	u := m.users[userID]
	u.VerificationToken = &token
	u.VerificationTokenExpires = &expiry
	return nil
}

func (m *mockAuthRepo) MarkVerified(userID string) error {
	u := m.users[userID]
	u.EmailVerified = true
	u.Status = StatusVerified
	u.VerificationToken = nil
	u.VerificationTokenExpires = nil
	return nil
}

func (m *mockAuthRepo) SetResetToken(userID, token string, expiry time.Time) error {
	u := m.users[userID]
	u.ResetToken = &token
	u.ResetTokenExpires = &expiry
	return nil
}

func (m *mockAuthRepo) UpdatePassword(userID, hash string, mustChange bool) error {
	u := m.users[userID]
	u.PasswordHash = hash
	u.MustChangePassword = mustChange
	return nil
}

func (m *mockAuthRepo) ClearResetToken(userID string) error {
	u := m.users[userID]
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	return nil
}

func newTestAuthService(repo Repository) Service {
	return NewService(repo, &config.Config{JWTSecret: "test-secret", JWTTTLHours: 1})
}

func seedVerifiedUser(t *testing.T, repo *mockAuthRepo, staffID, password string) *User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &User{
		ID:            staffID,
		StaffID:       staffID,
		Name:          "Test User " + staffID,
		Email:         staffID + "@agency.gov.my",
		PasswordHash:  hash,
		EmailVerified: true,
		Status:        StatusVerified,
	}
	require.NoError(t, repo.Create(u, []Role{RoleViewer}))
	return u
}

func TestLogin(t *testing.T) {
	t.Run("returns a token for valid credentials", func(t *testing.T) {
		repo := newMockAuthRepo()
		seedVerifiedUser(t, repo, "1234", "secret-pass")
		svc := newTestAuthService(repo)

		token, user, err := svc.Login(LoginInput{StaffID: "1234", Password: "secret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "1234", user.StaffID)
	})

	t.Run("unknown staff id and wrong password fail identically", func(t *testing.T) {
		repo := newMockAuthRepo()
		seedVerifiedUser(t, repo, "1234", "secret-pass")
		svc := newTestAuthService(repo)

		_, _, errUnknown := svc.Login(LoginInput{StaffID: "9999", Password: "whatever"})
		_, _, errWrong := svc.Login(LoginInput{StaffID: "1234", Password: "nope"})

		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	})

	t.Run("unverified account is rejected after password check", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		u.EmailVerified = false
		u.Status = StatusUnverified
		svc := newTestAuthService(repo)

		_, _, err := svc.Login(LoginInput{StaffID: "1234", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrEmailNotVerified)

		// Wrong password still wins over the verification check.
		_, _, err = svc.Login(LoginInput{StaffID: "1234", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegister(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newTestAuthService(repo)

	t.Run("rejects malformed input", func(t *testing.T) {
		err := svc.Register(RegisterInput{StaffID: "12", Email: "a@b.co", Password: "longenough"})
		assert.ErrorIs(t, err, ErrInvalidStaffID)

		err = svc.Register(RegisterInput{StaffID: "1234", Email: "not-an-email", Password: "longenough"})
		assert.ErrorIs(t, err, ErrInvalidEmail)

		err = svc.Register(RegisterInput{StaffID: "1234", Email: "a@b.co", Password: "short"})
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("creates an unverified viewer with a verification token", func(t *testing.T) {
		err := svc.Register(RegisterInput{
			StaffID:  "4321",
			Name:     "New Staff",
			Email:    "new@agency.gov.my",
			Password: "longenough",
		})
		require.NoError(t, err)

		u, err := repo.FindByStaffID("4321")
		require.NoError(t, err)
		assert.Equal(t, StatusUnverified, u.Status)
		assert.False(t, u.EmailVerified)
		require.NotNil(t, u.VerificationToken)
		assert.True(t, u.HasRole(RoleViewer))
	})

	t.Run("rejects duplicate staff id and email", func(t *testing.T) {
		err := svc.Register(RegisterInput{StaffID: "4321", Email: "other@agency.gov.my", Password: "longenough"})
		assert.ErrorIs(t, err, ErrStaffIDTaken)

		err = svc.Register(RegisterInput{StaffID: "5555", Email: "new@agency.gov.my", Password: "longenough"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestVerifyEmail(t *testing.T) {
	setup := func(t *testing.T, expiry time.Time) (*mockAuthRepo, Service) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		u.EmailVerified = false
		u.Status = StatusUnverified
		token := "verify-token"
		u.VerificationToken = &token
		u.VerificationTokenExpires = &expiry
		return repo, newTestAuthService(repo)
	}

	t.Run("marks the account verified", func(t *testing.T) {
		repo, svc := setup(t, time.Now().Add(time.Hour))

		already, err := svc.VerifyEmail("verify-token")
		require.NoError(t, err)
		assert.False(t, already)

		u, _ := repo.FindByStaffID("1234")
		assert.True(t, u.EmailVerified)
		assert.Equal(t, StatusVerified, u.Status)
		assert.Nil(t, u.VerificationToken)
	})

	t.Run("already verified accounts are reported, not failed", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		token := "verify-token"
		u.VerificationToken = &token
		svc := newTestAuthService(repo)

		already, err := svc.VerifyEmail("verify-token")
		require.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("expired token", func(t *testing.T) {
		_, svc := setup(t, time.Now().Add(-time.Minute))
		_, err := svc.VerifyEmail("verify-token")
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, svc := setup(t, time.Now().Add(time.Hour))
		_, err := svc.VerifyEmail("no-such-token")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestResendVerification(t *testing.T) {
	t.Run("rotates the token for an unverified account", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		u.EmailVerified = false
		u.Status = StatusUnverified
		old := "stale-token"
		u.VerificationToken = &old
		svc := newTestAuthService(repo)

		require.NoError(t, svc.ResendVerification(u.Email))

		refreshed, _ := repo.FindByStaffID("1234")
		require.NotNil(t, refreshed.VerificationToken)
		assert.NotEqual(t, "stale-token", *refreshed.VerificationToken)
	})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		svc := newTestAuthService(newMockAuthRepo())
		assert.NoError(t, svc.ResendVerification("nobody@agency.gov.my"))
	})

	t.Run("verified account succeeds without issuing a token", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		svc := newTestAuthService(repo)

		require.NoError(t, svc.ResendVerification(u.Email))
		assert.Nil(t, u.VerificationToken)
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("sets a reset token by email", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		svc := newTestAuthService(repo)

		require.NoError(t, svc.ForgotPassword(u.Email))
		assert.NotNil(t, u.ResetToken)
	})

	t.Run("sets a reset token by staff id", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "secret-pass")
		svc := newTestAuthService(repo)

		require.NoError(t, svc.ForgotPassword("1234"))
		assert.NotNil(t, u.ResetToken)
	})

	t.Run("unknown identifier succeeds silently", func(t *testing.T) {
		svc := newTestAuthService(newMockAuthRepo())
		assert.NoError(t, svc.ForgotPassword("9999"))
	})
}

func TestResetPassword(t *testing.T) {
	setup := func(t *testing.T, expiry time.Time) (*mockAuthRepo, Service) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "old-password")
		u.MustChangePassword = true
		token := "reset-token"
		u.ResetToken = &token
		u.ResetTokenExpires = &expiry
		return repo, newTestAuthService(repo)
	}

	t.Run("replaces the password and clears the token", func(t *testing.T) {
		repo, svc := setup(t, time.Now().Add(time.Hour))

		require.NoError(t, svc.ResetPassword("reset-token", "brand-new-pass"))

		u, _ := repo.FindByStaffID("1234")
		assert.True(t, utils.CheckPassword(u.PasswordHash, "brand-new-pass"))
		assert.False(t, u.MustChangePassword)
		assert.Nil(t, u.ResetToken)
	})

	t.Run("expired and unknown tokens fail the same way", func(t *testing.T) {
		_, svc := setup(t, time.Now().Add(-time.Minute))

		errExpired := svc.ResetPassword("reset-token", "brand-new-pass")
		errUnknown := svc.ResetPassword("no-such-token", "brand-new-pass")

		assert.ErrorIs(t, errExpired, ErrInvalidResetToken)
		assert.ErrorIs(t, errUnknown, ErrInvalidResetToken)
	})

	t.Run("rejects short passwords before touching the token", func(t *testing.T) {
		_, svc := setup(t, time.Now().Add(time.Hour))
		err := svc.ResetPassword("reset-token", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("updates the hash and clears the forced change flag", func(t *testing.T) {
		repo := newMockAuthRepo()
		u := seedVerifiedUser(t, repo, "1234", "old-password")
		u.MustChangePassword = true
		svc := newTestAuthService(repo)

		require.NoError(t, svc.ChangePassword("1234", "old-password", "new-password"))

		assert.True(t, utils.CheckPassword(u.PasswordHash, "new-password"))
		assert.False(t, u.MustChangePassword)
	})

	t.Run("wrong current password", func(t *testing.T) {
		repo := newMockAuthRepo()
		seedVerifiedUser(t, repo, "1234", "old-password")
		svc := newTestAuthService(repo)

		err := svc.ChangePassword("1234", "not-the-password", "new-password")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("short replacement password", func(t *testing.T) {
		repo := newMockAuthRepo()
		seedVerifiedUser(t, repo, "1234", "old-password")
		svc := newTestAuthService(repo)

		err := svc.ChangePassword("1234", "old-password", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}

package usecase

import (
	"context"
	"os"
	"testing"
	"time"

	"cardealer-backend/internal/domain"
	"cardealer-backend/internal/infrastructure/loginguard"
	"cardealer-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.SetSecret("usecase-test-secret")
	os.Exit(m.Run())
}

func newAuth(repo *mockUserRepo) *AuthUsecase {
	cfg := testConfig()
	return NewAuthUsecase(repo, loginguard.NewMemoryStore(cfg.LoginLockoutWindow), cfg)
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		ID:           "u-1",
		Email:        "buyer@example.com",
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalises email and hashes password", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "buyer@example.com" &&
				u.Role == domain.RoleCustomer &&
				u.IsActive &&
				utils.CheckPasswordHash("supersecret", u.PasswordHash)
		})).Return(nil)

		user, err := newAuth(repo).Register(ctx, RegisterInput{
			Email:     "  Buyer@Example.com ",
			Password:  "supersecret",
			FirstName: "Ada",
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada", user.FirstName)
		repo.AssertExpectations(t)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := newAuth(new(mockUserRepo)).Register(ctx, RegisterInput{Email: "a@b.c", Password: "short"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrConflict)

		_, err := newAuth(repo).Register(ctx, RegisterInput{Email: "a@b.c", Password: "longenough"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestLoginIssuesTokens(t *testing.T) {
	ctx := context.Background()
	user := activeUser(t, "correct-horse")

	repo := new(mockUserRepo)
	repo.On("GetByEmail", ctx, "buyer@example.com").Return(user, nil)
	repo.On("SaveSession", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	res, err := newAuth(repo).Login(ctx, "Buyer@example.com", "correct-horse", "Firefox on Linux")
	require.NoError(t, err)

	claims, err := utils.ValidateJWT(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.True(t, utils.IsUUID(res.RefreshToken))
	assert.True(t, res.RefreshExpiresAt.After(time.Now().Add(6*24*time.Hour)))
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	user := activeUser(t, "correct-horse")

	repo := new(mockUserRepo)
	repo.On("GetByEmail", ctx, "buyer@example.com").Return(user, nil)
	auth := newAuth(repo)

	// LoginMaxAttempts is 3 in testConfig.
	_, err := auth.Login(ctx, user.Email, "wrong", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = auth.Login(ctx, user.Email, "wrong", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = auth.Login(ctx, user.Email, "wrong", "")
	assert.ErrorIs(t, err, domain.ErrAccountLocked)

	// Even the right password is refused while locked.
	_, err = auth.Login(ctx, user.Email, "correct-horse", "")
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
	repo.AssertNotCalled(t, "SaveSession", mock.Anything, mock.Anything)
}

func TestLoginUnknownEmailCountsAsFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepo)
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, err := newAuth(repo).Login(ctx, "ghost@example.com", "whatever", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	ctx := context.Background()
	user := activeUser(t, "correct-horse")
	user.IsActive = false

	repo := new(mockUserRepo)
	repo.On("GetByEmail", ctx, user.Email).Return(user, nil)

	_, err := newAuth(repo).Login(ctx, user.Email, "correct-horse", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRefreshAccessToken(t *testing.T) {
	ctx := context.Background()
	user := activeUser(t, "correct-horse")
	token := utils.GenerateUUID()

	t.Run("valid session", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("GetSession", ctx, token).Return(&domain.Session{
			Token: token, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		repo.On("GetByID", ctx, user.ID).Return(user, nil)

		access, got, err := newAuth(repo).RefreshAccessToken(ctx, token)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("revoked session", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("GetSession", ctx, token).Return(&domain.Session{
			Token: token, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), Revoked: true,
		}, nil)

		_, _, err := newAuth(repo).RefreshAccessToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired session", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("GetSession", ctx, token).Return(&domain.Session{
			Token: token, UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)

		_, _, err := newAuth(repo).RefreshAccessToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, _, err := newAuth(new(mockUserRepo)).RefreshAccessToken(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	ctx := context.Background()
	user := activeUser(t, "old-password")
	current := utils.GenerateUUID()

	repo := new(mockUserRepo)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil)
	repo.On("RevokeOtherSessions", ctx, user.ID, current).Return(nil)

	err := newAuth(repo).ChangePassword(ctx, user.ID, current, "old-password", "new-password")
	require.NoError(t, err)
	repo.AssertExpectations(t)

	err = newAuth(repo).ChangePassword(ctx, user.ID, current, "not-the-old-one", "new-password")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot change own role", func(t *testing.T) {
		err := newAuth(new(mockUserRepo)).SetUserRole(ctx, "admin-1", "admin-1", domain.RoleCustomer)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := newAuth(new(mockUserRepo)).SetUserRole(ctx, "admin-1", "u-2", "superuser")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("deactivation revokes sessions", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("SetActive", ctx, "u-2", false).Return(nil)
		repo.On("RevokeOtherSessions", ctx, "u-2", "").Return(nil)

		require.NoError(t, newAuth(repo).SetUserActive(ctx, "admin-1", "u-2", false))
		repo.AssertExpectations(t)
	})

	t.Run("list users paginates", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("GetAll", ctx, 20, 20).Return([]*domain.User{{ID: "u-3"}}, int64(41), nil)

		users, page, err := newAuth(repo).ListUsers(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, 3, page.TotalPages)
	})
}

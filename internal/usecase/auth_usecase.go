package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

const minPasswordLength = 8

type AuthUsecase struct {
	userRepo           domain.UserRepository
	attempts           domain.LoginAttemptStore
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	maxAttempts        int
	lockoutDuration    time.Duration
	now                func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, attempts domain.LoginAttemptStore, cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{
		userRepo:           userRepo,
		attempts:           attempts,
		accessTokenExpiry:  cfg.AccessTokenExpiry,
		refreshTokenExpiry: cfg.RefreshTokenExpiry,
		maxAttempts:        cfg.LoginMaxAttempts,
		lockoutDuration:    cfg.LoginLockoutDuration,
		now:                time.Now,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// AuthResult is what a successful login hands back to the HTTP layer.
type AuthResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *domain.User
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.WithContext(ctx).Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks the lockout guard before touching credentials. Reaching the failure
// limit locks the key and reports ErrAccountLocked on that same attempt.
func (u *AuthUsecase) Login(ctx context.Context, email, password, device string) (*AuthResult, error) {
	log := logger.WithContext(ctx)
	key := utils.NormalizeEmail(email)

	locked, err := u.attempts.IsLocked(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Login attempt store unavailable, skipping lockout check")
	}
	if locked {
		return nil, domain.ErrAccountLocked
	}

	user, err := u.userRepo.GetByEmail(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, u.registerFailure(ctx, key)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrForbidden)
	}

	if err := u.attempts.Reset(ctx, key); err != nil {
		log.Warn().Err(err).Msg("Failed to reset login attempts")
	}

	result, err := u.issueTokens(ctx, user, device)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("User logged in")
	return result, nil
}

func (u *AuthUsecase) registerFailure(ctx context.Context, key string) error {
	log := logger.WithContext(ctx)

	count, err := u.attempts.RegisterFailure(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to record login failure")
		return fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if count >= u.maxAttempts {
		if err := u.attempts.Lock(ctx, key, u.lockoutDuration); err != nil {
			log.Warn().Err(err).Msg("Failed to lock account")
		}
		log.Warn().Int("failures", count).Msg("Login locked after repeated failures")
		return domain.ErrAccountLocked
	}
	return fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
}

func (u *AuthUsecase) issueTokens(ctx context.Context, user *domain.User, device string) (*AuthResult, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.accessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	if device == "" {
		device = "unknown"
	}
	session := &domain.Session{
		Token:     utils.GenerateUUID(),
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.refreshTokenExpiry),
		Device:    device,
	}
	if err := u.userRepo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &AuthResult{
		AccessToken:      accessToken,
		RefreshToken:     session.Token,
		RefreshExpiresAt: session.ExpiresAt,
		User:             user,
	}, nil
}

// RefreshAccessToken keeps the refresh session valid until it expires and only mints a new access token.
func (u *AuthUsecase) RefreshAccessToken(ctx context.Context, refreshToken string) (string, *domain.User, error) {
	if !utils.IsUUID(refreshToken) {
		return "", nil, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
	}

	session, err := u.userRepo.GetSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("load session: %w", err)
	}
	if !session.Usable(u.now()) {
		return "", nil, fmt.Errorf("%w: session expired or revoked", domain.ErrUnauthorized)
	}

	user, err := u.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: account disabled", domain.ErrForbidden)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.accessTokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return token, user, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if !utils.IsUUID(refreshToken) {
		return nil
	}
	return u.userRepo.RevokeSession(ctx, refreshToken)
}

func (u *AuthUsecase) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return nil, fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	}
	return u.userRepo.UpdateProfile(ctx, userID, first, strings.TrimSpace(in.LastName), strings.TrimSpace(in.Phone))
}

// ChangePassword keeps currentSession alive and revokes every other refresh session.
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID, currentSession, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidInput)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := u.userRepo.RevokeOtherSessions(ctx, userID, currentSession); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	logger.WithContext(ctx).Info().Str("user_id", userID).Msg("Password changed")
	return nil
}

// --- Admin ---

func (u *AuthUsecase) ListUsers(ctx context.Context, page, limit int) ([]*domain.User, domain.Pagination, error) {
	req := domain.PageRequest{Page: page, Limit: limit}.Normalize(20, 100)
	users, total, err := u.userRepo.GetAll(ctx, req.Limit, req.Offset())
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return users, domain.NewPagination(req.Page, req.Limit, total), nil
}

// SetUserRole refuses to let an admin change their own role.
func (u *AuthUsecase) SetUserRole(ctx context.Context, actorID, userID, role string) error {
	if role != domain.RoleAdmin && role != domain.RoleCustomer {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if actorID == userID {
		return fmt.Errorf("%w: cannot change your own role", domain.ErrInvalidInput)
	}
	if err := u.userRepo.SetRole(ctx, userID, role); err != nil {
		return err
	}
	logger.WithContext(ctx).Info().Str("user_id", userID).Str("role", role).Msg("User role changed")
	return nil
}

// SetUserActive deactivating a user also revokes all of their refresh sessions.
func (u *AuthUsecase) SetUserActive(ctx context.Context, actorID, userID string, active bool) error {
	if actorID == userID && !active {
		return fmt.Errorf("%w: cannot deactivate your own account", domain.ErrInvalidInput)
	}
	if err := u.userRepo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		if err := u.userRepo.RevokeOtherSessions(ctx, userID, ""); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	}
	logger.WithContext(ctx).Info().Str("user_id", userID).Bool("active", active).Msg("User status changed")
	return nil
}

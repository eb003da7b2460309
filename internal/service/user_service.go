package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockwise/internal/auth"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DTOs for Request validation
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN MANAGER STAFF"`
}

// UserResponse returns a User without exposing the password hash
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds until the access token expires
}

// UserService covers the credential lifecycle and user administration
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateRole(ctx context.Context, actorID string, id string, role string) (*UserResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	repo       repository.UserRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	tokens     *auth.TokenManager
	refreshTTL time.Duration
	now        func() time.Time
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
) UserService {
	return &userService{
		repo:       repo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func mapToResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         model.RoleStaff,
	}

	var res *AuthResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		res, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return res, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	if err := s.repo.DeleteExpiredRefreshTokens(ctx, user.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to prune expired refresh tokens")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	var res *AuthResponse
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := s.repo.GetRefreshToken(txCtx, refreshToken)
		if err != nil {
			if isNotFound(err) {
				return ErrInvalidRefreshToken
			}
			return fmt.Errorf("failed to load refresh token: %w", err)
		}

		if s.now().After(stored.ExpiresAt) {
			return ErrInvalidRefreshToken
		}
		// rotation: a refresh token is single use
		if err := s.repo.DeleteRefreshToken(txCtx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}

		user, err := s.repo.GetByID(txCtx, stored.UserID)
		if err != nil {
			if isNotFound(err) {
				return ErrInvalidRefreshToken
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		res, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, mapToResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorID string, id string, role string) (*UserResponse, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err = s.repo.GetByID(txCtx, userID)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		previous := user.Role
		user.Role = role
		if err := s.repo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user role: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, actorID, model.ActionUpdateUserRole, user.ID.String(), user.Email, map[string]string{
			"from": previous,
			"to":   role,
		})
	})
	if err != nil {
		return nil, err
	}

	res := mapToResponse(user)
	return &res, nil
}

// EnsureAdmin creates the bootstrap ADMIN account if no user owns the email yet.
// An existing account is promoted, its password is left alone.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByEmail(txCtx, email)
		if err == nil {
			if user.Role == model.RoleAdmin {
				return nil
			}
			previous := user.Role
			user.Role = model.RoleAdmin
			if err := s.repo.Update(txCtx, user); err != nil {
				return fmt.Errorf("failed to promote admin: %w", err)
			}
			zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("bootstrap admin promoted")
			return writeAudit(txCtx, s.auditRepo, "", model.ActionUpdateUserRole, user.ID.String(), user.Email, map[string]string{
				"from": previous,
				"to":   model.RoleAdmin,
			})
		}
		if !isNotFound(err) {
			return fmt.Errorf("failed to check admin: %w", err)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user = &model.User{
			Email:        email,
			PasswordHash: hash,
			Name:         "Administrator",
			Role:         model.RoleAdmin,
		}
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("bootstrap admin created")
		return nil
	})
}

// issueTokens signs an access token and persists a fresh refresh token
func (s *userService) issueTokens(ctx context.Context, user *model.User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID.String(), user.Role)
	if err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     auth.NewRefreshToken(),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.repo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		User:         mapToResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

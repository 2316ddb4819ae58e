package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AuthService - вход администраторов и выпуск токенов действий
type AuthService interface {
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error)

	// FormToken - токен публичной формы (без привязки к пользователю)
	FormToken() (*dto.TokenResponse, error)
	// AdminActionToken - токен админ-действий, привязан к администратору
	AdminActionToken(userID string) (*dto.TokenResponse, error)

	// CreateUser - администратор заводит модератора или другого администратора
	CreateUser(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*dto.UserDTO, error)

	// SeedFirstAdmin создает администратора, если ни одного еще нет
	SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password, name string) error
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login - вход по email и паролю
func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "failed admin login", "user_id", user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateLastLogin(db, user.ID); err != nil {
		logger.CtxWarn(ctx, "failed to update last login", "user_id", user.ID, "error", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        userToDTO(user),
	}, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	out := userToDTO(user)
	return &out, nil
}

func (s *AuthServiceImpl) FormToken() (*dto.TokenResponse, error) {
	token, err := s.tokens.IssueActionToken(auth.ActionSubmitApplication, "")
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.TokenResponse{Token: token, Action: auth.ActionSubmitApplication}, nil
}

func (s *AuthServiceImpl) AdminActionToken(userID string) (*dto.TokenResponse, error) {
	token, err := s.tokens.IssueActionToken(auth.ActionAdmin, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.TokenResponse{Token: token, Action: auth.ActionAdmin}, nil
}

func (s *AuthServiceImpl) CreateUser(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*dto.UserDTO, error) {
	errs := make(map[string]string)
	if err := auth.ValidateRole(req.Role); err != nil {
		errs["role"] = "Must be one of: admin, moderator"
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		errs["password"] = err.Error()
	}
	if len(errs) > 0 {
		return nil, apperrors.ValidationError(errs)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.New(apperrors.CodeDuplicateEntry, "user", "A user with this email already exists", http.StatusConflict)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "admin user created", "user_id", user.ID, "role", user.Role)
	out := userToDTO(user)
	return &out, nil
}

func (s *AuthServiceImpl) SeedFirstAdmin(ctx context.Context, db *gorm.DB, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	count, err := s.userRepo.CountByRole(db, models.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("first admin password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if name == "" {
		name = "Administrator"
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}

	logger.CtxInfo(ctx, "first admin created", "email", email)
	return nil
}

func userToDTO(user *models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
	}
}

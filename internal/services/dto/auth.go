package dto

import (
	"time"

	"greenjobs_backend/internal/models"
)

// LoginRequest - запрос входа администратора
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest - новая учетная запись (admin или moderator)
type CreateUserRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// AuthResponse - ответ с токеном сессии
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// TokenResponse - токен формы или действия
type TokenResponse struct {
	Token  string `json:"token"`
	Action string `json:"action"`
}

// UserDTO - базовая информация об администраторе
type UserDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
}

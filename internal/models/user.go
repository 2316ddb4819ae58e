package models

import "time"

// User - учетная запись администратора или модератора
type User struct {
	BaseModel
	Name         string     `gorm:"size:200" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel - строковый UUID, генерируется в приложении (работает и в postgres, и в sqlite)
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// AllModels - список для AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&Industry{},
		&User{},
		&Upload{},
		&Applicant{},
	}
}

package repositories

import (
	"errors"

	"greenjobs_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IndustryRepository interface {
	List(db *gorm.DB) ([]models.Industry, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Industry, error)
	FindByID(db *gorm.DB, id uint) (*models.Industry, error)
	// Upsert создает отрасль или обновляет название/описание по slug
	Upsert(db *gorm.DB, industry *models.Industry) error
}

type IndustryRepositoryImpl struct{}

func NewIndustryRepository() IndustryRepository {
	return &IndustryRepositoryImpl{}
}

func (r *IndustryRepositoryImpl) List(db *gorm.DB) ([]models.Industry, error) {
	var industries []models.Industry
	err := db.Order("name ASC").Find(&industries).Error
	return industries, err
}

func (r *IndustryRepositoryImpl) FindBySlug(db *gorm.DB, slug string) (*models.Industry, error) {
	var industry models.Industry
	if err := db.Where("slug = ?", slug).First(&industry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndustryNotFound
		}
		return nil, err
	}
	return &industry, nil
}

func (r *IndustryRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Industry, error) {
	var industry models.Industry
	if err := db.First(&industry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIndustryNotFound
		}
		return nil, err
	}
	return &industry, nil
}

func (r *IndustryRepositoryImpl) Upsert(db *gorm.DB, industry *models.Industry) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(industry).Error
}

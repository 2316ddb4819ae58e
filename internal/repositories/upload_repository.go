package repositories

import (
	"errors"
	"time"

	"greenjobs_backend/internal/models"

	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByID(db *gorm.DB, id string) (*models.Upload, error)
	FindByApplicant(db *gorm.DB, applicantID uint) ([]models.Upload, error)
	Delete(db *gorm.DB, id string) error
	// FindOrphaned - загрузки старше before, на которые не ссылается ни одна заявка
	FindOrphaned(db *gorm.DB, before time.Time, limit int) ([]models.Upload, error)
}

type UploadRepositoryImpl struct{}

func NewUploadRepository() UploadRepository {
	return &UploadRepositoryImpl{}
}

func (r *UploadRepositoryImpl) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *UploadRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Upload, error) {
	var upload models.Upload
	if err := db.First(&upload, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepositoryImpl) FindByApplicant(db *gorm.DB, applicantID uint) ([]models.Upload, error) {
	var uploads []models.Upload
	err := db.Where("applicant_id = ?", applicantID).Order("created_at ASC").Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepositoryImpl) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.Upload{}, "id = ?", id).Error
}

func (r *UploadRepositoryImpl) FindOrphaned(db *gorm.DB, before time.Time, limit int) ([]models.Upload, error) {
	referenced := func(column string) *gorm.DB {
		return db.Model(&models.Applicant{}).Select(column).Where(column + " IS NOT NULL")
	}

	var uploads []models.Upload
	err := db.
		Where("created_at < ?", before).
		Where("id NOT IN (?)", referenced("resume_upload_id")).
		Where("id NOT IN (?)", referenced("photo_upload_id")).
		Where("id NOT IN (?)", referenced("thumbnail_upload_id")).
		Order("created_at ASC").
		Limit(limit).
		Find(&uploads).Error
	return uploads, err
}

package repositories

import (
	"errors"
	"strings"
	"time"

	"greenjobs_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicantRepository interface {
	Create(db *gorm.DB, applicant *models.Applicant) error
	FindByID(db *gorm.DB, id uint) (*models.Applicant, error)
	EmailExists(db *gorm.DB, email string) (bool, error)
	UpdateProfile(db *gorm.DB, applicant *models.Applicant) error
	HardDelete(db *gorm.DB, id uint) error

	// Workflow
	ApplyTransition(db *gorm.DB, id uint, from []models.ApplicantStatus, updates map[string]interface{}) (int64, error)
	SetFeatured(db *gorm.DB, id uint, featured bool) (int64, error)
	LinkUploads(db *gorm.DB, id uint, links UploadLinks) error
	IncrementViews(db *gorm.DB, id uint) error

	// Queries
	List(db *gorm.DB, filter ApplicantFilter) ([]models.Applicant, int64, error)
	FindFeaturedRandom(db *gorm.DB, limit int) ([]models.Applicant, error)
	FindRecentlyApproved(db *gorm.DB, limit int, excludeIDs []uint) ([]models.Applicant, error)
}

// Порядок сортировки списка
const (
	OrderByName       = "name"
	OrderByApprovedAt = "approved_at"
	OrderBySubmitted  = "submitted_at"
)

type ApplicantFilter struct {
	Statuses   []models.ApplicantStatus
	IndustryID *uint
	Search     string
	Featured   *bool
	OrderBy    string
	Page       int
	PageSize   int
}

// UploadLinks - вложения, привязываемые к заявке после сохранения файлов
type UploadLinks struct {
	ResumeUploadID    *string
	PhotoUploadID     *string
	ThumbnailUploadID *string
	ImageURL          string
}

// Поля профиля, которые перезаписывает форма редактирования
var profileColumns = []string{
	"first_name", "last_name", "email", "phone", "job_title", "industry_id",
	"years_experience", "location", "linkedin_url", "website_url",
	"skills", "skill_list", "cover_letter", "updated_at",
}

// Поля свободного поиска
var searchColumns = []string{
	"first_name", "last_name", "job_title", "skills", "location", "cover_letter",
}

type ApplicantRepositoryImpl struct{}

func NewApplicantRepository() ApplicantRepository {
	return &ApplicantRepositoryImpl{}
}

func (r *ApplicantRepositoryImpl) Create(db *gorm.DB, applicant *models.Applicant) error {
	applicant.Email = normalizeEmail(applicant.Email)
	if err := db.Omit(clause.Associations).Create(applicant).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *ApplicantRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Applicant, error) {
	var applicant models.Applicant
	err := db.Preload("Industry").Preload("Resume").Preload("Photo").
		First(&applicant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicantNotFound
		}
		return nil, err
	}
	return &applicant, nil
}

// EmailExists проверяет email среди всех заявок, независимо от статуса
func (r *ApplicantRepositoryImpl) EmailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&models.Applicant{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicantRepositoryImpl) UpdateProfile(db *gorm.DB, applicant *models.Applicant) error {
	applicant.Email = normalizeEmail(applicant.Email)
	result := db.Model(applicant).Select(profileColumns).Updates(applicant)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrEmailTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicantNotFound
	}
	return nil
}

// HardDelete - только для компенсации неудачной подачи заявки
func (r *ApplicantRepositoryImpl) HardDelete(db *gorm.DB, id uint) error {
	return db.Delete(&models.Applicant{}, id).Error
}

// ApplyTransition - одно условное обновление: WHERE id = ? AND status IN (from).
// Возвращает число затронутых строк; 0 значит, что статус уже сменился.
func (r *ApplicantRepositoryImpl) ApplyTransition(db *gorm.DB, id uint, from []models.ApplicantStatus, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	result := db.Model(&models.Applicant{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// SetFeatured меняет флаг только у одобренной заявки
func (r *ApplicantRepositoryImpl) SetFeatured(db *gorm.DB, id uint, featured bool) (int64, error) {
	result := db.Model(&models.Applicant{}).
		Where("id = ? AND status = ?", id, models.ApplicantStatusApproved).
		Updates(map[string]interface{}{
			"is_featured": featured,
			"updated_at":  time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *ApplicantRepositoryImpl) LinkUploads(db *gorm.DB, id uint, links UploadLinks) error {
	updates := map[string]interface{}{}
	if links.ResumeUploadID != nil {
		updates["resume_upload_id"] = *links.ResumeUploadID
	}
	if links.PhotoUploadID != nil {
		updates["photo_upload_id"] = *links.PhotoUploadID
	}
	if links.ThumbnailUploadID != nil {
		updates["thumbnail_upload_id"] = *links.ThumbnailUploadID
	}
	if links.ImageURL != "" {
		updates["image_url"] = links.ImageURL
	}
	if len(updates) == 0 {
		return nil
	}

	result := db.Model(&models.Applicant{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicantNotFound
	}
	return nil
}

// IncrementViews - UpdateColumn не трогает updated_at
func (r *ApplicantRepositoryImpl) IncrementViews(db *gorm.DB, id uint) error {
	return db.Model(&models.Applicant{}).Where("id = ?", id).
		UpdateColumn("profile_views", gorm.Expr("profile_views + ?", 1)).Error
}

func (r *ApplicantRepositoryImpl) List(db *gorm.DB, filter ApplicantFilter) ([]models.Applicant, int64, error) {
	query := db.Model(&models.Applicant{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.IndustryID != nil {
		query = query.Where("industry_id = ?", *filter.IndustryID)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = applySearch(query, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageBeyondTotal(filter.Page, filter.PageSize, total) {
		return []models.Applicant{}, total, nil
	}

	var applicants []models.Applicant
	err := query.Preload("Industry").
		Order(orderClause(filter.OrderBy)).
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&applicants).Error
	return applicants, total, err
}

// FindFeaturedRandom - RANDOM() есть и в postgres, и в sqlite
func (r *ApplicantRepositoryImpl) FindFeaturedRandom(db *gorm.DB, limit int) ([]models.Applicant, error) {
	var applicants []models.Applicant
	err := db.Preload("Industry").
		Where("status = ? AND is_featured = ?", models.ApplicantStatusApproved, true).
		Order("RANDOM()").
		Limit(limit).
		Find(&applicants).Error
	return applicants, err
}

// FindRecentlyApproved - одобренные, не отмеченные, без уже выбранных id
func (r *ApplicantRepositoryImpl) FindRecentlyApproved(db *gorm.DB, limit int, excludeIDs []uint) ([]models.Applicant, error) {
	query := db.Preload("Industry").
		Where("status = ? AND is_featured = ?", models.ApplicantStatusApproved, false)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var applicants []models.Applicant
	err := query.Order("approved_at DESC").Order("id DESC").
		Limit(limit).
		Find(&applicants).Error
	return applicants, err
}

func applySearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + strings.ToLower(escapeLike(search)) + "%"

	conds := make([]string, 0, len(searchColumns))
	args := make([]interface{}, 0, len(searchColumns))
	for _, col := range searchColumns {
		conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderClause(orderBy string) string {
	switch orderBy {
	case OrderByApprovedAt:
		return "approved_at DESC, id DESC"
	case OrderBySubmitted:
		return "submitted_at DESC, id DESC"
	default:
		return "last_name ASC, first_name ASC, id ASC"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package repositories

import (
	"time"

	"greenjobs_backend/internal/models"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountApproved(db *gorm.DB) (int64, error)
	CountByIndustry(db *gorm.DB) ([]IndustryCount, error)
	CountByExperience(db *gorm.DB) (map[string]int64, error)
	ApprovedSubmissionTimes(db *gorm.DB, since time.Time) ([]time.Time, error)
}

type IndustryCount struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type StatisticsRepositoryImpl struct{}

func NewStatisticsRepository() StatisticsRepository {
	return &StatisticsRepositoryImpl{}
}

func (r *StatisticsRepositoryImpl) CountApproved(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Applicant{}).
		Where("status = ?", models.ApplicantStatusApproved).
		Count(&count).Error
	return count, err
}

// CountByIndustry - все отрасли, включая те, где одобренных нет
func (r *StatisticsRepositoryImpl) CountByIndustry(db *gorm.DB) ([]IndustryCount, error) {
	var counts []IndustryCount
	err := db.Table("industries").
		Select("industries.slug AS slug, industries.name AS name, COUNT(applicants.id) AS count").
		Joins("LEFT JOIN applicants ON applicants.industry_id = industries.id AND applicants.status = ?", models.ApplicantStatusApproved).
		Group("industries.id, industries.slug, industries.name").
		Order("industries.name ASC").
		Scan(&counts).Error
	return counts, err
}

// CountByExperience - корзины считаются в SQL, пустые корзины добавляет сервис
func (r *StatisticsRepositoryImpl) CountByExperience(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Bucket string
		Count  int64
	}
	err := db.Model(&models.Applicant{}).
		Select(`CASE
			WHEN years_experience < 3 THEN '0-2'
			WHEN years_experience < 6 THEN '3-5'
			WHEN years_experience <= 10 THEN '6-10'
			ELSE '10+' END AS bucket, COUNT(*) AS count`).
		Where("status = ? AND years_experience IS NOT NULL", models.ApplicantStatusApproved).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket] = row.Count
	}
	return counts, nil
}

// ApprovedSubmissionTimes - даты подачи одобренных заявок начиная с since
func (r *StatisticsRepositoryImpl) ApprovedSubmissionTimes(db *gorm.DB, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.Model(&models.Applicant{}).
		Where("status = ? AND submitted_at >= ?", models.ApplicantStatusApproved, since).
		Pluck("submitted_at", &times).Error
	return times, err
}

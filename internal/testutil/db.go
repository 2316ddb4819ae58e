package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"greenjobs_backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB создает отдельную in-memory sqlite базу на тест с миграциями.
// Одно соединение: shared cache sqlite не любит параллельных писателей.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("Не удалось открыть тестовую БД: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Не удалось получить *sql.DB из GORM: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Не удалось выполнить AutoMigrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedIndustries создает отрасли и возвращает их по slug
func SeedIndustries(t *testing.T, db *gorm.DB, slugs ...string) map[string]*models.Industry {
	t.Helper()

	if len(slugs) == 0 {
		slugs = []string{"climate-science", "renewable-energy", "conservation"}
	}

	out := make(map[string]*models.Industry, len(slugs))
	for _, slug := range slugs {
		industry := &models.Industry{Slug: slug, Name: titleFromSlug(slug)}
		if err := db.Create(industry).Error; err != nil {
			t.Fatalf("Не удалось создать отрасль %s: %v", slug, err)
		}
		out[slug] = industry
	}
	return out
}

// ApplicantOption настраивает тестовую заявку
type ApplicantOption func(a *models.Applicant)

func WithStatus(status models.ApplicantStatus) ApplicantOption {
	return func(a *models.Applicant) {
		a.Status = status
		now := time.Now().UTC()
		switch status {
		case models.ApplicantStatusApproved:
			if a.ApprovedAt == nil {
				a.ApprovedAt = &now
			}
		case models.ApplicantStatusRejected:
			if a.RejectedAt == nil {
				a.RejectedAt = &now
			}
		}
	}
}

func WithIndustry(industry *models.Industry) ApplicantOption {
	return func(a *models.Applicant) { a.IndustryID = &industry.ID }
}

func WithFeatured() ApplicantOption {
	return func(a *models.Applicant) { a.IsFeatured = true }
}

func WithApprovedAt(at time.Time) ApplicantOption {
	return func(a *models.Applicant) {
		at = at.UTC()
		a.ApprovedAt = &at
	}
}

func WithSubmittedAt(at time.Time) ApplicantOption {
	return func(a *models.Applicant) { a.SubmittedAt = at.UTC() }
}

func WithExperience(years int) ApplicantOption {
	return func(a *models.Applicant) { a.YearsExperience = &years }
}

func WithName(first, last string) ApplicantOption {
	return func(a *models.Applicant) {
		a.FirstName = first
		a.LastName = last
	}
}

func WithEmail(email string) ApplicantOption {
	return func(a *models.Applicant) { a.Email = email }
}

func WithProfile(jobTitle, skills, location string) ApplicantOption {
	return func(a *models.Applicant) {
		a.JobTitle = jobTitle
		a.SetSkills(skills)
		a.Location = location
	}
}

var applicantSeq atomic.Int64

// CreateApplicant сохраняет заявку напрямую в БД (минуя intake)
func CreateApplicant(t *testing.T, db *gorm.DB, opts ...ApplicantOption) *models.Applicant {
	t.Helper()

	n := applicantSeq.Add(1)
	a := &models.Applicant{
		Status:      models.ApplicantStatusNew,
		FirstName:   fmt.Sprintf("First%d", n),
		LastName:    fmt.Sprintf("Last%d", n),
		Email:       fmt.Sprintf("applicant%d@example.com", n),
		CoverLetter: "cover letter",
		SubmittedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := db.Create(a).Error; err != nil {
		t.Fatalf("Не удалось создать заявку: %v", err)
	}
	return a
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Applicant struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	Status ApplicantStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`

	FirstName       string `gorm:"size:100;not null;index:idx_applicant_name,priority:2" json:"first_name"`
	LastName        string `gorm:"size:100;not null;index:idx_applicant_name,priority:1" json:"last_name"`
	Email           string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone           string `gorm:"size:50" json:"phone,omitempty"`
	JobTitle        string `gorm:"size:200" json:"job_title,omitempty"`
	IndustryID      *uint  `gorm:"index" json:"industry_id,omitempty"`
	YearsExperience *int   `json:"years_experience,omitempty"`
	Location        string `gorm:"size:200" json:"location,omitempty"`
	LinkedInURL     string `gorm:"column:linkedin_url;size:500" json:"linkedin_url,omitempty"`
	WebsiteURL      string `gorm:"size:500" json:"website_url,omitempty"`
	Skills          string `gorm:"type:text" json:"skills,omitempty"`
	// SkillList выводится из Skills через SetSkills
	SkillList   datatypes.JSONSlice[string] `json:"skill_list,omitempty"`
	CoverLetter string                      `gorm:"type:text" json:"cover_letter,omitempty"`

	ResumeUploadID    *string `gorm:"type:varchar(36)" json:"resume_upload_id,omitempty"`
	PhotoUploadID     *string `gorm:"type:varchar(36)" json:"photo_upload_id,omitempty"`
	ThumbnailUploadID *string `gorm:"type:varchar(36)" json:"thumbnail_upload_id,omitempty"`
	// ImageURL - изображение профиля: миниатюра, если есть, иначе фото
	ImageURL string `gorm:"size:1000" json:"image_url,omitempty"`

	SubmittedAt     time.Time  `gorm:"not null;index" json:"submitted_at"`
	ApprovedAt      *time.Time `gorm:"index" json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	IsFeatured      bool       `gorm:"not null;default:false;index" json:"is_featured"`
	ProfileViews    int64      `gorm:"not null;default:0" json:"profile_views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Industry *Industry `gorm:"foreignKey:IndustryID" json:"industry,omitempty"`
	Resume   *Upload   `gorm:"foreignKey:ResumeUploadID" json:"resume,omitempty"`
	Photo    *Upload   `gorm:"foreignKey:PhotoUploadID" json:"photo,omitempty"`
}

// SetSkills обновляет исходную строку и разобранный список вместе
func (a *Applicant) SetSkills(skills string) {
	a.Skills = strings.TrimSpace(skills)
	a.SkillList = ParseSkills(a.Skills)
}

func (a *Applicant) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// IndustryName - пусто, если отрасль не загружена
func (a *Applicant) IndustryName() string {
	if a.Industry == nil {
		return ""
	}
	return a.Industry.Name
}

// ExperienceLabel - корзина опыта для отображения
func (a *Applicant) ExperienceLabel() string {
	if a.YearsExperience == nil {
		return ""
	}
	return ExperienceBucket(*a.YearsExperience)
}

// ParseSkills режет строку навыков по запятым, пустые элементы и дубли отбрасываются
func ParseSkills(skills string) []string {
	parts := strings.Split(skills, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

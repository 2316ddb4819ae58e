package dto

import "time"

// IndustryDTO - отрасль в ответах
type IndustryDTO struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ApplicantResponse - полная карточка заявки для администратора
type ApplicantResponse struct {
	ID              uint         `json:"id"`
	Status          string       `json:"status"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	FullName        string       `json:"full_name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone,omitempty"`
	JobTitle        string       `json:"job_title,omitempty"`
	Industry        *IndustryDTO `json:"industry,omitempty"`
	YearsExperience *int         `json:"years_experience,omitempty"`
	Experience      string       `json:"experience,omitempty"` // корзина
	Location        string       `json:"location,omitempty"`
	LinkedInURL     string       `json:"linkedin_url,omitempty"`
	WebsiteURL      string       `json:"website_url,omitempty"`
	Skills          []string     `json:"skills"`
	CoverLetter     string       `json:"cover_letter,omitempty"`
	ResumeURL       string       `json:"resume_url,omitempty"`
	PhotoURL        string       `json:"photo_url,omitempty"`
	ImageURL        string       `json:"image_url,omitempty"`
	SubmittedAt     time.Time    `json:"submitted_at"`
	ApprovedAt      *time.Time   `json:"approved_at,omitempty"`
	RejectedAt      *time.Time   `json:"rejected_at,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	IsFeatured      bool         `json:"is_featured"`
	ProfileViews    int64        `json:"profile_views"`
	ProfileURL      string       `json:"profile_url,omitempty"`
}

// ApplicantListResponse - список заявок в админке
type ApplicantListResponse struct {
	Applicants []*ApplicantResponse `json:"applicants"`
	Pagination Pagination           `json:"pagination"`
}

// AdminListQuery - фильтры списка заявок
type AdminListQuery struct {
	Status   string `form:"status" json:"status" validate:"omitempty,is-applicant-status"`
	Search   string `form:"q" json:"q"`
	Industry string `form:"industry" json:"industry"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
}

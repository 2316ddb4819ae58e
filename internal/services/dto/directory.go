package dto

import "time"

// DirectoryQuery - параметры публичного каталога
type DirectoryQuery struct {
	Industry string `form:"industry"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// Pagination - общая математика страниц: page >= 1, total_pages = ceil(total / per_page)
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination нормализует номер страницы и считает число страниц
func NewPagination(page, perPage int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// HasNext - есть ли следующая страница
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// ProfileCard - карточка профиля в каталоге и карусели
type ProfileCard struct {
	ID         uint         `json:"id"`
	FullName   string       `json:"full_name"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	JobTitle   string       `json:"job_title,omitempty"`
	Industry   *IndustryDTO `json:"industry,omitempty"`
	Location   string       `json:"location,omitempty"`
	Experience string       `json:"experience,omitempty"`
	Skills     []string     `json:"skills"`
	ImageURL   string       `json:"image_url,omitempty"`
	ProfileURL string       `json:"profile_url"`
	IsFeatured bool         `json:"is_featured"`
}

// ProfileResponse - публичный профиль
type ProfileResponse struct {
	ProfileCard
	Bio          string     `json:"bio,omitempty"`
	LinkedInURL  string     `json:"linkedin_url,omitempty"`
	WebsiteURL   string     `json:"website_url,omitempty"`
	ProfileViews int64      `json:"profile_views"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
}

// DirectoryPage - страница каталога
type DirectoryPage struct {
	Profiles   []ProfileCard `json:"profiles"`
	Industry   *IndustryDTO  `json:"industry,omitempty"`
	Search     string        `json:"search,omitempty"`
	Pagination Pagination    `json:"pagination"`
}

// ============================================
// STATISTICS
// ============================================

type IndustryStat struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ExperienceStat struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// MonthStat - календарный месяц, Month в формате 2006-01
type MonthStat struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Statistics - агрегаты каталога (только одобренные заявки)
type Statistics struct {
	TotalApproved int64            `json:"total_approved"`
	ByIndustry    []IndustryStat   `json:"by_industry"`
	ByExperience  []ExperienceStat `json:"by_experience"`
	Monthly       []MonthStat      `json:"monthly"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

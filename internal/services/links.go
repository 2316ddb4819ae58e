package services

import (
	"fmt"
	"strings"

	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services/dto"
)

// Links строит публичные ссылки для писем и ответов API
type Links struct {
	SiteURL string
}

func NewLinks(siteURL string) Links {
	return Links{SiteURL: strings.TrimRight(siteURL, "/")}
}

// ProfileURL - публичная страница профиля (цель редиректа после одобрения)
func (l Links) ProfileURL(id uint) string {
	return fmt.Sprintf("%s/directory/profiles/%d", l.SiteURL, id)
}

// AdminURL - карточка заявки в админке
func (l Links) AdminURL(id uint) string {
	return fmt.Sprintf("%s/admin/applicants/%d", l.SiteURL, id)
}

// ResumeURL - резюме отдается только через админский API
func (l Links) ResumeURL(id uint) string {
	return fmt.Sprintf("%s/api/v1/admin/applicants/%d/resume", l.SiteURL, id)
}

// CategoryURL - страница отрасли
func (l Links) CategoryURL(slug string) string {
	return fmt.Sprintf("%s/directory/categories/%s", l.SiteURL, slug)
}

// ---------------- Mappers ----------------

func industryToDTO(industry *models.Industry) *dto.IndustryDTO {
	if industry == nil {
		return nil
	}
	return &dto.IndustryDTO{
		ID:          industry.ID,
		Slug:        industry.Slug,
		Name:        industry.Name,
		Description: industry.Description,
	}
}

func skillList(a *models.Applicant) []string {
	if len(a.SkillList) > 0 {
		return []string(a.SkillList)
	}
	return models.ParseSkills(a.Skills)
}

func buildProfileCard(a *models.Applicant, links Links) dto.ProfileCard {
	return dto.ProfileCard{
		ID:         a.ID,
		FullName:   a.FullName(),
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		JobTitle:   a.JobTitle,
		Industry:   industryToDTO(a.Industry),
		Location:   a.Location,
		Experience: a.ExperienceLabel(),
		Skills:     skillList(a),
		ImageURL:   a.ImageURL,
		ProfileURL: links.ProfileURL(a.ID),
		IsFeatured: a.IsFeatured,
	}
}

func buildProfileCards(applicants []models.Applicant, links Links) []dto.ProfileCard {
	cards := make([]dto.ProfileCard, 0, len(applicants))
	for i := range applicants {
		cards = append(cards, buildProfileCard(&applicants[i], links))
	}
	return cards
}

func buildApplicantResponse(a *models.Applicant, links Links) *dto.ApplicantResponse {
	resp := &dto.ApplicantResponse{
		ID:              a.ID,
		Status:          string(a.Status),
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		FullName:        a.FullName(),
		Email:           a.Email,
		Phone:           a.Phone,
		JobTitle:        a.JobTitle,
		Industry:        industryToDTO(a.Industry),
		YearsExperience: a.YearsExperience,
		Experience:      a.ExperienceLabel(),
		Location:        a.Location,
		LinkedInURL:     a.LinkedInURL,
		WebsiteURL:      a.WebsiteURL,
		Skills:          skillList(a),
		CoverLetter:     a.CoverLetter,
		ImageURL:        a.ImageURL,
		SubmittedAt:     a.SubmittedAt,
		ApprovedAt:      a.ApprovedAt,
		RejectedAt:      a.RejectedAt,
		RejectionReason: a.RejectionReason,
		IsFeatured:      a.IsFeatured,
		ProfileViews:    a.ProfileViews,
	}
	if a.Photo != nil {
		resp.PhotoURL = a.Photo.URL
	}
	if a.Status == models.ApplicantStatusApproved {
		resp.ProfileURL = links.ProfileURL(a.ID)
	}
	return resp
}

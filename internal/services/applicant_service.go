package services

import (
	"context"
	"errors"
	"strings"

	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/validator"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ApplicantService - просмотр и правка заявок в админке (любой статус)
type ApplicantService interface {
	List(ctx context.Context, db *gorm.DB, query dto.AdminListQuery) (*dto.ApplicantListResponse, error)
	Get(ctx context.Context, db *gorm.DB, id uint) (*dto.ApplicantResponse, error)

	// UpdateProfile перезаписывает поля профиля.
	// Уникальность email здесь не проверяется, ее держит только индекс.
	UpdateProfile(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateProfileRequest) (*dto.ApplicantResponse, error)

	// ResumeUploadID - ID загрузки резюме; 404, если резюме не прикладывали
	ResumeUploadID(ctx context.Context, db *gorm.DB, id uint) (string, error)
}

type applicantService struct {
	applicantRepo repositories.ApplicantRepository
	industryRepo  repositories.IndustryRepository
	validator     *validator.Validator
	links         Links
}

func NewApplicantService(
	applicantRepo repositories.ApplicantRepository,
	industryRepo repositories.IndustryRepository,
	v *validator.Validator,
	links Links,
) ApplicantService {
	return &applicantService{
		applicantRepo: applicantRepo,
		industryRepo:  industryRepo,
		validator:     v,
		links:         links,
	}
}

func (s *applicantService) List(ctx context.Context, db *gorm.DB, query dto.AdminListQuery) (*dto.ApplicantListResponse, error) {
	if err := s.validator.Validate(&query); err != nil {
		return nil, validationError(err)
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > maxPerPage {
		query.PageSize = maxPerPage
	}

	filter := repositories.ApplicantFilter{
		Search:   query.Search,
		OrderBy:  repositories.OrderBySubmitted,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		filter.Statuses = []models.ApplicantStatus{models.ApplicantStatus(query.Status)}
	}
	if query.Industry != "" {
		industry, err := s.industryRepo.FindBySlug(db, query.Industry)
		if err != nil {
			return nil, handleIndustryError(err)
		}
		filter.IndustryID = &industry.ID
	}

	applicants, total, err := s.applicantRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]*dto.ApplicantResponse, 0, len(applicants))
	for i := range applicants {
		out = append(out, buildApplicantResponse(&applicants[i], s.links))
	}
	return &dto.ApplicantListResponse{
		Applicants: out,
		Pagination: dto.NewPagination(query.Page, query.PageSize, total),
	}, nil
}

func (s *applicantService) Get(ctx context.Context, db *gorm.DB, id uint) (*dto.ApplicantResponse, error) {
	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return nil, handleApplicantError(err)
	}

	resp := buildApplicantResponse(applicant, s.links)
	if applicant.ResumeUploadID != nil {
		resp.ResumeURL = s.links.ResumeURL(applicant.ID)
	}
	return resp, nil
}

func (s *applicantService) UpdateProfile(ctx context.Context, db *gorm.DB, id uint, req *dto.UpdateProfileRequest) (*dto.ApplicantResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return nil, handleApplicantError(err)
	}

	applicant.FirstName = strings.TrimSpace(req.FirstName)
	applicant.LastName = strings.TrimSpace(req.LastName)
	applicant.Email = strings.TrimSpace(req.Email)
	applicant.Phone = strings.TrimSpace(req.Phone)
	applicant.JobTitle = strings.TrimSpace(req.JobTitle)
	applicant.Location = strings.TrimSpace(req.Location)
	applicant.LinkedInURL = strings.TrimSpace(req.LinkedIn)
	applicant.WebsiteURL = strings.TrimSpace(req.Website)
	applicant.CoverLetter = strings.TrimSpace(req.CoverLetter)
	applicant.SetSkills(req.Skills)

	applicant.YearsExperience = nil
	if req.Experience != "" {
		years, err := models.ParseExperience(req.Experience)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"experience": "Please select a valid experience level"})
		}
		applicant.YearsExperience = years
	}

	applicant.IndustryID = nil
	applicant.Industry = nil
	if req.Industry != "" {
		industry, err := s.industryRepo.FindBySlug(db, req.Industry)
		if err != nil {
			if errors.Is(err, repositories.ErrIndustryNotFound) {
				return nil, apperrors.ValidationError(map[string]string{"industry": "Please select a valid industry"})
			}
			return nil, apperrors.InternalError(err)
		}
		applicant.IndustryID = &industry.ID
		applicant.Industry = industry
	}

	if err := s.applicantRepo.UpdateProfile(db, applicant); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) || errors.Is(err, repositories.ErrApplicantNotFound) {
			return nil, handleApplicantError(err)
		}
		return nil, apperrors.OperationFailed(err, "applicant", "update applicant")
	}

	return buildApplicantResponse(applicant, s.links), nil
}

func (s *applicantService) ResumeUploadID(ctx context.Context, db *gorm.DB, id uint) (string, error) {
	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return "", handleApplicantError(err)
	}
	if applicant.ResumeUploadID == nil {
		return "", apperrors.NewNotFoundError("upload", "Applicant has no resume")
	}
	return *applicant.ResumeUploadID, nil
}

// validationError - *validator.ValidationError в AppError с картой полей
func validationError(err error) error {
	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.ValidationError(vErr.Errors)
	}
	return apperrors.NewBadRequestError(err.Error())
}

package services

import (
	"context"
	"errors"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Ограничение размера страницы, которое может запросить клиент
const maxPerPage = 100

// DirectoryService - публичный каталог: только одобренные заявки
type DirectoryService interface {
	// List - весь каталог, по фамилии и имени
	List(ctx context.Context, db *gorm.DB, query dto.DirectoryQuery) (*dto.DirectoryPage, error)

	// ListCategory - одна отрасль, сначала недавно одобренные; неизвестная отрасль - 404
	ListCategory(ctx context.Context, db *gorm.DB, slug string, page, perPage int) (*dto.DirectoryPage, error)

	// Featured - отмеченные в случайном порядке, добор недавно одобренными
	Featured(ctx context.Context, db *gorm.DB, count int) ([]dto.ProfileCard, error)

	// GetProfile - публичный профиль, каждый просмотр увеличивает счетчик
	GetProfile(ctx context.Context, db *gorm.DB, id uint) (*dto.ProfileResponse, error)

	Industries(ctx context.Context, db *gorm.DB) ([]dto.IndustryDTO, error)
}

type directoryService struct {
	applicantRepo repositories.ApplicantRepository
	industryRepo  repositories.IndustryRepository
	perPage       int
	featuredCount int
	links         Links
}

func NewDirectoryService(
	applicantRepo repositories.ApplicantRepository,
	industryRepo repositories.IndustryRepository,
	perPage, featuredCount int,
	links Links,
) DirectoryService {
	if perPage <= 0 {
		perPage = config.DefaultPerPage
	}
	if featuredCount <= 0 {
		featuredCount = config.DefaultFeaturedCount
	}
	return &directoryService{
		applicantRepo: applicantRepo,
		industryRepo:  industryRepo,
		perPage:       perPage,
		featuredCount: featuredCount,
		links:         links,
	}
}

func (s *directoryService) List(ctx context.Context, db *gorm.DB, query dto.DirectoryQuery) (*dto.DirectoryPage, error) {
	page, perPage := s.normalizePage(query.Page, query.PerPage)

	filter := repositories.ApplicantFilter{
		Statuses: []models.ApplicantStatus{models.ApplicantStatusApproved},
		Search:   query.Search,
		OrderBy:  repositories.OrderByName,
		Page:     page,
		PageSize: perPage,
	}

	var industry *models.Industry
	if query.Industry != "" {
		var err error
		industry, err = s.industryRepo.FindBySlug(db, query.Industry)
		if err != nil {
			if errors.Is(err, repositories.ErrIndustryNotFound) {
				// фильтр по несуществующей отрасли - просто пустой результат
				return &dto.DirectoryPage{
					Profiles:   []dto.ProfileCard{},
					Search:     query.Search,
					Pagination: dto.NewPagination(page, perPage, 0),
				}, nil
			}
			return nil, apperrors.InternalError(err)
		}
		filter.IndustryID = &industry.ID
	}

	return s.list(ctx, db, filter, industry)
}

func (s *directoryService) ListCategory(ctx context.Context, db *gorm.DB, slug string, page, perPage int) (*dto.DirectoryPage, error) {
	industry, err := s.industryRepo.FindBySlug(db, slug)
	if err != nil {
		return nil, handleIndustryError(err)
	}

	page, perPage = s.normalizePage(page, perPage)
	return s.list(ctx, db, repositories.ApplicantFilter{
		Statuses:   []models.ApplicantStatus{models.ApplicantStatusApproved},
		IndustryID: &industry.ID,
		OrderBy:    repositories.OrderByApprovedAt,
		Page:       page,
		PageSize:   perPage,
	}, industry)
}

func (s *directoryService) list(ctx context.Context, db *gorm.DB, filter repositories.ApplicantFilter, industry *models.Industry) (*dto.DirectoryPage, error) {
	applicants, total, err := s.applicantRepo.List(db, filter)
	if err != nil {
		logger.CtxWithError(ctx, "directory query failed", err)
		return nil, apperrors.InternalError(err)
	}

	return &dto.DirectoryPage{
		Profiles:   buildProfileCards(applicants, s.links),
		Industry:   industryToDTO(industry),
		Search:     filter.Search,
		Pagination: dto.NewPagination(filter.Page, filter.PageSize, total),
	}, nil
}

// Featured: сначала отмеченные (RANDOM()), затем добор недавно одобренными
// без повторов id. Итог - ровно count, если одобренных достаточно.
func (s *directoryService) Featured(ctx context.Context, db *gorm.DB, count int) ([]dto.ProfileCard, error) {
	if count <= 0 {
		count = s.featuredCount
	}
	if count > config.MaxFeaturedCount {
		count = config.MaxFeaturedCount
	}

	featured, err := s.applicantRepo.FindFeaturedRandom(db, count)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	selected := featured
	if missing := count - len(featured); missing > 0 {
		exclude := make([]uint, 0, len(featured))
		for _, a := range featured {
			exclude = append(exclude, a.ID)
		}

		recent, err := s.applicantRepo.FindRecentlyApproved(db, missing, exclude)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		selected = append(selected, recent...)
	}

	logger.CtxDebug(ctx, "featured carousel", "requested", count, "featured", len(featured), "total", len(selected))
	return buildProfileCards(selected, s.links), nil
}

func (s *directoryService) GetProfile(ctx context.Context, db *gorm.DB, id uint) (*dto.ProfileResponse, error) {
	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return nil, handleApplicantError(err)
	}
	// неодобренные профили не существуют для публики
	if applicant.Status != models.ApplicantStatusApproved {
		return nil, apperrors.ErrApplicantNotFound
	}

	if err := s.applicantRepo.IncrementViews(db, id); err != nil {
		logger.CtxWarn(ctx, "failed to count profile view", "applicant_id", id, "error", err)
	} else {
		applicant.ProfileViews++
	}

	return &dto.ProfileResponse{
		ProfileCard:  buildProfileCard(applicant, s.links),
		Bio:          applicant.CoverLetter,
		LinkedInURL:  applicant.LinkedInURL,
		WebsiteURL:   applicant.WebsiteURL,
		ProfileViews: applicant.ProfileViews,
		ApprovedAt:   applicant.ApprovedAt,
	}, nil
}

func (s *directoryService) Industries(ctx context.Context, db *gorm.DB) ([]dto.IndustryDTO, error) {
	industries, err := s.industryRepo.List(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.IndustryDTO, 0, len(industries))
	for i := range industries {
		out = append(out, *industryToDTO(&industries[i]))
	}
	return out, nil
}

// normalizePage: page = max(1, page), размер по умолчанию из конфига
func (s *directoryService) normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.perPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

package services

import (
	"errors"

	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/pkg/apperrors"
)

// handleApplicantError переводит ошибки репозитория в AppError
func handleApplicantError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrApplicantNotFound):
		return apperrors.ErrApplicantNotFound
	case errors.Is(err, repositories.ErrEmailTaken):
		return apperrors.ErrDuplicateEmail
	case errors.Is(err, repositories.ErrIndustryNotFound):
		return apperrors.ErrIndustryNotFound
	default:
		return apperrors.InternalError(err)
	}
}

func handleIndustryError(err error) error {
	if errors.Is(err, repositories.ErrIndustryNotFound) {
		return apperrors.ErrIndustryNotFound
	}
	return apperrors.InternalError(err)
}

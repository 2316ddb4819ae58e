package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/observability"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// LifecycleService - переходы статуса заявки: approve, reject, reconsider и флаг featured.
// Блокировок нет: побеждает последняя запись, но сам переход - один условный UPDATE.
type LifecycleService interface {
	Approve(ctx context.Context, db *gorm.DB, id uint) (*dto.ActionResult, error)
	Reject(ctx context.Context, db *gorm.DB, id uint, reason string) (*dto.ActionResult, error)
	Reconsider(ctx context.Context, db *gorm.DB, id uint) (*dto.ActionResult, error)
	ToggleFeatured(ctx context.Context, db *gorm.DB, id uint, featured bool) (*dto.ActionResult, error)

	// Remove - "удалить навсегда" в админке; на деле тот же мягкий отказ
	Remove(ctx context.Context, db *gorm.DB, id uint, reason string) (*dto.ActionResult, error)
}

type lifecycleService struct {
	applicantRepo repositories.ApplicantRepository
	notifier      NotificationService
	stats         StatisticsService
	links         Links
	now           func() time.Time
}

func NewLifecycleService(
	applicantRepo repositories.ApplicantRepository,
	notifier NotificationService,
	stats StatisticsService,
	links Links,
) LifecycleService {
	return &lifecycleService{
		applicantRepo: applicantRepo,
		notifier:      notifier,
		stats:         stats,
		links:         links,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *lifecycleService) Approve(ctx context.Context, db *gorm.DB, id uint) (*dto.ActionResult, error) {
	applicant, err := s.transition(ctx, db, id, models.TransitionApprove, "")
	if err != nil {
		return nil, err
	}
	return &dto.ActionResult{
		Message:   "Applicant approved successfully",
		Redirect:  s.links.ProfileURL(applicant.ID),
		Applicant: buildApplicantResponse(applicant, s.links),
	}, nil
}

func (s *lifecycleService) Reject(ctx context.Context, db *gorm.DB, id uint, reason string) (*dto.ActionResult, error) {
	applicant, err := s.transition(ctx, db, id, models.TransitionReject, reason)
	if err != nil {
		return nil, err
	}
	return &dto.ActionResult{
		Message:   "Applicant rejected",
		Applicant: buildApplicantResponse(applicant, s.links),
	}, nil
}

func (s *lifecycleService) Reconsider(ctx context.Context, db *gorm.DB, id uint) (*dto.ActionResult, error) {
	applicant, err := s.transition(ctx, db, id, models.TransitionReconsider, "")
	if err != nil {
		return nil, err
	}
	return &dto.ActionResult{
		Message:   "Applicant reconsidered and approved",
		Redirect:  s.links.ProfileURL(applicant.ID),
		Applicant: buildApplicantResponse(applicant, s.links),
	}, nil
}

func (s *lifecycleService) Remove(ctx context.Context, db *gorm.DB, id uint, reason string) (*dto.ActionResult, error) {
	result, err := s.Reject(ctx, db, id, reason)
	if err != nil {
		return nil, err
	}
	result.Message = "Applicant removed from the directory"
	return result, nil
}

func (s *lifecycleService) ToggleFeatured(ctx context.Context, db *gorm.DB, id uint, featured bool) (*dto.ActionResult, error) {
	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return nil, handleApplicantError(err)
	}
	if applicant.Status != models.ApplicantStatusApproved {
		return nil, apperrors.ErrFeatureRequiresApproval
	}

	rows, err := s.applicantRepo.SetFeatured(db, id, featured)
	if err != nil || rows == 0 {
		logger.EventLog("applicant_featured", id, fmt.Errorf("rows=%d: %v", rows, err))
		return nil, apperrors.OperationFailed(err, "applicant", "update featured applicant")
	}
	applicant.IsFeatured = featured

	logger.EventLog("applicant_featured", id, nil, "featured", featured)

	message := "Applicant removed from featured"
	if featured {
		message = "Applicant marked as featured"
	}
	return &dto.ActionResult{
		Message:   message,
		Applicant: buildApplicantResponse(applicant, s.links),
	}, nil
}

// transition проверяет правило перехода и выполняет условный UPDATE.
// 0 затронутых строк - статус успел смениться, это ошибка операции, без повтора.
func (s *lifecycleService) transition(ctx context.Context, db *gorm.DB, id uint, t models.Transition, reason string) (*models.Applicant, error) {
	applicant, err := s.applicantRepo.FindByID(db, id)
	if err != nil {
		return nil, handleApplicantError(err)
	}

	target := models.TargetStatus(t)
	if !models.CanTransition(applicant.Status, t) {
		return nil, apperrors.ErrInvalidStatus(string(applicant.Status), string(target))
	}

	now := s.now()
	updates := map[string]interface{}{"status": target}
	switch target {
	case models.ApplicantStatusApproved:
		updates["approved_at"] = now
		updates["rejection_reason"] = ""
	case models.ApplicantStatusRejected:
		reason = strings.TrimSpace(reason)
		updates["rejected_at"] = now
		updates["rejection_reason"] = reason
		// featured допустим только у одобренных
		updates["is_featured"] = false
	}

	rows, err := s.applicantRepo.ApplyTransition(db, id, models.AllowedFrom(t), updates)
	if err != nil || rows == 0 {
		logger.EventLog("applicant_"+string(t), id, fmt.Errorf("rows=%d: %v", rows, err))
		return nil, apperrors.OperationFailed(err, "applicant", string(t)+" applicant")
	}

	from := applicant.Status
	applicant.Status = target
	switch target {
	case models.ApplicantStatusApproved:
		applicant.ApprovedAt = &now
		applicant.RejectionReason = ""
	case models.ApplicantStatusRejected:
		applicant.RejectedAt = &now
		applicant.RejectionReason = reason
		applicant.IsFeatured = false
	}

	observability.ApplicantTransitions.WithLabelValues(string(t)).Inc()
	logger.EventLog("applicant_"+string(t), id, nil, "from", string(from), "to", string(target))
	s.stats.Invalidate(ctx)

	switch target {
	case models.ApplicantStatusApproved:
		s.notifier.Notify(ctx, EventApplicantApproved, applicant)
	case models.ApplicantStatusRejected:
		s.notifier.Notify(ctx, EventApplicantRejected, applicant)
	}

	return applicant, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/observability"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/validator"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ActionTokenVerifier - проверка токена формы (часть auth.TokenManager)
type ActionTokenVerifier interface {
	VerifyActionToken(token, action, subject string) error
}

// IntakeService принимает заявки из публичной формы.
// Ошибки полей собираются все сразу; уникальность email проверяется,
// только если остальные поля прошли проверку.
type IntakeService interface {
	Submit(ctx context.Context, db *gorm.DB, input *dto.ApplicationInput) (*dto.ApplicationResult, error)
}

type intakeService struct {
	applicantRepo repositories.ApplicantRepository
	industryRepo  repositories.IndustryRepository
	uploads       UploadService
	notifier      NotificationService
	stats         StatisticsService
	tokens        ActionTokenVerifier
	validator     *validator.Validator
	fields        config.FormFields
	now           func() time.Time
}

func NewIntakeService(
	applicantRepo repositories.ApplicantRepository,
	industryRepo repositories.IndustryRepository,
	uploads UploadService,
	notifier NotificationService,
	stats StatisticsService,
	tokens ActionTokenVerifier,
	v *validator.Validator,
	fields config.FormFields,
) IntakeService {
	return &intakeService{
		applicantRepo: applicantRepo,
		industryRepo:  industryRepo,
		uploads:       uploads,
		notifier:      notifier,
		stats:         stats,
		tokens:        tokens,
		validator:     v,
		fields:        fields,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *intakeService) Submit(ctx context.Context, db *gorm.DB, input *dto.ApplicationInput) (*dto.ApplicationResult, error) {
	// 1. Токен формы: при ошибке больше ничего не проверяем
	if err := s.tokens.VerifyActionToken(input.FormToken, auth.ActionSubmitApplication, ""); err != nil {
		observability.ApplicantsRejectedAtIntake.WithLabelValues("security").Inc()
		logger.CtxWarn(ctx, "application form token rejected", "error", err)
		return nil, apperrors.ErrSecurityCheck
	}

	// 2-4, 6. Поля, форматы, отрасль, файлы
	applicant, fieldErrors, err := s.validate(db, input)
	if err != nil {
		return nil, err
	}
	if len(fieldErrors) > 0 {
		observability.ApplicantsRejectedAtIntake.WithLabelValues("validation").Inc()
		return nil, apperrors.ValidationError(fieldErrors)
	}

	// 5. Email среди всех заявок, в любом статусе
	exists, err := s.applicantRepo.EmailExists(db, applicant.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		observability.ApplicantsRejectedAtIntake.WithLabelValues("duplicate").Inc()
		return nil, duplicateEmailError()
	}

	applicant.Status = models.ApplicantStatusNew
	applicant.SubmittedAt = s.now()

	if err := s.applicantRepo.Create(db, applicant); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			// проверку выше обогнала параллельная заявка, сработал уникальный индекс
			observability.ApplicantsRejectedAtIntake.WithLabelValues("duplicate").Inc()
			return nil, duplicateEmailError()
		}
		logger.CtxWithError(ctx, "failed to create applicant", err)
		return nil, apperrors.ErrSaveApplication.WithError(err)
	}

	if err := s.attachFiles(ctx, db, applicant, input); err != nil {
		return nil, err
	}

	observability.ApplicantsSubmitted.Inc()
	logger.EventLog("application_submitted", applicant.ID, nil, "industry", applicant.IndustryName())
	s.stats.Invalidate(ctx)

	s.notifier.Notify(ctx, EventAdminNewApplication, applicant)
	s.notifier.Notify(ctx, EventApplicantConfirmation, applicant)

	return &dto.ApplicationResult{
		ID:      applicant.ID,
		Status:  string(applicant.Status),
		Message: "Thank you! Your application has been submitted and is awaiting review.",
	}, nil
}

// fieldMaxLength - размеры колонок models.Applicant
var fieldMaxLength = map[string]int{
	config.FieldFirstName: 100,
	config.FieldLastName:  100,
	config.FieldEmail:     255,
	config.FieldPhone:     50,
	config.FieldJobTitle:  200,
	config.FieldLocation:  200,
	config.FieldLinkedIn:  500,
	config.FieldWebsite:   500,
}

// validate собирает все ошибки полей в карту "поле -> сообщение".
// err - только внутренние ошибки (БД), не ошибки ввода.
func (s *intakeService) validate(db *gorm.DB, input *dto.ApplicationInput) (*models.Applicant, map[string]string, error) {
	errs := make(map[string]string)
	enabled := s.fields.Enabled()

	for _, field := range enabled {
		if !field.Required {
			continue
		}
		if field.Type == "file" {
			if f := input.File(field.Name); f == nil || f.Size == 0 {
				errs[field.Name] = field.Label + " is required"
			}
			continue
		}
		if input.Value(field.Name) == "" {
			errs[field.Name] = field.Label + " is required"
		}
	}

	// значения выключенных полей не принимаются
	value := func(name string) string {
		if !s.fields.IsEnabled(name) {
			return ""
		}
		return input.Value(name)
	}

	applicant := &models.Applicant{
		FirstName:   value(config.FieldFirstName),
		LastName:    value(config.FieldLastName),
		Email:       value(config.FieldEmail),
		Phone:       value(config.FieldPhone),
		JobTitle:    value(config.FieldJobTitle),
		Location:    value(config.FieldLocation),
		LinkedInURL: value(config.FieldLinkedIn),
		WebsiteURL:  value(config.FieldWebsite),
		CoverLetter: value(config.FieldCoverLetter),
	}
	applicant.SetSkills(value(config.FieldSkills))

	for name, max := range fieldMaxLength {
		if _, failed := errs[name]; failed {
			continue
		}
		if !s.validator.MaxLength(value(name), max) {
			errs[name] = fmt.Sprintf("%s must be at most %d characters", s.fields.Label(name), max)
		}
	}

	if _, tooLong := errs[config.FieldEmail]; !tooLong && applicant.Email != "" && !s.validator.IsEmail(applicant.Email) {
		errs[config.FieldEmail] = "Please enter a valid email address"
	}
	if _, tooLong := errs[config.FieldLinkedIn]; !tooLong && applicant.LinkedInURL != "" && !s.validator.IsURL(applicant.LinkedInURL) {
		errs[config.FieldLinkedIn] = s.fields.Label(config.FieldLinkedIn) + " must be a valid URL"
	}
	if _, tooLong := errs[config.FieldWebsite]; !tooLong && applicant.WebsiteURL != "" && !s.validator.IsURL(applicant.WebsiteURL) {
		errs[config.FieldWebsite] = s.fields.Label(config.FieldWebsite) + " must be a valid URL"
	}

	if raw := value(config.FieldExperience); raw != "" {
		years, err := models.ParseExperience(raw)
		if err != nil {
			errs[config.FieldExperience] = "Please select a valid experience level"
		} else {
			applicant.YearsExperience = years
		}
	}

	if slug := value(config.FieldIndustry); slug != "" {
		industry, err := s.industryRepo.FindBySlug(db, slug)
		switch {
		case errors.Is(err, repositories.ErrIndustryNotFound):
			errs[config.FieldIndustry] = "Please select a valid industry"
		case err != nil:
			return nil, nil, apperrors.InternalError(err)
		default:
			applicant.IndustryID = &industry.ID
			applicant.Industry = industry
		}
	}

	for _, usage := range []models.UploadUsage{models.UploadUsageResume, models.UploadUsagePhoto} {
		name := string(usage)
		file := input.File(name)
		if file == nil || file.Size == 0 || !s.fields.IsEnabled(name) {
			continue
		}
		if err := s.uploads.ValidateFile(usage, s.fields.Label(name), file); err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				errs[name] = appErr.Message
			} else {
				errs[name] = err.Error()
			}
		}
	}

	return applicant, errs, nil
}

// attachFiles сохраняет файлы и привязывает их к заявке.
// При любой ошибке заявка и уже сохраненные файлы удаляются.
func (s *intakeService) attachFiles(ctx context.Context, db *gorm.DB, applicant *models.Applicant, input *dto.ApplicationInput) error {
	var stored []*models.Upload
	links := repositories.UploadLinks{}

	fail := func(err error) error {
		logger.CtxWithError(ctx, "application rolled back", err, "applicant_id", applicant.ID)
		s.uploads.Discard(ctx, db, stored...)
		if delErr := s.applicantRepo.HardDelete(db, applicant.ID); delErr != nil {
			logger.CtxWithError(ctx, "failed to delete partial application", delErr, "applicant_id", applicant.ID)
		}
		observability.ApplicantsRejectedAtIntake.WithLabelValues("storage").Inc()
		return apperrors.ErrSaveApplication.WithError(err)
	}

	if file := input.Resume; file != nil && file.Size > 0 && s.fields.IsEnabled(config.FieldResume) {
		upload, err := s.uploads.Store(ctx, db, applicant.ID, models.UploadUsageResume, file)
		if err != nil {
			return fail(err)
		}
		stored = append(stored, upload)
		links.ResumeUploadID = &upload.ID
		applicant.Resume = upload
	}

	if file := input.Photo; file != nil && file.Size > 0 && s.fields.IsEnabled(config.FieldPhoto) {
		photo, err := s.uploads.Store(ctx, db, applicant.ID, models.UploadUsagePhoto, file)
		if err != nil {
			return fail(err)
		}
		stored = append(stored, photo)
		links.PhotoUploadID = &photo.ID
		links.ImageURL = photo.URL
		applicant.Photo = photo

		// миниатюра необязательна: без нее показываем само фото
		thumb, err := s.uploads.CreateThumbnail(ctx, db, applicant.ID, photo)
		if err != nil {
			logger.CtxWarn(ctx, "thumbnail not created", "applicant_id", applicant.ID, "error", err)
		} else {
			stored = append(stored, thumb)
			links.ThumbnailUploadID = &thumb.ID
			links.ImageURL = thumb.URL
		}
	}

	if err := s.applicantRepo.LinkUploads(db, applicant.ID, links); err != nil {
		return fail(err)
	}
	applicant.ResumeUploadID = links.ResumeUploadID
	applicant.PhotoUploadID = links.PhotoUploadID
	applicant.ThumbnailUploadID = links.ThumbnailUploadID
	if links.ImageURL != "" {
		applicant.ImageURL = links.ImageURL
	}
	return nil
}

func duplicateEmailError() error {
	return apperrors.ErrDuplicateEmail.WithDetails(map[string]string{
		config.FieldEmail: apperrors.ErrDuplicateEmail.Message,
	})
}

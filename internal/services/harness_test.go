package services_test

import (
	"context"
	"testing"
	"time"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/cache"
	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/imageprocessor"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/testutil"
	"greenjobs_backend/internal/validator"
	"greenjobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSiteURL    = "https://greenjobs.test"
	testAdminEmail = "admin@greenjobs.test"
)

// harness - сервисы на sqlite в памяти, почта и хранилище подменены
type harness struct {
	cfg        *config.Config
	db         *gorm.DB
	mail       *testutil.RecordingProvider
	store      *testutil.MemoryStorage
	tokens     *auth.TokenManager
	industries map[string]*models.Industry
	svc        *services.ServiceContainer
}

type harnessOptions struct {
	cfg        *config.Config
	statsCache *cache.StatsCache
}

type harnessOption func(o *harnessOptions)

func withConfig(fn func(cfg *config.Config)) harnessOption {
	return func(o *harnessOptions) { fn(o.cfg) }
}

func withStatsCache(c *cache.StatsCache) harnessOption {
	return func(o *harnessOptions) { o.statsCache = c }
}

func ctx() context.Context {
	return context.Background()
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file::memory:"
	cfg.Server.Env = config.EnvTest
	cfg.Site.Name = "GreenJobs"
	cfg.Site.URL = testSiteURL
	cfg.Site.AdminEmail = testAdminEmail

	o := &harnessOptions{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	statsCache := o.statsCache
	config.ApplyDefaults(cfg)

	db := testutil.NewTestDB(t)
	h := &harness{
		cfg:        cfg,
		db:         db,
		mail:       &testutil.RecordingProvider{},
		store:      testutil.NewMemoryStorage(),
		tokens:     auth.NewTokenManager("test-secret", time.Hour, time.Hour),
		industries: testutil.SeedIndustries(t, db),
	}

	renderer, err := email.NewTemplateManager()
	require.NoError(t, err)

	v := validator.New()
	links := services.NewLinks(cfg.Site.URL)

	applicantRepo := repositories.NewApplicantRepository()
	industryRepo := repositories.NewIndustryRepository()
	uploadRepo := repositories.NewUploadRepository()
	userRepo := repositories.NewUserRepository()
	statsRepo := repositories.NewStatisticsRepository()

	stats := services.NewStatisticsService(statsRepo, statsCache)
	notifier := services.NewNotificationService(h.mail, renderer, v, cfg.Site, cfg.Notifications, links)
	uploads := services.NewUploadService(uploadRepo, h.store, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), services.UploadRules{
		ResumeMaxSize: cfg.Upload.ResumeMaxSize,
		PhotoMaxSize:  cfg.Upload.PhotoMaxSize,
		ThumbnailSize: cfg.Upload.ThumbnailSize,
	})

	h.svc = &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, h.tokens),
		ApplicantService:    services.NewApplicantService(applicantRepo, industryRepo, v, links),
		LifecycleService:    services.NewLifecycleService(applicantRepo, notifier, stats, links),
		IntakeService:       services.NewIntakeService(applicantRepo, industryRepo, uploads, notifier, stats, h.tokens, v, cfg.FormFields()),
		NotificationService: notifier,
		DirectoryService:    services.NewDirectoryService(applicantRepo, industryRepo, cfg.Directory.PerPage, cfg.Directory.FeaturedCount, links),
		StatisticsService:   stats,
		UploadService:       uploads,
		EmailProvider:       h.mail,
		Storage:             h.store,
	}
	return h
}

func (h *harness) formToken(t *testing.T) string {
	t.Helper()
	token, err := h.tokens.IssueActionToken(auth.ActionSubmitApplication, "")
	require.NoError(t, err)
	return token
}

// janeDoe - полностью заполненная заявка без файлов
func (h *harness) janeDoe(t *testing.T) *dto.ApplicationInput {
	return &dto.ApplicationInput{
		FormToken:   h.formToken(t),
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "+1 555 0100",
		JobTitle:    "Climate Analyst",
		Industry:    "climate-science",
		Experience:  "3-5",
		Location:    "Portland, OR",
		LinkedIn:    "https://linkedin.com/in/janedoe",
		Skills:      "GIS, Carbon Accounting, Python",
		CoverLetter: "I model regional climate risk.",
	}
}

func (h *harness) submit(t *testing.T, input *dto.ApplicationInput) *models.Applicant {
	t.Helper()
	result, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
	require.NoError(t, err)
	return h.reload(t, result.ID)
}

func (h *harness) reload(t *testing.T, id uint) *models.Applicant {
	t.Helper()
	applicant, err := repositories.NewApplicantRepository().FindByID(h.db, id)
	require.NoError(t, err)
	return applicant
}

func (h *harness) countApplicants(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Applicant{}).Count(&n).Error)
	return n
}

func (h *harness) countUploads(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Upload{}).Count(&n).Error)
	return n
}

// requireAppError достает AppError и проверяет HTTP код
func requireAppError(t *testing.T, err error, httpCode int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, httpCode, appErr.HTTPCode, appErr.Error())
	return appErr
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr := requireAppError(t, err, 400)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok, "details: %#v", appErr.Details)
	return details
}

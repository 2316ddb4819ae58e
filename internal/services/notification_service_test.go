package services_test

import (
	"errors"
	"testing"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/testutil"
	"greenjobs_backend/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifier(t *testing.T, provider email.Provider, site config.SiteConfig, settings config.NotificationsConfig) services.NotificationService {
	t.Helper()
	renderer, err := email.NewTemplateManager()
	require.NoError(t, err)
	return services.NewNotificationService(provider, renderer, validator.New(), site, settings, services.NewLinks(site.URL))
}

func testSite() config.SiteConfig {
	return config.SiteConfig{
		Name:        "GreenJobs",
		URL:         testSiteURL,
		AdminEmail:  testAdminEmail,
		AccentColor: "#2e7d32",
		FooterText:  "GreenJobs directory",
	}
}

func testApplicant() *models.Applicant {
	years := 4
	return &models.Applicant{
		ID:              7,
		Status:          models.ApplicantStatusRejected,
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		JobTitle:        "Climate Analyst",
		YearsExperience: &years,
		Industry:        &models.Industry{Slug: "climate-science", Name: "Climate Science"},
		RejectionReason: "Profile is incomplete.\n\nPlease add a cover letter.",
	}
}

func boolPtr(b bool) *bool { return &b }

func TestNotify_RoutesRecipients(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{})
	jane := testApplicant()

	notifier.Notify(ctx(), services.EventAdminNewApplication, jane)
	notifier.Notify(ctx(), services.EventApplicantRejected, jane)

	sent := mail.Sent()
	require.Len(t, sent, 2)

	assert.Equal(t, []string{testAdminEmail}, sent[0].To)
	assert.Empty(t, sent[0].ReplyTo)
	assert.Contains(t, sent[0].HTMLBody, "Climate Science")
	assert.Contains(t, sent[0].HTMLBody, testSiteURL+"/admin/applicants/7")

	assert.Equal(t, []string{"jane@example.com"}, sent[1].To)
	assert.Equal(t, testAdminEmail, sent[1].ReplyTo)
	assert.Contains(t, sent[1].HTMLBody, ">Profile is incomplete.</p>")
	assert.Contains(t, sent[1].HTMLBody, ">Please add a cover letter.</p>")
	assert.Contains(t, sent[1].HTMLBody, "GreenJobs directory")
}

func TestNotify_Disabled(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{Enabled: boolPtr(false)})

	notifier.Notify(ctx(), services.EventAdminNewApplication, testApplicant())
	notifier.Notify(ctx(), services.EventApplicantApproved, testApplicant())
	assert.Empty(t, mail.Sent())
}

func TestNotify_ApplicantEmailsDisabled(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{ApplicantEnabled: boolPtr(false)})

	notifier.Notify(ctx(), services.EventApplicantConfirmation, testApplicant())
	notifier.Notify(ctx(), services.EventAdminNewApplication, testApplicant())

	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{testAdminEmail}, sent[0].To)
}

func TestNotify_SkipsInvalidRecipient(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	site := testSite()
	site.AdminEmail = ""
	notifier := newNotifier(t, mail, site, config.NotificationsConfig{})

	notifier.Notify(ctx(), services.EventAdminNewApplication, testApplicant())

	broken := testApplicant()
	broken.Email = "not-an-email"
	notifier.Notify(ctx(), services.EventApplicantApproved, broken)

	assert.Empty(t, mail.Sent())
}

func TestNotify_ConfigOverrides(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{
		Templates: map[string]config.NotificationTemplate{
			string(services.EventApplicantApproved): {
				Template: "does_not_exist",
				Subject:  "{first_name}, welcome to {site_name} ({full_name})",
			},
		},
	})

	notifier.Notify(ctx(), services.EventApplicantApproved, testApplicant())

	sent := mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Jane, welcome to GreenJobs (Jane Doe)", sent[0].Subject)
	// неизвестный шаблон - generic, тема становится текстом письма
	assert.Contains(t, sent[0].HTMLBody, "Hello Jane,")
	assert.Contains(t, sent[0].HTMLBody, "Jane, welcome to GreenJobs (Jane Doe)")
}

func TestNotify_SendFailureIsSwallowed(t *testing.T) {
	mail := &testutil.RecordingProvider{Err: errors.New("smtp down")}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{})

	assert.NotPanics(t, func() {
		notifier.Notify(ctx(), services.EventApplicantApproved, testApplicant())
	})
	assert.Empty(t, mail.Sent())
}

func TestNotify_UnknownEvent(t *testing.T) {
	mail := &testutil.RecordingProvider{}
	notifier := newNotifier(t, mail, testSite(), config.NotificationsConfig{})

	notifier.Notify(ctx(), services.Event("applicant_promoted"), testApplicant())
	assert.Empty(t, mail.Sent())
}

package services

import (
	"context"
	"strconv"
	"strings"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/observability"
	"greenjobs_backend/internal/validator"
)

// Event - событие жизненного цикла, по которому уходит письмо
type Event string

const (
	EventAdminNewApplication   Event = "admin_new_application"
	EventApplicantConfirmation Event = "applicant_confirmation"
	EventApplicantApproved     Event = "applicant_approved"
	EventApplicantRejected     Event = "applicant_rejected"
)

type eventDef struct {
	template  string
	subject   string
	applicant bool // письмо адресовано соискателю
}

// Шаблоны и темы по умолчанию; переопределяются в notifications.templates.<event>.
// В теме доступны {site_name}, {first_name}, {full_name}.
var defaultEvents = map[Event]eventDef{
	EventAdminNewApplication: {
		template: "admin_new_application",
		subject:  "[{site_name}] New application from {full_name}",
	},
	EventApplicantConfirmation: {
		template:  "applicant_confirmation",
		subject:   "We received your application to {site_name}",
		applicant: true,
	},
	EventApplicantApproved: {
		template:  "applicant_approved",
		subject:   "Your {site_name} application has been approved",
		applicant: true,
	},
	EventApplicantRejected: {
		template:  "applicant_rejected",
		subject:   "Update on your {site_name} application",
		applicant: true,
	},
}

// NotificationService отправляет письма по событиям.
// Ошибки отправки не возвращаются: переход статуса от них не зависит.
type NotificationService interface {
	Notify(ctx context.Context, event Event, applicant *models.Applicant)
}

type notificationService struct {
	provider  email.Provider
	renderer  email.TemplateRenderer
	validator *validator.Validator
	site      config.SiteConfig
	settings  config.NotificationsConfig
	links     Links
}

func NewNotificationService(
	provider email.Provider,
	renderer email.TemplateRenderer,
	v *validator.Validator,
	site config.SiteConfig,
	settings config.NotificationsConfig,
	links Links,
) NotificationService {
	return &notificationService{
		provider:  provider,
		renderer:  renderer,
		validator: v,
		site:      site,
		settings:  settings,
		links:     links,
	}
}

func (s *notificationService) Notify(ctx context.Context, event Event, applicant *models.Applicant) {
	ev, ok := s.resolveEvent(event)
	if !ok {
		logger.CtxWarn(ctx, "unknown notification event", "event", event)
		return
	}
	log := logger.FromContext(ctx).With("event", string(event), "applicant_id", applicant.ID)

	if !s.settings.IsEnabled() {
		observability.NotificationResult(string(event), observability.ResultSkipped)
		log.Debug("notifications disabled")
		return
	}
	if ev.applicant && !s.settings.IsApplicantEnabled() {
		observability.NotificationResult(string(event), observability.ResultSkipped)
		log.Debug("applicant notifications disabled")
		return
	}

	recipient := strings.TrimSpace(applicant.Email)
	if !ev.applicant {
		recipient = strings.TrimSpace(s.site.AdminEmail)
	}
	if !s.validator.IsEmail(recipient) {
		observability.NotificationResult(string(event), observability.ResultSkipped)
		log.Info("notification skipped: invalid recipient", "recipient", recipient)
		return
	}

	subject := s.subject(ev.subject, applicant)
	data := s.templateData(applicant, subject)

	body, err := s.renderer.Render(ev.template, data)
	if err != nil {
		observability.NotificationResult(string(event), observability.ResultFailed)
		log.Error("failed to render notification", "template", ev.template, "error", err)
		return
	}

	msg := &email.Email{
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body,
	}
	if ev.applicant && s.site.AdminEmail != "" {
		msg.ReplyTo = s.site.AdminEmail
	}

	if err := s.provider.Send(ctx, msg); err != nil {
		observability.NotificationResult(string(event), observability.ResultFailed)
		log.Error("failed to send notification",
			"provider", s.provider.Name(),
			"template_source", string(s.renderer.Resolve(ev.template)),
			"error", err,
		)
		return
	}

	observability.NotificationResult(string(event), observability.ResultSent)
	log.Info("notification sent", "provider", s.provider.Name(), "template", ev.template)
}

// resolveEvent накладывает настройки из конфига на значения по умолчанию
func (s *notificationService) resolveEvent(event Event) (eventDef, bool) {
	ev, ok := defaultEvents[event]
	if !ok {
		return eventDef{}, false
	}
	if override, ok := s.settings.Templates[string(event)]; ok {
		if override.Template != "" {
			ev.template = override.Template
		}
		if override.Subject != "" {
			ev.subject = override.Subject
		}
	}
	return ev, true
}

func (s *notificationService) subject(pattern string, a *models.Applicant) string {
	return strings.NewReplacer(
		"{site_name}", s.site.Name,
		"{first_name}", a.FirstName,
		"{full_name}", a.FullName(),
	).Replace(pattern)
}

func (s *notificationService) templateData(a *models.Applicant, subject string) email.TemplateData {
	experience := ""
	if a.YearsExperience != nil {
		experience = strconv.Itoa(*a.YearsExperience)
	}

	return email.TemplateData{
		"Subject":     subject,
		"SiteName":    s.site.Name,
		"SiteURL":     s.site.URL,
		"HeaderImage": s.site.HeaderImage,
		"FooterText":  s.site.FooterText,
		"AccentColor": s.site.AccentColor,

		"ApplicantID":     a.ID,
		"FirstName":       a.FirstName,
		"LastName":        a.LastName,
		"FullName":        a.FullName(),
		"Email":           a.Email,
		"JobTitle":        a.JobTitle,
		"Industry":        a.IndustryName(),
		"Experience":      experience,
		"Location":        a.Location,
		"ProfileURL":      s.links.ProfileURL(a.ID),
		"AdminURL":        s.links.AdminURL(a.ID),
		"RejectionReason": strings.TrimSpace(a.RejectionReason),
		"Message":         subject,
	}
}

package services

import (
	"greenjobs_backend/internal/email"
	"greenjobs_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ApplicantService    ApplicantService
	LifecycleService    LifecycleService
	IntakeService       IntakeService
	NotificationService NotificationService
	DirectoryService    DirectoryService
	StatisticsService   StatisticsService
	UploadService       UploadService
	EmailProvider       email.Provider
	Storage             storage.Storage
}

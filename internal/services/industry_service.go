package services

import (
	"context"
	"fmt"
	"strings"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"

	"gorm.io/gorm"
)

// SeedIndustries создает или обновляет отрасли из конфигурации (по slug)
func SeedIndustries(ctx context.Context, db *gorm.DB, repo repositories.IndustryRepository, seeds []config.IndustrySeed) error {
	for _, seed := range seeds {
		slug := strings.TrimSpace(seed.Slug)
		if slug == "" {
			continue
		}
		name := seed.Name
		if name == "" {
			name = slug
		}

		industry := &models.Industry{Slug: slug, Name: name, Description: seed.Description}
		if err := repo.Upsert(db, industry); err != nil {
			return fmt.Errorf("failed to seed industry %s: %w", slug, err)
		}
	}
	logger.CtxInfo(ctx, "industries seeded", "count", len(seeds))
	return nil
}

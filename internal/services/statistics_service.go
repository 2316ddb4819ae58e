package services

import (
	"context"
	"time"

	"greenjobs_backend/internal/cache"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Окно помесячной статистики - календарные месяцы, включая текущий
const statisticsMonths = 6

type StatisticsService interface {
	Get(ctx context.Context, db *gorm.DB) (*dto.Statistics, error)
	Invalidate(ctx context.Context)
}

type statisticsService struct {
	statsRepo repositories.StatisticsRepository
	cache     *cache.StatsCache // nil - без кэша
	now       func() time.Time
}

func NewStatisticsService(statsRepo repositories.StatisticsRepository, statsCache *cache.StatsCache) StatisticsService {
	return &statisticsService{
		statsRepo: statsRepo,
		cache:     statsCache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *statisticsService) Get(ctx context.Context, db *gorm.DB) (*dto.Statistics, error) {
	var cached dto.Statistics
	if s.cache.Get(ctx, cache.StatisticsKey, &cached) {
		return &cached, nil
	}

	stats, err := s.compute(db)
	if err != nil {
		logger.CtxWithError(ctx, "failed to compute directory statistics", err)
		return nil, apperrors.InternalError(err)
	}

	s.cache.Set(ctx, cache.StatisticsKey, stats)
	return stats, nil
}

func (s *statisticsService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.StatisticsKey)
}

func (s *statisticsService) compute(db *gorm.DB) (*dto.Statistics, error) {
	now := s.now()

	total, err := s.statsRepo.CountApproved(db)
	if err != nil {
		return nil, err
	}

	industryCounts, err := s.statsRepo.CountByIndustry(db)
	if err != nil {
		return nil, err
	}
	byIndustry := make([]dto.IndustryStat, 0, len(industryCounts))
	for _, c := range industryCounts {
		byIndustry = append(byIndustry, dto.IndustryStat{Slug: c.Slug, Name: c.Name, Count: c.Count})
	}

	experienceCounts, err := s.statsRepo.CountByExperience(db)
	if err != nil {
		return nil, err
	}
	// все четыре корзины, даже пустые
	byExperience := make([]dto.ExperienceStat, 0, len(models.ExperienceBuckets))
	for _, bucket := range models.ExperienceBuckets {
		byExperience = append(byExperience, dto.ExperienceStat{Bucket: bucket, Count: experienceCounts[bucket]})
	}

	monthly, err := s.monthly(db, now)
	if err != nil {
		return nil, err
	}

	return &dto.Statistics{
		TotalApproved: total,
		ByIndustry:    byIndustry,
		ByExperience:  byExperience,
		Monthly:       monthly,
		GeneratedAt:   now,
	}, nil
}

// monthly считает подачи одобренных заявок по календарным месяцам.
// Месяцы строятся от текущего назад, затем разворачиваются от старого к новому.
func (s *statisticsService) monthly(db *gorm.DB, now time.Time) ([]dto.MonthStat, error) {
	months := monthWindows(now, statisticsMonths)
	oldest := months[len(months)-1]

	times, err := s.statsRepo.ApprovedSubmissionTimes(db, oldest)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(months))
	for _, t := range times {
		counts[t.UTC().Format("2006-01")]++
	}

	out := make([]dto.MonthStat, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		key := months[i].Format("2006-01")
		out = append(out, dto.MonthStat{
			Month: key,
			Label: months[i].Format("Jan 2006"),
			Count: counts[key],
		})
	}
	return out, nil
}

// monthWindows - начала n календарных месяцев, от текущего к старым
func monthWindows(now time.Time, n int) []time.Time {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, current.AddDate(0, -i, 0))
	}
	return months
}

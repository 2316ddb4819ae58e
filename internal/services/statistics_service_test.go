package services_test

import (
	"testing"
	"time"

	"greenjobs_backend/internal/cache"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Aggregates(t *testing.T) {
	h := newHarness(t)
	climate := h.industries["climate-science"]
	energy := h.industries["renewable-energy"]

	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithIndustry(climate), testutil.WithExperience(1))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithIndustry(climate), testutil.WithExperience(4))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithIndustry(climate), testutil.WithExperience(12))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithIndustry(energy))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithSubmittedAt(time.Now().AddDate(-2, 0, 0)))...)
	testutil.CreateApplicant(t, h.db, testutil.WithIndustry(climate), testutil.WithExperience(2))

	stats, err := h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)

	assert.EqualValues(t, 5, stats.TotalApproved)
	assert.Equal(t, []dto.IndustryStat{
		{Slug: "climate-science", Name: "Climate Science", Count: 3},
		{Slug: "conservation", Name: "Conservation", Count: 0},
		{Slug: "renewable-energy", Name: "Renewable Energy", Count: 1},
	}, stats.ByIndustry)
	assert.Equal(t, []dto.ExperienceStat{
		{Bucket: "0-2", Count: 1},
		{Bucket: "3-5", Count: 1},
		{Bucket: "6-10", Count: 0},
		{Bucket: "10+", Count: 1},
	}, stats.ByExperience)

	require.Len(t, stats.Monthly, 6)
	current := stats.Monthly[len(stats.Monthly)-1]
	assert.Equal(t, time.Now().UTC().Format("2006-01"), current.Month)
	assert.EqualValues(t, 4, current.Count)

	var inWindow int64
	for i, m := range stats.Monthly {
		inWindow += m.Count
		if i > 0 {
			assert.Less(t, stats.Monthly[i-1].Month, m.Month, "months go oldest first")
		}
	}
	assert.EqualValues(t, 4, inWindow)
}

func TestStatistics_EmptyDirectory(t *testing.T) {
	h := newHarness(t)

	stats, err := h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalApproved)
	assert.Len(t, stats.ByExperience, 4)
	assert.Len(t, stats.Monthly, 6)
	for _, m := range stats.Monthly {
		assert.Zero(t, m.Count)
	}
}

func TestStatistics_CachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, withStatsCache(cache.NewStatsCache(client, time.Minute)))
	testutil.CreateApplicant(t, h.db, approvedOpts()...)

	stats, err := h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalApproved)
	assert.True(t, mr.Exists(cache.StatisticsKey))

	// запись в обход сервисов кэш не сбрасывает
	testutil.CreateApplicant(t, h.db, approvedOpts()...)
	stats, err = h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalApproved)

	// переход статуса сбрасывает
	pending := testutil.CreateApplicant(t, h.db)
	_, err = h.svc.LifecycleService.Approve(ctx(), h.db, pending.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.StatisticsKey))

	stats, err = h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalApproved)
}

func TestStatistics_CacheOutageFallsBackToDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, withStatsCache(cache.NewStatsCache(client, time.Minute)))
	testutil.CreateApplicant(t, h.db, testutil.WithStatus(models.ApplicantStatusApproved))
	mr.Close()

	stats, err := h.svc.StatisticsService.Get(ctx(), h.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalApproved)
}

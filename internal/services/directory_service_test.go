package services_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/testutil"
	"greenjobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedOpts(opts ...testutil.ApplicantOption) []testutil.ApplicantOption {
	return append([]testutil.ApplicantOption{testutil.WithStatus(models.ApplicantStatusApproved)}, opts...)
}

func cardNames(cards []dto.ProfileCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.FullName)
	}
	return out
}

func TestDirectory_ListOnlyApprovedSortedByName(t *testing.T) {
	h := newHarness(t)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Zoe", "Adams"))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Amy", "Brown"))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Carl", "Adams"))...)
	testutil.CreateApplicant(t, h.db, testutil.WithName("New", "Applicant"))
	testutil.CreateApplicant(t, h.db, testutil.WithName("Gone", "Applicant"), testutil.WithStatus(models.ApplicantStatusRejected))

	page, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Carl Adams", "Zoe Adams", "Amy Brown"}, cardNames(page.Profiles))
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	for _, card := range page.Profiles {
		assert.Contains(t, card.ProfileURL, testSiteURL+"/directory/profiles/")
	}
}

func TestDirectory_Pagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		testutil.CreateApplicant(t, h.db, approvedOpts()...)
	}

	page, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Profiles, 2)
	assert.Equal(t, dto.Pagination{Page: 2, PerPage: 2, Total: 5, TotalPages: 3}, page.Pagination)
	assert.True(t, page.Pagination.HasNext())
	assert.True(t, page.Pagination.HasPrev())

	beyond, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Page: 10, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Profiles)
	assert.EqualValues(t, 5, beyond.Pagination.Total)

	// смещение (page-1)*per_page переполнило бы int
	huge, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Page: math.MaxInt/4 + 2, PerPage: 4})
	require.NoError(t, err)
	assert.Empty(t, huge.Profiles)
	assert.Equal(t, math.MaxInt/4+2, huge.Pagination.Page)
	assert.EqualValues(t, 5, huge.Pagination.Total)

	normalized, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Page: -3, PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, normalized.Pagination.Page)
	assert.Equal(t, 100, normalized.Pagination.PerPage)
}

func TestDirectory_FilterByIndustryAndSearch(t *testing.T) {
	h := newHarness(t)
	climate := h.industries["climate-science"]
	energy := h.industries["renewable-energy"]

	testutil.CreateApplicant(t, h.db, approvedOpts(
		testutil.WithName("Jane", "Doe"), testutil.WithIndustry(climate),
		testutil.WithProfile("Climate Analyst", "GIS, Python", "Portland"))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(
		testutil.WithName("Sam", "Solar"), testutil.WithIndustry(energy),
		testutil.WithProfile("PV Engineer", "Solar design", "Austin"))...)

	page, err := h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Industry: "renewable-energy"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam Solar"}, cardNames(page.Profiles))
	require.NotNil(t, page.Industry)
	assert.Equal(t, "renewable-energy", page.Industry.Slug)

	page, err = h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Search: "gis"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, cardNames(page.Profiles))
	assert.Equal(t, []string{"GIS", "Python"}, page.Profiles[0].Skills)

	page, err = h.svc.DirectoryService.List(ctx(), h.db, dto.DirectoryQuery{Industry: "no-such-industry"})
	require.NoError(t, err)
	assert.Empty(t, page.Profiles)
	assert.Zero(t, page.Pagination.Total)
}

func TestDirectory_ListCategory(t *testing.T) {
	h := newHarness(t)
	climate := h.industries["climate-science"]
	now := time.Now().UTC()

	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Old", "Timer"), testutil.WithIndustry(climate),
		testutil.WithApprovedAt(now.Add(-48*time.Hour)))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Fresh", "Face"), testutil.WithIndustry(climate),
		testutil.WithApprovedAt(now.Add(-time.Hour)))...)
	testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithName("Other", "Field"))...)

	page, err := h.svc.DirectoryService.ListCategory(ctx(), h.db, "climate-science", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh Face", "Old Timer"}, cardNames(page.Profiles))
	assert.Equal(t, 12, page.Pagination.PerPage)

	_, err = h.svc.DirectoryService.ListCategory(ctx(), h.db, "no-such-industry", 1, 0)
	requireAppError(t, err, 404)
	assert.True(t, errors.Is(err, apperrors.ErrIndustryNotFound))
}

func TestDirectory_FeaturedFillsWithRecentlyApproved(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	featured := map[uint]bool{}
	for i := 0; i < 2; i++ {
		a := testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithFeatured())...)
		featured[a.ID] = true
	}
	var newest uint
	for i := 0; i < 5; i++ {
		a := testutil.CreateApplicant(t, h.db, approvedOpts(testutil.WithApprovedAt(now.Add(time.Duration(i)*time.Minute)))...)
		newest = a.ID
	}
	testutil.CreateApplicant(t, h.db, testutil.WithFeatured()) // не одобрен

	cards, err := h.svc.DirectoryService.Featured(ctx(), h.db, 4)
	require.NoError(t, err)
	require.Len(t, cards, 4)

	seen := map[uint]bool{}
	for i, card := range cards {
		assert.False(t, seen[card.ID], "duplicate id %d", card.ID)
		seen[card.ID] = true
		if i < 2 {
			assert.True(t, featured[card.ID], "featured profiles come first")
		}
	}
	assert.Equal(t, newest, cards[2].ID, "padding starts with the most recently approved")

	all, err := h.svc.DirectoryService.Featured(ctx(), h.db, 50)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestDirectory_FeaturedDefaultsAndCap(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 8; i++ {
		testutil.CreateApplicant(t, h.db, approvedOpts()...)
	}

	cards, err := h.svc.DirectoryService.Featured(ctx(), h.db, 0)
	require.NoError(t, err)
	assert.Len(t, cards, 6)
}

func TestDirectory_GetProfile(t *testing.T) {
	h := newHarness(t)
	pending := testutil.CreateApplicant(t, h.db)
	jane := testutil.CreateApplicant(t, h.db, approvedOpts(
		testutil.WithName("Jane", "Doe"),
		testutil.WithIndustry(h.industries["climate-science"]),
		testutil.WithExperience(7))...)

	_, err := h.svc.DirectoryService.GetProfile(ctx(), h.db, pending.ID)
	assert.True(t, errors.Is(err, apperrors.ErrApplicantNotFound))

	profile, err := h.svc.DirectoryService.GetProfile(ctx(), h.db, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", profile.FullName)
	assert.Equal(t, "6-10", profile.Experience)
	assert.Equal(t, "cover letter", profile.Bio)
	assert.EqualValues(t, 1, profile.ProfileViews)

	profile, err = h.svc.DirectoryService.GetProfile(ctx(), h.db, jane.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, profile.ProfileViews)
}

func TestDirectory_Industries(t *testing.T) {
	h := newHarness(t)

	industries, err := h.svc.DirectoryService.Industries(ctx(), h.db)
	require.NoError(t, err)
	require.Len(t, industries, 3)
	assert.Equal(t, "Climate Science", industries[0].Name)
}

package services_test

import (
	"errors"
	"fmt"
	"testing"

	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/testutil"
	"greenjobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicantService_List(t *testing.T) {
	h := newHarness(t)
	testutil.CreateApplicant(t, h.db, testutil.WithName("New", "One"))
	testutil.CreateApplicant(t, h.db, testutil.WithName("Approved", "One"), testutil.WithStatus(models.ApplicantStatusApproved))
	testutil.CreateApplicant(t, h.db, testutil.WithName("Rejected", "One"), testutil.WithStatus(models.ApplicantStatusRejected))

	all, err := h.svc.ApplicantService.List(ctx(), h.db, dto.AdminListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Applicants, 3)
	assert.Equal(t, 20, all.Pagination.PerPage)

	onlyNew, err := h.svc.ApplicantService.List(ctx(), h.db, dto.AdminListQuery{Status: "new"})
	require.NoError(t, err)
	require.Len(t, onlyNew.Applicants, 1)
	assert.Equal(t, "New One", onlyNew.Applicants[0].FullName)

	_, err = h.svc.ApplicantService.List(ctx(), h.db, dto.AdminListQuery{Status: "pending"})
	requireAppError(t, err, 400)

	_, err = h.svc.ApplicantService.List(ctx(), h.db, dto.AdminListQuery{Industry: "nope"})
	requireAppError(t, err, 404)
}

func TestApplicantService_GetIncludesResumeLink(t *testing.T) {
	h := newHarness(t)
	input := h.janeDoe(t)
	input.Resume = dto.NewUploadedFile("cv.pdf", testutil.PDFBytes())
	jane := h.submit(t, input)

	resp, err := h.svc.ApplicantService.Get(ctx(), h.db, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s/api/v1/admin/applicants/%d/resume", testSiteURL, jane.ID), resp.ResumeURL)
	assert.Empty(t, resp.ProfileURL, "not approved yet")

	_, err = h.svc.ApplicantService.Get(ctx(), h.db, 9999)
	assert.True(t, errors.Is(err, apperrors.ErrApplicantNotFound))
}

func TestApplicantService_UpdateProfile(t *testing.T) {
	h := newHarness(t)
	a := testutil.CreateApplicant(t, h.db, testutil.WithStatus(models.ApplicantStatusApproved))

	resp, err := h.svc.ApplicantService.UpdateProfile(ctx(), h.db, a.ID, &dto.UpdateProfileRequest{
		FirstName:  "Janet",
		LastName:   "Doe",
		Email:      "Janet@Example.com",
		Industry:   "conservation",
		Experience: "10+",
		Skills:     "Botany, botany, Field work",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet Doe", resp.FullName)
	assert.Equal(t, "10+", resp.Experience)
	assert.Equal(t, []string{"Botany", "Field work"}, resp.Skills)

	reloaded := h.reload(t, a.ID)
	assert.Equal(t, "janet@example.com", reloaded.Email)
	assert.Equal(t, "Conservation", reloaded.IndustryName())
	assert.Equal(t, models.ApplicantStatusApproved, reloaded.Status, "status is not touched")
}

func TestApplicantService_UpdateProfileErrors(t *testing.T) {
	h := newHarness(t)
	a := testutil.CreateApplicant(t, h.db)
	other := testutil.CreateApplicant(t, h.db)

	_, err := h.svc.ApplicantService.UpdateProfile(ctx(), h.db, a.ID, &dto.UpdateProfileRequest{
		FirstName: "Jane", LastName: "Doe", Email: "broken",
	})
	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "email")

	_, err = h.svc.ApplicantService.UpdateProfile(ctx(), h.db, a.ID, &dto.UpdateProfileRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Industry: "space-mining",
	})
	assert.Equal(t, map[string]string{"industry": "Please select a valid industry"}, fieldErrors(t, err))

	_, err = h.svc.ApplicantService.UpdateProfile(ctx(), h.db, a.ID, &dto.UpdateProfileRequest{
		FirstName: "Jane", LastName: "Doe", Email: other.Email,
	})
	requireAppError(t, err, 409)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))

	_, err = h.svc.ApplicantService.UpdateProfile(ctx(), h.db, 9999, &dto.UpdateProfileRequest{
		FirstName: "Jane", LastName: "Doe", Email: "ghost@example.com",
	})
	requireAppError(t, err, 404)
}

func TestApplicantService_ResumeUploadID(t *testing.T) {
	h := newHarness(t)
	input := h.janeDoe(t)
	input.Resume = dto.NewUploadedFile("cv.pdf", testutil.PDFBytes())
	a := h.submit(t, input)

	id, err := h.svc.ApplicantService.ResumeUploadID(ctx(), h.db, a.ID)
	require.NoError(t, err)

	upload, rc, err := h.svc.UploadService.Open(ctx(), h.db, id)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, models.UploadUsageResume, upload.Usage)

	bare := testutil.CreateApplicant(t, h.db)
	_, err = h.svc.ApplicantService.ResumeUploadID(ctx(), h.db, bare.ID)
	requireAppError(t, err, 404)
}

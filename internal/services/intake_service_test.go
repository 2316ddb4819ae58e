package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/testutil"
	"greenjobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_StoresApplicationAndNotifies(t *testing.T) {
	h := newHarness(t)

	result, err := h.svc.IntakeService.Submit(ctx(), h.db, h.janeDoe(t))
	require.NoError(t, err)
	assert.Equal(t, "new", result.Status)
	assert.Equal(t, "Thank you! Your application has been submitted and is awaiting review.", result.Message)

	jane := h.reload(t, result.ID)
	assert.Equal(t, models.ApplicantStatusNew, jane.Status)
	assert.Equal(t, "jane@example.com", jane.Email)
	assert.Equal(t, "Climate Science", jane.IndustryName())
	require.NotNil(t, jane.YearsExperience)
	assert.Equal(t, 3, *jane.YearsExperience)
	assert.Equal(t, []string{"GIS", "Carbon Accounting", "Python"}, []string(jane.SkillList))
	assert.False(t, jane.SubmittedAt.IsZero())
	assert.Nil(t, jane.ApprovedAt)
	assert.False(t, jane.IsFeatured)

	admin := h.mail.SentTo(testAdminEmail)
	require.Len(t, admin, 1)
	assert.Equal(t, "[GreenJobs] New application from Jane Doe", admin[0].Subject)
	assert.Contains(t, admin[0].HTMLBody, fmt.Sprintf("%s/admin/applicants/%d", testSiteURL, jane.ID))

	confirmation := h.mail.SentTo("jane@example.com")
	require.Len(t, confirmation, 1)
	assert.Equal(t, "We received your application to GreenJobs", confirmation[0].Subject)
	assert.Equal(t, testAdminEmail, confirmation[0].ReplyTo)
	assert.Contains(t, confirmation[0].HTMLBody, "Thank you, Jane!")
}

func TestSubmit_WithFiles(t *testing.T) {
	h := newHarness(t)

	input := h.janeDoe(t)
	input.Resume = dto.NewUploadedFile("Jane Doe CV.pdf", testutil.PDFBytes())
	input.Photo = dto.NewUploadedFile("jane.png", testutil.PNGBytes(600, 400))

	jane := h.submit(t, input)
	require.NotNil(t, jane.ResumeUploadID)
	require.NotNil(t, jane.PhotoUploadID)
	require.NotNil(t, jane.ThumbnailUploadID)

	require.NotNil(t, jane.Resume)
	assert.True(t, strings.HasPrefix(jane.Resume.Path, fmt.Sprintf("resumes/%d/", jane.ID)), jane.Resume.Path)
	assert.True(t, strings.HasSuffix(jane.Resume.Path, ".pdf"))
	assert.Empty(t, jane.Resume.URL, "resumes are not public")
	assert.Equal(t, "application/pdf", jane.Resume.MimeType)
	assert.Equal(t, "Jane Doe CV.pdf", jane.Resume.OriginalName)
	assert.Equal(t, "memory", jane.Resume.StorageProvider)

	require.NotNil(t, jane.Photo)
	assert.True(t, strings.HasPrefix(jane.Photo.Path, fmt.Sprintf("photos/%d/", jane.ID)))
	assert.Equal(t, "/files/"+jane.Photo.Path, jane.Photo.URL)

	thumbPrefix := fmt.Sprintf("/files/photos/%d/thumb_", jane.ID)
	assert.True(t, strings.HasPrefix(jane.ImageURL, thumbPrefix), jane.ImageURL)

	assert.Len(t, h.store.Paths(), 3)
	assert.EqualValues(t, 3, h.countUploads(t))
}

func TestSubmit_ThumbnailFailureFallsBackToPhoto(t *testing.T) {
	h := newHarness(t)

	// PNG сигнатура проходит проверку содержимого, но картинка не декодируется
	broken := append([]byte("\x89PNG\r\n\x1a\n"), []byte(strings.Repeat("x", 64))...)
	input := h.janeDoe(t)
	input.Photo = dto.NewUploadedFile("jane.png", broken)

	jane := h.submit(t, input)
	require.NotNil(t, jane.PhotoUploadID)
	assert.Nil(t, jane.ThumbnailUploadID)
	require.NotNil(t, jane.Photo)
	assert.Equal(t, jane.Photo.URL, jane.ImageURL)
	assert.Len(t, h.store.Paths(), 1)
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.IntakeService.Submit(ctx(), h.db, &dto.ApplicationInput{FormToken: h.formToken(t)})
	errs := fieldErrors(t, err)

	assert.Equal(t, map[string]string{
		"first_name":   "First Name is required",
		"last_name":    "Last Name is required",
		"email":        "Email Address is required",
		"industry":     "Industry is required",
		"cover_letter": "Cover Letter is required",
	}, errs)
	assert.Zero(t, h.countApplicants(t))
	assert.Empty(t, h.mail.Sent())
}

func TestSubmit_InvalidFieldFormats(t *testing.T) {
	h := newHarness(t)

	input := h.janeDoe(t)
	input.Email = "not-an-email"
	input.LinkedIn = "linkedin.com/in/janedoe"
	input.Website = "ftp://example.com"
	input.Experience = "lots"
	input.Industry = "space-mining"

	errs := fieldErrors(t, func() error {
		_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
		return err
	}())

	assert.Equal(t, "Please enter a valid email address", errs["email"])
	assert.Equal(t, "LinkedIn Profile must be a valid URL", errs["linkedin"])
	assert.Equal(t, "Website must be a valid URL", errs["website"])
	assert.Equal(t, "Please select a valid experience level", errs["experience"])
	assert.Equal(t, "Please select a valid industry", errs["industry"])
	assert.Len(t, errs, 5)
	assert.Zero(t, h.countApplicants(t))
}

func TestSubmit_FieldsLongerThanColumns(t *testing.T) {
	h := newHarness(t)

	input := h.janeDoe(t)
	input.FirstName = strings.Repeat("a", 101)
	input.LastName = strings.Repeat("b", 100)
	input.Phone = strings.Repeat("5", 51)
	input.Email = strings.Repeat("j", 250) + "@example.com"
	input.Website = "https://example.com/" + strings.Repeat("p", 490)

	errs := fieldErrors(t, func() error {
		_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
		return err
	}())

	assert.Equal(t, "First Name must be at most 100 characters", errs["first_name"])
	assert.Equal(t, "Phone Number must be at most 50 characters", errs["phone"])
	assert.Equal(t, "Email Address must be at most 255 characters", errs["email"])
	assert.Equal(t, "Website must be at most 500 characters", errs["website"])
	assert.NotContains(t, errs, "last_name")
	assert.Len(t, errs, 4)
	assert.Zero(t, h.countApplicants(t))
}

func TestSubmit_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	testutil.CreateApplicant(t, h.db,
		testutil.WithEmail("jane@example.com"),
		testutil.WithStatus(models.ApplicantStatusRejected),
	)

	input := h.janeDoe(t)
	input.Email = "  JANE@Example.com "
	_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)

	appErr := requireAppError(t, err, 409)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))
	assert.Equal(t, map[string]string{"email": apperrors.ErrDuplicateEmail.Message}, appErr.Details)
	assert.EqualValues(t, 1, h.countApplicants(t))
	assert.Empty(t, h.mail.Sent())
}

func TestSubmit_DuplicateCheckWaitsForValidFields(t *testing.T) {
	h := newHarness(t)
	testutil.CreateApplicant(t, h.db, testutil.WithEmail("jane@example.com"))

	input := h.janeDoe(t)
	input.FirstName = ""
	errs := fieldErrors(t, func() error {
		_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
		return err
	}())

	assert.Equal(t, map[string]string{"first_name": "First Name is required"}, errs)
}

func TestSubmit_SecurityCheck(t *testing.T) {
	h := newHarness(t)

	adminToken, err := h.tokens.IssueActionToken(auth.ActionAdmin, "admin-1")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":      "",
		"garbage":      "not-a-token",
		"wrong action": adminToken,
	} {
		t.Run(name, func(t *testing.T) {
			input := h.janeDoe(t)
			input.FormToken = token

			_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
			appErr := requireAppError(t, err, 403)
			assert.Equal(t, "Security check failed", appErr.Message)
		})
	}
	assert.Zero(t, h.countApplicants(t))
}

func TestSubmit_DisabledFieldIsIgnored(t *testing.T) {
	disabled := false
	h := newHarness(t, withConfig(func(cfg *config.Config) {
		cfg.Form.Fields = map[string]config.FormFieldOverride{
			config.FieldPhone:  {Enabled: &disabled},
			config.FieldResume: {Enabled: &disabled},
		}
	}))

	input := h.janeDoe(t)
	input.Resume = dto.NewUploadedFile("cv.exe", []byte("MZ"))

	jane := h.submit(t, input)
	assert.Empty(t, jane.Phone)
	assert.Nil(t, jane.ResumeUploadID)
	assert.Empty(t, h.store.Paths())
}

func TestSubmit_OptionalFieldMadeRequired(t *testing.T) {
	required := true
	h := newHarness(t, withConfig(func(cfg *config.Config) {
		cfg.Form.Fields = map[string]config.FormFieldOverride{
			config.FieldResume: {Required: &required, Label: "CV"},
		}
	}))

	errs := fieldErrors(t, func() error {
		_, err := h.svc.IntakeService.Submit(ctx(), h.db, h.janeDoe(t))
		return err
	}())
	assert.Equal(t, map[string]string{"resume": "CV is required"}, errs)
}

func TestSubmit_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		resume  *dto.UploadedFile
		photo   *dto.UploadedFile
		field   string
		message string
	}{
		{
			name:    "resume extension",
			resume:  dto.NewUploadedFile("cv.exe", testutil.PDFBytes()),
			field:   "resume",
			message: "Resume must be one of: pdf, doc, docx",
		},
		{
			name:    "resume content does not match extension",
			resume:  dto.NewUploadedFile("cv.pdf", testutil.PNGBytes(10, 10)),
			field:   "resume",
			message: "Resume must be one of: pdf, doc, docx",
		},
		{
			name:    "executable renamed to doc",
			resume:  dto.NewUploadedFile("cv.doc", testutil.ELFBytes()),
			field:   "resume",
			message: "Resume must be one of: pdf, doc, docx",
		},
		{
			name:    "plain zip renamed to docx",
			resume:  dto.NewUploadedFile("cv.docx", testutil.ZipBytes("notes.txt")),
			field:   "resume",
			message: "Resume must be one of: pdf, doc, docx",
		},
		{
			name:    "photo is not an image",
			photo:   dto.NewUploadedFile("me.jpg", testutil.PDFBytes()),
			field:   "photo",
			message: "Professional Photo must be one of: jpg, jpeg, png, gif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			input := h.janeDoe(t)
			input.Resume = tt.resume
			input.Photo = tt.photo

			_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
			errs := fieldErrors(t, err)
			assert.Equal(t, tt.message, errs[tt.field])
			assert.Empty(t, h.store.Paths())
		})
	}
}

func TestSubmit_AcceptsWordResumes(t *testing.T) {
	tests := []struct {
		filename string
		content  []byte
		mimeType string
	}{
		{"cv.docx", testutil.DOCXBytes(), "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"cv.doc", testutil.OLEBytes(), "application/msword"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			h := newHarness(t)
			input := h.janeDoe(t)
			input.Resume = dto.NewUploadedFile(tt.filename, tt.content)

			jane := h.submit(t, input)
			require.NotNil(t, jane.Resume)
			assert.Equal(t, tt.mimeType, jane.Resume.MimeType)
			assert.Len(t, h.store.Paths(), 1)
		})
	}
}

func TestSubmit_FileTooLarge(t *testing.T) {
	h := newHarness(t, withConfig(func(cfg *config.Config) {
		cfg.Upload.PhotoMaxSize = 1024 * 1024
	}))

	input := h.janeDoe(t)
	big := append(testutil.PNGBytes(4, 4), make([]byte, 2*1024*1024)...)
	input.Photo = dto.NewUploadedFile("me.png", big)

	_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
	errs := fieldErrors(t, err)
	assert.Equal(t, "Professional Photo exceeds the maximum size of 1 MB", errs["photo"])
}

func TestSubmit_StorageFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.store.FailSave = func(path string) error {
		if strings.HasPrefix(path, "photos/") {
			return errors.New("disk full")
		}
		return nil
	}

	input := h.janeDoe(t)
	input.Resume = dto.NewUploadedFile("cv.pdf", testutil.PDFBytes())
	input.Photo = dto.NewUploadedFile("jane.png", testutil.PNGBytes(50, 50))

	_, err := h.svc.IntakeService.Submit(ctx(), h.db, input)
	appErr := requireAppError(t, err, 500)
	assert.Equal(t, "Failed to save application", appErr.Message)

	assert.Zero(t, h.countApplicants(t))
	assert.Zero(t, h.countUploads(t))
	assert.Empty(t, h.store.Paths(), "stored resume must be removed")
	assert.Empty(t, h.mail.Sent())

	// email освобожден: повторная подача проходит
	h.store.FailSave = nil
	retry := h.janeDoe(t)
	_, err = h.svc.IntakeService.Submit(ctx(), h.db, retry)
	require.NoError(t, err)
}

package dto

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
)

// ============================================
// REQUEST STRUCTURES
// ============================================

// ApplicationInput - поля публичной формы заявки (multipart)
type ApplicationInput struct {
	FormToken   string `form:"form_token"`
	FirstName   string `form:"first_name"`
	LastName    string `form:"last_name"`
	Email       string `form:"email"`
	Phone       string `form:"phone"`
	JobTitle    string `form:"job_title"`
	Industry    string `form:"industry"`   // slug отрасли
	Experience  string `form:"experience"` // число лет или корзина "3-5"
	Location    string `form:"location"`
	LinkedIn    string `form:"linkedin"`
	Website     string `form:"website"`
	Skills      string `form:"skills"`
	CoverLetter string `form:"cover_letter"`

	Resume *UploadedFile `form:"-"`
	Photo  *UploadedFile `form:"-"`
}

// Value возвращает текстовое значение поля формы по имени
func (in *ApplicationInput) Value(field string) string {
	var v string
	switch field {
	case "first_name":
		v = in.FirstName
	case "last_name":
		v = in.LastName
	case "email":
		v = in.Email
	case "phone":
		v = in.Phone
	case "job_title":
		v = in.JobTitle
	case "industry":
		v = in.Industry
	case "experience":
		v = in.Experience
	case "location":
		v = in.Location
	case "linkedin":
		v = in.LinkedIn
	case "website":
		v = in.Website
	case "skills":
		v = in.Skills
	case "cover_letter":
		v = in.CoverLetter
	}
	return strings.TrimSpace(v)
}

// File возвращает загруженный файл поля (resume, photo)
func (in *ApplicationInput) File(field string) *UploadedFile {
	switch field {
	case "resume":
		return in.Resume
	case "photo":
		return in.Photo
	}
	return nil
}

// UploadedFile - файл из формы, отвязанный от multipart
type UploadedFile struct {
	Filename string
	Size     int64
	open     func() (io.ReadCloser, error)
}

func (f *UploadedFile) Open() (io.ReadCloser, error) {
	return f.open()
}

// FromFileHeader - файл из multipart формы gin
func FromFileHeader(fh *multipart.FileHeader) *UploadedFile {
	if fh == nil {
		return nil
	}
	return &UploadedFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// NewUploadedFile - файл из памяти
func NewUploadedFile(filename string, data []byte) *UploadedFile {
	return &UploadedFile{
		Filename: filename,
		Size:     int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UpdateProfileRequest - правка профиля администратором (перезапись полей)
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"max=50"`
	JobTitle    string `json:"job_title" validate:"max=200"`
	Industry    string `json:"industry" validate:"omitempty,is-slug"`
	Experience  string `json:"experience" validate:"omitempty,is-experience"`
	Location    string `json:"location" validate:"max=200"`
	LinkedIn    string `json:"linkedin" validate:"omitempty,url,max=500"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	Skills      string `json:"skills"`
	CoverLetter string `json:"cover_letter"`
}

// RejectRequest - причина отказа необязательна
type RejectRequest struct {
	Reason string `json:"reason"`
}

type FeaturedRequest struct {
	Featured bool `json:"featured"`
}

// ============================================
// RESPONSE STRUCTURES
// ============================================

// ApplicationResult - ответ на успешную подачу заявки
type ApplicationResult struct {
	ID      uint   `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ActionResult - результат действия администратора
type ActionResult struct {
	Message   string             `json:"message"`
	Redirect  string             `json:"redirect,omitempty"`
	Applicant *ApplicantResponse `json:"applicant,omitempty"`
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"greenjobs_backend/internal/imageprocessor"
	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/repositories"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/internal/storage"
	"greenjobs_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================
// UPLOAD SERVICE: резюме и фото соискателей
// ============================================

type UploadService interface {
	// ValidateFile проверяет размер, расширение и содержимое файла.
	// Ошибка - *apperrors.AppError с сообщением для пользователя.
	ValidateFile(usage models.UploadUsage, label string, file *dto.UploadedFile) error

	// Store сохраняет файл в хранилище и создает запись Upload
	Store(ctx context.Context, db *gorm.DB, applicantID uint, usage models.UploadUsage, file *dto.UploadedFile) (*models.Upload, error)

	// CreateThumbnail строит квадратную миниатюру из сохраненного фото
	CreateThumbnail(ctx context.Context, db *gorm.DB, applicantID uint, photo *models.Upload) (*models.Upload, error)

	// Discard удаляет файлы и записи (компенсация неудачной подачи)
	Discard(ctx context.Context, db *gorm.DB, uploads ...*models.Upload)

	// Open открывает сохраненный файл
	Open(ctx context.Context, db *gorm.DB, uploadID string) (*models.Upload, io.ReadCloser, error)
}

// UploadRules - ограничения на файлы формы
type UploadRules struct {
	ResumeMaxSize int64
	PhotoMaxSize  int64
	ThumbnailSize int
}

type fileKind struct {
	maxSize int64
	// расширение -> допустимые типы по содержимому (mimetype)
	sniffed map[string][]string
	// расширение -> Content-Type при сохранении (если не по содержимому)
	stored map[string]string
}

type uploadService struct {
	uploadRepo repositories.UploadRepository
	storage    storage.Storage
	images     *imageprocessor.Processor
	rules      UploadRules
	kinds      map[models.UploadUsage]fileKind
}

func NewUploadService(
	uploadRepo repositories.UploadRepository,
	store storage.Storage,
	images *imageprocessor.Processor,
	rules UploadRules,
) UploadService {
	return &uploadService{
		uploadRepo: uploadRepo,
		storage:    store,
		images:     images,
		rules:      rules,
		kinds: map[models.UploadUsage]fileKind{
			models.UploadUsageResume: {
				maxSize: rules.ResumeMaxSize,
				sniffed: map[string][]string{
					".pdf": {"application/pdf"},
					// старый .doc без CLSID Word распознается только как OLE контейнер
					".doc":  {"application/msword", "application/x-ole-storage"},
					".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
				},
				stored: map[string]string{
					".pdf":  "application/pdf",
					".doc":  "application/msword",
					".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				},
			},
			models.UploadUsagePhoto: {
				maxSize: rules.PhotoMaxSize,
				sniffed: map[string][]string{
					".jpg":  {"image/jpeg"},
					".jpeg": {"image/jpeg"},
					".png":  {"image/png"},
					".gif":  {"image/gif"},
				},
				stored: map[string]string{
					".jpg":  "image/jpeg",
					".jpeg": "image/jpeg",
					".png":  "image/png",
					".gif":  "image/gif",
				},
			},
		},
	}
}

// ============================================
// ОСНОВНЫЕ МЕТОДЫ
// ============================================

func (s *uploadService) ValidateFile(usage models.UploadUsage, label string, file *dto.UploadedFile) error {
	kind, ok := s.kinds[usage]
	if !ok {
		return apperrors.NewBadRequestError(fmt.Sprintf("unsupported upload usage: %s", usage))
	}

	if file.Size <= 0 {
		return apperrors.NewBadRequestError(fmt.Sprintf("%s is empty", label))
	}
	if kind.maxSize > 0 && file.Size > kind.maxSize {
		return apperrors.ErrFileTooLarge(label, kind.maxSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowedTypes, ok := kind.sniffed[ext]
	if !ok {
		return apperrors.ErrInvalidFileType(label, allowedExtensions(kind))
	}

	detected, err := sniffContentType(file)
	if err != nil {
		return apperrors.NewBadRequestError(fmt.Sprintf("%s could not be read", label))
	}
	for _, allowed := range allowedTypes {
		if detected.Is(allowed) {
			return nil
		}
	}
	return apperrors.ErrInvalidFileType(label, allowedExtensions(kind))
}

func (s *uploadService) Store(ctx context.Context, db *gorm.DB, applicantID uint, usage models.UploadUsage, file *dto.UploadedFile) (*models.Upload, error) {
	kind, ok := s.kinds[usage]
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unsupported upload usage: %s", usage))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	contentType := kind.stored[ext]

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.ErrUploadFailed(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	path := uploadPath(usage, applicantID, ext)
	if err := s.storage.Save(ctx, path, src, contentType); err != nil {
		return nil, apperrors.ErrUploadFailed(fmt.Errorf("failed to save file to storage: %w", err))
	}

	upload := &models.Upload{
		ApplicantID:     &applicantID,
		Usage:           usage,
		Path:            path,
		URL:             s.publicURL(usage, path),
		MimeType:        contentType,
		Size:            file.Size,
		OriginalName:    filepath.Base(file.Filename),
		StorageProvider: s.storage.Provider(),
	}
	if err := s.uploadRepo.Create(db, upload); err != nil {
		s.deleteFile(ctx, path)
		return nil, apperrors.ErrUploadFailed(err)
	}
	return upload, nil
}

func (s *uploadService) CreateThumbnail(ctx context.Context, db *gorm.DB, applicantID uint, photo *models.Upload) (*models.Upload, error) {
	if s.images == nil || s.rules.ThumbnailSize <= 0 {
		return nil, fmt.Errorf("thumbnails are disabled")
	}

	src, err := s.storage.Get(ctx, photo.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	defer src.Close()

	thumb, err := s.images.Thumbnail(src, s.rules.ThumbnailSize)
	if err != nil {
		return nil, err
	}

	path := uploadPath(models.UploadUsageThumbnail, applicantID, thumb.Extension)
	if err := s.storage.Save(ctx, path, bytes.NewReader(thumb.Data), thumb.ContentType); err != nil {
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	upload := &models.Upload{
		ApplicantID:     &applicantID,
		Usage:           models.UploadUsageThumbnail,
		Path:            path,
		URL:             s.storage.GetURL(path),
		MimeType:        thumb.ContentType,
		Size:            int64(len(thumb.Data)),
		OriginalName:    "thumbnail" + thumb.Extension,
		StorageProvider: s.storage.Provider(),
	}
	if err := s.uploadRepo.Create(db, upload); err != nil {
		s.deleteFile(ctx, path)
		return nil, err
	}
	return upload, nil
}

func (s *uploadService) Discard(ctx context.Context, db *gorm.DB, uploads ...*models.Upload) {
	for _, upload := range uploads {
		if upload == nil {
			continue
		}
		s.deleteFile(ctx, upload.Path)
		if err := s.uploadRepo.Delete(db, upload.ID); err != nil {
			logger.CtxWithError(ctx, "failed to delete upload record", err, "upload_id", upload.ID)
		}
	}
}

func (s *uploadService) Open(ctx context.Context, db *gorm.DB, uploadID string) (*models.Upload, io.ReadCloser, error) {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return nil, nil, handleUploadError(err)
	}

	rc, err := s.storage.Get(ctx, upload.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperrors.NewNotFoundError("upload", "File not found")
		}
		return nil, nil, apperrors.Wrap(err, apperrors.CodeStorageError, "upload", "Failed to read file", http.StatusInternalServerError)
	}
	return upload, rc, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// publicURL - резюме публичной ссылки не получают, только через админку
func (s *uploadService) publicURL(usage models.UploadUsage, path string) string {
	if usage == models.UploadUsageResume {
		return ""
	}
	return s.storage.GetURL(path)
}

func (s *uploadService) deleteFile(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "failed to delete file from storage", err, "path", path)
	}
}

// uploadPath: resumes/<id>/<uuid>.pdf, photos/<id>/<uuid>.jpg, photos/<id>/thumb_<uuid>.jpg
func uploadPath(usage models.UploadUsage, applicantID uint, ext string) string {
	name := uuid.NewString() + ext
	switch usage {
	case models.UploadUsageResume:
		return fmt.Sprintf("resumes/%d/%s", applicantID, name)
	case models.UploadUsageThumbnail:
		return fmt.Sprintf("photos/%d/thumb_%s", applicantID, name)
	default:
		return fmt.Sprintf("photos/%d/%s", applicantID, name)
	}
}

// sniffContentType определяет тип по содержимому (первые килобайты файла)
func sniffContentType(file *dto.UploadedFile) (*mimetype.MIME, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return mimetype.DetectReader(src)
}

func allowedExtensions(kind fileKind) []string {
	out := make([]string, 0, len(kind.stored))
	for _, ext := range []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".gif"} {
		if _, ok := kind.stored[ext]; ok {
			out = append(out, strings.TrimPrefix(ext, "."))
		}
	}
	return out
}

func handleUploadError(err error) error {
	if errors.Is(err, repositories.ErrUploadNotFound) {
		return apperrors.NewNotFoundError("upload", "File not found")
	}
	return apperrors.InternalError(err)
}

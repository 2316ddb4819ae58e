package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"greenjobs_backend/internal/storage"
	"greenjobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Префикс резюме: они отдаются только через админский API
const privatePrefix = "resumes/"

// FileHandler отдает публичные загрузки локального хранилища (фото и миниатюры)
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/files/*path", h.ServeFile)
}

// ServeFile отдает файл по пути в хранилище
func (h *FileHandler) ServeFile(c *gin.Context) {
	filePath, valid := cleanFilePath(c.Param("path"))
	if !valid || strings.HasPrefix(filePath, privatePrefix) {
		apperrors.HandleError(c, apperrors.NewNotFoundError("upload", "File not found"))
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), filePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apperrors.HandleError(c, apperrors.NewNotFoundError("upload", "File not found"))
			return
		}
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// имена файлов уникальны (uuid), содержимое не меняется
	c.DataFromReader(http.StatusOK, -1, contentType, reader, map[string]string{
		"Cache-Control":          "public, max-age=31536000",
		"Content-Disposition":    "inline",
		"X-Content-Type-Options": "nosniff",
	})
}

// cleanFilePath нормализует путь и отсекает выход за пределы хранилища
func cleanFilePath(raw string) (string, bool) {
	if strings.Contains(raw, "..") {
		return "", false
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}

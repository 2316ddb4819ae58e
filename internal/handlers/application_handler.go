package handlers

import (
	"errors"
	"net/http"

	"greenjobs_backend/internal/logger"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"
	"greenjobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler принимает заявки с публичной формы (multipart)
type ApplicationHandler struct {
	*BaseHandler
	intakeService services.IntakeService
	maxBodySize   int64
}

func NewApplicationHandler(base *BaseHandler, intakeService services.IntakeService, maxBodySize int64) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:   base,
		intakeService: intakeService,
		maxBodySize:   maxBodySize,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.Submit)
}

// POST /applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	if h.maxBodySize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)
	}

	var input dto.ApplicationInput
	if err := c.ShouldBind(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeLimitExceeded, "upload",
				"Request is too large", http.StatusRequestEntityTooLarge))
			return
		}
		logger.CtxWithError(ctx, "Failed to bind application form", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid application form"))
		return
	}

	var err error
	if input.Resume, err = formFile(c, "resume"); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}
	if input.Photo, err = formFile(c, "photo"); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	result, err := h.intakeService.Submit(ctx, h.GetDB(c), &input)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, result.Message, result, "")
}

// formFile - nil, если файл не прикладывали
func formFile(c *gin.Context, field string) (*dto.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return dto.FromFileHeader(fh), nil
}

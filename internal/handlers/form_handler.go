package handlers

import (
	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// FormConfigResponse - все, что нужно клиенту, чтобы нарисовать форму заявки
type FormConfigResponse struct {
	Fields     config.FormFields `json:"fields"`
	Industries []dto.IndustryDTO `json:"industries"`
	Experience []string          `json:"experience"`
}

type FormHandler struct {
	*BaseHandler
	authService      services.AuthService
	directoryService services.DirectoryService
	fields           config.FormFields
}

func NewFormHandler(base *BaseHandler, authService services.AuthService, directoryService services.DirectoryService, fields config.FormFields) *FormHandler {
	return &FormHandler{
		BaseHandler:      base,
		authService:      authService,
		directoryService: directoryService,
		fields:           fields,
	}
}

func (h *FormHandler) RegisterRoutes(rg *gin.RouterGroup) {
	form := rg.Group("/form")
	{
		form.GET("/token", h.Token)
		form.GET("/fields", h.Fields)
	}
}

// GET /form/token - токен submit_application для публичной формы
func (h *FormHandler) Token(c *gin.Context) {
	token, err := h.authService.FormToken()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	respondOK(c, token)
}

func (h *FormHandler) Fields(c *gin.Context) {
	industries, err := h.directoryService.Industries(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, FormConfigResponse{
		Fields:     h.fields,
		Industries: industries,
		Experience: models.ExperienceBuckets,
	})
}

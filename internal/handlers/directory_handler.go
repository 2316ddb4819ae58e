package handlers

import (
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler - публичный JSON API каталога
type DirectoryHandler struct {
	*BaseHandler
	directoryService  services.DirectoryService
	statisticsService services.StatisticsService
}

func NewDirectoryHandler(base *BaseHandler, directoryService services.DirectoryService, statisticsService services.StatisticsService) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler:       base,
		directoryService:  directoryService,
		statisticsService: statisticsService,
	}
}

func (h *DirectoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/industries", h.Industries)

	directory := rg.Group("/directory")
	{
		directory.GET("", h.List)
		directory.GET("/categories/:slug", h.Category)
		directory.GET("/featured", h.Featured)
		directory.GET("/statistics", h.Statistics)
		directory.GET("/profiles/:id", h.Profile)
	}
}

func (h *DirectoryHandler) Industries(c *gin.Context) {
	industries, err := h.directoryService.Industries(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, industries)
}

// GET /directory?industry=&q=&page=&per_page=
func (h *DirectoryHandler) List(c *gin.Context) {
	var query dto.DirectoryQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	page, err := h.directoryService.List(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *DirectoryHandler) Category(c *gin.Context) {
	page, err := h.directoryService.ListCategory(
		c.Request.Context(),
		h.GetDB(c),
		c.Param("slug"),
		ParseQueryInt(c, "page", 1),
		ParseQueryInt(c, "per_page", 0),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, page)
}

// GET /directory/featured?count=
func (h *DirectoryHandler) Featured(c *gin.Context) {
	profiles, err := h.directoryService.Featured(c.Request.Context(), h.GetDB(c), ParseQueryInt(c, "count", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, profiles)
}

func (h *DirectoryHandler) Statistics(c *gin.Context) {
	stats, err := h.statisticsService.Get(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *DirectoryHandler) Profile(c *gin.Context) {
	id, valid := h.ParseIDParam(c, "id")
	if !valid {
		return
	}

	profile, err := h.directoryService.GetProfile(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, profile)
}

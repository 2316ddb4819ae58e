package handlers

import (
	"bytes"
	"net/http"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/models"
	"greenjobs_backend/internal/render"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// EmbedHandler отдает HTML-блоки для встраивания на страницы сайта:
// форму заявки, каталог, отрасль, карусель избранных и статистику.
type EmbedHandler struct {
	*BaseHandler
	renderer          *render.Renderer
	authService       services.AuthService
	directoryService  services.DirectoryService
	statisticsService services.StatisticsService
	fields            config.FormFields
	site              render.Site
}

func NewEmbedHandler(
	base *BaseHandler,
	renderer *render.Renderer,
	authService services.AuthService,
	directoryService services.DirectoryService,
	statisticsService services.StatisticsService,
	fields config.FormFields,
	site config.SiteConfig,
) *EmbedHandler {
	return &EmbedHandler{
		BaseHandler:       base,
		renderer:          renderer,
		authService:       authService,
		directoryService:  directoryService,
		statisticsService: statisticsService,
		fields:            fields,
		site:              render.SiteFromConfig(site),
	}
}

func (h *EmbedHandler) RegisterRoutes(r *gin.RouterGroup) {
	embed := r.Group("/embed")
	{
		embed.GET("/form", h.Form)
		embed.GET("/directory", h.Directory)
		embed.GET("/category/:slug", h.Category)
		embed.GET("/featured", h.Featured)
		embed.GET("/statistics", h.Statistics)
	}
}

func (h *EmbedHandler) Form(c *gin.Context) {
	var params render.Params
	if !h.BindAndValidate_Query(c, &params) {
		return
	}

	ctx := c.Request.Context()
	token, err := h.authService.FormToken()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	industries, err := h.directoryService.Industries(ctx, h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	h.html(c, render.ViewForm, render.FormView{
		Site:       h.site,
		Params:     params,
		Fields:     h.fields,
		Industries: industries,
		Experience: models.ExperienceBuckets,
		FormToken:  token.Token,
		ActionURL:  "/api/v1/applications",
	})
}

func (h *EmbedHandler) Directory(c *gin.Context) {
	var params render.Params
	if !h.BindAndValidate_Query(c, &params) {
		return
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)

	page, err := h.directoryService.List(ctx, db, dto.DirectoryQuery{
		Industry: params.Industry,
		Search:   params.Search,
		Page:     params.Page,
		PerPage:  params.PerPage,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	industries, err := h.directoryService.Industries(ctx, db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.html(c, render.ViewDirectory, render.DirectoryView{
		Site:       h.site,
		Params:     params,
		Page:       page,
		Industries: industries,
		BasePath:   c.Request.URL.Path,
	})
}

func (h *EmbedHandler) Category(c *gin.Context) {
	var params render.Params
	if !h.BindAndValidate_Query(c, &params) {
		return
	}

	page, err := h.directoryService.ListCategory(c.Request.Context(), h.GetDB(c), c.Param("slug"), params.Page, params.PerPage)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.html(c, render.ViewCategory, render.DirectoryView{
		Site:     h.site,
		Params:   params,
		Page:     page,
		BasePath: c.Request.URL.Path,
	})
}

func (h *EmbedHandler) Featured(c *gin.Context) {
	var params render.Params
	if !h.BindAndValidate_Query(c, &params) {
		return
	}

	profiles, err := h.directoryService.Featured(c.Request.Context(), h.GetDB(c), params.Count)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.html(c, render.ViewFeatured, render.FeaturedView{
		Site:     h.site,
		Params:   params,
		Profiles: profiles,
	})
}

func (h *EmbedHandler) Statistics(c *gin.Context) {
	var params render.Params
	if !h.BindAndValidate_Query(c, &params) {
		return
	}

	stats, err := h.statisticsService.Get(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.html(c, render.ViewStatistics, render.NewStatisticsView(h.site, params, stats))
}

// html рендерит в буфер, чтобы ошибка шаблона не оставила полуотправленный ответ
func (h *EmbedHandler) html(c *gin.Context, view string, data any) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view, data); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

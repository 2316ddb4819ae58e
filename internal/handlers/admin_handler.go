package handlers

import (
	"net/http"
	"strconv"

	"greenjobs_backend/internal/auth"
	"greenjobs_backend/internal/middleware"
	"greenjobs_backend/internal/services"
	"greenjobs_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminHandler - модерация заявок.
// Изменяющие запросы требуют и сессию, и X-Action-Token для admin_action.
type AdminHandler struct {
	*BaseHandler
	applicantService services.ApplicantService
	lifecycleService services.LifecycleService
	authService      services.AuthService
	uploadService    services.UploadService
	tokens           *auth.TokenManager
}

func NewAdminHandler(
	base *BaseHandler,
	applicantService services.ApplicantService,
	lifecycleService services.LifecycleService,
	authService services.AuthService,
	uploadService services.UploadService,
	tokens *auth.TokenManager,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:      base,
		applicantService: applicantService,
		lifecycleService: lifecycleService,
		authService:      authService,
		uploadService:    uploadService,
		tokens:           tokens,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.tokens))
	{
		// токен действия выдается по одной только сессии
		admin.GET("/token", middleware.RequirePermission(auth.PermApplicantsRead), h.IssueActionToken)

		read := middleware.RequirePermission(auth.PermApplicantsRead)
		actionToken := middleware.RequireActionToken(h.tokens)

		applicants := admin.Group("/applicants")
		{
			applicants.GET("", read, h.List)
			applicants.GET("/:id", read, h.Get)
			applicants.GET("/:id/resume", read, h.DownloadResume)
			applicants.PUT("/:id", middleware.RequirePermission(auth.PermApplicantsEdit), actionToken, h.Update)
		}

		users := admin.Group("/users", middleware.RequirePermission(auth.PermUsersManage))
		{
			users.POST("", actionToken, h.CreateUser)
		}

		moderate := applicants.Group("", middleware.RequirePermission(auth.PermApplicantsModerate), actionToken)
		{
			moderate.POST("/:id/approve", h.Approve)
			moderate.POST("/:id/reject", h.Reject)
			moderate.POST("/:id/reconsider", h.Reconsider)
			moderate.POST("/:id/featured", h.SetFeatured)
			moderate.DELETE("/:id", h.Remove)
		}
	}
}

// GET /admin/token
func (h *AdminHandler) IssueActionToken(c *gin.Context) {
	userID, authorized := h.GetAndAuthorizeUserID(c)
	if !authorized {
		return
	}

	token, err := h.authService.AdminActionToken(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, token)
}

// POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created", user, "")
}

// GET /admin/applicants
func (h *AdminHandler) List(c *gin.Context) {
	var query dto.AdminListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.applicantService.List(c.Request.Context(), h.GetDB(c), query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, result)
}

// GET /admin/applicants/:id
func (h *AdminHandler) Get(c *gin.Context) {
	id, valid := h.ParseIDParam(c, "id")
	if !valid {
		return
	}

	applicant, err := h.applicantService.Get(c.Request.Context(), h.GetDB(c), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respondOK(c, applicant)
}

// PUT /admin/applicants/:id
func (h *AdminHandler) Update(c *gin.Context) {
	id, valid := h.ParseIDParam(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	applicant, err := h.applicantService.UpdateProfile(c.Request.Context(), h.GetDB(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Applicant updated", applicant, "")
}

// GET /admin/applicants/:id/resume
func (h *AdminHandler) DownloadResume(c *gin.Context) {
	id, valid := h.ParseIDParam(c, "id")
	if !valid {
		return
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)

	uploadID, err := h.applicantService.ResumeUploadID(ctx, db, id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	upload, rc, err := h.uploadService.Open(ctx, db, uploadID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, upload.Size, upload.MimeType, rc, map[string]string{
		"Content-Disposition": "attachment; filename=" + strconv.Quote(upload.OriginalName),
	})
}

// POST /admin/applicants/:id/approve
func (h *AdminHandler) Approve(c *gin.Context) {
	h.runAction(c, func(id uint) (*dto.ActionResult, error) {
		return h.lifecycleService.Approve(c.Request.Context(), h.GetDB(c), id)
	})
}

// POST /admin/applicants/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	// тело необязательно: причина может быть пустой
	if c.Request.ContentLength != 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	h.runAction(c, func(id uint) (*dto.ActionResult, error) {
		return h.lifecycleService.Reject(c.Request.Context(), h.GetDB(c), id, req.Reason)
	})
}

// POST /admin/applicants/:id/reconsider
func (h *AdminHandler) Reconsider(c *gin.Context) {
	h.runAction(c, func(id uint) (*dto.ActionResult, error) {
		return h.lifecycleService.Reconsider(c.Request.Context(), h.GetDB(c), id)
	})
}

// POST /admin/applicants/:id/featured
func (h *AdminHandler) SetFeatured(c *gin.Context) {
	var req dto.FeaturedRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	h.runAction(c, func(id uint) (*dto.ActionResult, error) {
		return h.lifecycleService.ToggleFeatured(c.Request.Context(), h.GetDB(c), id, req.Featured)
	})
}

// DELETE /admin/applicants/:id
func (h *AdminHandler) Remove(c *gin.Context) {
	h.runAction(c, func(id uint) (*dto.ActionResult, error) {
		return h.lifecycleService.Remove(c.Request.Context(), h.GetDB(c), id, c.Query("reason"))
	})
}

func (h *AdminHandler) runAction(c *gin.Context, action func(id uint) (*dto.ActionResult, error)) {
	id, valid := h.ParseIDParam(c, "id")
	if !valid {
		return
	}

	result, err := action(id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, result.Message, result.Applicant, result.Redirect)
}

package apperrors

import (
	"log/slog"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

var debugMode atomic.Bool

// SetDebug включает вывод деталей внутренних ошибок (только development)
func SetDebug(debug bool) {
	debugMode.Store(debug)
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.Error("server error",
			"code", appErr.Code,
			"domain", appErr.Domain,
			"error", appErr.Unwrap(),
			"path", c.Request.URL.Path,
		)
		if !h.Debug {
			// В продакшене скрываем детали
			appErr = &AppError{Code: appErr.Code, Domain: appErr.Domain, Message: appErr.Message, HTTPCode: appErr.HTTPCode}
		} else if appErr.Err != nil && appErr.Details == nil {
			appErr = appErr.WithDetails(appErr.Err.Error())
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugMode.Load()}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HandleBindingError - ошибка разбора тела запроса
func HandleBindingError(c *gin.Context, err error) {
	HandleError(c, NewBadRequestError("Invalid request body").WithError(err))
}

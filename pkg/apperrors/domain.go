package apperrors

import (
	"fmt"
	"net/http"
	"strings"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок домена заявок и каталога.
*/

// =========================================================================
// Фабричные ФУНКЦИИ
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrInvalidStatus - переход статуса не разрешен (409)
func ErrInvalidStatus(from, to string) *AppError {
	return New(CodeInvalidStatus, "applicant",
		fmt.Sprintf("Cannot change status from %s to %s", from, to),
		http.StatusConflict)
}

// ErrFileTooLarge - файл превышает лимит
func ErrFileTooLarge(field string, limit int64) *AppError {
	return New(CodeLimitExceeded, "upload",
		fmt.Sprintf("%s exceeds the maximum size of %d MB", field, limit/(1024*1024)),
		http.StatusBadRequest)
}

// ErrInvalidFileType - расширение или содержимое файла не из списка разрешенных
func ErrInvalidFileType(field string, allowed []string) *AppError {
	return New(CodeValidationFailed, "upload",
		fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
		http.StatusBadRequest)
}

// ErrUploadFailed - ошибка сохранения файла
func ErrUploadFailed(err error) *AppError {
	return Wrap(err, CodeUploadFailed, "upload", "Failed to upload file", http.StatusInternalServerError)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

var ErrApplicantNotFound = New(
	CodeApplicantNotFound,
	"applicant",
	"Applicant not found",
	http.StatusNotFound,
)

var ErrIndustryNotFound = New(
	CodeIndustryNotFound,
	"industry",
	"Industry not found",
	http.StatusNotFound,
)

// ErrDuplicateEmail - email уже используется любой заявкой, независимо от статуса
var ErrDuplicateEmail = New(
	CodeDuplicateEntry,
	"applicant",
	"An application with this email address already exists",
	http.StatusConflict,
)

// ErrSecurityCheck - токен формы или действия не прошел проверку.
// Сообщение фиксированное, подробности не раскрываются.
var ErrSecurityCheck = New(
	CodeSecurityCheck,
	"security",
	"Security check failed",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrSaveApplication = New(
	CodeDatabaseError,
	"applicant",
	"Failed to save application",
	http.StatusInternalServerError,
)

// ErrFeatureRequiresApproval - отметить можно только одобренную заявку
var ErrFeatureRequiresApproval = New(
	CodeInvalidStatus,
	"applicant",
	"Only approved applicants can be featured",
	http.StatusConflict,
)

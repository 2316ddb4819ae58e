package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие, не-доменные коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeStorageError  ErrorCode = "STORAGE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	// Заявки и загрузки
	CodeApplicantNotFound ErrorCode = "APPLICANT_NOT_FOUND"
	CodeIndustryNotFound  ErrorCode = "INDUSTRY_NOT_FOUND"
	CodeDuplicateEntry    ErrorCode = "DUPLICATE_ENTRY"
	CodeUploadFailed      ErrorCode = "UPLOAD_FAILED"

	// Аутентификация и авторизация
	CodeSecurityCheck      ErrorCode = "SECURITY_CHECK_FAILED"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

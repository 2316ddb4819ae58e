package repositories

import (
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrEmailTaken        = errors.New("email already used by another application")
	ErrIndustryNotFound  = errors.New("industry not found")
	ErrUploadNotFound    = errors.New("upload not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// isUniqueViolation - нарушение уникального индекса.
// gorm переводит ошибку при TranslateError, строки - на случай, если перевод выключен.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// paginate - общий LIMIT/OFFSET; pageSize <= 0 отключает пагинацию
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		if page-1 > math.MaxInt/pageSize {
			// смещение не помещается в int: такой страницы заведомо нет
			return db.Where("1 = 0")
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// pageBeyondTotal - страница за последней, запрос строк не нужен
func pageBeyondTotal(page, pageSize int, total int64) bool {
	if pageSize <= 0 || page <= 1 {
		return false
	}
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return int64(page-1) >= totalPages
}

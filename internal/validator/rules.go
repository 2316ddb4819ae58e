package validator

import (
	"log"
	"regexp"

	"greenjobs_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// registerCustomRules регистрирует все кастомные функции валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-applicant-status': статус заявки (фильтр админки)
	mustRegister("is-applicant-status", validateApplicantStatus)

	// 'is-layout': вид каталога grid|list
	mustRegister("is-layout", validateLayout)

	// 'is-experience': число лет или корзина
	mustRegister("is-experience", validateExperience)

	// 'is-slug': slug отрасли
	mustRegister("is-slug", validateSlug)
}

// Пустые значения пропускаются: для этого есть 'required'

func validateApplicantStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ApplicantStatus(value).IsValid()
}

func validateLayout(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "grid", "list":
		return true
	default:
		return false
	}
}

func validateExperience(fl validator.FieldLevel) bool {
	_, err := models.ParseExperience(fl.Field().String())
	return err == nil
}

func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || slugRe.MatchString(value)
}

// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cakebook/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("difficulty", validateDifficulty)
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("any_filled", validateAnyFilled)
	}
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().String()).Valid()
}

// validateNotBlank rejects strings made only of whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateAnyFilled requires a []string with at least one non-blank entry.
func validateAnyFilled(fl validator.FieldLevel) bool {
	items, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}

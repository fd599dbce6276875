package utils

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/prepkit/exam-engine/internal/errors"
	"github.com/prepkit/exam-engine/internal/models"
)

// Validator wraps go-playground struct validation with the custom rules this
// service uses.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("testkind", validateTestKind)
	return &Validator{validate: v}
}

// Validate runs struct-tag validation and converts failures into the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func validateTestKind(fl validator.FieldLevel) bool {
	switch models.TestKind(fl.Field().String()) {
	case models.TestKindStandard, models.TestKindAdvanced:
		return true
	}
	return false
}

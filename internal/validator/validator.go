package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation and the question answer-key checks
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a validator with the custom tags registered
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and returns ValidationErrors on failure
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}

	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("cognitive_level", validateCognitiveLevel)

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateCognitiveLevel(fl validator.FieldLevel) bool {
	return models.CognitiveLevel(fl.Field().String()).IsValid()
}

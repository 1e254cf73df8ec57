package services

import (
	"reflect"
	"strings"

	"fittrack/internal/models"
	"fittrack/internal/window"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NewValidator returns a validator that knows the fittrack-specific tags:
// calendar_date (strict YYYY-MM-DD), task_name (enumerated daily task) and
// notblank. Field names in errors use the json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		return window.IsDate(fl.Field().String())
	})
	_ = v.RegisterValidation("task_name", func(fl validator.FieldLevel) bool {
		return models.IsDailyTask(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

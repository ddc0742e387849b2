package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Date and clock formats are not checked here: the scheduler owns them and
// reports invalid_window, which clients rely on.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(quizPatchReq)
		if p.CourseID == nil && p.Title == nil && p.Description == nil &&
			p.Date == nil && p.StartTime == nil && p.EndTime == nil {
			sl.ReportError(p, "body", "body", "nonempty", "")
		}
	}, quizPatchReq{})
	return v
}

// validationMessage flattens validator errors into "field: tag" pairs.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid input"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		parts = append(parts, msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

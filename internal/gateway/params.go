package gateway

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bhasha-api/internal/generation"
)

// Request parameter sets, one per operation. Field names in errors follow
// the json tags.
type (
	chatParams struct {
		Message  string `json:"message" validate:"required"`
		Language string `json:"language" validate:"required"`
		Level    string `json:"level" validate:"required"`
	}

	exerciseParams struct {
		Language   string `json:"language" validate:"required"`
		Level      string `json:"level" validate:"required"`
		LessonType string `json:"lessonType" validate:"required"`
	}

	vocabularyParams struct {
		Level    string `json:"level" validate:"required"`
		Category string `json:"category" validate:"required"`
	}

	quizParams struct {
		Level    string `json:"level" validate:"required"`
		Category string `json:"category" validate:"required"`
		Count    int    `json:"count" validate:"gte=0"`
	}

	suggestionParams struct {
		Input string `json:"input" validate:"required"`
		Level string `json:"level" validate:"required"`
	}

	explanationParams struct {
		Word string `json:"word" validate:"required"`
	}
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkParams validates p and reports every failing field at once.
func (g *Gateway) checkParams(p any) error {
	err := g.validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fe.Field())
	}
	return &generation.InvalidParameterError{Params: names}
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

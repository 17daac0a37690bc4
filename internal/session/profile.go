package session

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile is collected during onboarding and drives every generation
// request made on the learner's behalf.
type Profile struct {
	Name           string   `json:"name" validate:"required,max=100"`
	TargetLanguage string   `json:"targetLanguage" validate:"required,oneof=Hindi Telugu Tamil Punjabi"`
	NativeLanguage string   `json:"nativeLanguage" validate:"required,max=50"`
	Level          string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Interests      []string `json:"interests" validate:"max=20,dive,required,max=50"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// normalize trims free-text fields and drops blank interests.
func (p Profile) normalize() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.TargetLanguage = strings.TrimSpace(p.TargetLanguage)
	p.NativeLanguage = strings.TrimSpace(p.NativeLanguage)
	p.Level = strings.ToLower(strings.TrimSpace(p.Level))

	interests := make([]string, 0, len(p.Interests))
	for _, interest := range p.Interests {
		if interest = strings.TrimSpace(interest); interest != "" {
			interests = append(interests, interest)
		}
	}
	p.Interests = interests
	return p
}

// Validate checks the profile's struct tags.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return nil
}

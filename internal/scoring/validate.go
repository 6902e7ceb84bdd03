package scoring

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/david/syncscout/internal/models"
)

// ErrInvalidProfile is matched by every profile validation failure.
var ErrInvalidProfile = errors.New("invalid feature profile")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldViolation describes one missing or out-of-range field.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
	Value any    `json:"value"`
}

// ProfileError lists the fields that made a profile invalid.
type ProfileError struct {
	Violations []FieldViolation
}

func (e *ProfileError) Error() string {
	if len(e.Violations) == 0 {
		return ErrInvalidProfile.Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Param != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", v.Field, v.Rule, v.Param, v.Value))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s (got %v)", v.Field, v.Rule, v.Value))
		}
	}
	return ErrInvalidProfile.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ProfileError) Is(target error) bool {
	return target == ErrInvalidProfile
}

// ValidateProfile checks every field against its documented range.
func ValidateProfile(p models.FeatureProfile) error {
	return validateStruct(p)
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	pe := &ProfileError{Violations: make([]FieldViolation, 0, len(verrs))}
	for _, fe := range verrs {
		pe.Violations = append(pe.Violations, FieldViolation{
			Field: toSnake(fe.Field()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return pe
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

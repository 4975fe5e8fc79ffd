// Package seller drives the buyer→seller onboarding workflow: a two-step
// application draft with progressive validation gates and an at-most-one
// in-flight submission.
package seller

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	dErrors "agora/pkg/domain-errors"
)

// Draft is the in-progress application. Portfolio is always optional; every
// other field is required by one of the two gates.
type Draft struct {
	BusinessName string `json:"businessName" validate:"notblank"`
	Description  string `json:"description" validate:"notblank"`
	Expertise    string `json:"expertise" validate:"notblank"`
	Experience   string `json:"experience" validate:"notblank"`
	Portfolio    string `json:"portfolio,omitempty"`
	Motivation   string `json:"motivation" validate:"notblank"`
}

// stepTwoGate lists the fields required before the draft may advance to
// step 2; the submit gate additionally requires the remaining two.
var (
	stepTwoGate    = []string{"BusinessName", "Description", "Expertise"}
	submitGateOnly = []string{"Experience", "Motivation"}
)

// newValidator builds the draft validator. notblank trims whitespace before
// checking, so "   " fails the gate exactly like "". Field names in
// validation errors use the JSON wire names the UI knows.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkGate validates the named fields and reports the invalid ones.
func checkGate(v *validator.Validate, draft Draft, fields ...string) error {
	err := v.StructPartial(draft, fields...)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return dErrors.Wrap(err, dErrors.CodeInternal, "validate draft")
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return dErrors.Invalid("required fields are missing", missing...)
}

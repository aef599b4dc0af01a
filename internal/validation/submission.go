package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Maximum accepted field lengths, inclusive. Enforced here regardless of any
// client-side limits; the gateway is the trust boundary.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MaxSubjectLength = 150
	MaxMessageLength = 2000
)

// Validation outcomes, in order of precedence.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrFieldLength   = errors.New("field length out of bounds")
	ErrInvalidEmail  = errors.New("invalid email address")
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	crlfPattern = regexp.MustCompile(`[\r\n]+`)

	// Liberal address shape: something@something.something with no spaces or
	// extra @ signs. Deliberately not full RFC validation.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("contact_email", validateContactEmail); err != nil {
		panic(fmt.Sprintf("failed to register contact_email validator: %v", err))
	}
}

func validateContactEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

// Submission is a contact form submission after sanitization.
type Submission struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,max=254,contact_email"`
	Subject string `validate:"max=150"`
	Message string `validate:"required,max=2000"`
}

// SanitizeHeaderValue collapses CR/LF runs to a single space and trims the
// result. Applied to any value that may end up in a mail header.
func SanitizeHeaderValue(value string) string {
	return strings.TrimSpace(crlfPattern.ReplaceAllString(value, " "))
}

// Validate checks the sanitized submission and returns ErrMissingFields,
// ErrFieldLength or ErrInvalidEmail for the first failing class of check, or
// nil when the submission is acceptable.
func (s *Submission) Validate() error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return classify(verrs)
}

// classify maps validator failures onto the submission error taxonomy.
// Presence outranks length, which outranks address shape, no matter which
// field tripped first.
func classify(verrs validator.ValidationErrors) error {
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrMissingFields
		}
	}
	for _, fe := range verrs {
		if fe.Tag() == "max" {
			return ErrFieldLength
		}
	}
	return ErrInvalidEmail
}

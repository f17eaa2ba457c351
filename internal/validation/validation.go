// Package validation holds the shared validator instance used for domain
// constraints, and the field-level error shape every 400 response carries.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// Job links must be absolute http(s) URLs.
var httpURLPattern = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)

// Error reports every offending field of a payload at once.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

var (
	once     sync.Once
	instance *validator.Validate
)

func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})

		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsHTTPURL(fl.Field().String())
		})

		// string length in bytes; bcrypt refuses input past 72
		_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= n
		})

		instance = v
	})

	return instance
}

func IsHTTPURL(s string) bool {
	return httpURLPattern.MatchString(s)
}

// Struct validates every field of s and returns all violations, or nil.
func Struct(s any) ([]FieldError, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	return FromValidator(verrs, nil), nil
}

// FromValidator converts validator errors; name, when non-nil, overrides
// how a field name is derived.
func FromValidator(verrs validator.ValidationErrors, name func(validator.FieldError) string) []FieldError {
	out := make([]FieldError, 0, len(verrs))

	for _, fe := range verrs {
		field := fe.Field()
		if name != nil {
			field = name(fe)
		}

		out = append(out, FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: Message(fe.Tag(), fe.Param()),
		})
	}

	return out
}

func Message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "httpurl":
		return "must be a valid URL with HTTP or HTTPS"
	case "date":
		return "must be a date (YYYY-MM-DD or RFC 3339)"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

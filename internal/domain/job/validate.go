package job

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/jobtrail/internal/validation"
)

type fields struct {
	Company         string `json:"company" validate:"required,max=100"`
	Role            string `json:"role" validate:"required,max=100"`
	Status          string `json:"status" validate:"required,oneof=Applied Interview Offer Rejected"`
	ApplicationDate string `json:"applicationDate"`
	Link            string `json:"link" validate:"omitempty,httpurl"`
	Notes           string `json:"notes" validate:"max=500"`
}

// validate checks all constraints and returns the parsed application date
// (zero when none was given).
func (f fields) validate() (time.Time, error) {
	errs, err := validation.Struct(f)
	if err != nil {
		return time.Time{}, err
	}

	var applied time.Time
	if f.ApplicationDate != "" {
		t, perr := ParseDate(f.ApplicationDate)
		if perr != nil {
			errs = append(errs, validation.FieldError{
				Field:   "applicationDate",
				Rule:    "date",
				Message: validation.Message("date", ""),
			})
		} else {
			applied = t
		}
	}

	if len(errs) > 0 {
		return time.Time{}, &validation.Error{Fields: errs}
	}

	return applied, nil
}

const dateLayout = "2006-01-02"

var errBadDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ParseDate accepts a calendar day (UTC midnight) or a full RFC 3339 instant.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}

	// postgres keeps microseconds
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Truncate(time.Microsecond), nil
	}

	return time.Time{}, errBadDate
}

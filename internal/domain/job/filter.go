package job

import (
	"strings"
	"time"
)

// with pointers if optional, it will be nil
type Filter struct {
	Status     *Status
	StartDate  *time.Time
	EndDate    *time.Time // already extended to the last instant of its day
	SearchTerm *string    // lower-cased
}

// FilterParams is the raw query string form of a Filter.
type FilterParams struct {
	Status     string `form:"status"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	SearchTerm string `form:"searchTerm"`
}

// EndOfDay returns 23:59:59.999 on t's calendar day (UTC).
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// ParseFilter turns query params into a Filter. Empty params impose nothing.
func ParseFilter(p FilterParams) (Filter, error) {
	var f Filter
	var bad []string

	if s := strings.TrimSpace(p.Status); s != "" {
		st, err := ParseStatus(s)
		if err != nil {
			bad = append(bad, "status")
		} else {
			f.Status = &st
		}
	}

	if s := strings.TrimSpace(p.StartDate); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			bad = append(bad, "startDate")
		} else {
			f.StartDate = &t
		}
	}

	if s := strings.TrimSpace(p.EndDate); s != "" {
		t, err := ParseDate(s)
		if err != nil {
			bad = append(bad, "endDate")
		} else {
			end := EndOfDay(t)
			f.EndDate = &end
		}
	}

	if s := strings.TrimSpace(p.SearchTerm); s != "" {
		term := strings.ToLower(s)
		f.SearchTerm = &term
	}

	if len(bad) > 0 {
		return Filter{}, &FilterError{Params: bad}
	}

	return f, nil
}

type FilterError struct {
	Params []string
}

func (e *FilterError) Error() string {
	return "invalid filter: " + strings.Join(e.Params, ", ")
}

// Matches is the reference predicate: every set constraint must hold.
func (f Filter) Matches(j Job) bool {
	if f.Status != nil && j.Status != *f.Status {
		return false
	}

	if f.StartDate != nil && j.ApplicationDate.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && j.ApplicationDate.After(*f.EndDate) {
		return false
	}

	if f.SearchTerm != nil {
		term := *f.SearchTerm
		if !strings.Contains(strings.ToLower(j.Company), term) &&
			!strings.Contains(strings.ToLower(j.Role), term) {
			return false
		}
	}

	return true
}

// Apply keeps the jobs that match, preserving order.
func (f Filter) Apply(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}

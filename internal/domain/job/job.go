package job

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

var (
	ErrNotFound      = errors.New("job not found")
	ErrForbidden     = errors.New("job belongs to another user")
	ErrInvalidStatus = errors.New("invalid job status")
)

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

type Job struct {
	ID              string    `json:"id"`
	Company         string    `json:"company"`
	Role            string    `json:"role"`
	Status          Status    `json:"status"`
	ApplicationDate time.Time `json:"applicationDate"`
	Link            string    `json:"link,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	OwnerID         string    `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateRequest is the client payload for a new job. Owner, id and
// timestamps are never taken from it.
type CreateRequest struct {
	Company         string `json:"company"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	ApplicationDate string `json:"applicationDate"`
	Link            string `json:"link"`
	Notes           string `json:"notes"`
}

// UpdateRequest is a partial update: nil means "leave as is".
type UpdateRequest struct {
	Company         *string `json:"company"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	ApplicationDate *string `json:"applicationDate"`
	Link            *string `json:"link"`
	Notes           *string `json:"notes"`
}

// New builds a validated job owned by ownerID.
func New(ownerID string, req CreateRequest, now time.Time) (Job, error) {
	in := fields{
		Company:         strings.TrimSpace(req.Company),
		Role:            strings.TrimSpace(req.Role),
		Status:          req.Status,
		ApplicationDate: strings.TrimSpace(req.ApplicationDate),
		Link:            strings.TrimSpace(req.Link),
		Notes:           req.Notes,
	}

	if in.Status == "" {
		in.Status = string(StatusApplied)
	}

	applied, err := in.validate()
	if err != nil {
		return Job{}, err
	}

	if applied.IsZero() {
		applied = now
	}

	return Job{
		ID:              uuid.NewString(),
		Company:         in.Company,
		Role:            in.Role,
		Status:          Status(in.Status),
		ApplicationDate: applied,
		Link:            in.Link,
		Notes:           in.Notes,
		OwnerID:         ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Apply merges the provided fields into a copy of j and re-validates the
// result. ID, OwnerID and CreatedAt are carried over untouched.
func (j Job) Apply(req UpdateRequest, now time.Time) (Job, error) {
	in := fields{
		Company: j.Company,
		Role:    j.Role,
		Status:  string(j.Status),
		Link:    j.Link,
		Notes:   j.Notes,
	}

	if req.Company != nil {
		in.Company = strings.TrimSpace(*req.Company)
	}
	if req.Role != nil {
		in.Role = strings.TrimSpace(*req.Role)
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.ApplicationDate != nil {
		in.ApplicationDate = strings.TrimSpace(*req.ApplicationDate)
	}
	if req.Link != nil {
		in.Link = strings.TrimSpace(*req.Link)
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}

	applied, err := in.validate()
	if err != nil {
		return Job{}, err
	}

	out := j
	out.Company = in.Company
	out.Role = in.Role
	out.Status = Status(in.Status)
	out.Link = in.Link
	out.Notes = in.Notes
	if !applied.IsZero() {
		out.ApplicationDate = applied
	}
	out.UpdatedAt = now

	return out, nil
}

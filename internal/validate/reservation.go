package validate

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ReservationCreate is the payload for POST /reservations. Instants arrive
// as RFC 3339 strings and are converted after the field rules pass.
type ReservationCreate struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,min=6"`
	ItemType        string `json:"item_type" validate:"required,min=3"`
	ItemName        string `json:"item_name" validate:"required,min=5"`
	ItemDescription string `json:"item_description" validate:"omitempty,min=1"`
	StartAt         string `json:"start_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt           string `json:"end_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Status          string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes           string `json:"notes" validate:"omitempty,max=500"`
}

// Validate checks every field rule plus the window rule end_at > start_at.
func (r *ReservationCreate) Validate() error {
	if err := check(r); err != nil {
		return err
	}
	start, _ := time.Parse(time.RFC3339, r.StartAt)
	end, _ := time.Parse(time.RFC3339, r.EndAt)
	if !end.After(start) {
		return issueError("end_at", "must be after start_at")
	}
	return nil
}

// StartTime returns the parsed start instant. Call only after Validate.
func (r *ReservationCreate) StartTime() time.Time {
	t, _ := time.Parse(time.RFC3339, r.StartAt)
	return t
}

// EndTime returns the parsed end instant. Call only after Validate.
func (r *ReservationCreate) EndTime() time.Time {
	t, _ := time.Parse(time.RFC3339, r.EndAt)
	return t
}

// ReservationUpdate is the partial patch for PUT /reservations/{id}.
// Absent fields stay untouched; present fields obey the same rules as at
// creation. The window rule is only checked here when the patch carries
// both instants; when it carries one, the service re-checks against the
// merged record before writing.
type ReservationUpdate struct {
	Name            *string `json:"name" validate:"omitempty,min=2"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,min=6"`
	ItemType        *string `json:"item_type" validate:"omitempty,min=3"`
	ItemName        *string `json:"item_name" validate:"omitempty,min=5"`
	ItemDescription *string `json:"item_description" validate:"omitempty,min=1"`
	StartAt         *string `json:"start_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndAt           *string `json:"end_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes           *string `json:"notes" validate:"omitempty,max=500"`
}

// Validate checks the patch.
func (r *ReservationUpdate) Validate() error {
	if err := check(r); err != nil {
		return err
	}
	if r.StartAt != nil && r.EndAt != nil {
		start, _ := time.Parse(time.RFC3339, *r.StartAt)
		end, _ := time.Parse(time.RFC3339, *r.EndAt)
		if !end.After(start) {
			return issueError("end_at", "must be after start_at")
		}
	}
	return nil
}

// StartTime returns the parsed start instant, or nil when absent.
func (r *ReservationUpdate) StartTime() *time.Time {
	if r.StartAt == nil {
		return nil
	}
	t, _ := time.Parse(time.RFC3339, *r.StartAt)
	return &t
}

// EndTime returns the parsed end instant, or nil when absent.
func (r *ReservationUpdate) EndTime() *time.Time {
	if r.EndAt == nil {
		return nil
	}
	t, _ := time.Parse(time.RFC3339, *r.EndAt)
	return &t
}

// ListQuery is the parsed query-parameter set for GET /reservations.
type ListQuery struct {
	Status  string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Email   string `json:"email" validate:"omitempty,email"`
	Q       string `json:"q" validate:"omitempty,min=1"`
	From    string `json:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To      string `json:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndFrom string `json:"endFrom" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTo   string `json:"endTo" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Page    int    `json:"page" validate:"min=1"`
	Limit   int    `json:"limit" validate:"min=1,max=100"`
	Sort    string `json:"sort"`
}

// ParseListQuery coerces and validates the raw query parameters, applying
// the page/limit defaults for absent values.
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Status:  values.Get("status"),
		Email:   values.Get("email"),
		Q:       values.Get("q"),
		From:    values.Get("from"),
		To:      values.Get("to"),
		EndFrom: values.Get("endFrom"),
		EndTo:   values.Get("endTo"),
		Sort:    values.Get("sort"),
		Page:    defaultPage,
		Limit:   defaultLimit,
	}

	var issues []FieldIssue
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, FieldIssue{Field: "page", Message: "must be an integer"})
		} else {
			q.Page = page
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			issues = append(issues, FieldIssue{Field: "limit", Message: "must be an integer"})
		} else {
			q.Limit = limit
		}
	}
	if len(issues) > 0 {
		return ListQuery{}, &ValidationError{Issues: issues}
	}

	if err := check(&q); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

func timeOrNil(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// FromTime returns the parsed lower start bound, or nil when absent.
func (q ListQuery) FromTime() *time.Time { return timeOrNil(q.From) }

// ToTime returns the parsed upper start bound, or nil when absent.
func (q ListQuery) ToTime() *time.Time { return timeOrNil(q.To) }

// EndFromTime returns the parsed lower end bound, or nil when absent.
func (q ListQuery) EndFromTime() *time.Time { return timeOrNil(q.EndFrom) }

// EndToTime returns the parsed upper end bound, or nil when absent.
func (q ListQuery) EndToTime() *time.Time { return timeOrNil(q.EndTo) }

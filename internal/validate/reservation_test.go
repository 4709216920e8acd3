package validate

import (
	"errors"
	"net/url"
	"testing"
)

func validCreate() ReservationCreate {
	return ReservationCreate{
		Name:     "Alice Johnson",
		Email:    "alice@example.com",
		Phone:    "555-0100",
		ItemType: "room",
		ItemName: "Conference Room B",
		StartAt:  "2026-10-01T10:00:00Z",
		EndAt:    "2026-10-01T12:00:00Z",
	}
}

func issueFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	fields := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

func TestReservationCreateValid(t *testing.T) {
	payload := validCreate()
	if err := payload.Validate(); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if payload.StartTime().IsZero() || payload.EndTime().IsZero() {
		t.Fatalf("expected parsed instants after Validate")
	}
}

func TestReservationCreateMissingFields(t *testing.T) {
	payload := ReservationCreate{}
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	fields := issueFields(t, err)
	want := map[string]bool{
		"name": true, "email": true, "phone": true,
		"item_type": true, "item_name": true,
		"start_at": true, "end_at": true,
	}
	for _, f := range fields {
		delete(want, f)
	}
	if len(want) > 0 {
		t.Fatalf("missing issues for fields %v, got %v", want, fields)
	}
}

func TestReservationCreateItemFieldsRequired(t *testing.T) {
	// Leaving out the item fields must reject, unlike the update patch
	// where they may be absent.
	payload := validCreate()
	payload.ItemType = ""
	payload.ItemName = ""
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := issueFields(t, err)
	want := map[string]bool{"item_type": true, "item_name": true}
	for _, f := range fields {
		delete(want, f)
	}
	if len(fields) != 2 || len(want) > 0 {
		t.Fatalf("expected item_type and item_name issues, got %v", fields)
	}

	payload = validCreate()
	payload.ItemType = "ab"
	payload.ItemName = "tiny"
	err = payload.Validate()
	if err == nil {
		t.Fatalf("expected validation error for short item fields")
	}
	fields = issueFields(t, err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 issues for short item fields, got %v", fields)
	}
}

func TestReservationCreateWindowRule(t *testing.T) {
	payload := validCreate()
	payload.EndAt = payload.StartAt
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected window violation")
	}
	fields := issueFields(t, err)
	if len(fields) != 1 || fields[0] != "end_at" {
		t.Fatalf("expected single end_at issue, got %v", fields)
	}
}

func TestReservationCreateBadTimestamp(t *testing.T) {
	payload := validCreate()
	payload.StartAt = "next tuesday"
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := issueFields(t, err)
	if len(fields) != 1 || fields[0] != "start_at" {
		t.Fatalf("expected single start_at issue, got %v", fields)
	}
}

func TestReservationCreateBadStatus(t *testing.T) {
	payload := validCreate()
	payload.Status = "done"
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := issueFields(t, err)
	if len(fields) != 1 || fields[0] != "status" {
		t.Fatalf("expected single status issue, got %v", fields)
	}
}

func TestReservationUpdateEmptyPatchIsValid(t *testing.T) {
	payload := ReservationUpdate{}
	if err := payload.Validate(); err != nil {
		t.Fatalf("expected empty patch to validate, got %v", err)
	}
	if payload.StartTime() != nil || payload.EndTime() != nil {
		t.Fatalf("expected nil instants for absent fields")
	}
}

func TestReservationUpdateWindowRuleBothPresent(t *testing.T) {
	start := "2026-10-01T12:00:00Z"
	end := "2026-10-01T10:00:00Z"
	payload := ReservationUpdate{StartAt: &start, EndAt: &end}
	err := payload.Validate()
	if err == nil {
		t.Fatalf("expected window violation")
	}
	fields := issueFields(t, err)
	if len(fields) != 1 || fields[0] != "end_at" {
		t.Fatalf("expected single end_at issue, got %v", fields)
	}
}

func TestReservationUpdateSingleInstantSkipsWindowRule(t *testing.T) {
	end := "2026-10-01T10:00:00Z"
	payload := ReservationUpdate{EndAt: &end}
	if err := payload.Validate(); err != nil {
		t.Fatalf("expected single-instant patch to pass field rules, got %v", err)
	}
}

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{})
	if err != nil {
		t.Fatalf("parse empty query: %v", err)
	}
	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("expected defaults page=1 limit=10, got page=%d limit=%d", q.Page, q.Limit)
	}
}

func TestParseListQueryCoercion(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "25")
	values.Set("status", "confirmed")
	values.Set("from", "2026-10-01T00:00:00Z")

	q, err := ParseListQuery(values)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if q.Page != 3 || q.Limit != 25 {
		t.Fatalf("unexpected page/limit: %d/%d", q.Page, q.Limit)
	}
	if q.FromTime() == nil {
		t.Fatalf("expected parsed from bound")
	}
	if q.ToTime() != nil || q.EndFromTime() != nil || q.EndToTime() != nil {
		t.Fatalf("expected nil bounds for absent params")
	}
}

func TestParseListQueryNonInteger(t *testing.T) {
	values := url.Values{}
	values.Set("page", "two")

	_, err := ParseListQuery(values)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := issueFields(t, err)
	if len(fields) != 1 || fields[0] != "page" {
		t.Fatalf("expected single page issue, got %v", fields)
	}
}

func TestParseListQueryBounds(t *testing.T) {
	for _, tc := range []struct {
		param string
		value string
		field string
	}{
		{"page", "0", "page"},
		{"limit", "0", "limit"},
		{"limit", "101", "limit"},
		{"status", "archived", "status"},
		{"email", "not-an-email", "email"},
		{"from", "yesterday", "from"},
		{"endTo", "tomorrow", "endTo"},
	} {
		values := url.Values{}
		values.Set(tc.param, tc.value)

		_, err := ParseListQuery(values)
		if err == nil {
			t.Fatalf("expected error for %s=%s", tc.param, tc.value)
		}
		fields := issueFields(t, err)
		if len(fields) != 1 || fields[0] != tc.field {
			t.Fatalf("expected %s issue for %s=%s, got %v", tc.field, tc.param, tc.value, fields)
		}
	}
}

package validate

import "testing"

func TestRegisterRequestValid(t *testing.T) {
	payload := RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "hunter22"}
	if err := payload.Validate(); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestRegisterRequestRejected(t *testing.T) {
	for _, tc := range []struct {
		name    string
		payload RegisterRequest
		field   string
	}{
		{"short name", RegisterRequest{Name: "A", Email: "a@example.com", Password: "hunter22"}, "name"},
		{"bad email", RegisterRequest{Name: "Alice", Email: "nope", Password: "hunter22"}, "email"},
		{"short password", RegisterRequest{Name: "Alice", Email: "a@example.com", Password: "abc"}, "password"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payload.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			fields := issueFields(t, err)
			if len(fields) != 1 || fields[0] != tc.field {
				t.Fatalf("expected %s issue, got %v", tc.field, fields)
			}
		})
	}
}

func TestLoginRequestPasswordOnlyPresence(t *testing.T) {
	payload := LoginRequest{Email: "alice@example.com", Password: "x"}
	if err := payload.Validate(); err != nil {
		t.Fatalf("login should not enforce password length, got %v", err)
	}

	payload.Password = ""
	if err := payload.Validate(); err == nil {
		t.Fatalf("expected error for missing password")
	}
}

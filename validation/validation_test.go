package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/kbukum/liveview/errors"
)

type memberRequest struct {
	Name   string `json:"name" validate:"required,max=8"`
	Team   string `json:"team" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=lead member"`
	Weight int    `json:"weight" validate:"gte=0,lte=10"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		in     memberRequest
		fields []string
	}{
		{"valid", memberRequest{Name: "ada", Team: "core", Role: "lead"}, nil},
		{"missing required", memberRequest{}, []string{"name", "team"}},
		{"too long", memberRequest{Name: "abcdefghij", Team: "core"}, []string{"name"}},
		{"bad oneof", memberRequest{Name: "ada", Team: "core", Role: "boss"}, []string{"role"}},
		{"out of range", memberRequest{Name: "ada", Team: "core", Weight: 11}, []string{"weight"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
			}
			fieldErrs, ok := appErr.Details["fields"].([]FieldError)
			if !ok {
				t.Fatalf("expected field details, got %#v", appErr.Details)
			}
			var got []string
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			if diff := cmp.Diff(tc.fields, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	err := Validate(memberRequest{Name: "ada", Team: "core", Weight: -1})
	if err == nil || !strings.Contains(err.Error(), "weight: must be greater than or equal to 0") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestChecker(t *testing.T) {
	c := New().
		Required("name", "  ").
		MaxLength("team", "platform", 4).
		UUID("id", "not-a-uuid").
		UUID("other", "").
		Custom(false, "age", "must be positive")

	want := []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "team", Message: "must be at most 4 characters"},
		{Field: "id", Message: "must be a valid UUID"},
		{Field: "age", Message: "must be positive"},
	}
	if diff := cmp.Diff(want, c.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if err := c.Validate(); err == nil || err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestCheckerValid(t *testing.T) {
	c := New().Required("name", "ada").UUID("id", uuid.NewString()).Custom(true, "x", "never")
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{"SampleRate": "sample_rate", "name": "name", "ID": "i_d"} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

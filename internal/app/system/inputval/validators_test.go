package inputval

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Email: "john@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_MinRule(t *testing.T) {
	type TestInput struct {
		Title string `validate:"required,min=5" label:"Title"`
	}

	result := Validate(TestInput{Title: "abc"})
	if !result.HasErrors() {
		t.Fatal("expected error for short title")
	}
	if result.First() != "Title must be at least 5 characters." {
		t.Errorf("First() = %q", result.First())
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("one error", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{{Message: "Error 1"}},
		}
		if r.All() != "Error 1" {
			t.Errorf("All() = %q, want %q", r.All(), "Error 1")
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_ByField(t *testing.T) {
	r := &Result{
		Errors: []FieldError{
			{Field: "Title", Message: "Title is required."},
			{Field: "Title", Message: "Second title error."},
			{Field: "Category", Message: "Category must be one of: cutting, dumping."},
		},
	}
	m := r.ByField()
	if len(m) != 2 {
		t.Fatalf("ByField() has %d entries, want 2", len(m))
	}
	if m["Title"] != "Title is required." {
		t.Errorf("ByField()[Title] = %q, want first error kept", m["Title"])
	}
}

func validReportInput() ReportInput {
	return ReportInput{
		Title:       "Illegal cutting near the estuary",
		Description: "Roughly twenty mature trees felled along the north bank overnight.",
		Category:    "cutting",
		Severity:    "high",
		Latitude:    1.29,
		Longitude:   103.85,
		HasLocation: true,
	}
}

func TestValidateReport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReportInput)
		wantIn string // substring of First(); "" means no errors
	}{
		{"valid", func(in *ReportInput) {}, ""},
		{"short title", func(in *ReportInput) { in.Title = "Oil" }, "Title must be at least"},
		{"short description", func(in *ReportInput) { in.Description = "too short" }, "Description must be at least"},
		{"bad category", func(in *ReportInput) { in.Category = "mining" }, "Category must be one of"},
		{"bad severity", func(in *ReportInput) { in.Severity = "extreme" }, "Severity must be one of"},
		{"latitude out of range", func(in *ReportInput) { in.Latitude = 91 }, "Latitude must be between"},
		{"longitude out of range", func(in *ReportInput) { in.Longitude = -181 }, "Longitude must be between"},
		{"missing location", func(in *ReportInput) { in.HasLocation = false }, "Location coordinates are required"},
		{"negative area", func(in *ReportInput) { in.AreaValue = -1 }, "cannot be negative"},
		{"bad area unit", func(in *ReportInput) { in.AreaUnit = "furlongs" }, "Area unit must be one of"},
		{"too many tags", func(in *ReportInput) { in.Tags = make([]string, MaxTags+1) }, "tags are allowed"},
		{"long notes", func(in *ReportInput) { in.Notes = strings.Repeat("x", NotesMaxLen+1) }, "Assessment notes must be at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validReportInput()
			tt.mutate(&in)
			res := ValidateReport(in)
			if tt.wantIn == "" {
				if res.HasErrors() {
					t.Fatalf("expected no errors, got %q", res.All())
				}
				return
			}
			if !res.HasErrors() {
				t.Fatalf("expected error containing %q, got none", tt.wantIn)
			}
			if !strings.Contains(res.All(), tt.wantIn) {
				t.Errorf("errors %q do not contain %q", res.All(), tt.wantIn)
			}
		})
	}
}

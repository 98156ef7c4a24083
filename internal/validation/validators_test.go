package validation

import (
	"testing"
)

type sample struct {
	Title    string `validate:"required,max=10"`
	Time     string `validate:"required,task_time"`
	Priority string `validate:"required,task_priority"`
}

func TestValidate_CustomTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"valid", sample{Title: "Read", Time: "9:00 AM", Priority: "high"}, false},
		{"24h time rejected", sample{Title: "Read", Time: "21:00", Priority: "high"}, true},
		{"bad priority", sample{Title: "Read", Time: "9:00 AM", Priority: "urgent"}, true},
		{"title too long", sample{Title: "Read a lot of books", Time: "9:00 AM", Priority: "low"}, true},
		{"missing title", sample{Time: "9:00 AM", Priority: "low"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate.Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && Describe(err) == "" {
				t.Error("Expected a non-empty description")
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	err := Validate.Struct(sample{Title: "", Time: "noon", Priority: "x"})
	got := Describe(err)
	want := "title is required; time must look like 9:00 AM; priority must be low, medium or high"
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\tend", "line1\nline2\tend"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"low", "medium", "high"} {
		if err := ValidatePriority(p); err != nil {
			t.Errorf("ValidatePriority(%q) unexpected error: %v", p, err)
		}
	}
	if err := ValidatePriority("critical"); err == nil {
		t.Error("Expected error for unknown priority")
	}
}

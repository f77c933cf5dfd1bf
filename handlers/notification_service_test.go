package handlers

import (
	"testing"

	"github.com/google/uuid"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		ctx      notificationContext
		expected string
	}{
		{
			name:     "simple substitution",
			tmpl:     "Report submitted: {{.ReportTitle}}",
			ctx:      notificationContext{ReportTitle: "Structural Assessment"},
			expected: "Report submitted: Structural Assessment",
		},
		{
			name:     "conditional comment present",
			tmpl:     "{{.ActorName}} rejected. {{if .Comment}}Comment: {{.Comment}}{{end}}",
			ctx:      notificationContext{ActorName: "Dewi", Comment: "missing load calcs"},
			expected: "Dewi rejected. Comment: missing load calcs",
		},
		{
			name:     "conditional comment absent",
			tmpl:     "{{.ActorName}} rejected. {{if .Comment}}Comment: {{.Comment}}{{end}}",
			ctx:      notificationContext{ActorName: "Dewi"},
			expected: "Dewi rejected. ",
		},
		{
			name:     "no placeholders",
			tmpl:     "Project status changed.",
			ctx:      notificationContext{},
			expected: "Project status changed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTemplate(tt.tmpl, tt.ctx)
			if err != nil {
				t.Fatalf("renderTemplate() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("renderTemplate() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRenderTemplate_Invalid(t *testing.T) {
	if _, err := renderTemplate("{{.Broken", notificationContext{}); err == nil {
		t.Error("expected parse error for unterminated action")
	}
	if _, err := renderTemplate("{{.NoSuchField}}", notificationContext{}); err == nil {
		t.Error("expected execute error for unknown field")
	}
}

func TestDedupe(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	got := dedupe([]uuid.UUID{a, b, a, uuid.Nil, b, a})
	if len(got) != 2 {
		t.Fatalf("dedupe() returned %d ids, expected 2", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Error("dedupe() must preserve first-seen order")
	}

	if got := dedupe(nil); len(got) != 0 {
		t.Errorf("dedupe(nil) returned %d ids, expected 0", len(got))
	}
	if got := dedupe([]uuid.UUID{uuid.Nil}); len(got) != 0 {
		t.Error("dedupe() must drop the nil id")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Project Register", "Project_Register"},
		{"a/b\\c:d", "a_b_c_d"},
		{"report?*<>|\"", "report______"},
		{"already_clean.xlsx", "already_clean.xlsx"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

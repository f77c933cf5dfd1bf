package workflow

import (
	"errors"
	"testing"
)

func TestCheckProjectTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		// Forward path
		{"draft to submitted", "draft", "submitted", nil},
		{"submitted to lead review", "submitted", "project_lead_review", nil},
		{"lead review to inspection", "project_lead_review", "inspection_in_progress", nil},
		{"inspection to consultant review", "inspection_in_progress", "head_consultant_review", nil},
		{"consultant review to client review", "head_consultant_review", "client_review", nil},
		{"client review to government", "client_review", "government_submitted", nil},
		{"government to issued", "government_submitted", "slf_issued", nil},
		{"issued to completed", "slf_issued", "completed", nil},

		// Same status is a no-op
		{"self transition", "submitted", "submitted", nil},

		// Cancellation from non-terminal states
		{"cancel from draft", "draft", "cancelled", nil},
		{"cancel from inspection", "inspection_in_progress", "cancelled", nil},
		{"cancel from government", "government_submitted", "cancelled", nil},

		// No rollback, no skipping
		{"no rollback", "client_review", "inspection_in_progress", ErrOutOfSequence},
		{"no skipping", "draft", "government_submitted", ErrOutOfSequence},
		{"completed is terminal", "completed", "draft", ErrOutOfSequence},
		{"cancelled is terminal", "cancelled", "submitted", ErrOutOfSequence},
		{"issued cannot be cancelled", "slf_issued", "cancelled", ErrOutOfSequence},

		// Closed set enforcement
		{"unknown target", "draft", "approved_by_mayor", ErrInvalidStatus},
		{"unknown source", "limbo", "submitted", ErrInvalidStatus},
		{"empty target", "draft", "", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckProjectTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckProjectTransition(%q, %q) = %v, expected nil", tt.from, tt.to, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckProjectTransition(%q, %q) = %v, expected %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestProjectPhase(t *testing.T) {
	tests := []struct {
		status string
		phase  int
	}{
		{"draft", 1},
		{"submitted", 1},
		{"project_lead_review", 2},
		{"inspection_in_progress", 2},
		{"head_consultant_review", 3},
		{"client_review", 3},
		{"government_submitted", 4},
		{"slf_issued", 5},
		{"completed", 5},
		{"cancelled", 0},
		{"not_a_status", 0},
	}

	for _, tt := range tests {
		if got := ProjectPhase(tt.status); got != tt.phase {
			t.Errorf("ProjectPhase(%q) = %d, expected %d", tt.status, got, tt.phase)
		}
	}
}

func TestTerminalProjectStatus(t *testing.T) {
	terminals := map[string]bool{
		"completed":  true,
		"cancelled":  true,
		"draft":      false,
		"slf_issued": false,
		"bogus":      false,
	}
	for status, want := range terminals {
		if got := TerminalProjectStatus(status); got != want {
			t.Errorf("TerminalProjectStatus(%q) = %v, expected %v", status, got, want)
		}
	}
}

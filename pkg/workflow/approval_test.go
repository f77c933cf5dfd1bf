package workflow

import (
	"errors"
	"testing"
)

func TestApplyApproval_HappyPath(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		role     string
		action   string
		expected string
	}{
		{"project lead approves submitted", "submitted", "project_lead", "approve", "project_lead_approved"},
		{"head consultant approves next", "project_lead_approved", "head_consultant", "approve", "head_consultant_approved"},
		{"client signs off last", "head_consultant_approved", "client", "approve", "client_approved"},
		{"project lead rejects submitted", "submitted", "project_lead", "reject", "project_lead_rejected"},
		{"head consultant rejects", "project_lead_approved", "head_consultant", "reject", "head_consultant_rejected"},
		{"client rejects", "head_consultant_approved", "client", "reject", "client_rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, noop, err := ApplyApproval(tt.current, tt.role, tt.action)
			if err != nil {
				t.Fatalf("ApplyApproval(%q, %q, %q) returned error: %v", tt.current, tt.role, tt.action, err)
			}
			if noop {
				t.Fatalf("ApplyApproval(%q, %q, %q) unexpectedly a no-op", tt.current, tt.role, tt.action)
			}
			if next != tt.expected {
				t.Errorf("next = %q, expected %q", next, tt.expected)
			}
		})
	}
}

func TestApplyApproval_Idempotent(t *testing.T) {
	tests := []struct {
		name    string
		current string
		role    string
		action  string
	}{
		{"repeat project lead approve", "project_lead_approved", "project_lead", "approve"},
		{"repeat head consultant approve", "head_consultant_approved", "head_consultant", "approve"},
		{"repeat client approve", "client_approved", "client", "approve"},
		{"repeat project lead reject", "project_lead_rejected", "project_lead", "reject"},
		{"repeat client reject", "client_rejected", "client", "reject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, noop, err := ApplyApproval(tt.current, tt.role, tt.action)
			if err != nil {
				t.Fatalf("repeat action returned error: %v", err)
			}
			if !noop {
				t.Error("repeat action must report noop so no duplicate audit row is written")
			}
			if next != tt.current {
				t.Errorf("status changed on repeat: %q -> %q", tt.current, next)
			}
		})
	}
}

// A repeated approve at the end of the chain reports noop. ChainComplete
// still holds and the project self-transition is legal, so the noop flag
// is what keeps a retried request from replaying completion side
// effects.
func TestApplyApproval_RepeatAtChainEnd(t *testing.T) {
	next, noop, err := ApplyApproval("client_approved", "client", "approve")
	if err != nil {
		t.Fatalf("repeat terminal approve returned error: %v", err)
	}
	if !noop {
		t.Error("repeat terminal approve must report noop")
	}
	if !ChainComplete(next) {
		t.Errorf("ChainComplete(%q) = false after no-op repeat", next)
	}
	if err := CheckProjectTransition(ProjectStatusGovernmentSubmitted, ProjectStatusGovernmentSubmitted); err != nil {
		t.Errorf("self-transition rejected: %v", err)
	}
}

func TestApplyApproval_RejectionHaltsChain(t *testing.T) {
	rejected := []string{"project_lead_rejected", "head_consultant_rejected", "client_rejected"}
	actors := []string{"project_lead", "head_consultant", "client"}

	for _, state := range rejected {
		for _, role := range actors {
			for _, action := range []string{"approve", "reject"} {
				// The matching (role, reject) pair is the idempotent
				// repeat, covered above.
				if action == "reject" && state == RejectedStatus(role) {
					continue
				}
				_, _, err := ApplyApproval(state, role, action)
				if !errors.Is(err, ErrChainHalted) {
					t.Errorf("ApplyApproval(%q, %q, %q) = %v, expected ErrChainHalted", state, role, action, err)
				}
			}
		}
	}
}

func TestApplyApproval_OutOfSequence(t *testing.T) {
	tests := []struct {
		name    string
		current string
		role    string
		action  string
	}{
		{"client cannot jump the queue", "submitted", "client", "approve"},
		{"head consultant cannot act first", "submitted", "head_consultant", "approve"},
		{"project lead cannot approve twice ahead", "head_consultant_approved", "project_lead", "approve"},
		{"client cannot reject early", "submitted", "client", "reject"},
		{"nobody acts on a draft", "draft", "project_lead", "approve"},
		{"chain complete accepts nothing more", "client_approved", "head_consultant", "approve"},
		{"issued is terminal", "issued", "client", "approve"},
		{"closed is terminal", "closed", "project_lead", "reject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ApplyApproval(tt.current, tt.role, tt.action)
			if !errors.Is(err, ErrOutOfSequence) {
				t.Errorf("ApplyApproval(%q, %q, %q) = %v, expected ErrOutOfSequence", tt.current, tt.role, tt.action, err)
			}
		})
	}
}

func TestApplyApproval_BadInput(t *testing.T) {
	if _, _, err := ApplyApproval("submitted", "project_lead", "rubber_stamp"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown action: got %v, expected ErrValidation", err)
	}
	if _, _, err := ApplyApproval("totally_made_up", "project_lead", "approve"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("status outside closed set: got %v, expected ErrInvalidStatus", err)
	}
}

func TestExpectedRole(t *testing.T) {
	tests := []struct {
		status string
		role   string
		ok     bool
	}{
		{"submitted", "project_lead", true},
		{"project_lead_approved", "head_consultant", true},
		{"head_consultant_approved", "client", true},
		{"client_approved", "", false},
		{"draft", "", false},
		{"project_lead_rejected", "", false},
		{"issued", "", false},
	}

	for _, tt := range tests {
		role, ok := ExpectedRole(tt.status)
		if role != tt.role || ok != tt.ok {
			t.Errorf("ExpectedRole(%q) = (%q, %v), expected (%q, %v)", tt.status, role, ok, tt.role, tt.ok)
		}
	}
}

func TestChainComplete(t *testing.T) {
	if !ChainComplete("client_approved") {
		t.Error("client_approved must complete the chain")
	}
	for _, s := range []string{"submitted", "project_lead_approved", "head_consultant_approved", "client_rejected"} {
		if ChainComplete(s) {
			t.Errorf("ChainComplete(%q) = true, expected false", s)
		}
	}
}

package workflow

import "testing"

func TestScopeFor(t *testing.T) {
	tests := []struct {
		role     string
		expected ScopeKind
	}{
		{"admin_lead", ScopeAll},
		{"admin_team", ScopeAll},
		{"head_consultant", ScopeAll},
		{"project_lead", ScopeAssigned},
		{"client", ScopeOwned},

		// Deny-by-default: routing fails open to the client landing page,
		// but data access never does.
		{"inspector", ScopeNone},
		{"drafter", ScopeNone},
		{"", ScopeNone},
		{"superuser", ScopeNone},
		{"Admin_Lead", ScopeNone}, // ScopeFor expects already-normalized keys
	}

	for _, tt := range tests {
		if got := ScopeFor(tt.role); got != tt.expected {
			t.Errorf("ScopeFor(%q) = %v, expected %v", tt.role, got, tt.expected)
		}
	}
}

func TestScopeFor_CanonicalInput(t *testing.T) {
	// The handler pipeline canonicalizes before scoping; drifted legacy
	// spellings must land on the same scope as their canonical form,
	// while unknown stored roles must stay denied rather than inheriting
	// the client fallback that route resolution uses.
	role, ok := CanonicalRole(" Team Lead ")
	if !ok || ScopeFor(role) != ScopeAssigned {
		t.Error("team_lead alias must scope as project_lead")
	}
	if role, ok := CanonicalRole("unknown role"); ok {
		t.Errorf("CanonicalRole accepted %q for unknown input", role)
	}
	if ScopeFor("") != ScopeNone {
		t.Error("unresolved roles must scope to nothing")
	}
}

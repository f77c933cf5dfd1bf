package workflow

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		// Canonical input passes through
		{"canonical admin_lead", "admin_lead", "admin_lead"},
		{"canonical client", "client", "client"},
		{"canonical inspector", "inspector", "inspector"},

		// Case and whitespace drift from legacy rows
		{"mixed case", "Admin_Lead", "admin_lead"},
		{"leading and trailing spaces", "  Admin_Lead  ", "admin_lead"},
		{"spaces instead of underscore", "head consultant", "head_consultant"},
		{"multiple inner spaces", "project   lead", "project_lead"},
		{"tabs and spaces", "\tproject \t lead\t", "project_lead"},
		{"uppercase with spaces", " HEAD CONSULTANT ", "head_consultant"},

		// Legacy aliases
		{"admin alias", "admin", "admin_team"},
		{"admin alias mixed case", " Admin ", "admin_team"},
		{"team_lead alias", "team_lead", "project_lead"},
		{"team lead alias with space", "Team Lead", "project_lead"},

		// Fail open to least privilege
		{"empty string", "", "client"},
		{"whitespace only", "   ", "client"},
		{"unknown role", "superuser", "client"},
		{"garbage", "!!??", "client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRole(tt.raw); got != tt.expected {
				t.Errorf("NormalizeRole(%q) = %q, expected %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expectedRole  string
		expectedRoute string
	}{
		{"admin_lead", " Admin_Lead ", "admin_lead", "/dashboard/admin-lead"},
		{"head_consultant", "head consultant", "head_consultant", "/dashboard/head-consultant"},
		{"project_lead", "project_lead", "project_lead", "/dashboard/project-lead"},
		{"inspector", "Inspector", "inspector", "/dashboard/inspector"},
		{"drafter", "drafter", "drafter", "/dashboard/drafter"},
		{"admin alias lands on admin_team", "admin", "admin_team", "/dashboard/admin-team"},
		{"team_lead alias lands on project_lead", "team_lead", "project_lead", "/dashboard/project-lead"},
		{"unknown falls back to client", "mystery_role", "client", "/dashboard/client"},
		{"empty falls back to client", "", "client", "/dashboard/client"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, route := ResolveRoute(tt.raw)
			if role != tt.expectedRole || route != tt.expectedRoute {
				t.Errorf("ResolveRoute(%q) = (%q, %q), expected (%q, %q)",
					tt.raw, role, route, tt.expectedRole, tt.expectedRoute)
			}
		})
	}
}

// Every canonical role must have a route; a role without a landing page
// would strand a principal after login.
func TestResolveRoute_TotalOverRoleSet(t *testing.T) {
	roles := []string{
		RoleAdminLead, RoleAdminTeam, RoleHeadConsultant,
		RoleProjectLead, RoleInspector, RoleDrafter, RoleClient,
	}
	for _, r := range roles {
		if _, route := ResolveRoute(r); route == "" {
			t.Errorf("role %q has no landing route", r)
		}
		if !KnownRole(r) {
			t.Errorf("role %q missing from closed role set", r)
		}
	}
}

func BenchmarkNormalizeRole(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NormalizeRole("  Head Consultant  ")
	}
}

package workflow

import "strings"

// Canonical role keys. Legacy data contains mixed case, stray spaces and
// historical aliases; NormalizeRole collapses all of that into this set.
const (
	RoleAdminLead      = "admin_lead"
	RoleAdminTeam      = "admin_team"
	RoleHeadConsultant = "head_consultant"
	RoleProjectLead    = "project_lead"
	RoleInspector      = "inspector"
	RoleDrafter        = "drafter"
	RoleClient         = "client"
)

// DefaultRole is the fallback for null or unknown role strings. Routing
// fails open to the least-privileged landing page on purpose; data access
// does not (see ScopeFor).
const DefaultRole = RoleClient

// roleRoutes maps canonical roles to their landing routes. Aliases from
// legacy records ("admin", "team_lead") point at the same destinations as
// their modern equivalents.
var roleRoutes = map[string]string{
	RoleAdminLead:      "/dashboard/admin-lead",
	RoleAdminTeam:      "/dashboard/admin-team",
	RoleHeadConsultant: "/dashboard/head-consultant",
	RoleProjectLead:    "/dashboard/project-lead",
	RoleInspector:      "/dashboard/inspector",
	RoleDrafter:        "/dashboard/drafter",
	RoleClient:         "/dashboard/client",
}

// roleAliases maps legacy role spellings to canonical keys.
var roleAliases = map[string]string{
	"admin":     RoleAdminTeam,
	"team_lead": RoleProjectLead,
}

// NormalizeRole trims, lower-cases and collapses whitespace runs to a
// single underscore, then resolves legacy aliases. Unknown or empty input
// falls back to DefaultRole. Total: never fails.
func NormalizeRole(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.Fields(key), "_")

	if canonical, ok := roleAliases[key]; ok {
		return canonical
	}
	if _, ok := roleRoutes[key]; ok {
		return key
	}
	return DefaultRole
}

// CanonicalRole normalizes like NormalizeRole but does NOT fall back for
// unknown input: ok is false when the role is outside the closed set.
// Scoping uses this so an unrecognized stored role denies data access
// instead of inheriting the client scope.
func CanonicalRole(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.Fields(key), "_")

	if canonical, ok := roleAliases[key]; ok {
		return canonical, true
	}
	if _, ok := roleRoutes[key]; ok {
		return key, true
	}
	return "", false
}

// ResolveRoute returns the canonical role and landing route for a raw
// role string. Unmapped input resolves to the default entry.
func ResolveRoute(raw string) (role, route string) {
	role = NormalizeRole(raw)
	return role, roleRoutes[role]
}

// KnownRole reports whether the already-normalized key is in the closed
// role set (aliases excluded).
func KnownRole(key string) bool {
	_, ok := roleRoutes[key]
	return ok
}

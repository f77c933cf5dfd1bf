package workflow

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB opens a gorm handle that compiles SQL without touching a
// database: sql.Open defers connecting and the ping is disabled, so the
// statements below are built but never executed.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=slf dbname=slf_test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("opening dry-run handle: %v", err)
	}
	return db
}

func buildScopedSQL(t *testing.T, db *gorm.DB, table string, scope func(*gorm.DB) *gorm.DB) (string, []interface{}) {
	t.Helper()
	var rows []map[string]interface{}
	tx := db.Table(table).Scopes(scope).Find(&rows)
	if tx.Error != nil {
		t.Fatalf("building query against %s: %v", table, tx.Error)
	}
	return tx.Statement.SQL.String(), tx.Statement.Vars
}

func varsContain(vars []interface{}, id uuid.UUID) bool {
	for _, v := range vars {
		if got, ok := v.(uuid.UUID); ok && got == id {
			return true
		}
	}
	return false
}

// The predicates a scope may emit. Unrestricted roles must emit none of
// them; everyone else must emit exactly the one for their scope, so a
// foreign tenant's rows can never satisfy the query.
var scopePredicates = []string{"project_team_members", "client_id", "inspector_id", "author_id", "1 = 0"}

func assertFragments(t *testing.T, sql string, want, forbid []string) {
	t.Helper()
	for _, frag := range want {
		if !strings.Contains(sql, frag) {
			t.Errorf("query %q missing %q", sql, frag)
		}
	}
	for _, frag := range forbid {
		if strings.Contains(sql, frag) {
			t.Errorf("query %q must not contain %q", sql, frag)
		}
	}
}

func TestProjectScope_GeneratedSQL(t *testing.T) {
	db := dryRunDB(t)
	userID := uuid.New()
	clientID := uuid.New()

	tests := []struct {
		name     string
		role     string
		clientID *uuid.UUID
		want     []string
		forbid   []string
		wantVar  *uuid.UUID
	}{
		{
			name:   "admin lead sees everything",
			role:   RoleAdminLead,
			forbid: scopePredicates,
		},
		{
			name:   "head consultant sees everything",
			role:   RoleHeadConsultant,
			forbid: scopePredicates,
		},
		{
			name: "project lead restricted to assignments of record",
			role: RoleProjectLead,
			want: []string{
				"JOIN project_team_members ptm ON ptm.project_id = projects.id",
				"ptm.user_id =",
				"ptm.is_active =",
			},
			forbid:  []string{"1 = 0", "client_id"},
			wantVar: &userID,
		},
		{
			name:     "client restricted to owned projects",
			role:     RoleClient,
			clientID: &clientID,
			want:     []string{"projects.client_id ="},
			forbid:   []string{"1 = 0", "project_team_members"},
			wantVar:  &clientID,
		},
		{
			name: "client without linked tenant gets nothing",
			role: RoleClient,
			want: []string{"1 = 0"},
		},
		{
			name: "inspector has no register access",
			role: RoleInspector,
			want: []string{"1 = 0"},
		},
		{
			name: "unknown role denied by default",
			role: "warehouse_bot",
			want: []string{"1 = 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := buildScopedSQL(t, db, "projects", ProjectScope(tt.role, userID, tt.clientID))
			assertFragments(t, sql, tt.want, tt.forbid)
			if tt.wantVar != nil && !varsContain(vars, *tt.wantVar) {
				t.Errorf("query vars %v missing principal id %s", vars, *tt.wantVar)
			}
		})
	}
}

func TestInspectionScope_GeneratedSQL(t *testing.T) {
	db := dryRunDB(t)
	userID := uuid.New()
	clientID := uuid.New()

	tests := []struct {
		name     string
		role     string
		clientID *uuid.UUID
		want     []string
		forbid   []string
		wantVar  *uuid.UUID
	}{
		{
			name:    "inspector sees only own visits",
			role:    RoleInspector,
			want:    []string{"inspections.inspector_id ="},
			forbid:  []string{"1 = 0"},
			wantVar: &userID,
		},
		{
			name: "drafter sees visits on assigned projects",
			role: RoleDrafter,
			want: []string{
				"JOIN project_team_members ptm ON ptm.project_id = inspections.project_id",
				"ptm.user_id =",
			},
			forbid:  []string{"1 = 0"},
			wantVar: &userID,
		},
		{
			name:     "client follows owning project ownership",
			role:     RoleClient,
			clientID: &clientID,
			want:     []string{"projects.client_id ="},
			wantVar:  &clientID,
		},
		{
			name: "project lead follows project assignment",
			role: RoleProjectLead,
			want: []string{"JOIN project_team_members ptm ON ptm.project_id = projects.id"},
		},
		{
			name:   "admin team unrestricted",
			role:   RoleAdminTeam,
			forbid: scopePredicates,
		},
		{
			name: "unknown role denied by default",
			role: "warehouse_bot",
			want: []string{"1 = 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := buildScopedSQL(t, db, "inspections", InspectionScope(tt.role, userID, tt.clientID))
			assertFragments(t, sql, tt.want, tt.forbid)
			if tt.wantVar != nil && !varsContain(vars, *tt.wantVar) {
				t.Errorf("query vars %v missing principal id %s", vars, *tt.wantVar)
			}
		})
	}
}

func TestReportScope_GeneratedSQL(t *testing.T) {
	db := dryRunDB(t)
	userID := uuid.New()
	clientID := uuid.New()

	tests := []struct {
		name     string
		role     string
		clientID *uuid.UUID
		want     []string
		forbid   []string
		wantVar  *uuid.UUID
	}{
		{
			name:   "admin lead sees everything",
			role:   RoleAdminLead,
			forbid: scopePredicates,
		},
		{
			name: "project lead joined through owning project",
			role: RoleProjectLead,
			want: []string{
				"JOIN project_team_members ptm ON ptm.project_id = reports.project_id",
				"ptm.user_id =",
			},
			forbid:  []string{"1 = 0"},
			wantVar: &userID,
		},
		{
			name:     "client joined through project ownership",
			role:     RoleClient,
			clientID: &clientID,
			want: []string{
				"JOIN projects ON projects.id = reports.project_id",
				"projects.client_id =",
			},
			forbid:  []string{"1 = 0"},
			wantVar: &clientID,
		},
		{
			name:    "inspector limited to authored reports",
			role:    RoleInspector,
			want:    []string{"reports.author_id ="},
			forbid:  []string{"1 = 0"},
			wantVar: &userID,
		},
		{
			name:    "drafter limited to authored reports",
			role:    RoleDrafter,
			want:    []string{"reports.author_id ="},
			wantVar: &userID,
		},
		{
			name: "client without linked tenant gets nothing",
			role: RoleClient,
			want: []string{"1 = 0"},
		},
		{
			name: "unknown role denied by default",
			role: "warehouse_bot",
			want: []string{"1 = 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := buildScopedSQL(t, db, "reports", ReportScope(tt.role, userID, tt.clientID))
			assertFragments(t, sql, tt.want, tt.forbid)
			if tt.wantVar != nil && !varsContain(vars, *tt.wantVar) {
				t.Errorf("query vars %v missing principal id %s", vars, *tt.wantVar)
			}
		})
	}
}

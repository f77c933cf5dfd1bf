package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/slf/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250110_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Client{}, &models.User{}, &models.Project{},
					&models.ProjectTeamMember{}, &models.ProjectDocument{})
			},
		},
		{
			ID: "20250110_create_inspection_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Inspection{}, &models.InspectionPhoto{},
					&models.ChecklistItem{}, &models.ChecklistResponse{})
			},
		},
		{
			ID: "20250110_create_report_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Report{}, &models.Approval{}, &models.Notification{})
			},
		},
		{
			ID: "20250215_require_photo_inspection_id",
			Migrate: func(tx *gorm.DB) error {
				// Legacy data contained photos without an inspection
				// reference; anything still orphaned at migration time
				// cannot be reconciled reliably and is dropped.
				if err := tx.Exec("DELETE FROM inspection_photos WHERE inspection_id IS NULL").Error; err != nil {
					return err
				}
				return tx.Exec("ALTER TABLE inspection_photos ALTER COLUMN inspection_id SET NOT NULL").Error
			},
		},
		{
			ID: "20250301_backfill_project_lead_cache",
			Migrate: func(tx *gorm.DB) error {
				// project_lead_id is a projection of the team table; any
				// hand-edited value is overwritten from the table of record.
				return tx.Exec(`
					UPDATE projects p SET project_lead_id = (
						SELECT ptm.user_id FROM project_team_members ptm
						WHERE ptm.project_id = p.id
						  AND ptm.role = 'project_lead'
						  AND ptm.is_active = true
						ORDER BY ptm.updated_at DESC
						LIMIT 1
					)`).Error
			},
		},
	})

	return m.Migrate()
}

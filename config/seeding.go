package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// SeedChecklistTemplates creates the default SLF inspection checklist.
// Idempotent: skips items that already exist.
func SeedChecklistTemplates() {
	items := []models.ChecklistItem{
		{TemplateCode: models.ChecklistTemplateStandard, Code: "STR-01", Category: "structure", Prompt: "Visible cracks or deformation in load-bearing elements", DisplayOrder: 1, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "STR-02", Category: "structure", Prompt: "Condition of foundations and settlement indicators", DisplayOrder: 2, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "STR-03", Category: "structure", Prompt: "Corrosion or spalling on exposed reinforcement", DisplayOrder: 3, Mandatory: false},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "ARC-01", Category: "architecture", Prompt: "Facade and cladding attachment integrity", DisplayOrder: 4, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "ARC-02", Category: "architecture", Prompt: "Egress routes clear and compliant", DisplayOrder: 5, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "UTL-01", Category: "utilities", Prompt: "Electrical installation condition and grounding", DisplayOrder: 6, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "UTL-02", Category: "utilities", Prompt: "Plumbing and sanitation system function", DisplayOrder: 7, Mandatory: false},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "FIR-01", Category: "fire_safety", Prompt: "Fire detection and alarm system operational", DisplayOrder: 8, Mandatory: true},
		{TemplateCode: models.ChecklistTemplateStandard, Code: "FIR-02", Category: "fire_safety", Prompt: "Extinguishers and hydrants present and in date", DisplayOrder: 9, Mandatory: true},
	}

	seeded := 0
	for _, item := range items {
		var existing models.ChecklistItem
		err := DB.Where("template_code = ? AND code = ?", item.TemplateCode, item.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err := DB.Create(&item).Error; err != nil {
			log.Printf("⚠️  Failed to seed checklist item %s: %v", item.Code, err)
			continue
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("✅ Seeded %d checklist items", seeded)
	}
}

// SeedDefaultAdmin creates the bootstrap admin_lead account if no admin
// exists yet. Credentials come from the environment so nothing secret
// lands in the repository.
func SeedDefaultAdmin() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	DB.Model(&models.User{}).Where("role = ?", workflow.RoleAdminLead).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("⚠️  Failed to hash seed admin password: %v", err)
		return
	}

	admin := models.User{
		Name:           "Administrator",
		Email:          email,
		PasswordHash:   string(hash),
		Role:           workflow.RoleAdminLead,
		ApprovalStatus: models.UserStatusApproved,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("⚠️  Failed to seed admin user: %v", err)
		return
	}
	log.Printf("✅ Seeded bootstrap admin %s", email)
}

package handlers

import (
	"bytes"
	"fmt"
	"log"
	"text/template"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/slf/config"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// NotificationService translates state transitions into notification
// rows for the affected principals. Every Emit* method is best-effort:
// failures are logged and swallowed, and no emit ever rolls back the
// transition that triggered it. Recipients poll for unread rows; a push
// channel, when wired, only signals "re-poll", it carries no payload.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{
		db: config.DB,
	}
}

var emitter *NotificationService

func notificationEmitter() *NotificationService {
	if emitter == nil {
		emitter = NewNotificationService()
	}
	return emitter
}

// notificationContext holds data for template rendering.
type notificationContext struct {
	ReportTitle string
	ProjectName string
	ActorName   string
	Role        string
	Action      string
	Comment     string
	Status      string
}

func renderTemplate(tmpl string, ctx notificationContext) (string, error) {
	t, err := template.New("notification").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// create persists one notification row, best effort.
func (ns *NotificationService) create(n models.Notification) {
	if err := ns.db.Create(&n).Error; err != nil {
		log.Printf("❌ Failed to create notification for user %s: %v", n.UserID, err)
		return
	}
	log.Printf("✅ Created notification for user %s: %s", n.UserID, n.Title)
}

// projectLeadIDs resolves the active lead(s) of a project from the team
// table of record.
func (ns *NotificationService) projectLeadIDs(projectID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	ns.db.Model(&models.ProjectTeamMember{}).
		Where("project_id = ? AND role = ? AND is_active = ?", projectID, workflow.RoleProjectLead, true).
		Pluck("user_id", &ids)
	return ids
}

// clientUserIDs resolves the principals linked to the project's client
// company.
func (ns *NotificationService) clientUserIDs(projectID uuid.UUID) []uuid.UUID {
	var project models.Project
	if err := ns.db.Select("client_id").First(&project, "id = ?", projectID).Error; err != nil {
		return nil
	}
	var ids []uuid.UUID
	ns.db.Model(&models.User{}).
		Where("client_id = ? AND approval_status = ?", project.ClientID, models.UserStatusApproved).
		Pluck("id", &ids)
	return ids
}

// adminIDs resolves all active admin-side principals.
func (ns *NotificationService) adminIDs() []uuid.UUID {
	var ids []uuid.UUID
	ns.db.Model(&models.User{}).
		Where("role IN ? AND approval_status = ?",
			[]string{workflow.RoleAdminLead, workflow.RoleAdminTeam}, models.UserStatusApproved).
		Pluck("id", &ids)
	return ids
}

// EmitReportSubmitted notifies the project lead(s) that a report entered
// the approval chain.
func (ns *NotificationService) EmitReportSubmitted(report *models.Report, author models.User) {
	ctx := notificationContext{ReportTitle: report.Title, ActorName: author.Name}
	title, _ := renderTemplate("Report submitted: {{.ReportTitle}}", ctx)
	message, _ := renderTemplate("{{.ActorName}} submitted the report for your review.", ctx)

	for _, leadID := range ns.projectLeadIDs(report.ProjectID) {
		ns.create(models.Notification{
			UserID:    leadID,
			Type:      models.NotificationTypeInfo,
			Event:     models.NotificationEventReportSubmitted,
			Title:     title,
			Message:   message,
			ProjectID: &report.ProjectID,
			ReportID:  &report.ID,
		})
	}
}

// EmitApprovalAction fans out an approve/reject to whoever the chain
// touches next: the next approver on approve, the author and leads on
// reject, the client on client-facing states.
func (ns *NotificationService) EmitApprovalAction(report *models.Report, approver models.User, role, action, comment string) {
	ctx := notificationContext{
		ReportTitle: report.Title,
		ActorName:   approver.Name,
		Role:        role,
		Action:      action,
		Comment:     comment,
		Status:      report.Status,
	}

	if action == workflow.ActionReject {
		title, _ := renderTemplate("Report rejected: {{.ReportTitle}}", ctx)
		message, _ := renderTemplate("{{.ActorName}} ({{.Role}}) rejected the report. {{if .Comment}}Comment: {{.Comment}}{{end}}", ctx)

		recipients := append(ns.projectLeadIDs(report.ProjectID), report.AuthorID)
		for _, id := range dedupe(recipients) {
			ns.create(models.Notification{
				UserID:    id,
				Type:      models.NotificationTypeError,
				Event:     models.NotificationEventReportRejected,
				Title:     title,
				Message:   message,
				ProjectID: &report.ProjectID,
				ReportID:  &report.ID,
			})
		}
		return
	}

	title, _ := renderTemplate("Report approved: {{.ReportTitle}}", ctx)
	message, _ := renderTemplate("{{.ActorName}} ({{.Role}}) approved the report.", ctx)

	recipients := []uuid.UUID{report.AuthorID}
	if next, ok := workflow.ExpectedRole(report.Status); ok {
		switch next {
		case workflow.RoleHeadConsultant:
			var ids []uuid.UUID
			ns.db.Model(&models.User{}).
				Where("role = ? AND approval_status = ?", workflow.RoleHeadConsultant, models.UserStatusApproved).
				Pluck("id", &ids)
			recipients = append(recipients, ids...)
		case workflow.RoleClient:
			recipients = append(recipients, ns.clientUserIDs(report.ProjectID)...)
		}
	}

	for _, id := range dedupe(recipients) {
		ns.create(models.Notification{
			UserID:    id,
			Type:      models.NotificationTypeSuccess,
			Event:     models.NotificationEventReportApproved,
			Title:     title,
			Message:   message,
			ProjectID: &report.ProjectID,
			ReportID:  &report.ID,
		})
	}
}

// EmitProjectStatus notifies the client and lead(s) of a project phase
// change.
func (ns *NotificationService) EmitProjectStatus(project *models.Project, newStatus string) {
	ctx := notificationContext{ProjectName: project.Name, Status: newStatus}
	title, _ := renderTemplate("Project update: {{.ProjectName}}", ctx)
	message, _ := renderTemplate("Project status changed to {{.Status}}.", ctx)

	recipients := append(ns.projectLeadIDs(project.ID), ns.clientUserIDs(project.ID)...)
	for _, id := range dedupe(recipients) {
		ns.create(models.Notification{
			UserID:    id,
			Type:      models.NotificationTypeInfo,
			Event:     models.NotificationEventProjectStatus,
			Title:     title,
			Message:   message,
			ProjectID: &project.ID,
		})
	}
}

// EmitInspectionScheduled notifies the assigned inspector.
func (ns *NotificationService) EmitInspectionScheduled(inspection *models.Inspection, projectName string) {
	ctx := notificationContext{ProjectName: projectName}
	title, _ := renderTemplate("Inspection scheduled: {{.ProjectName}}", ctx)
	message := fmt.Sprintf("You are booked for a site visit on %s.",
		inspection.ScheduledStart.Format("2006-01-02 15:04"))

	ns.create(models.Notification{
		UserID:       inspection.InspectorID,
		Type:         models.NotificationTypeInfo,
		Event:        models.NotificationEventInspectionBooked,
		Title:        title,
		Message:      message,
		ProjectID:    &inspection.ProjectID,
		InspectionID: &inspection.ID,
	})
}

// EmitTeamAssignment notifies a principal of a new project assignment.
func (ns *NotificationService) EmitTeamAssignment(member *models.ProjectTeamMember, projectName string) {
	ns.create(models.Notification{
		UserID:    member.UserID,
		Type:      models.NotificationTypeInfo,
		Event:     models.NotificationEventTeamAssignment,
		Title:     "New project assignment",
		Message:   fmt.Sprintf("You were assigned to %s as %s.", projectName, member.Role),
		ProjectID: &member.ProjectID,
	})
}

// notifyAdmins sends an informational notification to every active
// admin-side principal. Used by flows without a handler instance.
func notifyAdmins(event models.NotificationEvent, title, message string) {
	ns := notificationEmitter()
	for _, id := range ns.adminIDs() {
		ns.create(models.Notification{
			UserID:  id,
			Type:    models.NotificationTypeInfo,
			Event:   event,
			Title:   title,
			Message: message,
		})
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// GetNotificationsForUser returns the newest notifications for a user.
func (ns *NotificationService) GetNotificationsForUser(userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := ns.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

// GetUnreadCount returns how many notifications the user has not read.
func (ns *NotificationService) GetUnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := ns.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkAsRead sets the read timestamp on one notification owned by the
// user. Rows are never deleted.
func (ns *NotificationService) MarkAsRead(userID, notificationID uuid.UUID) error {
	var n models.Notification
	if err := ns.db.First(&n, "id = ? AND user_id = ?", notificationID, userID).Error; err != nil {
		return fmt.Errorf("%w: notification %s", workflow.ErrNotFound, notificationID)
	}
	if n.IsRead() {
		return nil
	}
	n.MarkAsRead()
	return ns.db.Model(&n).Update("read_at", n.ReadAt).Error
}

// MarkAllAsRead sets the read timestamp on every unread notification.
func (ns *NotificationService) MarkAllAsRead(userID uuid.UUID) (int64, error) {
	res := ns.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", gorm.Expr("NOW()"))
	return res.RowsAffected, res.Error
}

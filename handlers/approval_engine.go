package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/slf/config"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// ApprovalEngine drives report status through the approval chain. All
// status writes go through a compare-and-set on the previously read
// value, so two approvers racing on the same report serialize instead of
// silently overwriting each other.
type ApprovalEngine struct {
	db *gorm.DB
}

// NewApprovalEngine creates a new approval engine instance
func NewApprovalEngine() *ApprovalEngine {
	return &ApprovalEngine{
		db: config.DB,
	}
}

// Transition applies an approve/reject action by the given principal.
// The principal's stored role must match the role parameter AND that
// role must be the one the chain expects next; either failure leaves the
// report untouched. A compare-and-set conflict is retried once against
// the refreshed status before surfacing.
func (e *ApprovalEngine) Transition(
	reportID uuid.UUID,
	approver models.User,
	role string,
	action string,
	comment string,
) (*models.Report, error) {
	if reportID == uuid.Nil || role == "" {
		return nil, fmt.Errorf("%w: report id and role are required", workflow.ErrValidation)
	}

	// Authorization by identity: you may only act as the role you hold.
	approverRole, ok := workflow.CanonicalRole(approver.Role)
	if !ok || approverRole != role {
		return nil, fmt.Errorf("%w: principal role %q cannot act as %q", workflow.ErrForbidden, approver.Role, role)
	}

	report, noop, err := e.attempt(reportID, approver, role, action, comment)
	if errors.Is(err, workflow.ErrConflict) {
		// Someone else moved the status between our read and write.
		// Re-read once; repeated conflict surfaces to the caller.
		log.Printf("⚠️  Conflicting transition on report %s, retrying once", reportID)
		report, noop, err = e.attempt(reportID, approver, role, action, comment)
	}
	if err != nil {
		return nil, err
	}

	// Post-commit side effects, never part of the transactional boundary.
	// A repeated action that changed nothing must not replay them: the
	// project already advanced and the recipients were already notified.
	if !noop {
		e.afterTransition(report, approver, role, action, comment)
	}

	return report, nil
}

// attempt runs one read-validate-write cycle. The bool reports whether
// the action was a no-op repeat, in which case nothing was written.
func (e *ApprovalEngine) attempt(
	reportID uuid.UUID,
	approver models.User,
	role, action, comment string,
) (*models.Report, bool, error) {
	var report models.Report
	if err := e.db.Preload("Project").First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: report %s", workflow.ErrNotFound, reportID)
		}
		return nil, false, fmt.Errorf("%w: %v", workflow.ErrPersistence, err)
	}

	next, noop, err := workflow.ApplyApproval(report.Status, role, action)
	if err != nil {
		return nil, false, err
	}
	if noop {
		// Already in the resulting state: success, no duplicate audit row.
		log.Printf("ℹ️  Report %s already %s, treating %s by %s as no-op", reportID, report.Status, action, role)
		return &report, true, nil
	}

	previous := report.Status
	tx := e.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Compare-and-set: the write only lands if nobody changed the status
	// since we read it.
	res := tx.Model(&models.Report{}).
		Where("id = ? AND status = ?", report.ID, previous).
		Update("status", next)
	if res.Error != nil {
		tx.Rollback()
		return nil, false, fmt.Errorf("%w: %v", workflow.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, false, fmt.Errorf("%w: report %s moved away from %s", workflow.ErrConflict, report.ID, previous)
	}

	audit := models.Approval{
		ReportID:   report.ID,
		ApproverID: approver.ID,
		Role:       role,
		Action:     action,
		Comment:    comment,
	}
	if err := tx.Create(&audit).Error; err != nil {
		tx.Rollback()
		return nil, false, fmt.Errorf("%w: failed to append approval record: %v", workflow.ErrPersistence, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, false, fmt.Errorf("%w: %v", workflow.ErrPersistence, err)
	}

	report.Status = next
	log.Printf("✅ Report %s: %s -> %s (%s by %s)", report.ID, previous, next, action, approver.Name)
	return &report, false, nil
}

// afterTransition handles the non-transactional consequences of a chain
// move: project feedback and notifications. Failures here are logged and
// swallowed; the approval itself already committed.
func (e *ApprovalEngine) afterTransition(report *models.Report, approver models.User, role, action, comment string) {
	if workflow.ChainComplete(report.Status) {
		e.advanceProjectAfterChain(report)
	}

	notificationEmitter().EmitApprovalAction(report, approver, role, action, comment)
}

// advanceProjectAfterChain moves the owning project forward once every
// role has signed off.
func (e *ApprovalEngine) advanceProjectAfterChain(report *models.Report) {
	var project models.Project
	if err := e.db.First(&project, "id = ?", report.ProjectID).Error; err != nil {
		log.Printf("⚠️  Project %s not found while closing chain for report %s: %v", report.ProjectID, report.ID, err)
		return
	}

	next := workflow.ProjectStatusGovernmentSubmitted
	if err := workflow.CheckProjectTransition(project.Status, next); err != nil {
		log.Printf("⚠️  Project %s cannot advance %s -> %s: %v", project.ID, project.Status, next, err)
		return
	}

	res := e.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", project.ID, project.Status).
		Update("status", next)
	if res.Error != nil || res.RowsAffected == 0 {
		log.Printf("⚠️  Project %s advance to %s lost a race or failed: %v", project.ID, next, res.Error)
		return
	}

	log.Printf("✅ Project %s advanced to %s after full approval of report %s", project.ID, next, report.ID)
	notificationEmitter().EmitProjectStatus(&project, next)
}

// Submit moves an author's draft report into the chain.
func (e *ApprovalEngine) Submit(reportID uuid.UUID, author models.User) (*models.Report, error) {
	var report models.Report
	if err := e.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report %s", workflow.ErrNotFound, reportID)
		}
		return nil, fmt.Errorf("%w: %v", workflow.ErrPersistence, err)
	}
	if report.AuthorID != author.ID {
		return nil, fmt.Errorf("%w: only the author may submit a report", workflow.ErrForbidden)
	}
	if report.Status == workflow.ReportStatusSubmitted {
		return &report, nil // idempotent
	}
	if report.Status != workflow.ReportStatusDraft {
		return nil, fmt.Errorf("%w: report is %s, not draft", workflow.ErrOutOfSequence, report.Status)
	}

	res := e.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", report.ID, workflow.ReportStatusDraft).
		Update("status", workflow.ReportStatusSubmitted)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: report %s left draft concurrently", workflow.ErrConflict, report.ID)
	}

	report.Status = workflow.ReportStatusSubmitted
	log.Printf("✅ Report %s submitted by %s", report.ID, author.Name)
	notificationEmitter().EmitReportSubmitted(&report, author)
	return &report, nil
}

// Resubmit creates a fresh report from a rejected one. Rejection is
// terminal for the rejected entity; the appeal path is a new report with
// a new chain, linked through supersedes_id.
func (e *ApprovalEngine) Resubmit(reportID uuid.UUID, author models.User) (*models.Report, error) {
	var rejected models.Report
	if err := e.db.First(&rejected, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report %s", workflow.ErrNotFound, reportID)
		}
		return nil, fmt.Errorf("%w: %v", workflow.ErrPersistence, err)
	}
	if !workflow.ChainRejected(rejected.Status) {
		return nil, fmt.Errorf("%w: only rejected reports can be resubmitted", workflow.ErrValidation)
	}

	clone := models.Report{
		ProjectID:       rejected.ProjectID,
		InspectionID:    rejected.InspectionID,
		AuthorID:        author.ID,
		Title:           rejected.Title,
		Findings:        rejected.Findings,
		Recommendations: rejected.Recommendations,
		AttachmentURLs:  rejected.AttachmentURLs,
		Status:          workflow.ReportStatusDraft,
		SupersedesID:    &rejected.ID,
	}
	if err := e.db.Create(&clone).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrPersistence, err)
	}

	log.Printf("✅ Report %s resubmitted as %s by %s", rejected.ID, clone.ID, author.Name)
	return &clone, nil
}

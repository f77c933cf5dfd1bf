package workflow

import "fmt"

// Report statuses. The approval chain is an ordered list of role
// sign-offs; each role contributes an approved and a rejected status.
const (
	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusIssued    = "issued"
	ReportStatusClosed    = "closed"
)

// Approval actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ApprovalSequence is the canonical order of sign-offs a report passes
// through after submission.
var ApprovalSequence = []string{RoleProjectLead, RoleHeadConsultant, RoleClient}

// ApprovedStatus returns the status a report enters once the given role
// approves it, e.g. "project_lead_approved".
func ApprovedStatus(role string) string { return role + "_approved" }

// RejectedStatus returns the status a report enters once the given role
// rejects it, e.g. "head_consultant_rejected".
func RejectedStatus(role string) string { return role + "_rejected" }

// expectedRole maps each non-terminal status to the single role expected
// to act next. Derived from ApprovalSequence so the two can never drift.
var expectedRole = func() map[string]string {
	m := map[string]string{ReportStatusSubmitted: ApprovalSequence[0]}
	for i := 0; i < len(ApprovalSequence)-1; i++ {
		m[ApprovedStatus(ApprovalSequence[i])] = ApprovalSequence[i+1]
	}
	return m
}()

// reportStatuses is the closed set of valid report statuses.
var reportStatuses = func() map[string]bool {
	m := map[string]bool{
		ReportStatusDraft:     true,
		ReportStatusSubmitted: true,
		ReportStatusIssued:    true,
		ReportStatusClosed:    true,
	}
	for _, role := range ApprovalSequence {
		m[ApprovedStatus(role)] = true
		m[RejectedStatus(role)] = true
	}
	return m
}()

// ValidReportStatus reports whether s is in the closed status set.
func ValidReportStatus(s string) bool { return reportStatuses[s] }

// ChainRejected reports whether the status is any *_rejected state, which
// halts the chain for good.
func ChainRejected(status string) bool {
	for _, role := range ApprovalSequence {
		if status == RejectedStatus(role) {
			return true
		}
	}
	return false
}

// ChainComplete reports whether every role in the sequence has approved.
func ChainComplete(status string) bool {
	return status == ApprovedStatus(ApprovalSequence[len(ApprovalSequence)-1])
}

// ExpectedRole returns the role expected to act on a report in the given
// status, or false if no further approval is expected.
func ExpectedRole(status string) (string, bool) {
	role, ok := expectedRole[status]
	return role, ok
}

// ApplyApproval computes the status a report moves to when the given role
// performs the given action. It is a pure function over the transition
// table; persistence and authorization live in the approval engine.
//
// noop is true when the chain is already in the state the action would
// produce; callers must treat that as success without appending a second
// audit record.
func ApplyApproval(current, role, action string) (next string, noop bool, err error) {
	if action != ActionApprove && action != ActionReject {
		return "", false, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if !ValidReportStatus(current) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}

	// Repeating an already-applied action is a no-op, not an error.
	if action == ActionApprove && current == ApprovedStatus(role) {
		return current, true, nil
	}
	if action == ActionReject && current == RejectedStatus(role) {
		return current, true, nil
	}

	if ChainRejected(current) {
		return "", false, fmt.Errorf("%w: report is in %s", ErrChainHalted, current)
	}
	if current == ReportStatusDraft {
		return "", false, fmt.Errorf("%w: report has not been submitted", ErrOutOfSequence)
	}
	if current == ReportStatusIssued || current == ReportStatusClosed {
		return "", false, fmt.Errorf("%w: report already %s", ErrOutOfSequence, current)
	}
	if ChainComplete(current) {
		return "", false, fmt.Errorf("%w: approval chain already complete", ErrOutOfSequence)
	}

	want, ok := ExpectedRole(current)
	if !ok || want != role {
		return "", false, fmt.Errorf("%w: %s may not act while report is %s", ErrOutOfSequence, role, current)
	}

	if action == ActionApprove {
		return ApprovedStatus(role), false, nil
	}
	return RejectedStatus(role), false, nil
}

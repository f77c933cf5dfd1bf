package workflow

import "fmt"

// Project lifecycle statuses, roughly linear from intake to issuance.
const (
	ProjectStatusDraft                = "draft"
	ProjectStatusSubmitted            = "submitted"
	ProjectStatusProjectLeadReview    = "project_lead_review"
	ProjectStatusInspectionInProgress = "inspection_in_progress"
	ProjectStatusHeadConsultantReview = "head_consultant_review"
	ProjectStatusClientReview         = "client_review"
	ProjectStatusGovernmentSubmitted  = "government_submitted"
	ProjectStatusSLFIssued            = "slf_issued"
	ProjectStatusCompleted            = "completed"
	ProjectStatusCancelled            = "cancelled"
)

// projectPhases maps each status to its display phase (1-5). Several
// statuses share a phase; the number drives the progress bar only.
var projectPhases = map[string]int{
	ProjectStatusDraft:                1,
	ProjectStatusSubmitted:            1,
	ProjectStatusProjectLeadReview:    2,
	ProjectStatusInspectionInProgress: 2,
	ProjectStatusHeadConsultantReview: 3,
	ProjectStatusClientReview:         3,
	ProjectStatusGovernmentSubmitted:  4,
	ProjectStatusSLFIssued:            5,
	ProjectStatusCompleted:            5,
	ProjectStatusCancelled:            0,
}

// projectTransitions is the closed adjacency table. Transitions are
// monotonic forward; cancellation is reachable from every non-terminal
// status and there is no rollback edge.
var projectTransitions = map[string][]string{
	ProjectStatusDraft:                {ProjectStatusSubmitted, ProjectStatusCancelled},
	ProjectStatusSubmitted:            {ProjectStatusProjectLeadReview, ProjectStatusCancelled},
	ProjectStatusProjectLeadReview:    {ProjectStatusInspectionInProgress, ProjectStatusCancelled},
	ProjectStatusInspectionInProgress: {ProjectStatusHeadConsultantReview, ProjectStatusCancelled},
	ProjectStatusHeadConsultantReview: {ProjectStatusClientReview, ProjectStatusCancelled},
	ProjectStatusClientReview:         {ProjectStatusGovernmentSubmitted, ProjectStatusCancelled},
	ProjectStatusGovernmentSubmitted:  {ProjectStatusSLFIssued, ProjectStatusCancelled},
	ProjectStatusSLFIssued:            {ProjectStatusCompleted},
	ProjectStatusCompleted:            {},
	ProjectStatusCancelled:            {},
}

// ValidProjectStatus reports whether s belongs to the closed status set.
// The set is versioned by this table, never by free text in the database.
func ValidProjectStatus(s string) bool {
	_, ok := projectPhases[s]
	return ok
}

// ProjectPhase returns the display phase for a status, 0 if unknown or
// cancelled.
func ProjectPhase(s string) int { return projectPhases[s] }

// TerminalProjectStatus reports whether no further transitions exist.
func TerminalProjectStatus(s string) bool {
	return len(projectTransitions[s]) == 0 && ValidProjectStatus(s)
}

// CheckProjectTransition validates a requested status change. Unknown
// statuses fail as ErrInvalidStatus, known-but-disallowed edges as
// ErrOutOfSequence; the caller leaves the stored status untouched in
// either case.
func CheckProjectTransition(from, to string) error {
	if !ValidProjectStatus(from) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, from)
	}
	if !ValidProjectStatus(to) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from == to {
		return nil
	}
	for _, allowed := range projectTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrOutOfSequence, from, to)
}

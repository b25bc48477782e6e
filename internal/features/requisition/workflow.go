package requisition

import (
	common_models "go-erp/internal/common/models"
)

// The workflow is strictly sequential: staff submit, the supervisor reviews,
// the admin reviews, the store fulfills. Rejection at either review stage is
// terminal. There are no backward transitions.

// Transition applies the (role, current status, decision) table and returns
// the next status. It is a pure function; callers persist the result.
func Transition(current Status, role common_models.Role, decision Decision) (Status, error) {
	switch role {
	case common_models.RoleSupervisor:
		if current != StatusPending && current != StatusSupervisorReview {
			return "", ErrInvalidTransition
		}
		if decision == DecisionApprove {
			return StatusAdminReview, nil
		}
		return StatusSupervisorRejected, nil

	case common_models.RoleAdmin:
		if current != StatusAdminReview {
			return "", ErrInvalidTransition
		}
		if decision == DecisionApprove {
			return StatusAdminApproved, nil
		}
		return StatusAdminRejected, nil
	}

	return "", ErrUnauthorizedRole
}

// EligibleStatuses returns the statuses a role may act on. Pending and
// supervisor-review are equivalent for routing purposes.
func EligibleStatuses(role common_models.Role) []Status {
	switch role {
	case common_models.RoleSupervisor:
		return []Status{StatusPending, StatusSupervisorReview}
	case common_models.RoleAdmin:
		return []Status{StatusAdminReview}
	}
	return nil
}

// IsTerminal reports whether no decision may follow the given status.
// Admin-approved is terminal for decisions; the only operation it still
// admits is fulfillment.
func IsTerminal(s Status) bool {
	switch s {
	case StatusSupervisorRejected, StatusAdminRejected, StatusAdminApproved, StatusCompleted:
		return true
	}
	return false
}

// IsProcessed reports whether a requisition has passed through at least one
// review decision. Everything past the supervisor stage qualifies.
func IsProcessed(s Status) bool {
	switch s {
	case StatusPending, StatusSupervisorReview:
		return false
	}
	return true
}

// WorkflowStep maps a status to the 4-step progress indicator
// (1 = Supervisor Review, 2 = Admin Approval, 3 = Completed). Rejected
// states return -1: the linear progress metaphor breaks on rejection.
func WorkflowStep(s Status) int {
	switch s {
	case StatusPending, StatusSupervisorReview:
		return 1
	case StatusSupervisorApproved, StatusAdminReview:
		return 2
	case StatusAdminApproved, StatusCompleted:
		return 3
	case StatusSupervisorRejected, StatusAdminRejected:
		return -1
	}
	return 0
}

// DefaultComments is the boilerplate recorded when a reviewer decides
// without leaving a comment.
func DefaultComments(role common_models.Role, decision Decision) string {
	verb := "Approved"
	if decision == DecisionReject {
		verb = "Rejected"
	}
	return verb + " by " + string(role)
}

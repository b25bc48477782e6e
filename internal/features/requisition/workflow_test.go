package requisition

import (
	"errors"
	"testing"

	common_models "go-erp/internal/common/models"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		role     common_models.Role
		decision Decision
		want     Status
		wantErr  error
	}{
		{
			name:     "supervisor approves pending",
			current:  StatusPending,
			role:     common_models.RoleSupervisor,
			decision: DecisionApprove,
			want:     StatusAdminReview,
		},
		{
			name:     "supervisor approves supervisor-review",
			current:  StatusSupervisorReview,
			role:     common_models.RoleSupervisor,
			decision: DecisionApprove,
			want:     StatusAdminReview,
		},
		{
			name:     "supervisor rejects pending",
			current:  StatusPending,
			role:     common_models.RoleSupervisor,
			decision: DecisionReject,
			want:     StatusSupervisorRejected,
		},
		{
			name:     "admin approves admin-review",
			current:  StatusAdminReview,
			role:     common_models.RoleAdmin,
			decision: DecisionApprove,
			want:     StatusAdminApproved,
		},
		{
			name:     "admin rejects admin-review",
			current:  StatusAdminReview,
			role:     common_models.RoleAdmin,
			decision: DecisionReject,
			want:     StatusAdminRejected,
		},
		{
			name:     "admin cannot act on pending",
			current:  StatusPending,
			role:     common_models.RoleAdmin,
			decision: DecisionApprove,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "supervisor cannot act on admin-review",
			current:  StatusAdminReview,
			role:     common_models.RoleSupervisor,
			decision: DecisionApprove,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "supervisor cannot re-decide a supervisor rejection",
			current:  StatusSupervisorRejected,
			role:     common_models.RoleSupervisor,
			decision: DecisionApprove,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "admin cannot re-approve admin-approved",
			current:  StatusAdminApproved,
			role:     common_models.RoleAdmin,
			decision: DecisionApprove,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "admin cannot act on completed",
			current:  StatusCompleted,
			role:     common_models.RoleAdmin,
			decision: DecisionReject,
			wantErr:  ErrInvalidTransition,
		},
		{
			name:     "staff cannot decide",
			current:  StatusPending,
			role:     common_models.RoleStaff,
			decision: DecisionApprove,
			wantErr:  ErrUnauthorizedRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.role, tt.decision)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Transition() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Transition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitionNeverGoesBackward(t *testing.T) {
	// Once a requisition reaches admin-review, no (role, decision) pair may
	// return it to pending or supervisor-review
	roles := []common_models.Role{common_models.RoleSupervisor, common_models.RoleAdmin}
	decisions := []Decision{DecisionApprove, DecisionReject}

	for _, role := range roles {
		for _, decision := range decisions {
			next, err := Transition(StatusAdminReview, role, decision)
			if err != nil {
				continue
			}
			if next == StatusPending || next == StatusSupervisorReview {
				t.Errorf("Transition(admin-review, %s, %s) went backward to %s", role, decision, next)
			}
		}
	}
}

func TestEligibleStatuses(t *testing.T) {
	supervisor := EligibleStatuses(common_models.RoleSupervisor)
	if len(supervisor) != 2 || supervisor[0] != StatusPending || supervisor[1] != StatusSupervisorReview {
		t.Errorf("supervisor eligible statuses = %v", supervisor)
	}

	admin := EligibleStatuses(common_models.RoleAdmin)
	if len(admin) != 1 || admin[0] != StatusAdminReview {
		t.Errorf("admin eligible statuses = %v", admin)
	}

	if EligibleStatuses(common_models.RoleStaff) != nil {
		t.Error("staff should have no decision queue")
	}
}

func TestWorkflowStep(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusPending, 1},
		{StatusSupervisorReview, 1},
		{StatusSupervisorApproved, 2},
		{StatusAdminReview, 2},
		{StatusAdminApproved, 3},
		{StatusCompleted, 3},
		{StatusSupervisorRejected, -1},
		{StatusAdminRejected, -1},
	}

	for _, tt := range tests {
		if got := WorkflowStep(tt.status); got != tt.want {
			t.Errorf("WorkflowStep(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusSupervisorRejected, StatusAdminRejected, StatusAdminApproved, StatusCompleted}
	for _, s := range terminal {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}

	open := []Status{StatusPending, StatusSupervisorReview, StatusSupervisorApproved, StatusAdminReview}
	for _, s := range open {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
}

func TestDefaultComments(t *testing.T) {
	tests := []struct {
		role     common_models.Role
		decision Decision
		want     string
	}{
		{common_models.RoleSupervisor, DecisionApprove, "Approved by supervisor"},
		{common_models.RoleSupervisor, DecisionReject, "Rejected by supervisor"},
		{common_models.RoleAdmin, DecisionApprove, "Approved by admin"},
		{common_models.RoleAdmin, DecisionReject, "Rejected by admin"},
	}

	for _, tt := range tests {
		if got := DefaultComments(tt.role, tt.decision); got != tt.want {
			t.Errorf("DefaultComments(%s, %s) = %q, want %q", tt.role, tt.decision, got, tt.want)
		}
	}
}

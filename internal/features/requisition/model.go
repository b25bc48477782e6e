package requisition

import (
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the closed set of requisition lifecycle states. The transition
// table in workflow.go is the only place a status may change.
type Status string

const (
	StatusPending            Status = "pending"
	StatusSupervisorReview   Status = "supervisor-review"
	StatusSupervisorApproved Status = "supervisor-approved"
	StatusSupervisorRejected Status = "supervisor-rejected"
	StatusAdminReview        Status = "admin-review"
	StatusAdminApproved      Status = "admin-approved"
	StatusAdminRejected      Status = "admin-rejected"
	StatusCompleted          Status = "completed"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	ErrNotFound          = errors.New("requisition not found")
	ErrInvalidTransition = errors.New("invalid requisition status transition")
	ErrUnauthorizedRole  = errors.New("role is not authorized to decide requisitions")
	ErrValidation        = errors.New("requisition validation failed")
)

type RequisitionItem struct {
	ConsumableID      string  `bson:"consumable_id" json:"consumable_id"`
	ConsumableName    string  `bson:"consumable_name" json:"consumable_name"`
	RequestedQuantity float64 `bson:"requested_quantity" json:"requested_quantity"`
	Unit              string  `bson:"unit" json:"unit"`
	Justification     string  `bson:"justification" json:"justification"`
}

// Requisition is a staff consumable request moving through the two-stage
// approval workflow. Requester identity and the item list are immutable
// after creation; only the workflow fields advance.
type Requisition struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number             string             `bson:"number" json:"number"`
	RequestDate        time.Time          `bson:"request_date" json:"request_date"`
	StaffName          string             `bson:"staff_name" json:"staff_name"`
	StaffID            string             `bson:"staff_id" json:"staff_id"`
	Department         string             `bson:"department" json:"department"`
	Supervisor         string             `bson:"supervisor" json:"supervisor"`
	Items              []RequisitionItem  `bson:"items" json:"items"`
	Purpose            string             `bson:"purpose" json:"purpose"`
	Urgency            Urgency            `bson:"urgency" json:"urgency"`
	Status             Status             `bson:"status" json:"status"`
	SupervisorComments string             `bson:"supervisor_comments,omitempty" json:"supervisor_comments,omitempty"`
	AdminComments      string             `bson:"admin_comments,omitempty" json:"admin_comments,omitempty"`
	SupervisorDate     *time.Time         `bson:"supervisor_date,omitempty" json:"supervisor_date,omitempty"`
	AdminDate          *time.Time         `bson:"admin_date,omitempty" json:"admin_date,omitempty"`
	ExpectedDelivery   *time.Time         `bson:"expected_delivery,omitempty" json:"expected_delivery,omitempty"`
	FulfilledDate      *time.Time         `bson:"fulfilled_date,omitempty" json:"fulfilled_date,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// ItemCount is derived from the item list and never stored, so it cannot
// drift out of sync.
func (r *Requisition) ItemCount() int {
	return len(r.Items)
}

func (r *Requisition) MarshalJSON() ([]byte, error) {
	type alias Requisition
	return json.Marshal(struct {
		*alias
		ItemCount    int `json:"item_count"`
		WorkflowStep int `json:"workflow_step"`
	}{
		alias:        (*alias)(r),
		ItemCount:    r.ItemCount(),
		WorkflowStep: WorkflowStep(r.Status),
	})
}

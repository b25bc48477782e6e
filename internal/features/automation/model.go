package automation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trigger events emitted by the requisition lifecycle.
const (
	TriggerRequisitionCreated   = "requisition.created"
	TriggerRequisitionDecided   = "requisition.decided"
	TriggerRequisitionFulfilled = "requisition.fulfilled"
)

type ValidationOperator string

const (
	OperatorEquals      ValidationOperator = "equals"
	OperatorNotEquals   ValidationOperator = "not_equals"
	OperatorContains    ValidationOperator = "contains"
	OperatorGreaterThan ValidationOperator = "gt"
	OperatorLessThan    ValidationOperator = "lt"
)

type ActionType string

const (
	ActionRunScript        ActionType = "run_script"
	ActionSendNotification ActionType = "send_notification"
)

type RuleCondition struct {
	Field    string             `json:"field" bson:"field"`
	Operator ValidationOperator `json:"operator" bson:"operator"`
	Value    interface{}        `json:"value" bson:"value"`
}

type RuleAction struct {
	Type   ActionType             `json:"type" bson:"type"`
	Config map[string]interface{} `json:"config" bson:"config"`
}

type AutomationRule struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Trigger    string             `json:"trigger" bson:"trigger"`
	Active     bool               `json:"active" bson:"active"`
	Conditions []RuleCondition    `json:"conditions" bson:"conditions"`
	Actions    []RuleAction       `json:"actions" bson:"actions"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

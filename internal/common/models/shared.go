package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionFulfill  AuditAction = "FULFILL"
	AuditActionStock    AuditAction = "STOCK"
	AuditActionExport   AuditAction = "EXPORT"
	AuditActionCron     AuditAction = "CRON"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`          // The feature/collection name
	RecordID  string             `bson:"record_id" json:"record_id"`    // The ID of the record being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`      // User ID who performed the action
	ActorName string             `bson:"-" json:"actor_name,omitempty"` // Populated name of the actor
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Role is the closed set of account roles. The requisition workflow keys its
// transition table on these values.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	FullName   string             `bson:"full_name" json:"full_name"`
	StaffID    string             `bson:"staff_id" json:"staff_id"`
	Department string             `bson:"department" json:"department"`
	Roles      []Role             `bson:"roles" json:"roles"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Log is the persisted shape of a structured log entry mirrored to Mongo
// by the async DB log writer.
type Log struct {
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller"`
	LogLevelId   int       `bson:"log_level_id"`
	AppId        string    `bson:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}

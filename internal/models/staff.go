package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents a staff role in the control room
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// Actions checked by HasPermission.
const (
	ActionView             = "view"
	ActionSync             = "sync"
	ActionSubmitChecklist  = "submit_checklist"
	ActionCreateTicket     = "create_ticket"
	ActionResolveTicket    = "resolve_ticket"
	ActionManageFieldForce = "manage_field_force"
	ActionIssueDemerit     = "issue_demerit"
	ActionAdjustInventory  = "adjust_inventory"
	ActionManageStaff      = "manage_staff"
)

// Staff is an authenticated user of the control room
type Staff struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a staff registration request
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	Staff Staff  `json:"staff"`
}

// Claims represents JWT claims
type Claims struct {
	StaffID  string `json:"staff_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleTechnician, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission reports whether the role may perform action.
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleSupervisor:
		return action != ActionManageStaff
	case RoleTechnician:
		return action == ActionView || action == ActionSync ||
			action == ActionSubmitChecklist || action == ActionCreateTicket ||
			action == ActionResolveTicket
	case RoleViewer:
		return action == ActionView
	default:
		return false
	}
}

// HasPermission checks if a staff member has permission for a specific action
func (s *Staff) HasPermission(action string) bool {
	return s.Role.HasPermission(action)
}

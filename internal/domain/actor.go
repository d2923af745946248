package domain

import "errors"

// Actor is the authenticated identity performing an operation. It is
// populated by the auth middleware and threaded into every use case that
// needs an owner check or an audit stamp.
type Actor struct {
	UserID      string
	DisplayName string
	Email       string
	Role        Role
}

// Role represents an actor's access level.
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleOperator can post movements and manage loans, but cannot manage accounts
	RoleOperator Role = "operator"

	// RoleViewer can only view resources, no mutations
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanPost checks if the role can post movements and apply payments.
func (r Role) CanPost() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanManageAccounts checks if the role can open accounts and toggle them.
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// CanViewAll checks if the role can view all resources.
func (r Role) CanViewAll() bool {
	return r.IsValid()
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

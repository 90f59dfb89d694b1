package types

import (
	"strings"

	"github.com/google/uuid"
)

// ActorRef identifies who or what is initiating an operation.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

const (
	// ActorRoleSystemAdmin represents site-wide administrators with unrestricted access.
	ActorRoleSystemAdmin = "system_admin"
	// ActorRoleService represents trusted backend actors (e.g. the identity
	// subsystem triggering provisioning) that act on behalf of other users.
	ActorRoleService = "service"
	// ActorRoleMember represents a regular end user.
	ActorRoleMember = "member"
)

// RoleName normalizes the actor role for comparisons.
func (a ActorRef) RoleName() string {
	return normalizeRole(a.Type)
}

// IsRole reports whether the actor matches the provided role.
func (a ActorRef) IsRole(role string) bool {
	role = normalizeRole(role)
	if role == "" {
		return a.RoleName() == ""
	}
	return a.RoleName() == role
}

// IsSystemAdmin reports whether the actor is a global/system administrator.
func (a ActorRef) IsSystemAdmin() bool {
	return a.IsRole(ActorRoleSystemAdmin)
}

// IsService reports whether the actor is a trusted backend service.
func (a ActorRef) IsService() bool {
	return a.IsRole(ActorRoleService)
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

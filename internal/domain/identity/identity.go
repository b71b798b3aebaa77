// Package identity models the authenticated principal supplied by the
// external identity provider. Authentication itself is out of scope; this
// core only consumes the verified user ID and role.
package identity

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
	RoleSystem    Role = "system"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleShopOwner, RoleSystem:
		return true
	default:
		return false
	}
}

// Actor is the principal performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsShopOwner() bool {
	return a.Role == RoleShopOwner
}

func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}

package services

import (
	"github.com/nkozdemir/fakestore-backend/models"
)

// CartAction is a cart operation checked by the authorization guard.
type CartAction string

const (
	CartActionRead     CartAction = "read"
	CartActionMutate   CartAction = "mutate"
	CartActionList     CartAction = "list"
	CartActionReassign CartAction = "reassign"
)

// CanAccessCart decides whether the principal may perform action on the
// cart owned by ownerID. It is a pure function of (principal, owner, action);
// every handler funnels its permission check through here.
//
// Precedence: staff/admin may read, list, mutate and reassign any cart.
// Customers may read and mutate only their own cart; listing and
// reassignment are operator-only.
func CanAccessCart(principal models.Principal, ownerID int, action CartAction) *ServiceError {
	if principal.Role.IsOperator() {
		return nil
	}

	switch action {
	case CartActionRead, CartActionMutate:
		if principal.UserID == ownerID {
			return nil
		}
		return NewForbidden("You do not have permission to access this cart")
	case CartActionList:
		return NewForbidden("You do not have permission to list carts")
	case CartActionReassign:
		return NewForbidden("You do not have permission to reassign carts")
	default:
		return NewForbidden("Unknown cart action")
	}
}

// ValidateCartOwner rejects staff/admin identities as cart owners. Carts
// belong to customers only, both at creation and at reassignment.
func ValidateCartOwner(role models.Role) *ServiceError {
	if role.IsOperator() {
		return NewValidationError("Carts can only be owned by customers", map[string]interface{}{
			"role": string(role),
		})
	}
	return nil
}

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

func TestCanAccessCart_CustomerOwnCart(t *testing.T) {
	principal := models.Principal{UserID: 7, Role: models.RoleCustomer}

	assert.Nil(t, services.CanAccessCart(principal, 7, services.CartActionRead))
	assert.Nil(t, services.CanAccessCart(principal, 7, services.CartActionMutate))
}

func TestCanAccessCart_CustomerForeignCartForbidden(t *testing.T) {
	principal := models.Principal{UserID: 7, Role: models.RoleCustomer}

	for _, action := range []services.CartAction{services.CartActionRead, services.CartActionMutate} {
		svcErr := services.CanAccessCart(principal, 8, action)
		assert.NotNil(t, svcErr)
		assert.Equal(t, services.CodeForbidden, svcErr.Code)
	}
}

func TestCanAccessCart_CustomerCannotListOrReassign(t *testing.T) {
	principal := models.Principal{UserID: 7, Role: models.RoleCustomer}

	for _, action := range []services.CartAction{services.CartActionList, services.CartActionReassign} {
		svcErr := services.CanAccessCart(principal, 7, action)
		assert.NotNil(t, svcErr)
		assert.Equal(t, services.CodeForbidden, svcErr.Code)
	}
}

func TestCanAccessCart_OperatorsAllowedEverything(t *testing.T) {
	actions := []services.CartAction{
		services.CartActionRead,
		services.CartActionMutate,
		services.CartActionList,
		services.CartActionReassign,
	}
	for _, role := range []models.Role{models.RoleStaff, models.RoleAdmin} {
		principal := models.Principal{UserID: 1, Role: role}
		for _, action := range actions {
			assert.Nil(t, services.CanAccessCart(principal, 42, action), "role %s action %s", role, action)
		}
	}
}

func TestValidateCartOwner(t *testing.T) {
	assert.Nil(t, services.ValidateCartOwner(models.RoleCustomer))

	for _, role := range []models.Role{models.RoleStaff, models.RoleAdmin} {
		svcErr := services.ValidateCartOwner(role)
		assert.NotNil(t, svcErr)
		assert.Equal(t, services.CodeValidationError, svcErr.Code)
	}
}

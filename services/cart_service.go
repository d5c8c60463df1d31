package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
)

// CartService defines the interface for cart business logic. Every
// operation evaluates the authorization guard before touching state.
type CartService interface {
	CreateCart(ctx context.Context, principal models.Principal, req *models.CartCreateRequest) (*models.Cart, *ServiceError)
	GetCart(ctx context.Context, principal models.Principal, cartID int) (*models.Cart, *ServiceError)
	ListCarts(ctx context.Context, principal models.Principal, ownerFilter *int) ([]models.Cart, *ServiceError)
	PatchCart(ctx context.Context, principal models.Principal, cartID int, batch *models.CartPatchRequest) (*models.Cart, *ServiceError)
	ReplaceCart(ctx context.Context, principal models.Principal, cartID int, req *models.CartReplaceRequest) (*models.Cart, *ServiceError)
	DeleteCart(ctx context.Context, principal models.Principal, cartID int) *ServiceError
}

// cartServiceImpl implements CartService.
type cartServiceImpl struct {
	carts  repository.CartRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repository.CartRepository, users repository.UserRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, users: users, logger: logger}
}

// CreateCart creates a cart owned by the principal. A customer gets at most
// one cart; operators cannot own one at all.
func (s *cartServiceImpl) CreateCart(ctx context.Context, principal models.Principal, req *models.CartCreateRequest) (*models.Cart, *ServiceError) {
	if svcErr := ValidateCartOwner(principal.Role); svcErr != nil {
		return nil, svcErr
	}

	existing, err := s.carts.FindByOwner(ctx, principal.UserID)
	if err != nil {
		s.logger.Error("Cart owner lookup failed", zap.Int("user_id", principal.UserID), zap.Error(err))
		return nil, NewDependencyError("Failed to create cart")
	}
	if existing != nil {
		return nil, NewConflict("User already owns a cart", map[string]interface{}{
			"userId": principal.UserID,
			"cartId": existing.ID,
		})
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req != nil && strings.TrimSpace(req.Date) != "" {
		parsed, svcErr := ParseCartDate(req.Date)
		if svcErr != nil {
			return nil, svcErr
		}
		date = parsed
	}

	var items []models.CartItem
	if req != nil && len(req.Products) > 0 {
		built, svcErr := BuildCartItems(req.Products)
		if svcErr != nil {
			return nil, svcErr
		}
		items = built
	}

	cart := &models.Cart{UserID: principal.UserID, Date: date, Items: items}
	if err := s.carts.Create(ctx, cart); err != nil {
		s.logger.Error("Cart creation failed", zap.Int("user_id", principal.UserID), zap.Error(err))
		return nil, NewDependencyError("Failed to create cart")
	}

	s.logger.Info("Cart created", zap.Int("cart_id", cart.ID), zap.Int("user_id", principal.UserID))
	return cart, nil
}

// GetCart returns a cart the principal is allowed to read.
func (s *cartServiceImpl) GetCart(ctx context.Context, principal models.Principal, cartID int) (*models.Cart, *ServiceError) {
	cart, svcErr := s.loadCart(ctx, cartID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := CanAccessCart(principal, cart.UserID, CartActionRead); svcErr != nil {
		return nil, svcErr
	}
	return cart, nil
}

// ListCarts returns carts visible to the principal. Customers may only list
// their own cart (scoped by their own id); operators may list everything and
// filter by owner.
func (s *cartServiceImpl) ListCarts(ctx context.Context, principal models.Principal, ownerFilter *int) ([]models.Cart, *ServiceError) {
	if !principal.Role.IsOperator() {
		if ownerFilter == nil || *ownerFilter != principal.UserID {
			if svcErr := CanAccessCart(principal, 0, CartActionList); svcErr != nil {
				return nil, svcErr
			}
		}
		ownerFilter = &principal.UserID
	}

	carts, err := s.carts.FindAll(ctx, ownerFilter)
	if err != nil {
		s.logger.Error("Cart listing failed", zap.Error(err))
		return nil, NewDependencyError("Failed to list carts")
	}
	return carts, nil
}

// PatchCart applies a batch of add/update/remove operations plus optional
// date and owner changes, atomically. The engine validates and computes the
// new item set in memory; nothing persists unless the whole batch is valid.
func (s *cartServiceImpl) PatchCart(ctx context.Context, principal models.Principal, cartID int, batch *models.CartPatchRequest) (*models.Cart, *ServiceError) {
	cart, svcErr := s.loadCart(ctx, cartID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := CanAccessCart(principal, cart.UserID, CartActionMutate); svcErr != nil {
		return nil, svcErr
	}

	newItems, newDate, svcErr := ApplyCartPatch(cart.Items, batch)
	if svcErr != nil {
		return nil, svcErr
	}

	ownerID := cart.UserID
	if batch.UserID != nil && *batch.UserID != cart.UserID {
		target, svcErr := s.resolveReassignment(ctx, principal, cart, *batch.UserID)
		if svcErr != nil {
			return nil, svcErr
		}
		ownerID = target
	}

	date := cart.Date
	if newDate != nil {
		date = *newDate
	}

	if err := s.carts.Replace(ctx, cart.ID, ownerID, date, newItems); err != nil {
		s.logger.Error("Cart patch persist failed", zap.Int("cart_id", cart.ID), zap.Error(err))
		return nil, NewDependencyError("Failed to update cart")
	}

	s.logger.Info("Cart patched",
		zap.Int("cart_id", cart.ID),
		zap.Int("adds", len(batch.Add)),
		zap.Int("updates", len(batch.Update)),
		zap.Int("removes", len(batch.Remove)),
	)
	return s.loadCart(ctx, cart.ID)
}

// ReplaceCart rebuilds the cart's entire item set from the payload (PUT).
func (s *cartServiceImpl) ReplaceCart(ctx context.Context, principal models.Principal, cartID int, req *models.CartReplaceRequest) (*models.Cart, *ServiceError) {
	cart, svcErr := s.loadCart(ctx, cartID)
	if svcErr != nil {
		return nil, svcErr
	}
	if svcErr := CanAccessCart(principal, cart.UserID, CartActionMutate); svcErr != nil {
		return nil, svcErr
	}

	date := cart.Date
	if strings.TrimSpace(req.Date) != "" {
		parsed, svcErr := ParseCartDate(req.Date)
		if svcErr != nil {
			return nil, svcErr
		}
		date = parsed
	}

	items, svcErr := BuildCartItems(req.Products)
	if svcErr != nil {
		return nil, svcErr
	}

	if err := s.carts.Replace(ctx, cart.ID, cart.UserID, date, items); err != nil {
		s.logger.Error("Cart replace persist failed", zap.Int("cart_id", cart.ID), zap.Error(err))
		return nil, NewDependencyError("Failed to update cart")
	}

	s.logger.Info("Cart replaced", zap.Int("cart_id", cart.ID), zap.Int("items", len(items)))
	return s.loadCart(ctx, cart.ID)
}

// DeleteCart removes a cart and all of its line items.
func (s *cartServiceImpl) DeleteCart(ctx context.Context, principal models.Principal, cartID int) *ServiceError {
	cart, svcErr := s.loadCart(ctx, cartID)
	if svcErr != nil {
		return svcErr
	}
	if svcErr := CanAccessCart(principal, cart.UserID, CartActionMutate); svcErr != nil {
		return svcErr
	}

	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		s.logger.Error("Cart deletion failed", zap.Int("cart_id", cart.ID), zap.Error(err))
		return NewDependencyError("Failed to delete cart")
	}

	s.logger.Info("Cart deleted", zap.Int("cart_id", cart.ID))
	return nil
}

func (s *cartServiceImpl) loadCart(ctx context.Context, cartID int) (*models.Cart, *ServiceError) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("Cart not found", map[string]interface{}{"id": cartID})
	}
	if err != nil {
		s.logger.Error("Cart lookup failed", zap.Int("cart_id", cartID), zap.Error(err))
		return nil, NewDependencyError("Failed to load cart")
	}
	return cart, nil
}

// resolveReassignment validates a change of cart ownership and returns the
// new owner id. Only operators may reassign; the target must exist, must be
// a customer, and must not already own a different cart.
func (s *cartServiceImpl) resolveReassignment(ctx context.Context, principal models.Principal, cart *models.Cart, targetID int) (int, *ServiceError) {
	if svcErr := CanAccessCart(principal, cart.UserID, CartActionReassign); svcErr != nil {
		return 0, svcErr
	}

	target, err := s.users.FindByID(ctx, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, NewNotFound("User not found", map[string]interface{}{"userId": targetID})
	}
	if err != nil {
		s.logger.Error("Reassignment target lookup failed", zap.Int("user_id", targetID), zap.Error(err))
		return 0, NewDependencyError("Failed to update cart")
	}
	if svcErr := ValidateCartOwner(target.Role); svcErr != nil {
		return 0, svcErr
	}

	owned, err := s.carts.FindByOwner(ctx, target.ID)
	if err != nil {
		s.logger.Error("Reassignment cart lookup failed", zap.Int("user_id", target.ID), zap.Error(err))
		return 0, NewDependencyError("Failed to update cart")
	}
	if owned != nil && owned.ID != cart.ID {
		return 0, NewConflict("Target user already owns a cart", map[string]interface{}{
			"userId": target.ID,
			"cartId": owned.ID,
		})
	}

	return target.ID, nil
}

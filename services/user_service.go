package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
)

// UserService defines the interface for user account logic.
type UserService interface {
	ListUsers(ctx context.Context, principal models.Principal) ([]models.User, *ServiceError)
	GetUser(ctx context.Context, principal models.Principal, userID int) (*models.User, *ServiceError)
	UpdateUser(ctx context.Context, principal models.Principal, userID int, req *models.UserUpdateRequest) (*models.User, *ServiceError)
	DeleteUser(ctx context.Context, principal models.Principal, userID int) *ServiceError
}

type userServiceImpl struct {
	users  repository.UserRepository
	carts  repository.CartRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, carts repository.CartRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{users: users, carts: carts, logger: logger}
}

// ListUsers is operator-only.
func (s *userServiceImpl) ListUsers(ctx context.Context, principal models.Principal) ([]models.User, *ServiceError) {
	if !principal.Role.IsOperator() {
		return nil, NewForbidden("You do not have permission to list users")
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.logger.Error("User listing failed", zap.Error(err))
		return nil, NewDependencyError("Failed to list users")
	}
	return users, nil
}

// GetUser returns a user record; customers may only read themselves.
func (s *userServiceImpl) GetUser(ctx context.Context, principal models.Principal, userID int) (*models.User, *ServiceError) {
	if !principal.Role.IsOperator() && principal.UserID != userID {
		return nil, NewForbidden("You do not have permission to access this user")
	}
	return s.loadUser(ctx, userID)
}

// UpdateUser applies a partial update; customers may only update themselves.
func (s *userServiceImpl) UpdateUser(ctx context.Context, principal models.Principal, userID int, req *models.UserUpdateRequest) (*models.User, *ServiceError) {
	if !principal.Role.IsOperator() && principal.UserID != userID {
		return nil, NewForbidden("You do not have permission to update this user")
	}

	user, svcErr := s.loadUser(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Firstname != nil {
		user.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		user.Lastname = *req.Lastname
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if other, err := s.users.FindByEmail(ctx, email); err == nil {
			if other.ID != user.ID {
				return nil, NewConflict("Email already exists", map[string]interface{}{"email": email})
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Email lookup failed", zap.Int("user_id", userID), zap.Error(err))
			return nil, NewDependencyError("Failed to update user")
		}
		user.Email = email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("Password hashing failed", zap.Error(err))
			return nil, NewDependencyError("Failed to update user")
		}
		user.Password = string(hashed)
	}
	if req.Address != nil {
		addr := addressFromRequest(req.Address)
		addr.UserID = user.ID
		if user.Address != nil {
			addr.ID = user.Address.ID
		}
		user.Address = addr
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("User update failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, NewDependencyError("Failed to update user")
	}

	s.logger.Info("User updated", zap.Int("user_id", userID))
	return user, nil
}

// DeleteUser removes an account and its cart. Operator-only, except that a
// customer may delete their own account.
func (s *userServiceImpl) DeleteUser(ctx context.Context, principal models.Principal, userID int) *ServiceError {
	if !principal.Role.IsOperator() && principal.UserID != userID {
		return NewForbidden("You do not have permission to delete this user")
	}

	user, svcErr := s.loadUser(ctx, userID)
	if svcErr != nil {
		return svcErr
	}

	cart, err := s.carts.FindByOwner(ctx, user.ID)
	if err != nil {
		s.logger.Error("Cart lookup during user deletion failed", zap.Int("user_id", userID), zap.Error(err))
		return NewDependencyError("Failed to delete user")
	}
	if cart != nil {
		if err := s.carts.Delete(ctx, cart.ID); err != nil {
			s.logger.Error("Cart deletion during user deletion failed", zap.Int("cart_id", cart.ID), zap.Error(err))
			return NewDependencyError("Failed to delete user")
		}
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		s.logger.Error("User deletion failed", zap.Int("user_id", userID), zap.Error(err))
		return NewDependencyError("Failed to delete user")
	}

	s.logger.Info("User deleted", zap.Int("user_id", userID))
	return nil
}

func (s *userServiceImpl) loadUser(ctx context.Context, userID int) (*models.User, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFound("User not found", map[string]interface{}{"id": userID})
	}
	if err != nil {
		s.logger.Error("User lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, NewDependencyError("Failed to load user")
	}
	return user, nil
}

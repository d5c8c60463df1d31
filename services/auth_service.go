package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
)

// AuthService handles registration and login.
type AuthService struct {
	users  repository.UserRepository
	carts  repository.CartRepository
	tokens *TokenService
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, carts repository.CartRepository, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, carts: carts, tokens: tokens, logger: logger}
}

// Register creates a customer account and its (empty) cart. Every customer
// has exactly one cart from signup onwards.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, *ServiceError) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, NewConflict("Username already exists", map[string]interface{}{"username": username})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Username lookup failed", zap.Error(err))
		return nil, NewDependencyError("Failed to register user")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, NewConflict("Email already exists", map[string]interface{}{"email": email})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Email lookup failed", zap.Error(err))
		return nil, NewDependencyError("Failed to register user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, NewDependencyError("Failed to register user")
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hashed),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
		Role:      models.RoleCustomer,
	}
	if req.Address != nil {
		user.Address = addressFromRequest(req.Address)
	}

	// Account and cart are created in one transaction so a failure can
	// never leave a customer without their cart.
	cart := &models.Cart{Date: time.Now().UTC().Truncate(24 * time.Hour)}
	if err := s.users.CreateWithCart(ctx, user, cart); err != nil {
		s.logger.Error("User creation failed", zap.String("username", username), zap.Error(err))
		return nil, NewDependencyError("Failed to register user")
	}

	s.logger.Info("User registered", zap.Int("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Login verifies credentials and returns a signed access/refresh pair.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*TokenPair, *models.User, *ServiceError) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, invalidCredentials()
	}
	if err != nil {
		s.logger.Error("Login lookup failed", zap.Error(err))
		return nil, nil, NewDependencyError("Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, invalidCredentials()
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, nil, NewDependencyError("Failed to log in")
	}

	s.logger.Info("User logged in", zap.Int("user_id", user.ID))
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new access/refresh pair.
// The user is reloaded so role changes and deletions take effect on the
// next rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *ServiceError) {
	principal, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, &ServiceError{StatusCode: 401, Code: CodeUnauthorized, Message: "Invalid or expired refresh token"}
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ServiceError{StatusCode: 401, Code: CodeUnauthorized, Message: "Invalid or expired refresh token"}
	}
	if err != nil {
		s.logger.Error("Refresh lookup failed", zap.Int("user_id", principal.UserID), zap.Error(err))
		return nil, NewDependencyError("Failed to refresh token")
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.logger.Error("Token generation failed", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, NewDependencyError("Failed to refresh token")
	}

	s.logger.Info("Token refreshed", zap.Int("user_id", user.ID))
	return pair, nil
}

// UsernameAvailable reports whether a username is free to register.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, *ServiceError) {
	_, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		s.logger.Error("Username lookup failed", zap.Error(err))
		return false, NewDependencyError("Failed to check username")
	}
	return false, nil
}

func invalidCredentials() *ServiceError {
	return &ServiceError{StatusCode: 401, Code: CodeUnauthorized, Message: "Invalid username or password"}
}

func addressFromRequest(req *models.AddressRequest) *models.Address {
	addr := &models.Address{
		Street:  req.Street,
		Number:  req.Number,
		City:    req.City,
		Zipcode: req.Zipcode,
	}
	if req.Geolocation != nil {
		addr.Latitude = req.Geolocation.Lat
		addr.Longitude = req.Geolocation.Long
	}
	return addr
}

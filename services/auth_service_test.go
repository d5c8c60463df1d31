package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

func newTestAuthService(users *mockUserRepo, carts *mockCartRepo) *services.AuthService {
	users.carts = carts
	tokens := services.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	return services.NewAuthService(users, carts, tokens, zap.NewNop())
}

func registerReq() *models.RegisterRequest {
	return &models.RegisterRequest{
		Username: "johnd",
		Email:    "john@example.com",
		Password: "m38rmF$pass",
	}
}

func TestAuthService_Register_CreatesUserWithCart(t *testing.T) {
	users := newMockUserRepo()
	carts := newMockCartRepo()
	svc := newTestAuthService(users, carts)

	user, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "m38rmF$pass", user.Password, "password must be stored hashed")

	cart, err := carts.FindByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, cart, "signup creates the customer's cart")
	assert.Empty(t, cart.Items)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	_, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	dup := registerReq()
	dup.Email = "other@example.com"
	_, svcErr = svc.Register(context.Background(), dup)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeConflict, svcErr.Code)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	_, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	dup := registerReq()
	dup.Username = "johnd2"
	_, svcErr = svc.Register(context.Background(), dup)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeConflict, svcErr.Code)
}

func TestAuthService_Login_RoundTrip(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	registered, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	pair, user, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "johnd",
		Password: "m38rmF$pass",
	})
	require.Nil(t, svcErr)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, registered.ID, user.ID)

	// The issued access token resolves back to the same principal.
	tokens := services.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	principal, err := tokens.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.UserID)
	assert.Equal(t, models.RoleCustomer, principal.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	_, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	_, _, svcErr = svc.Login(context.Background(), &models.LoginRequest{
		Username: "johnd",
		Password: "wrong-password",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeUnauthorized, svcErr.Code)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(), newMockCartRepo())

	_, _, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "ghost",
		Password: "whatever123",
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeUnauthorized, svcErr.Code)
}

func TestAuthService_Refresh_RotatesPair(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	registered, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	pair, _, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "johnd",
		Password: "m38rmF$pass",
	})
	require.Nil(t, svcErr)

	rotated, svcErr := svc.Refresh(context.Background(), pair.RefreshToken)
	require.Nil(t, svcErr)
	require.NotNil(t, rotated)

	tokens := services.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	principal, err := tokens.Validate(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.UserID)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	_, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	pair, _, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "johnd",
		Password: "m38rmF$pass",
	})
	require.Nil(t, svcErr)

	_, svcErr = svc.Refresh(context.Background(), pair.AccessToken)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeUnauthorized, svcErr.Code)
}

func TestAuthService_Refresh_DeletedUserRejected(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	registered, svcErr := svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	pair, _, svcErr := svc.Login(context.Background(), &models.LoginRequest{
		Username: "johnd",
		Password: "m38rmF$pass",
	})
	require.Nil(t, svcErr)

	require.NoError(t, users.Delete(context.Background(), registered.ID))

	_, svcErr = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NotNil(t, svcErr)
	assert.Equal(t, services.CodeUnauthorized, svcErr.Code)
}

func TestAuthService_UsernameAvailable(t *testing.T) {
	users := newMockUserRepo()
	svc := newTestAuthService(users, newMockCartRepo())

	available, svcErr := svc.UsernameAvailable(context.Background(), "johnd")
	require.Nil(t, svcErr)
	assert.True(t, available)

	_, svcErr = svc.Register(context.Background(), registerReq())
	require.Nil(t, svcErr)

	available, svcErr = svc.UsernameAvailable(context.Background(), "johnd")
	require.Nil(t, svcErr)
	assert.False(t, available)
}

func TestTokenService_AccessRejectsRefreshToken(t *testing.T) {
	tokens := services.NewTokenService("test-secret", time.Hour, 24*time.Hour)

	pair, err := tokens.GeneratePair(&models.User{ID: 1, Username: "johnd", Role: models.RoleCustomer})
	require.NoError(t, err)

	// Each token kind is only valid for its own check.
	_, err = tokens.Validate(pair.RefreshToken)
	assert.Error(t, err, "refresh token must not pass as an access token")
	_, err = tokens.ValidateRefresh(pair.AccessToken)
	assert.Error(t, err, "access token must not pass as a refresh token")

	_, err = tokens.Validate(pair.AccessToken)
	assert.NoError(t, err)
	_, err = tokens.ValidateRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := services.NewTokenService("secret-a", time.Hour, 24*time.Hour)
	verifier := services.NewTokenService("secret-b", time.Hour, 24*time.Hour)

	pair, err := issuer.GeneratePair(&models.User{ID: 1, Username: "johnd", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = verifier.Validate(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	tokens := services.NewTokenService("test-secret", -time.Minute, -time.Minute)

	pair, err := tokens.GeneratePair(&models.User{ID: 1, Username: "johnd", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = tokens.Validate(pair.AccessToken)
	assert.Error(t, err)
}

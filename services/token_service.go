package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nkozdemir/fakestore-backend/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is an access token plus the long-lived refresh token used to
// obtain the next pair.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and validates the HS256 tokens used by the auth
// middleware. Access and refresh tokens share the secret but carry a typ
// claim, so one kind is never accepted where the other is expected.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GeneratePair creates a signed access/refresh token pair for the user.
func (t *TokenService) GeneratePair(user *models.User) (*TokenPair, error) {
	access, err := t.generate(user, t.accessTTL, tokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := t.generate(user, t.refreshTTL, tokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenService) generate(user *models.User, ttl time.Duration, typ string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"typ":      typ,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses an access token and returns the principal it identifies.
// Refresh tokens are rejected.
func (t *TokenService) Validate(tokenStr string) (models.Principal, error) {
	return t.validate(tokenStr, tokenTypeAccess)
}

// ValidateRefresh parses a refresh token and returns the principal it was
// issued to. Access tokens are rejected.
func (t *TokenService) ValidateRefresh(tokenStr string) (models.Principal, error) {
	return t.validate(tokenStr, tokenTypeRefresh)
}

func (t *TokenService) validate(tokenStr, wantType string) (models.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, fmt.Errorf("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return models.Principal{}, fmt.Errorf("invalid token: wrong token type")
	}

	// Numeric claims round-trip through JSON as float64.
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return models.Principal{}, fmt.Errorf("invalid token: user_id claim missing")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return models.Principal{}, fmt.Errorf("invalid token: role claim missing")
	}

	return models.Principal{UserID: int(rawID), Role: models.Role(role)}, nil
}

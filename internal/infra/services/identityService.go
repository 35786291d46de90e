package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"health-connector/internal/domain/entities"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/store"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("no active session")

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IdentityService reads and writes the locally persisted auth token and user
// profile. Identity claims come out of the token itself; verification of the
// signature belongs to the backend, this side only checks shape and expiry.
type IdentityService struct {
	Store  *store.LocalStore
	Logger *logger.Logger
}

func NewIdentityService(localStore *store.LocalStore, logger *logger.Logger) *IdentityService {
	return &IdentityService{Store: localStore, Logger: logger}
}

func (is *IdentityService) Token() (string, error) {
	token, err := is.Store.Get(store.KeyAuthToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoSession
	}
	return token, err
}

func (is *IdentityService) SetSession(token string, profile entities.UserProfile) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := is.Store.Set(store.KeyAuthToken, token); err != nil {
		return err
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}
	return is.Store.Set(store.KeyUserProfile, string(encoded))
}

func (is *IdentityService) ClearSession() error {
	if err := is.Store.Delete(store.KeyAuthToken); err != nil {
		return err
	}
	return is.Store.Delete(store.KeyUserProfile)
}

func (is *IdentityService) Profile() (entities.UserProfile, error) {
	var profile entities.UserProfile
	raw, err := is.Store.Get(store.KeyUserProfile)
	if errors.Is(err, store.ErrNotFound) {
		return profile, ErrNoSession
	}
	if err != nil {
		return profile, err
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return profile, fmt.Errorf("failed to parse stored user profile: %w", err)
	}
	return profile, nil
}

func (is *IdentityService) IsLoggedIn() bool {
	if _, err := is.Token(); err != nil {
		return false
	}
	_, err := is.Profile()
	return err == nil
}

// IsTokenValid checks that the stored token decodes and has not expired.
func (is *IdentityService) IsTokenValid() bool {
	claims, err := is.claims()
	if err != nil {
		is.Logger.Warn(fmt.Sprintf("Token validation failed: %v", err))
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.After(time.Now())
}

func (is *IdentityService) UserIDFromToken() (int64, error) {
	claims, err := is.claims()
	if err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("token carries no user id")
	}
	return claims.UserID, nil
}

func (is *IdentityService) IsAdmin() bool {
	profile, err := is.Profile()
	if err != nil {
		return false
	}
	return profile.IsAdmin()
}

func (is *IdentityService) claims() (*tokenClaims, error) {
	token, err := is.Token()
	if err != nil {
		return nil, err
	}
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

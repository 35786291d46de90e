package Iservices

import "health-connector/internal/domain/entities"

// IIdentityService reads the locally persisted auth token and user profile.
// The pipeline only consumes identity; writes happen in the login/logout flow.
type IIdentityService interface {
	Token() (string, error)
	SetSession(token string, profile entities.UserProfile) error
	ClearSession() error
	Profile() (entities.UserProfile, error)
	IsLoggedIn() bool
	IsTokenValid() bool
	UserIDFromToken() (int64, error)
	IsAdmin() bool
}

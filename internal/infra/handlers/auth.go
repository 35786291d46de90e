package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/provider"
	"health-connector/internal/infra/services"
	"health-connector/internal/util"
)

type AuthHandlers struct {
	Logger   *logger.Logger
	Provider provider.IHealthAPIProvider
	Identity Iservices.IIdentityService
}

func NewAuthHandlers(logger *logger.Logger, apiProvider provider.IHealthAPIProvider, identity Iservices.IIdentityService) *AuthHandlers {
	return &AuthHandlers{Logger: logger, Provider: apiProvider, Identity: identity}
}

// Login authenticates against the core backend and stores the returned token
// and profile locally (POST).
//
// HTTP Status Codes:
// - 200 OK: Credentials accepted; the body carries the profile.
// - 400 Bad Request: The payload is not valid JSON.
// - 401 Unauthorized: The backend rejected the credentials.
// - 502 Bad Gateway: The backend could not be reached.
func (ah *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var body dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ah.Logger.Error(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := ah.Provider.Login(r.Context(), body)
	if err != nil {
		var statusErr *util.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		ah.Logger.Error(fmt.Sprintf("Login request failed: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Authentication service unavailable")
		return
	}

	profile := entities.UserProfile{
		UserID:   result.UserID,
		Email:    result.Email,
		Nickname: result.Nickname,
		Role:     result.Role,
	}
	if err := ah.Identity.SetSession(result.Token, profile); err != nil {
		ah.Logger.Error(fmt.Sprintf("Failed to store session: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to store session")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Logout discards the stored token and profile (POST).
func (ah *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ah.Identity.ClearSession(); err != nil {
		ah.Logger.Error(fmt.Sprintf("Failed to clear session: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the stored profile of the signed-in user (GET).
func (ah *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := ah.Identity.Profile()
	if err != nil {
		if errors.Is(err, services.ErrNoSession) {
			writeError(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		ah.Logger.Error(fmt.Sprintf("Failed to read profile: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to read profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

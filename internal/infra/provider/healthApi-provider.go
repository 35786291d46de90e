package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"health-connector/internal/domain/dto"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/util"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// HealthAPIProvider wraps the core REST backend. Every mutating call carries
// the locally stored bearer token, and writes that can move the dashboard
// numbers drop the cached statistics of the affected user.
type HealthAPIProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
	Identity   Iservices.IIdentityService

	statsCache cmap.ConcurrentMap[string, dto.HealthStatistics]
}

func NewHealthAPIProvider(logger *logger.Logger, httpClient *http.Client, baseURL string, identity Iservices.IIdentityService) *HealthAPIProvider {
	return &HealthAPIProvider{
		Logger:     logger,
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Identity:   identity,
		statsCache: cmap.New[dto.HealthStatistics](),
	}
}

// doJSON issues one backend call: marshals the payload when present, attaches
// the bearer token, and decodes the response body into out (which may be nil
// for calls whose body is irrelevant). Non-2xx statuses become
// *util.HTTPStatusError so the retry predicate can classify them.
func (hp *HealthAPIProvider) doJSON(ctx context.Context, method, path string, payload any, out any, authorized bool) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			hp.Logger.Error(fmt.Sprintf("Failed to marshal payload for %s %s: %v", method, path, err))
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, hp.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if authorized {
		if !hp.Identity.IsTokenValid() {
			return fmt.Errorf("auth token is missing or expired")
		}
		token, err := hp.Identity.Token()
		if err != nil {
			return fmt.Errorf("no auth token available: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := hp.HttpClient.Do(req)
	if err != nil {
		hp.Logger.Error(fmt.Sprintf("HTTP request failed %s %s: %v", method, path, err))
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(res.Body)
		hp.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s for %s %s response_body %s", res.Status, method, path, string(raw)))
		return &util.HTTPStatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func (hp *HealthAPIProvider) Login(ctx context.Context, request dto.LoginRequest) (dto.LoginResponse, error) {
	var response dto.LoginResponse
	err := hp.doJSON(ctx, http.MethodPost, "/api/auth/login", request, &response, false)
	return response, err
}

// FindOrCreateExercise resolves a catalog entry by name, creating one when
// the catalog has no match. Idempotency by name+bodyPart is enforced server
// side; repeating the call with the same name returns the same id.
func (hp *HealthAPIProvider) FindOrCreateExercise(ctx context.Context, request dto.FindOrCreateExerciseRequest) (dto.ExerciseCatalog, error) {
	var catalog dto.ExerciseCatalog
	err := hp.doJSON(ctx, http.MethodPost, "/api/exercises/find-or-create", request, &catalog, true)
	return catalog, err
}

func (hp *HealthAPIProvider) CreateExerciseSession(ctx context.Context, userID int64, request dto.ExerciseSessionCreateRequest) (dto.ExerciseSession, error) {
	var session dto.ExerciseSession
	err := hp.doJSON(ctx, http.MethodPost, "/api/exercise-sessions", request, &session, true)
	if err == nil {
		hp.InvalidateStatistics(userID)
	}
	return session, err
}

func (hp *HealthAPIProvider) ListExerciseSessions(ctx context.Context, userID int64, period string) ([]dto.ExerciseSession, error) {
	var sessions []dto.ExerciseSession
	path := fmt.Sprintf("/api/exercise-sessions/%d?period=%s", userID, url.QueryEscape(period))
	err := hp.doJSON(ctx, http.MethodGet, path, nil, &sessions, true)
	return sessions, err
}

func (hp *HealthAPIProvider) SearchFoodItems(ctx context.Context, keyword string) ([]dto.FoodItem, error) {
	var items []dto.FoodItem
	path := "/api/diet/food-items/search?keyword=" + url.QueryEscape(keyword)
	err := hp.doJSON(ctx, http.MethodGet, path, nil, &items, true)
	return items, err
}

func (hp *HealthAPIProvider) CreateFoodItem(ctx context.Context, request dto.FoodItemCreateRequest) (dto.FoodItem, error) {
	var item dto.FoodItem
	err := hp.doJSON(ctx, http.MethodPost, "/api/diet/food-items", request, &item, true)
	return item, err
}

func (hp *HealthAPIProvider) CreateDietRecord(ctx context.Context, request dto.DietRecordCreateRequest) (dto.DietRecord, error) {
	var record dto.DietRecord
	err := hp.doJSON(ctx, http.MethodPost, "/api/diet/record", request, &record, true)
	if err == nil {
		hp.InvalidateStatistics(request.UserID)
	}
	return record, err
}

func (hp *HealthAPIProvider) ListDailyDietRecords(ctx context.Context, userID int64, date string) ([]dto.DietRecord, error) {
	var records []dto.DietRecord
	path := fmt.Sprintf("/api/diet/daily-records/%s?userId=%d", url.PathEscape(date), userID)
	err := hp.doJSON(ctx, http.MethodGet, path, nil, &records, true)
	return records, err
}

func (hp *HealthAPIProvider) CreateHealthRecord(ctx context.Context, request dto.HealthRecordCreateRequest) (dto.HealthRecord, error) {
	var record dto.HealthRecord
	err := hp.doJSON(ctx, http.MethodPost, "/api/health-records", request, &record, true)
	return record, err
}

func (hp *HealthAPIProvider) CreateUserGoal(ctx context.Context, request dto.UserGoalCreateRequest) (dto.UserGoal, error) {
	var goal dto.UserGoal
	err := hp.doJSON(ctx, http.MethodPost, "/api/user-goals", request, &goal, true)
	return goal, err
}

// GetStatistics serves from the cache when a fresh copy exists; any mutation
// through this provider drops the user's cached entries first.
func (hp *HealthAPIProvider) GetStatistics(ctx context.Context, userID int64, period string) (dto.HealthStatistics, error) {
	key := statsKey(userID, period)
	if cached, ok := hp.statsCache.Get(key); ok {
		return cached, nil
	}

	var stats dto.HealthStatistics
	path := fmt.Sprintf("/api/health-statistics/%d?period=%s", userID, url.QueryEscape(period))
	if err := hp.doJSON(ctx, http.MethodGet, path, nil, &stats, true); err != nil {
		return stats, err
	}
	hp.statsCache.Set(key, stats)
	return stats, nil
}

func (hp *HealthAPIProvider) InvalidateStatistics(userID int64) {
	prefix := strconv.FormatInt(userID, 10) + "|"
	for _, key := range hp.statsCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			hp.statsCache.Remove(key)
		}
	}
}

func (hp *HealthAPIProvider) ListNotifications(ctx context.Context, userID int64) ([]dto.Notification, error) {
	var notifications []dto.Notification
	path := fmt.Sprintf("/api/notifications/%d", userID)
	err := hp.doJSON(ctx, http.MethodGet, path, nil, &notifications, true)
	return notifications, err
}

func (hp *HealthAPIProvider) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/api/notifications/%d/read", notificationID)
	return hp.doJSON(ctx, http.MethodPut, path, nil, nil, true)
}

func (hp *HealthAPIProvider) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/api/notifications/read-all?userId=%d", userID)
	return hp.doJSON(ctx, http.MethodPut, path, nil, nil, true)
}

func (hp *HealthAPIProvider) DeleteNotification(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/api/notifications/%d", notificationID)
	return hp.doJSON(ctx, http.MethodDelete, path, nil, nil, true)
}

func statsKey(userID int64, period string) string {
	return strconv.FormatInt(userID, 10) + "|" + period
}

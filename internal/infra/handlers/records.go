package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"health-connector/internal/domain/dto"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/provider"

	"github.com/gorilla/mux"
)

// RecordHandlers exposes read and write passthroughs to the core backend for
// the signed-in user: saved records, statistics, goals and notifications.
type RecordHandlers struct {
	Logger        *logger.Logger
	Provider      provider.IHealthAPIProvider
	Identity      Iservices.IIdentityService
	NotificationService Iservices.INotificationService
}

func NewRecordHandlers(logger *logger.Logger, apiProvider provider.IHealthAPIProvider, identity Iservices.IIdentityService, notifications Iservices.INotificationService) *RecordHandlers {
	return &RecordHandlers{Logger: logger, Provider: apiProvider, Identity: identity, NotificationService: notifications}
}

func (rh *RecordHandlers) userID(w http.ResponseWriter) (int64, bool) {
	userID, err := rh.Identity.UserIDFromToken()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return 0, false
	}
	return userID, true
}

// ExerciseSessions lists the user's saved workout sessions (GET).
// The optional period query parameter accepts day, week or month.
func (rh *RecordHandlers) ExerciseSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := rh.userID(w)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}

	sessions, err := rh.Provider.ListExerciseSessions(r.Context(), userID, period)
	if err != nil {
		rh.Logger.Error(fmt.Sprintf("Failed to list exercise sessions: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Failed to fetch exercise sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// DietRecords lists the user's diet records for one day (GET). The date query
// parameter defaults to today.
func (rh *RecordHandlers) DietRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := rh.userID(w)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	records, err := rh.Provider.ListDailyDietRecords(r.Context(), userID, date)
	if err != nil {
		rh.Logger.Error(fmt.Sprintf("Failed to list diet records: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Failed to fetch diet records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Statistics returns aggregated health statistics for the user (GET).
func (rh *RecordHandlers) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := rh.userID(w)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	statistics, err := rh.Provider.GetStatistics(r.Context(), userID, period)
	if err != nil {
		rh.Logger.Error(fmt.Sprintf("Failed to fetch statistics: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Failed to fetch statistics")
		return
	}
	writeJSON(w, http.StatusOK, statistics)
}

// CreateHealthRecord forwards a body-measurement record to the backend (POST).
func (rh *RecordHandlers) CreateHealthRecord(w http.ResponseWriter, r *http.Request) {
	if _, ok := rh.userID(w); !ok {
		return
	}
	var body dto.HealthRecordCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := rh.Provider.CreateHealthRecord(r.Context(), body)
	if err != nil {
		rh.Logger.Error(fmt.Sprintf("Failed to create health record: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Failed to create health record")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// CreateUserGoal forwards a goal definition to the backend (POST).
func (rh *RecordHandlers) CreateUserGoal(w http.ResponseWriter, r *http.Request) {
	if _, ok := rh.userID(w); !ok {
		return
	}
	var body dto.UserGoalCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := rh.Provider.CreateUserGoal(r.Context(), body)
	if err != nil {
		rh.Logger.Error(fmt.Sprintf("Failed to create user goal: %s", err.Error()))
		writeError(w, http.StatusBadGateway, "Failed to create user goal")
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Notifications returns the latest polled notifications plus the unread
// count (GET).
func (rh *RecordHandlers) Notifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := rh.userID(w); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": rh.NotificationService.Latest(),
		"unread_count":  rh.NotificationService.UnreadCount(),
	})
}

func (rh *RecordHandlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := rh.notificationID(w, r)
	if !ok {
		return
	}
	if err := rh.NotificationService.MarkRead(r.Context(), notificationID); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to mark notification read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rh *RecordHandlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := rh.userID(w); !ok {
		return
	}
	if err := rh.NotificationService.MarkAllRead(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to mark notifications read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rh *RecordHandlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := rh.notificationID(w, r)
	if !ok {
		return
	}
	if err := rh.NotificationService.Delete(r.Context(), notificationID); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to delete notification")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rh *RecordHandlers) notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if _, ok := rh.userID(w); !ok {
		return 0, false
	}
	raw := mux.Vars(r)["id"]
	notificationID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid notification id")
		return 0, false
	}
	return notificationID, true
}

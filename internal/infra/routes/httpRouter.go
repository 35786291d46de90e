package routes

import (
	"encoding/json"
	"net/http"

	"health-connector/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux            *mux.Router
	ChatHandlers   *handlers.ChatHandlers
	AuthHandlers   *handlers.AuthHandlers
	RecordHandlers *handlers.RecordHandlers
}

func NewRoutes(mux *mux.Router, chatHandlers *handlers.ChatHandlers, authHandlers *handlers.AuthHandlers, recordHandlers *handlers.RecordHandlers) *Routes {
	return &Routes{mux, chatHandlers, authHandlers, recordHandlers}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/chat/message", r.ChatHandlers.Message).Methods(http.MethodPost)
	r.Mux.HandleFunc("/chat/reset", r.ChatHandlers.Reset).Methods(http.MethodPost)

	r.Mux.HandleFunc("/auth/login", r.AuthHandlers.Login).Methods(http.MethodPost)
	r.Mux.HandleFunc("/auth/logout", r.AuthHandlers.Logout).Methods(http.MethodPost)
	r.Mux.HandleFunc("/auth/me", r.AuthHandlers.Me).Methods(http.MethodGet)

	r.Mux.HandleFunc("/records/exercise", r.RecordHandlers.ExerciseSessions).Methods(http.MethodGet)
	r.Mux.HandleFunc("/records/diet", r.RecordHandlers.DietRecords).Methods(http.MethodGet)
	r.Mux.HandleFunc("/records/health", r.RecordHandlers.CreateHealthRecord).Methods(http.MethodPost)
	r.Mux.HandleFunc("/goals", r.RecordHandlers.CreateUserGoal).Methods(http.MethodPost)
	r.Mux.HandleFunc("/statistics", r.RecordHandlers.Statistics).Methods(http.MethodGet)

	r.Mux.HandleFunc("/notifications", r.RecordHandlers.Notifications).Methods(http.MethodGet)
	r.Mux.HandleFunc("/notifications/read-all", r.RecordHandlers.MarkAllNotificationsRead).Methods(http.MethodPost)
	r.Mux.HandleFunc("/notifications/{id}/read", r.RecordHandlers.MarkNotificationRead).Methods(http.MethodPost)
	r.Mux.HandleFunc("/notifications/{id}", r.RecordHandlers.DeleteNotification).Methods(http.MethodDelete)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}

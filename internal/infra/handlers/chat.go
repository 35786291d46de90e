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
	"health-connector/internal/infra/services"
)

type ChatHandlers struct {
	Logger   *logger.Logger
	Pipeline Iservices.IChatPipelineService
}

func NewChatHandlers(logger *logger.Logger, pipeline Iservices.IChatPipelineService) *ChatHandlers {
	return &ChatHandlers{Logger: logger, Pipeline: pipeline}
}

// Message handles one chat turn (POST).
//
// A request without a session_id opens a new session for the given record
// type and returns the greeting. A request with a session_id submits the
// text as the next user utterance.
//
// HTTP Status Codes:
// - 200 OK: The turn was processed; the body carries the session snapshot.
// - 400 Bad Request: The payload is not valid JSON or names an unknown record type.
// - 404 Not Found: The session_id does not exist.
// - 429 Too Many Requests: A previous submission for this session is still in flight.
func (ch *ChatHandlers) Message(w http.ResponseWriter, r *http.Request) {
	var body dto.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ch.Logger.Error(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recordType, ok := parseRecordType(body.RecordType)
	if body.SessionID == "" && !ok {
		writeError(w, http.StatusBadRequest, "record_type must be \"exercise\" or \"diet\"")
		return
	}

	var response dto.ChatMessageResponse
	var err error
	if body.SessionID == "" {
		response, err = ch.Pipeline.StartSession(r.Context(), body.UserID, recordType)
	} else {
		response, err = ch.Pipeline.SubmitUtterance(r.Context(), body.SessionID, body.Text)
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionBusy):
			writeError(w, http.StatusTooManyRequests, "A message for this session is still being processed")
		case errors.Is(err, services.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "Chat session not found")
		default:
			ch.Logger.Error(fmt.Sprintf("Chat turn failed: %s", err.Error()))
			writeError(w, http.StatusInternalServerError, "Failed to process message")
		}
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// Reset clears a session's dialogue and drafts and restarts it for the given
// record type (POST).
func (ch *ChatHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	var body dto.ChatResetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ch.Logger.Error(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recordType, ok := parseRecordType(body.RecordType)
	if !ok {
		writeError(w, http.StatusBadRequest, "record_type must be \"exercise\" or \"diet\"")
		return
	}

	response, err := ch.Pipeline.ResetSession(r.Context(), body.SessionID, recordType)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Chat session not found")
			return
		}
		ch.Logger.Error(fmt.Sprintf("Session reset failed: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to reset session")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func parseRecordType(value string) (entities.RecordType, bool) {
	switch entities.RecordType(value) {
	case entities.RecordTypeExercise:
		return entities.RecordTypeExercise, true
	case entities.RecordTypeDiet:
		return entities.RecordTypeDiet, true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"health-connector/internal/domain/entities"
)

type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryAIRequest is the payload of the AI dialogue backend.
type QueryAIRequest struct {
	Message             string          `json:"message"`
	ConversationHistory []HistoryTurn   `json:"conversation_history"`
	RecordType          string          `json:"record_type"`
	ChatStep            string          `json:"chat_step,omitempty"`
	CurrentData         json.RawMessage `json:"current_data,omitempty"`
	UserID              int64           `json:"user_id,omitempty"`
}

// QueryAIResponse is the raw reply of the AI dialogue backend. ParsedData is
// kept raw here: the backend has emitted several shapes over time (flat
// object, array of objects, nested system_message/user_message envelopes),
// and NormalizeExtraction folds them all into one canonical form.
type QueryAIResponse struct {
	Type          string          `json:"type"`
	Message       string          `json:"message"`
	ParsedData    json.RawMessage `json:"parsed_data,omitempty"`
	MissingFields []string        `json:"missing_fields,omitempty"`
}

const (
	ResponseTypeInitial    = "initial"
	ResponseTypeIncomplete = "incomplete"
	ResponseTypeSuccess    = "success"
	ResponseTypeComplete   = "complete"
	ResponseTypeError      = "error"
)

// Complete reports whether the backend considers the extraction resolved.
func (r QueryAIResponse) Complete() bool {
	return r.Type == ResponseTypeSuccess || r.Type == ResponseTypeComplete
}

// Extraction is the canonical form of whatever structured payload the AI
// backend returned. Exactly one of Exercise / Foods is populated, matching
// the record type of the session.
type Extraction struct {
	DisplayText string
	Exercise    *entities.ExerciseDraft
	Foods       []entities.DietDraft
}

func (e Extraction) Empty() bool {
	return e.Exercise.Empty() && len(e.Foods) == 0
}

// NormalizeExtraction maps every observed parsed_data shape into an
// Extraction. The backend may return the draft fields at the top level,
// nested under system_message.data (object or array), with an optional
// user_message.text display override.
func NormalizeExtraction(recordType entities.RecordType, raw json.RawMessage) (Extraction, error) {
	var out Extraction
	if len(raw) == 0 {
		return out, nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return out, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []map[string]any
		if err := json.Unmarshal(raw, &list); err != nil {
			return out, fmt.Errorf("failed to unmarshal parsed_data array: %w", err)
		}
		return extractionFromList(recordType, list)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return out, fmt.Errorf("failed to unmarshal parsed_data: %w", err)
	}

	if userMessage, ok := payload["user_message"].(map[string]any); ok {
		out.DisplayText = stringField(userMessage, "text")
	}

	data := payload
	if systemMessage, ok := payload["system_message"].(map[string]any); ok {
		switch nested := systemMessage["data"].(type) {
		case map[string]any:
			data = nested
		case []any:
			list := make([]map[string]any, 0, len(nested))
			for _, item := range nested {
				if m, ok := item.(map[string]any); ok {
					list = append(list, m)
				}
			}
			got, err := extractionFromList(recordType, list)
			got.DisplayText = out.DisplayText
			return got, err
		}
	}

	switch recordType {
	case entities.RecordTypeExercise:
		out.Exercise = exerciseFromMap(data)
	case entities.RecordTypeDiet:
		if food := dietFromMap(data); !food.Empty() {
			out.Foods = []entities.DietDraft{*food}
		}
	}
	return out, nil
}

func extractionFromList(recordType entities.RecordType, list []map[string]any) (Extraction, error) {
	var out Extraction
	switch recordType {
	case entities.RecordTypeExercise:
		// Only one exercise draft is active per session; the last entry wins.
		for _, item := range list {
			if draft := exerciseFromMap(item); !draft.Empty() {
				out.Exercise = draft
			}
		}
	case entities.RecordTypeDiet:
		for _, item := range list {
			if food := dietFromMap(item); !food.Empty() {
				out.Foods = append(out.Foods, *food)
			}
		}
	}
	return out, nil
}

func exerciseFromMap(data map[string]any) *entities.ExerciseDraft {
	draft := &entities.ExerciseDraft{
		Exercise:     firstString(data, "exercise", "name", "exercise_name"),
		Category:     stringField(data, "category"),
		Subcategory:  firstString(data, "subcategory", "body_part", "bodyPart"),
		ExerciseDate: stringField(data, "exercise_date"),
	}
	if weight, ok := floatField(data, "weight"); ok {
		draft.Weight = &weight
	}
	if sets, ok := intField(data, "sets"); ok {
		draft.Sets = &sets
	}
	if reps, ok := intField(data, "reps"); ok {
		draft.Reps = &reps
	}
	if duration, ok := intField(data, "duration_min", "duration_minutes"); ok {
		draft.DurationMin = &duration
	}
	if calories, ok := floatField(data, "calories_burned"); ok {
		draft.CaloriesBurned = &calories
	}
	return draft
}

func dietFromMap(data map[string]any) *entities.DietDraft {
	draft := &entities.DietDraft{
		FoodName:         firstString(data, "food_name", "foodName", "name"),
		Amount:           amountField(data, "amount", "quantity"),
		MealTime:         firstString(data, "meal_time", "mealTime"),
		InputSource:      stringField(data, "input_source"),
		ValidationStatus: stringField(data, "validation_status"),
	}
	if id, ok := intField(data, "food_item_id", "foodItemId", "foodItemID"); ok {
		id64 := int64(id)
		draft.FoodItemID = &id64
	}
	if score, ok := floatField(data, "confidence_score"); ok {
		draft.ConfidenceScore = &score
	}
	return draft
}

func stringField(data map[string]any, key string) string {
	if value, ok := data[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := stringField(data, key); value != "" {
			return value
		}
	}
	return ""
}

// amountField keeps quantities textual: a numeric 2 becomes "2" so the gram
// heuristic and portion estimator can treat both shapes alike.
func amountField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		switch value := data[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}

func floatField(data map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch value := data[key].(type) {
		case float64:
			return value, true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func intField(data map[string]any, keys ...string) (int, bool) {
	if value, ok := floatField(data, keys...); ok {
		return int(value), true
	}
	return 0, false
}

package dto

// Shapes of the connector's own HTTP surface.

type ChatMessageRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	UserID     int64  `json:"user_id"`
	RecordType string `json:"record_type"`
	Text       string `json:"text"`
}

type ChatMessageResponse struct {
	SessionID     string   `json:"session_id"`
	Reply         string   `json:"reply"`
	State         string   `json:"state"`
	Saved         bool     `json:"saved"`
	NetworkError  bool     `json:"network_error,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
	ExerciseDraft any      `json:"exercise_draft,omitempty"`
	DietDraft     any      `json:"diet_draft,omitempty"`
	MealFoods     any      `json:"meal_foods,omitempty"`
}

type ChatResetRequest struct {
	SessionID  string `json:"session_id"`
	RecordType string `json:"record_type"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

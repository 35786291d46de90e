package entities

import "time"

type RecordType string

const (
	RecordTypeExercise RecordType = "exercise"
	RecordTypeDiet     RecordType = "diet"
)

// SessionState is the per-session pipeline state. Saved is terminal until an
// explicit reset; a duplicate save command in Saved must not reach the
// backend again.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateExtracting SessionState = "extracting"
	StateConfirming SessionState = "confirming"
	StateSaving     SessionState = "saving"
	StateSaved      SessionState = "saved"
	StateError      SessionState = "error"
)

type Transcript struct {
	Role      string    `json:"role" bson:"role"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ExerciseDraft accumulates exercise fields across dialogue turns. Optional
// numeric fields are pointers so that an absent key in one extraction never
// wipes a value captured by an earlier one.
type ExerciseDraft struct {
	Exercise       string   `json:"exercise,omitempty" bson:"exercise,omitempty"`
	Category       string   `json:"category,omitempty" bson:"category,omitempty"`
	Subcategory    string   `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Weight         *float64 `json:"weight,omitempty" bson:"weight,omitempty"`
	Sets           *int     `json:"sets,omitempty" bson:"sets,omitempty"`
	Reps           *int     `json:"reps,omitempty" bson:"reps,omitempty"`
	DurationMin    *int     `json:"duration_min,omitempty" bson:"duration_min,omitempty"`
	CaloriesBurned *float64 `json:"calories_burned,omitempty" bson:"calories_burned,omitempty"`
	ExerciseDate   string   `json:"exercise_date,omitempty" bson:"exercise_date,omitempty"`
}

// Merge applies the keys present in other onto the draft, preserving every
// field other does not carry.
func (d *ExerciseDraft) Merge(other *ExerciseDraft) {
	if other == nil {
		return
	}
	if other.Exercise != "" {
		d.Exercise = other.Exercise
	}
	if other.Category != "" {
		d.Category = other.Category
	}
	if other.Subcategory != "" {
		d.Subcategory = other.Subcategory
	}
	if other.Weight != nil {
		d.Weight = other.Weight
	}
	if other.Sets != nil {
		d.Sets = other.Sets
	}
	if other.Reps != nil {
		d.Reps = other.Reps
	}
	if other.DurationMin != nil {
		d.DurationMin = other.DurationMin
	}
	if other.CaloriesBurned != nil {
		d.CaloriesBurned = other.CaloriesBurned
	}
	if other.ExerciseDate != "" {
		d.ExerciseDate = other.ExerciseDate
	}
}

func (d *ExerciseDraft) Empty() bool {
	return d == nil || (d.Exercise == "" && d.Category == "" && d.Subcategory == "" &&
		d.Weight == nil && d.Sets == nil && d.Reps == nil && d.DurationMin == nil)
}

// DietDraft is one food item being assembled through dialogue. Amount stays
// free-form text until submission, when it is normalized to grams.
type DietDraft struct {
	FoodItemID       *int64   `json:"food_item_id,omitempty" bson:"food_item_id,omitempty"`
	FoodName         string   `json:"food_name,omitempty" bson:"food_name,omitempty"`
	Amount           string   `json:"amount,omitempty" bson:"amount,omitempty"`
	MealTime         string   `json:"meal_time,omitempty" bson:"meal_time,omitempty"`
	InputSource      string   `json:"input_source,omitempty" bson:"input_source,omitempty"`
	ConfidenceScore  *float64 `json:"confidence_score,omitempty" bson:"confidence_score,omitempty"`
	ValidationStatus string   `json:"validation_status,omitempty" bson:"validation_status,omitempty"`
}

func (d *DietDraft) Merge(other *DietDraft) {
	if other == nil {
		return
	}
	if other.FoodItemID != nil {
		d.FoodItemID = other.FoodItemID
	}
	if other.FoodName != "" {
		d.FoodName = other.FoodName
	}
	if other.Amount != "" {
		d.Amount = other.Amount
	}
	if other.MealTime != "" {
		d.MealTime = other.MealTime
	}
	if other.InputSource != "" {
		d.InputSource = other.InputSource
	}
	if other.ConfidenceScore != nil {
		d.ConfidenceScore = other.ConfidenceScore
	}
	if other.ValidationStatus != "" {
		d.ValidationStatus = other.ValidationStatus
	}
}

func (d *DietDraft) Empty() bool {
	return d == nil || (d.FoodName == "" && d.Amount == "" && d.MealTime == "" && d.FoodItemID == nil)
}

/// ChatSession is the per-conversation state: ordered transcript, the active
// draft for the selected record type, foods accumulated across multi-item
// diet turns, and the save flag guarding duplicate submissions.
type ChatSession struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID      string          `json:"session_id" bson:"session_id"`
	UserID         int64           `json:"user_id" bson:"user_id"`
	RecordType     RecordType      `json:"record_type" bson:"record_type"`
	State          SessionState    `json:"state" bson:"state"`
	Transcript     []Transcript    `json:"transcript" bson:"transcript"`
	ExerciseDraft  *ExerciseDraft  `json:"exercise_draft,omitempty" bson:"exercise_draft,omitempty"`
	DietDraft      *DietDraft      `json:"diet_draft,omitempty" bson:"diet_draft,omitempty"`
	MealFoods      []DietDraft     `json:"meal_foods,omitempty" bson:"meal_foods,omitempty"`
	LastExercise   *ExerciseDraft  `json:"last_exercise,omitempty" bson:"last_exercise,omitempty"`
	LastFoods      []DietDraft     `json:"last_foods,omitempty" bson:"last_foods,omitempty"`
	HasSaved       bool            `json:"has_saved" bson:"has_saved"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updated_at"`
}

func (s *ChatSession) AppendUser(message string) {
	s.Transcript = append(s.Transcript, Transcript{Role: "user", Message: message, Timestamp: time.Now()})
}

func (s *ChatSession) AppendAssistant(message string) {
	s.Transcript = append(s.Transcript, Transcript{Role: "assistant", Message: message, Timestamp: time.Now()})
}

// ActiveExerciseDraft returns the working draft, recovering the last
// extraction when the local draft was already cleared.
func (s *ChatSession) ActiveExerciseDraft() *ExerciseDraft {
	if !s.ExerciseDraft.Empty() {
		return s.ExerciseDraft
	}
	if !s.LastExercise.Empty() {
		copied := *s.LastExercise
		return &copied
	}
	return nil
}

// ActiveDietItems returns the foods to submit: the accumulated meal list plus
// the current draft, falling back to the last extraction when both are empty.
func (s *ChatSession) ActiveDietItems() []DietDraft {
	items := append([]DietDraft(nil), s.MealFoods...)
	if !s.DietDraft.Empty() {
		items = append(items, *s.DietDraft)
	}
	if len(items) == 0 && len(s.LastFoods) > 0 {
		items = append(items, s.LastFoods...)
	}
	return items
}

// MarkSaved transitions the session to its terminal saved state and clears
// the drafts and transcript in one step, so no partially reset state is ever
// observable.
func (s *ChatSession) MarkSaved() {
	s.State = StateSaved
	s.HasSaved = true
	s.ExerciseDraft = nil
	s.DietDraft = nil
	s.MealFoods = nil
	s.LastExercise = nil
	s.LastFoods = nil
	s.Transcript = nil
	s.UpdatedAt = time.Now()
}

// Reset returns the session to a fresh dialogue for the given record type.
func (s *ChatSession) Reset(recordType RecordType) {
	s.RecordType = recordType
	s.State = StateIdle
	s.HasSaved = false
	s.ExerciseDraft = nil
	s.DietDraft = nil
	s.MealFoods = nil
	s.LastExercise = nil
	s.LastFoods = nil
	s.Transcript = nil
	s.UpdatedAt = time.Now()
}

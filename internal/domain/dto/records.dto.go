package dto

// Payloads of the core REST backend.

type ExerciseSessionCreateRequest struct {
	ExerciseCatalogID int64    `json:"exercise_catalog_id"`
	DurationMinutes   int      `json:"duration_minutes"`
	CaloriesBurned    int      `json:"calories_burned"`
	Notes             string   `json:"notes"`
	Sets              *int     `json:"sets"`
	Reps              *int     `json:"reps"`
	Weight            *float64 `json:"weight"`
	ExerciseDate      string   `json:"exercise_date"`
	TimePeriod        string   `json:"time_period"`
	InputSource       string   `json:"input_source"`
	ConfidenceScore   float64  `json:"confidence_score"`
	ValidationStatus  string   `json:"validation_status"`
}

type ExerciseSession struct {
	ExerciseSessionID int64  `json:"exercise_session_id"`
	ExerciseCatalogID int64  `json:"exercise_catalog_id"`
	DurationMinutes   int    `json:"duration_minutes"`
	CaloriesBurned    int    `json:"calories_burned"`
	Notes             string `json:"notes"`
	ExerciseDate      string `json:"exercise_date"`
}

type FindOrCreateExerciseRequest struct {
	Name        string `json:"name"`
	BodyPart    string `json:"bodyPart"`
	Description string `json:"description"`
}

type ExerciseCatalog struct {
	ExerciseCatalogID int64  `json:"exerciseCatalogId"`
	Name              string `json:"name"`
	BodyPart          string `json:"bodyPart"`
}

type DietRecordCreateRequest struct {
	UserID           int64   `json:"userId"`
	FoodItemID       int64   `json:"food_item_id"`
	Quantity         float64 `json:"quantity"`
	MealTime         string  `json:"meal_time"`
	LogDate          string  `json:"log_date,omitempty"`
	InputSource      string  `json:"input_source,omitempty"`
	ConfidenceScore  float64 `json:"confidence_score,omitempty"`
	ValidationStatus string  `json:"validation_status,omitempty"`
}

type DietRecord struct {
	DietRecordID int64   `json:"diet_record_id"`
	FoodItemID   int64   `json:"food_item_id"`
	Quantity     float64 `json:"quantity"`
	MealTime     string  `json:"meal_time"`
	LogDate      string  `json:"log_date"`
}

type FoodItem struct {
	FoodItemID  int64   `json:"foodItemId"`
	Name        string  `json:"name"`
	ServingSize float64 `json:"serving_size"`
	Calories    float64 `json:"calories"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
}

type FoodItemCreateRequest struct {
	Name        string  `json:"name"`
	ServingSize float64 `json:"serving_size"`
	Calories    float64 `json:"calories"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
}

type HealthRecordCreateRequest struct {
	Weight     float64 `json:"weight"`
	Height     float64 `json:"height"`
	RecordDate string  `json:"record_date,omitempty"`
}

type HealthRecord struct {
	HealthRecordID int64   `json:"health_record_id"`
	Weight         float64 `json:"weight"`
	Height         float64 `json:"height"`
	BMI            float64 `json:"bmi"`
	RecordDate     string  `json:"record_date"`
}

type UserGoalCreateRequest struct {
	WeeklyWorkoutTarget int     `json:"weekly_workout_target,omitempty"`
	DailyCalorieTarget  float64 `json:"daily_calorie_target,omitempty"`
	TargetWeight        float64 `json:"target_weight,omitempty"`
}

type UserGoal struct {
	GoalID              int64   `json:"goal_id"`
	WeeklyWorkoutTarget int     `json:"weekly_workout_target"`
	DailyCalorieTarget  float64 `json:"daily_calorie_target"`
	TargetWeight        float64 `json:"target_weight"`
}

type HealthStatistics struct {
	CurrentWeight        float64 `json:"currentWeight"`
	WeightChange         float64 `json:"weightChange"`
	CurrentBMI           float64 `json:"currentBMI"`
	WeeklyWorkouts       int     `json:"weeklyWorkouts"`
	WorkoutGoal          int     `json:"workoutGoal"`
	GoalAchievementRate  float64 `json:"goalAchievementRate"`
	TotalCaloriesBurned  float64 `json:"totalCaloriesBurned"`
	AverageDailyCalories float64 `json:"averageDailyCalories"`
	Streak               int     `json:"streak"`
	TotalWorkoutDays     int     `json:"totalWorkoutDays"`
}

type Notification struct {
	NotificationID int64  `json:"notification_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// NutritionFacts are per-100g macro values, either from the catalog or
// estimated by the LLM.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

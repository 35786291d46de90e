package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/provider"
	"health-connector/internal/util"
)

const (
	defaultDurationMinutes = 30
	minutesPerSet          = 2
	cardioCaloriesPerMin   = 8.0
	strengthCalorieFactor  = 0.1
	strengthCalorieFloor   = 50.0
)

// RecordService turns a completed draft into persisted backend records:
// resolves catalog foreign keys, fills derived fields, and issues the create
// calls.
type RecordService struct {
	Logger    *logger.Logger
	Provider  provider.IHealthAPIProvider
	Nutrition Iservices.INutritionService
	Retry     util.RetryPolicy
}

func NewRecordService(logger *logger.Logger, apiProvider provider.IHealthAPIProvider, nutrition Iservices.INutritionService) *RecordService {
	return &RecordService{
		Logger:    logger,
		Provider:  apiProvider,
		Nutrition: nutrition,
		Retry:     util.RetryPolicy{MaxRetries: 2, Delay: time.Second, Retryable: util.IsTransient},
	}
}

// SaveExercise persists one exercise session. The draft must already have
// passed the required-field gate. On failure the caller keeps the draft so
// the user does not re-enter data.
func (rs *RecordService) SaveExercise(ctx context.Context, userID int64, draft *entities.ExerciseDraft) (string, error) {
	if draft == nil || draft.Exercise == "" {
		return "", fmt.Errorf("exercise draft is empty")
	}

	bodyPart, ok := resolveBodyPart(draft)
	if !ok {
		return "", fmt.Errorf("body part of %q could not be resolved", draft.Exercise)
	}

	var catalog dto.ExerciseCatalog
	err := rs.Retry.Do(ctx, func() error {
		var catErr error
		catalog, catErr = rs.Provider.FindOrCreateExercise(ctx, dto.FindOrCreateExerciseRequest{
			Name:        draft.Exercise,
			BodyPart:    bodyPart,
			Description: draft.Exercise + " 운동",
		})
		return catErr
	})
	if err != nil {
		rs.Logger.Error(fmt.Sprintf("Failed to resolve exercise catalog for %q: %v", draft.Exercise, err))
		return "", fmt.Errorf("failed to resolve exercise catalog: %w", err)
	}

	isCardio := util.IsCardioCategory(draft.Category)
	duration := ComputeDurationMinutes(draft)
	calories := ComputeCaloriesBurned(draft)
	notes := exerciseNotes(draft, duration)

	exerciseDate := draft.ExerciseDate
	if exerciseDate == "" {
		exerciseDate = time.Now().Format("2006-01-02")
	}

	request := dto.ExerciseSessionCreateRequest{
		ExerciseCatalogID: catalog.ExerciseCatalogID,
		DurationMinutes:   duration,
		CaloriesBurned:    calories,
		Notes:             notes,
		ExerciseDate:      exerciseDate,
		TimePeriod:        util.TimePeriodForHour(time.Now().Hour()),
		InputSource:       "TYPING",
		ConfidenceScore:   1.0,
		ValidationStatus:  "VALIDATED",
	}
	if !isCardio {
		request.Sets = orZeroInt(draft.Sets)
		request.Reps = orZeroInt(draft.Reps)
		request.Weight = orZeroFloat(draft.Weight)
	}

	if _, err := rs.Provider.CreateExerciseSession(ctx, userID, request); err != nil {
		rs.Logger.Error(fmt.Sprintf("Failed to save exercise session %q: %v", draft.Exercise, err))
		return "", fmt.Errorf("failed to save exercise session: %w", err)
	}

	rs.Logger.Info(fmt.Sprintf("Saved exercise session %q (%s, %d kcal)", draft.Exercise, notes, calories))
	return notes, nil
}

// SaveDiet persists a batch of diet items sequentially in array order. Each
// item's outcome is independent; the aggregate result names failed items and
// reports success only when every item succeeded. Identical (food, amount,
// meal time) entries are collapsed before submission.
func (rs *RecordService) SaveDiet(ctx context.Context, userID int64, items []entities.DietDraft) dto.DietSaveResult {
	var result dto.DietSaveResult
	for _, item := range dedupeDietItems(items) {
		outcome := dto.DietItemResult{FoodName: item.FoodName}
		if err := rs.saveDietItem(ctx, userID, item); err != nil {
			rs.Logger.Error(fmt.Sprintf("Failed to save diet item %q: %v", item.FoodName, err))
			outcome.Error = err.Error()
		} else {
			outcome.Saved = true
		}
		result.Items = append(result.Items, outcome)
	}
	return result
}

func (rs *RecordService) saveDietItem(ctx context.Context, userID int64, item entities.DietDraft) error {
	foodItemID, err := rs.resolveFoodItem(ctx, item)
	if err != nil {
		return err
	}

	grams, hasGrams := util.GramsFromText(item.Amount)
	if !hasGrams {
		grams = rs.Nutrition.EstimatePortionGrams(ctx, item.FoodName, item.Amount)
	}

	confidence := 1.0
	if item.ConfidenceScore != nil {
		confidence = *item.ConfidenceScore
	}
	inputSource := item.InputSource
	if inputSource == "" {
		inputSource = "chat"
	}
	validationStatus := item.ValidationStatus
	if validationStatus == "" {
		validationStatus = "confirmed"
	}

	_, err = rs.Provider.CreateDietRecord(ctx, dto.DietRecordCreateRequest{
		UserID:           userID,
		FoodItemID:       foodItemID,
		Quantity:         grams,
		MealTime:         util.MealTimeForLabel(item.MealTime),
		LogDate:          time.Now().Format("2006-01-02"),
		InputSource:      inputSource,
		ConfidenceScore:  confidence,
		ValidationStatus: validationStatus,
	})
	if err != nil {
		return fmt.Errorf("failed to create diet record: %w", err)
	}
	return nil
}

// resolveFoodItem finds the catalog id for a food: the draft's own id first,
// then a name search, then estimate-and-create. A creation failure aborts the
// item rather than persisting a record with made-up nutrition.
func (rs *RecordService) resolveFoodItem(ctx context.Context, item entities.DietDraft) (int64, error) {
	if item.FoodItemID != nil {
		return *item.FoodItemID, nil
	}
	if item.FoodName == "" {
		return 0, fmt.Errorf("food name is missing")
	}

	matches, err := rs.Provider.SearchFoodItems(ctx, item.FoodName)
	if err != nil {
		return 0, fmt.Errorf("food search failed: %w", err)
	}
	if len(matches) > 0 {
		return matches[0].FoodItemID, nil
	}

	facts := rs.Nutrition.EstimateNutrition(ctx, item.FoodName)

	var created dto.FoodItem
	err = rs.Retry.Do(ctx, func() error {
		var createErr error
		created, createErr = rs.Provider.CreateFoodItem(ctx, dto.FoodItemCreateRequest{
			Name:        item.FoodName,
			ServingSize: 100,
			Calories:    round2(facts.Calories),
			Carbs:       round2(facts.Carbs),
			Protein:     round2(facts.Protein),
			Fat:         round2(facts.Fat),
		})
		return createErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create food item %q: %w", item.FoodName, err)
	}
	return created.FoodItemID, nil
}

// ComputeDurationMinutes derives a duration when the draft has none: strength
// workouts get two minutes per set, everything else the fixed default.
func ComputeDurationMinutes(draft *entities.ExerciseDraft) int {
	if draft.DurationMin != nil && *draft.DurationMin > 0 {
		return *draft.DurationMin
	}
	if !util.IsCardioCategory(draft.Category) && draft.Sets != nil && *draft.Sets > 0 {
		return *draft.Sets * minutesPerSet
	}
	return defaultDurationMinutes
}

// ComputeCaloriesBurned derives calories when the draft has none. Cardio is
// duration-based; strength is volume-based with a floor of 50 so degenerate
// zero-volume entries never record zero calories.
func ComputeCaloriesBurned(draft *entities.ExerciseDraft) int {
	if draft.CaloriesBurned != nil && *draft.CaloriesBurned > 0 {
		return int(math.Round(*draft.CaloriesBurned))
	}
	if util.IsCardioCategory(draft.Category) {
		return int(math.Round(float64(ComputeDurationMinutes(draft)) * cardioCaloriesPerMin))
	}
	volume := floatOrZero(draft.Weight) * float64(intOrZero(draft.Sets)) * float64(intOrZero(draft.Reps))
	return int(math.Round(math.Max(volume*strengthCalorieFactor, strengthCalorieFloor)))
}

func exerciseNotes(draft *entities.ExerciseDraft, duration int) string {
	if util.IsCardioCategory(draft.Category) {
		category := draft.Category
		if category == "" {
			category = "유산소"
		}
		return fmt.Sprintf("%d분 %s", duration, category)
	}
	return fmt.Sprintf("%gkg x %d세트 x %d회 (%s)",
		floatOrZero(draft.Weight), intOrZero(draft.Sets), intOrZero(draft.Reps), draft.Exercise)
}

func resolveBodyPart(draft *entities.ExerciseDraft) (string, bool) {
	if util.IsCardioCategory(draft.Category) {
		return "cardio", true
	}
	if part, ok := util.BodyPartForLabel(draft.Subcategory); ok {
		return part, true
	}
	return util.BodyPartForLabel(draft.Category)
}

func dedupeDietItems(items []entities.DietDraft) []entities.DietDraft {
	seen := make(map[string]bool, len(items))
	out := make([]entities.DietDraft, 0, len(items))
	for _, item := range items {
		key := item.FoodName + "|" + item.Amount + "|" + item.MealTime
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func orZeroInt(v *int) *int {
	if v != nil {
		return v
	}
	zero := 0
	return &zero
}

func orZeroFloat(v *float64) *float64 {
	if v != nil {
		return v
	}
	zero := 0.0
	return &zero
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

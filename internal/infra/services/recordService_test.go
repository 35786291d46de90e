package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
	"health-connector/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHealthAPI records the requests the record service issues and returns
// scripted responses.
type fakeHealthAPI struct {
	catalogID         int64
	findOrCreateErr   error
	findOrCreateCalls int
	exerciseRequests  []dto.ExerciseSessionCreateRequest
	exerciseErr       error
	searchResults     map[string][]dto.FoodItem
	createdFoods      []dto.FoodItemCreateRequest
	nextFoodID        int64
	dietRequests      []dto.DietRecordCreateRequest
	dietErrByFood     map[int64]error
	invalidatedUsers  []int64
}

func newFakeHealthAPI() *fakeHealthAPI {
	return &fakeHealthAPI{
		catalogID:     7,
		searchResults: map[string][]dto.FoodItem{},
		nextFoodID:    100,
		dietErrByFood: map[int64]error{},
	}
}

func (f *fakeHealthAPI) Login(ctx context.Context, request dto.LoginRequest) (dto.LoginResponse, error) {
	return dto.LoginResponse{}, nil
}

func (f *fakeHealthAPI) FindOrCreateExercise(ctx context.Context, request dto.FindOrCreateExerciseRequest) (dto.ExerciseCatalog, error) {
	f.findOrCreateCalls++
	if f.findOrCreateErr != nil {
		return dto.ExerciseCatalog{}, f.findOrCreateErr
	}
	return dto.ExerciseCatalog{ExerciseCatalogID: f.catalogID, Name: request.Name, BodyPart: request.BodyPart}, nil
}

func (f *fakeHealthAPI) CreateExerciseSession(ctx context.Context, userID int64, request dto.ExerciseSessionCreateRequest) (dto.ExerciseSession, error) {
	if f.exerciseErr != nil {
		return dto.ExerciseSession{}, f.exerciseErr
	}
	f.exerciseRequests = append(f.exerciseRequests, request)
	return dto.ExerciseSession{ExerciseSessionID: 1}, nil
}

func (f *fakeHealthAPI) ListExerciseSessions(ctx context.Context, userID int64, period string) ([]dto.ExerciseSession, error) {
	return nil, nil
}

func (f *fakeHealthAPI) SearchFoodItems(ctx context.Context, keyword string) ([]dto.FoodItem, error) {
	return f.searchResults[keyword], nil
}

func (f *fakeHealthAPI) CreateFoodItem(ctx context.Context, request dto.FoodItemCreateRequest) (dto.FoodItem, error) {
	f.createdFoods = append(f.createdFoods, request)
	f.nextFoodID++
	return dto.FoodItem{FoodItemID: f.nextFoodID, Name: request.Name}, nil
}

func (f *fakeHealthAPI) CreateDietRecord(ctx context.Context, request dto.DietRecordCreateRequest) (dto.DietRecord, error) {
	if err := f.dietErrByFood[request.FoodItemID]; err != nil {
		return dto.DietRecord{}, err
	}
	f.dietRequests = append(f.dietRequests, request)
	return dto.DietRecord{DietRecordID: int64(len(f.dietRequests))}, nil
}

func (f *fakeHealthAPI) ListDailyDietRecords(ctx context.Context, userID int64, date string) ([]dto.DietRecord, error) {
	return nil, nil
}

func (f *fakeHealthAPI) CreateHealthRecord(ctx context.Context, request dto.HealthRecordCreateRequest) (dto.HealthRecord, error) {
	return dto.HealthRecord{}, nil
}

func (f *fakeHealthAPI) CreateUserGoal(ctx context.Context, request dto.UserGoalCreateRequest) (dto.UserGoal, error) {
	return dto.UserGoal{}, nil
}

func (f *fakeHealthAPI) GetStatistics(ctx context.Context, userID int64, period string) (dto.HealthStatistics, error) {
	return dto.HealthStatistics{}, nil
}

func (f *fakeHealthAPI) InvalidateStatistics(userID int64) {
	f.invalidatedUsers = append(f.invalidatedUsers, userID)
}

func (f *fakeHealthAPI) ListNotifications(ctx context.Context, userID int64) ([]dto.Notification, error) {
	return nil, nil
}

func (f *fakeHealthAPI) MarkNotificationRead(ctx context.Context, notificationID int64) error { return nil }
func (f *fakeHealthAPI) MarkAllNotificationsRead(ctx context.Context, userID int64) error    { return nil }
func (f *fakeHealthAPI) DeleteNotification(ctx context.Context, notificationID int64) error  { return nil }

type fakeNutrition struct {
	facts dto.NutritionFacts
	grams float64
	asked []string
}

func (f *fakeNutrition) EstimateNutrition(ctx context.Context, foodName string) dto.NutritionFacts {
	f.asked = append(f.asked, foodName)
	return f.facts
}

func (f *fakeNutrition) EstimatePortionGrams(ctx context.Context, foodName, amountText string) float64 {
	return f.grams
}

func newTestRecordService(api *fakeHealthAPI, nutrition *fakeNutrition) *RecordService {
	rs := NewRecordService(logger.NewLogger(context.Background(), false), api, nutrition)
	rs.Retry.Delay = time.Millisecond
	return rs
}

func TestSaveExercise_StrengthDerivedFields(t *testing.T) {
	api := newFakeHealthAPI()
	rs := newTestRecordService(api, &fakeNutrition{})

	weight := 30.0
	sets := 3
	reps := 10
	draft := &entities.ExerciseDraft{
		Exercise:    "벤치프레스",
		Category:    "strength",
		Subcategory: "가슴",
		Weight:      &weight,
		Sets:        &sets,
		Reps:        &reps,
	}

	notes, err := rs.SaveExercise(context.Background(), 42, draft)
	require.NoError(t, err)

	assert.Equal(t, "30kg x 3세트 x 10회 (벤치프레스)", notes)
	require.Len(t, api.exerciseRequests, 1)
	request := api.exerciseRequests[0]
	assert.Equal(t, int64(7), request.ExerciseCatalogID)
	// 30 * 3 * 10 * 0.1 = 90 kcal, 3 sets * 2 min.
	assert.Equal(t, 90, request.CaloriesBurned)
	assert.Equal(t, 6, request.DurationMinutes)
	assert.Equal(t, "TYPING", request.InputSource)
	assert.Equal(t, "VALIDATED", request.ValidationStatus)
	require.NotNil(t, request.Sets)
	assert.Equal(t, 3, *request.Sets)
}

func TestSaveExercise_CardioSkipsStrengthFields(t *testing.T) {
	api := newFakeHealthAPI()
	rs := newTestRecordService(api, &fakeNutrition{})

	duration := 40
	draft := &entities.ExerciseDraft{
		Exercise:    "러닝",
		Category:    "유산소",
		DurationMin: &duration,
	}

	notes, err := rs.SaveExercise(context.Background(), 42, draft)
	require.NoError(t, err)

	assert.Equal(t, "40분 유산소", notes)
	require.Len(t, api.exerciseRequests, 1)
	request := api.exerciseRequests[0]
	// 40 min * 8 kcal/min.
	assert.Equal(t, 320, request.CaloriesBurned)
	assert.Nil(t, request.Sets)
	assert.Nil(t, request.Reps)
	assert.Nil(t, request.Weight)
}

func TestSaveExercise_CalorieFloorForZeroVolume(t *testing.T) {
	draft := &entities.ExerciseDraft{Exercise: "플랭크", Category: "strength", Subcategory: "복근"}
	assert.Equal(t, 50, ComputeCaloriesBurned(draft))
}

func TestSaveExercise_RetriesTransientCatalogFailure(t *testing.T) {
	api := newFakeHealthAPI()
	api.findOrCreateErr = errors.New("dial tcp: connection refused")
	rs := newTestRecordService(api, &fakeNutrition{})

	draft := &entities.ExerciseDraft{Exercise: "스쿼트", Category: "strength", Subcategory: "하체"}

	_, err := rs.SaveExercise(context.Background(), 42, draft)
	require.Error(t, err)
	// Initial attempt plus two retries.
	assert.Equal(t, 3, api.findOrCreateCalls)
}

func TestSaveExercise_UnresolvableBodyPart(t *testing.T) {
	api := newFakeHealthAPI()
	rs := newTestRecordService(api, &fakeNutrition{})

	draft := &entities.ExerciseDraft{Exercise: "뭔가", Category: "strength", Subcategory: "허리"}

	_, err := rs.SaveExercise(context.Background(), 42, draft)
	require.Error(t, err)
	assert.Zero(t, api.findOrCreateCalls)
}

func TestSaveDiet_BatchFailuresAreIndependent(t *testing.T) {
	api := newFakeHealthAPI()
	api.searchResults["김치찌개"] = []dto.FoodItem{{FoodItemID: 1, Name: "김치찌개"}}
	api.searchResults["공기밥"] = []dto.FoodItem{{FoodItemID: 2, Name: "공기밥"}}
	api.searchResults["사과"] = []dto.FoodItem{{FoodItemID: 3, Name: "사과"}}
	api.dietErrByFood[2] = errors.New("validation failed")

	rs := newTestRecordService(api, &fakeNutrition{grams: 300})

	items := []entities.DietDraft{
		{FoodName: "김치찌개", Amount: "한그릇", MealTime: "점심"},
		{FoodName: "공기밥", Amount: "1공기", MealTime: "점심"},
		{FoodName: "사과", Amount: "1개", MealTime: "간식"},
	}

	result := rs.SaveDiet(context.Background(), 42, items)

	require.Len(t, result.Items, 3)
	assert.True(t, result.Items[0].Saved)
	assert.False(t, result.Items[1].Saved)
	assert.True(t, result.Items[2].Saved)
	assert.False(t, result.AllSaved())
	assert.Equal(t, []string{"공기밥"}, result.FailedNames())
}

func TestSaveDiet_ExplicitGramsSkipEstimator(t *testing.T) {
	api := newFakeHealthAPI()
	api.searchResults["닭가슴살"] = []dto.FoodItem{{FoodItemID: 5, Name: "닭가슴살"}}
	rs := newTestRecordService(api, &fakeNutrition{grams: 999})

	result := rs.SaveDiet(context.Background(), 42, []entities.DietDraft{
		{FoodName: "닭가슴살", Amount: "150g", MealTime: "저녁"},
	})

	require.True(t, result.AllSaved())
	require.Len(t, api.dietRequests, 1)
	assert.Equal(t, 150.0, api.dietRequests[0].Quantity)
	assert.Equal(t, "dinner", api.dietRequests[0].MealTime)
}

func TestSaveDiet_UnknownFoodCreatesCatalogEntry(t *testing.T) {
	api := newFakeHealthAPI()
	nutrition := &fakeNutrition{
		facts: dto.NutritionFacts{Calories: 523.456, Carbs: 60, Protein: 3, Fat: 1},
		grams: 250,
	}
	rs := newTestRecordService(api, nutrition)

	result := rs.SaveDiet(context.Background(), 42, []entities.DietDraft{
		{FoodName: "수제버거", Amount: "한개", MealTime: "저녁"},
	})

	require.True(t, result.AllSaved())
	require.Len(t, api.createdFoods, 1)
	assert.Equal(t, "수제버거", api.createdFoods[0].Name)
	assert.Equal(t, 100.0, api.createdFoods[0].ServingSize)
	assert.Equal(t, 523.46, api.createdFoods[0].Calories)
	assert.Equal(t, []string{"수제버거"}, nutrition.asked)
	require.Len(t, api.dietRequests, 1)
	assert.Equal(t, 250.0, api.dietRequests[0].Quantity)
}

func TestSaveDiet_CollapsesDuplicateItems(t *testing.T) {
	api := newFakeHealthAPI()
	api.searchResults["사과"] = []dto.FoodItem{{FoodItemID: 3, Name: "사과"}}
	rs := newTestRecordService(api, &fakeNutrition{grams: 100})

	result := rs.SaveDiet(context.Background(), 42, []entities.DietDraft{
		{FoodName: "사과", Amount: "1개", MealTime: "간식"},
		{FoodName: "사과", Amount: "1개", MealTime: "간식"},
	})

	require.Len(t, result.Items, 1)
	assert.Len(t, api.dietRequests, 1)
}

func TestComputeDurationMinutes(t *testing.T) {
	sets := 4
	duration := 25

	tests := []struct {
		name  string
		draft *entities.ExerciseDraft
		want  int
	}{
		{"explicit duration wins", &entities.ExerciseDraft{Category: "strength", DurationMin: &duration, Sets: &sets}, 25},
		{"strength from sets", &entities.ExerciseDraft{Category: "strength", Sets: &sets}, 8},
		{"cardio default", &entities.ExerciseDraft{Category: "유산소"}, 30},
		{"strength without sets", &entities.ExerciseDraft{Category: "strength"}, 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeDurationMinutes(tc.draft))
		})
	}
}

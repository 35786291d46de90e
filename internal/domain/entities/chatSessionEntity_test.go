package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestExerciseDraftMerge_KeepsAbsentFields(t *testing.T) {
	draft := &ExerciseDraft{
		Exercise: "벤치프레스",
		Weight:   floatPtr(30),
		Sets:     intPtr(3),
	}

	// A follow-up turn that only corrects the rep count must not wipe the
	// fields it did not mention.
	draft.Merge(&ExerciseDraft{Reps: intPtr(12)})

	assert.Equal(t, "벤치프레스", draft.Exercise)
	require.NotNil(t, draft.Weight)
	assert.Equal(t, 30.0, *draft.Weight)
	require.NotNil(t, draft.Sets)
	assert.Equal(t, 3, *draft.Sets)
	require.NotNil(t, draft.Reps)
	assert.Equal(t, 12, *draft.Reps)
}

func TestExerciseDraftMerge_OverwritesPresentFields(t *testing.T) {
	draft := &ExerciseDraft{Exercise: "벤치프레스", Weight: floatPtr(30)}

	draft.Merge(&ExerciseDraft{Weight: floatPtr(40)})

	require.NotNil(t, draft.Weight)
	assert.Equal(t, 40.0, *draft.Weight)
}

func TestDietDraftMerge_KeepsAbsentFields(t *testing.T) {
	draft := &DietDraft{FoodName: "김치찌개", Amount: "한그릇"}

	draft.Merge(&DietDraft{MealTime: "점심"})

	assert.Equal(t, "김치찌개", draft.FoodName)
	assert.Equal(t, "한그릇", draft.Amount)
	assert.Equal(t, "점심", draft.MealTime)
}

func TestMarkSaved_ClearsEverythingAtOnce(t *testing.T) {
	session := ChatSession{
		SessionID:     "s1",
		RecordType:    RecordTypeExercise,
		State:         StateSaving,
		ExerciseDraft: &ExerciseDraft{Exercise: "스쿼트"},
		LastExercise:  &ExerciseDraft{Exercise: "스쿼트"},
		MealFoods:     []DietDraft{{FoodName: "사과"}},
	}
	session.AppendUser("완료")

	session.MarkSaved()

	assert.Equal(t, StateSaved, session.State)
	assert.True(t, session.HasSaved)
	assert.Nil(t, session.ExerciseDraft)
	assert.Nil(t, session.LastExercise)
	assert.Nil(t, session.MealFoods)
	assert.Empty(t, session.Transcript)
}

func TestReset_ReturnsToFreshDialogue(t *testing.T) {
	session := ChatSession{
		SessionID:  "s1",
		RecordType: RecordTypeExercise,
		State:      StateSaved,
		HasSaved:   true,
	}

	session.Reset(RecordTypeDiet)

	assert.Equal(t, RecordTypeDiet, session.RecordType)
	assert.Equal(t, StateIdle, session.State)
	assert.False(t, session.HasSaved)
}

func TestActiveExerciseDraft_FallsBackToLastExtraction(t *testing.T) {
	session := ChatSession{
		RecordType:   RecordTypeExercise,
		LastExercise: &ExerciseDraft{Exercise: "러닝", Category: "cardio"},
	}

	draft := session.ActiveExerciseDraft()
	require.NotNil(t, draft)
	assert.Equal(t, "러닝", draft.Exercise)

	// The fallback is a copy; mutating it must not touch the stored one.
	draft.Exercise = "수영"
	assert.Equal(t, "러닝", session.LastExercise.Exercise)
}

func TestActiveDietItems_CombinesMealListAndCurrentDraft(t *testing.T) {
	session := ChatSession{
		RecordType: RecordTypeDiet,
		MealFoods:  []DietDraft{{FoodName: "김치찌개", Amount: "한그릇", MealTime: "점심"}},
		DietDraft:  &DietDraft{FoodName: "공기밥", Amount: "1공기", MealTime: "점심"},
	}

	items := session.ActiveDietItems()
	require.Len(t, items, 2)
	assert.Equal(t, "김치찌개", items[0].FoodName)
	assert.Equal(t, "공기밥", items[1].FoodName)
}

func TestActiveDietItems_FallsBackToLastFoods(t *testing.T) {
	session := ChatSession{
		RecordType: RecordTypeDiet,
		LastFoods:  []DietDraft{{FoodName: "사과", Amount: "1개", MealTime: "간식"}},
	}

	items := session.ActiveDietItems()
	require.Len(t, items, 1)
	assert.Equal(t, "사과", items[0].FoodName)
}

package Iservices

import (
	"context"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
)

type IRecordService interface {
	SaveExercise(ctx context.Context, userID int64, draft *entities.ExerciseDraft) (string, error)
	SaveDiet(ctx context.Context, userID int64, items []entities.DietDraft) dto.DietSaveResult
}

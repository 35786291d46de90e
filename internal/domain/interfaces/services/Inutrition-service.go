package Iservices

import (
	"context"

	"health-connector/internal/domain/dto"
)

// INutritionService is best effort by contract: after its retries are
// exhausted it falls back to fixed defaults instead of failing, so that an
// unreachable estimator never blocks a record save.
type INutritionService interface {
	EstimateNutrition(ctx context.Context, foodName string) dto.NutritionFacts
	EstimatePortionGrams(ctx context.Context, foodName string, amountText string) float64
}

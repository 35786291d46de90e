package Iservices

import (
	"context"

	"health-connector/internal/domain/dto"
)

type IQueryAIService interface {
	ExecuteQueryAI(ctx context.Context, request dto.QueryAIRequest) (dto.QueryAIResponse, error)
}

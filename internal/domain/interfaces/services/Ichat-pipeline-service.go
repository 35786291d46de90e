package Iservices

import (
	"context"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
)

type IChatPipelineService interface {
	StartSession(ctx context.Context, userID int64, recordType entities.RecordType) (dto.ChatMessageResponse, error)
	SubmitUtterance(ctx context.Context, sessionID string, text string) (dto.ChatMessageResponse, error)
	ResetSession(ctx context.Context, sessionID string, recordType entities.RecordType) (dto.ChatMessageResponse, error)
}

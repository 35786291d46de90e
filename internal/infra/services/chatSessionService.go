package services

import (
	"context"
	"fmt"

	"health-connector/internal/domain/entities"
	"health-connector/internal/domain/interfaces/repository"
	repoconstants "health-connector/internal/domain/interfaces/repository/constants"
	"health-connector/internal/infra/logger"
)

// ChatSessionService is the service responsible for ChatSession persistence.
type ChatSessionService struct {
	SessionRepository repository.Repository[entities.ChatSession]
	Ctx               context.Context
	Logger            *logger.Logger
}

// NewChatSessionService creates a new instance of the service.
func NewChatSessionService(sessionRepository repository.Repository[entities.ChatSession], ctx context.Context, logger *logger.Logger) *ChatSessionService {
	return &ChatSessionService{
		SessionRepository: sessionRepository,
		Ctx:               ctx,
		Logger:            logger,
	}
}

// Create inserts a new ChatSession into the database.
func (css *ChatSessionService) Create(session entities.ChatSession) error {
	_, err := css.SessionRepository.Create(css.Ctx, repoconstants.CHAT_SESSION_COLLECTION, session)
	if err != nil {
		css.Logger.Error(fmt.Sprintf("Failed to create ChatSession: %v", err))
		return err
	}
	return nil
}

// FindSession retrieves a ChatSession by sessionID.
func (css *ChatSessionService) FindSession(sessionID string) (entities.ChatSession, error) {
	result, err := css.SessionRepository.FindBySessionID(css.Ctx, repoconstants.CHAT_SESSION_COLLECTION, sessionID)
	if err != nil {
		css.Logger.Error(fmt.Sprintf("Failed to find ChatSession with sessionID '%s': %v", sessionID, err))
		return entities.ChatSession{}, err
	}
	return result, nil
}

// UpdateSession upserts a ChatSession by sessionID.
func (css *ChatSessionService) UpdateSession(sessionID string, session entities.ChatSession) (entities.ChatSession, error) {
	// The _id must not travel in the $set document.
	session.ID = ""

	result, err := css.SessionRepository.Update(css.Ctx, repoconstants.CHAT_SESSION_COLLECTION, sessionID, session)
	if err != nil {
		css.Logger.Error(fmt.Sprintf("Failed to update ChatSession with sessionID '%s': %v", sessionID, err))
		return entities.ChatSession{}, err
	}
	return result, nil
}

// DeleteSession removes a ChatSession by sessionID.
func (css *ChatSessionService) DeleteSession(sessionID string) error {
	if err := css.SessionRepository.Delete(css.Ctx, repoconstants.CHAT_SESSION_COLLECTION, sessionID); err != nil {
		css.Logger.Error(fmt.Sprintf("Failed to delete ChatSession with sessionID '%s': %v", sessionID, err))
		return err
	}
	return nil
}

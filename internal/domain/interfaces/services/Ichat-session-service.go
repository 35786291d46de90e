package Iservices

import "health-connector/internal/domain/entities"

type IChatSessionService interface {
	Create(session entities.ChatSession) error
	FindSession(sessionID string) (entities.ChatSession, error)
	UpdateSession(sessionID string, session entities.ChatSession) (entities.ChatSession, error)
	DeleteSession(sessionID string) error
}

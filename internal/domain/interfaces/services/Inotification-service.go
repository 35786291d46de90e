package Iservices

import (
	"context"

	"health-connector/internal/domain/dto"
)

type INotificationService interface {
	Start(ctx context.Context)
	Stop()
	Latest() []dto.Notification
	UnreadCount() int
	MarkRead(ctx context.Context, notificationID int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, notificationID int64) error
}

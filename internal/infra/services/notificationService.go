package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"health-connector/internal/domain/dto"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/provider"
)

const defaultPollInterval = 30 * time.Second

// NotificationService polls the core backend for the signed-in user's
// notifications on a fixed interval and caches the latest page. Polling is
// skipped while no session is active.
type NotificationService struct {
	Logger   *logger.Logger
	Provider provider.IHealthAPIProvider
	Identity Iservices.IIdentityService
	Interval time.Duration

	mu     sync.RWMutex
	latest []dto.Notification
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotificationService(logger *logger.Logger, apiProvider provider.IHealthAPIProvider, identity Iservices.IIdentityService) *NotificationService {
	return &NotificationService{
		Logger:   logger,
		Provider: apiProvider,
		Identity: identity,
		Interval: defaultPollInterval,
	}
}

// Start launches the polling loop. It returns immediately; Stop tears the
// loop down and waits for it to exit.
func (ns *NotificationService) Start(ctx context.Context) {
	pollCtx, cancel := context.WithCancel(ctx)
	ns.cancel = cancel
	ns.done = make(chan struct{})

	go func() {
		defer close(ns.done)
		ticker := time.NewTicker(ns.Interval)
		defer ticker.Stop()

		ns.poll(pollCtx)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				ns.poll(pollCtx)
			}
		}
	}()
}

func (ns *NotificationService) Stop() {
	if ns.cancel == nil {
		return
	}
	ns.cancel()
	<-ns.done
}

func (ns *NotificationService) poll(ctx context.Context) {
	if !ns.Identity.IsLoggedIn() {
		return
	}
	userID, err := ns.Identity.UserIDFromToken()
	if err != nil {
		ns.Logger.Warn(fmt.Sprintf("Skipping notification poll: %v", err))
		return
	}

	notifications, err := ns.Provider.ListNotifications(ctx, userID)
	if err != nil {
		ns.Logger.Warn(fmt.Sprintf("Notification poll failed: %v", err))
		return
	}

	ns.mu.Lock()
	ns.latest = notifications
	ns.mu.Unlock()
}

func (ns *NotificationService) Latest() []dto.Notification {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return append([]dto.Notification(nil), ns.latest...)
}

func (ns *NotificationService) UnreadCount() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	count := 0
	for _, notification := range ns.latest {
		if !notification.IsRead {
			count++
		}
	}
	return count
}

// MarkRead flags one notification on the backend and mirrors the change in
// the local cache so the unread count is immediately consistent.
func (ns *NotificationService) MarkRead(ctx context.Context, notificationID int64) error {
	if err := ns.Provider.MarkNotificationRead(ctx, notificationID); err != nil {
		ns.Logger.Error(fmt.Sprintf("Failed to mark notification %d read: %v", notificationID, err))
		return err
	}
	ns.mu.Lock()
	for i := range ns.latest {
		if ns.latest[i].NotificationID == notificationID {
			ns.latest[i].IsRead = true
		}
	}
	ns.mu.Unlock()
	return nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context) error {
	userID, err := ns.Identity.UserIDFromToken()
	if err != nil {
		return err
	}
	if err := ns.Provider.MarkAllNotificationsRead(ctx, userID); err != nil {
		ns.Logger.Error(fmt.Sprintf("Failed to mark all notifications read: %v", err))
		return err
	}
	ns.mu.Lock()
	for i := range ns.latest {
		ns.latest[i].IsRead = true
	}
	ns.mu.Unlock()
	return nil
}

func (ns *NotificationService) Delete(ctx context.Context, notificationID int64) error {
	if err := ns.Provider.DeleteNotification(ctx, notificationID); err != nil {
		ns.Logger.Error(fmt.Sprintf("Failed to delete notification %d: %v", notificationID, err))
		return err
	}
	ns.mu.Lock()
	kept := ns.latest[:0]
	for _, notification := range ns.latest {
		if notification.NotificationID != notificationID {
			kept = append(kept, notification)
		}
	}
	ns.latest = kept
	ns.mu.Unlock()
	return nil
}

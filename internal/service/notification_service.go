package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookreviewhub/backend/internal/config"
	"github.com/bookreviewhub/backend/internal/events"
)

// NotificationService reacts to account events with outbound notification stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleUserLoggedIn)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("username", event.Username), zap.Int64("user_id", event.UserID))
	n.sendWelcomeEmailStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserLoggedIn(ctx context.Context, event events.Event) error {
	n.logger.Info("UserLoggedIn", zap.String("username", event.Username), zap.Time("at", event.Timestamp))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWelcomeEmailStub(_ context.Context, event events.Event) {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok || strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendWelcomeEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", payload.Email),
		zap.String("username", event.Username))
}

// accountWebhook is the body posted to NOTIFY_WEBHOOK_URL for account activity.
type accountWebhook struct {
	EventID    string           `json:"event_id"`
	Event      events.EventType `json:"event"`
	UserID     int64            `json:"user_id"`
	Username   string           `json:"username"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("account webhook queued",
		zap.String("url", n.cfg.WebhookURL),
		zap.Any("body", accountWebhook{
			EventID:    event.ID,
			Event:      event.Type,
			UserID:     event.UserID,
			Username:   event.Username,
			OccurredAt: event.Timestamp,
		}))
}

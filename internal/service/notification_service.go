package service

import (
	"context"
	"fmt"

	"ai-studypal-be/internal/pkg/logger"
	"ai-studypal-be/internal/pkg/mailer"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/internal/websocket"
	"ai-studypal-be/pkg/events"
	pktNats "ai-studypal-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService turns bus events into websocket pushes and, for the
// low-balance warning, an email. It is the only consumer of the NATS "EVENTS"
// stream inside the API process.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	mailer     mailer.IEmailService
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, hub *websocket.Hub, mail mailer.IEmailService, uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		hub:        hub,
		mailer:     mail,
		uowFactory: uowFactory,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	payload := event.Payload()
	userID, err := userIDFromPayload(payload)
	if err != nil {
		// Events without a user target are ignored here.
		return nil
	}

	switch event.EventType() {
	case events.TypeTokensCredited:
		s.hub.Send(userID, websocket.Message{
			Type: websocket.TypeNotification,
			Data: map[string]interface{}{
				"title":  "Tokens added",
				"body":   fmt.Sprintf("%v tokens were added to your account.", payload["amount"]),
				"source": payload["source"],
			},
		})
	case events.TypeLowTokenBalance:
		s.hub.Send(userID, websocket.Message{
			Type: websocket.TypeNotification,
			Data: map[string]interface{}{
				"title":   "Tokens running low",
				"body":    "Top up to keep using AI study tools.",
				"balance": payload["balance"],
			},
		})
		s.sendLowBalanceEmail(ctx, userID, intFromPayload(payload, "balance"))
	case events.TypeSessionContent:
		s.hub.Send(userID, websocket.Message{
			Type: websocket.TypeNotification,
			Data: map[string]interface{}{
				"title":      "Study content ready",
				"session_id": payload["session_id"],
				"subject":    payload["subject"],
			},
		})
	}

	return nil
}

// sendLowBalanceEmail is best effort; a mail failure never fails the event.
func (s *NotificationService) sendLowBalanceEmail(ctx context.Context, userID uuid.UUID, balance int) {
	if s.mailer == nil || s.uowFactory == nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil || user == nil {
		s.logger.Warn("NotificationService", "Could not resolve user for low balance email", map[string]interface{}{"user_id": userID, "error": err})
		return
	}

	if err := s.mailer.SendLowBalanceNotice(user.Email, balance); err != nil {
		s.logger.Warn("NotificationService", "Failed to send low balance email", map[string]interface{}{"user_id": userID, "error": err})
	}
}

func userIDFromPayload(payload map[string]interface{}) (uuid.UUID, error) {
	raw, ok := payload["user_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("no user_id in payload")
	}
	return uuid.Parse(raw)
}

// intFromPayload tolerates the float64 that numbers become after a NATS JSON
// round trip.
func intFromPayload(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

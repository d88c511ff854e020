package service

import (
	"context"
	"testing"

	"ai-studypal-be/internal/entity"
	"ai-studypal-be/internal/pkg/logger"
	"ai-studypal-be/internal/websocket"
	"ai-studypal-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sentNotice struct {
	email   string
	balance int
}

type stubMailer struct {
	notices []sentNotice
}

func (m *stubMailer) SendOTP(toEmail, otp string) error { return nil }
func (m *stubMailer) SendLowBalanceNotice(toEmail string, balance int) error {
	m.notices = append(m.notices, sentNotice{email: toEmail, balance: balance})
	return nil
}

func newNotificationTestService(user *entity.User) (*stubMailer, *NotificationService) {
	factory := &stubRepoFactory{uow: &stubUnitOfWork{
		users:  &stubUserRepo{user: user},
		topups: &stubTopupRepo{},
	}}
	mail := &stubMailer{}
	hub := websocket.NewHub(nil, logger.NewNopLogger())
	return mail, NewNotificationService(nil, hub, mail, factory, logger.NewNopLogger())
}

func TestLowBalanceEventSendsEmail(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Email: "student@example.com", TokenBalance: 3}
	mail, svc := newNotificationTestService(user)

	err := svc.handleEvent(context.Background(), events.NewLowTokenBalance(user.Id.String(), 3))

	assert.NoError(t, err)
	assert.Equal(t, []sentNotice{{email: "student@example.com", balance: 3}}, mail.notices)
}

func TestLowBalanceEmailReadsFloat64Balance(t *testing.T) {
	// Numbers arrive as float64 after the NATS JSON round trip.
	user := &entity.User{Id: uuid.New(), Email: "student@example.com"}
	mail, svc := newNotificationTestService(user)

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.TypeLowTokenBalance,
		Data: map[string]interface{}{
			"user_id": user.Id.String(),
			"balance": float64(2),
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, []sentNotice{{email: "student@example.com", balance: 2}}, mail.notices)
}

func TestEventWithoutUserTargetIsIgnored(t *testing.T) {
	mail, svc := newNotificationTestService(nil)

	err := svc.handleEvent(context.Background(), events.BaseEvent{
		Type: events.TypeLowTokenBalance,
		Data: map[string]interface{}{"balance": 1},
	})

	assert.NoError(t, err)
	assert.Empty(t, mail.notices)
}

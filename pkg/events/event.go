package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TOKENS_SPENT").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by all publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published on the bus.
const (
	TypeTokensSpent     = "TOKENS_SPENT"
	TypeTokensCredited  = "TOKENS_CREDITED"
	TypeStudyActivity   = "STUDY_ACTIVITY"
	TypeSessionContent  = "SESSION_CONTENT_READY"
	TypeLowTokenBalance = "LOW_TOKEN_BALANCE"
)

// NewTokensSpent reports a deduction against a user's token balance.
func NewTokensSpent(userID string, amount, remaining int, kind string) Event {
	return BaseEvent{
		Type: TypeTokensSpent,
		Data: map[string]interface{}{
			"user_id":   userID,
			"amount":    amount,
			"remaining": remaining,
			"kind":      kind,
		},
		OccurredAt: time.Now(),
	}
}

// NewTokensCredited reports tokens added to a user's balance (signup grant or top-up).
func NewTokensCredited(userID string, amount int, source string) Event {
	return BaseEvent{
		Type: TypeTokensCredited,
		Data: map[string]interface{}{
			"user_id": userID,
			"amount":  amount,
			"source":  source,
		},
		OccurredAt: time.Now(),
	}
}

// NewStudyActivity reports a completed AI study action.
func NewStudyActivity(userID, kind, subject string) Event {
	return BaseEvent{
		Type: TypeStudyActivity,
		Data: map[string]interface{}{
			"user_id": userID,
			"kind":    kind,
			"subject": subject,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionContentReady reports that a session's background content search succeeded.
func NewSessionContentReady(userID, sessionID, subject string) Event {
	return BaseEvent{
		Type: TypeSessionContent,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"subject":    subject,
		},
		OccurredAt: time.Now(),
	}
}

// NewLowTokenBalance warns that a user's balance dropped below the alert floor.
func NewLowTokenBalance(userID string, balance int) Event {
	return BaseEvent{
		Type: TypeLowTokenBalance,
		Data: map[string]interface{}{
			"user_id": userID,
			"balance": balance,
		},
		OccurredAt: time.Now(),
	}
}

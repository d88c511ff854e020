package dto

import "github.com/google/uuid"

// PublishEmbedSessionMessage is the watermill payload asking the consumer to
// embed acquired session content.
type PublishEmbedSessionMessage struct {
	UserId    uuid.UUID `json:"user_id"`
	SessionId string    `json:"session_id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
}

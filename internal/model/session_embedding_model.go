package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// SessionEmbedding stores a vector for acquired session content so the app can
// suggest related past sessions. Rows are written by the background consumer,
// never on the acquisition path.
type SessionEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SessionId string          `gorm:"type:varchar(64);not null;index"`
	Subject   *string         `gorm:"type:varchar(100)"`
	Excerpt   string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time       `gorm:"default:now();not null"`
}

func (SessionEmbedding) TableName() string {
	return "session_embeddings"
}

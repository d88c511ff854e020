package contract

import (
	"context"

	"ai-studypal-be/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type SessionEmbeddingRepository interface {
	Create(ctx context.Context, embedding *model.SessionEmbedding) error
	// FindNearest returns the user's closest past sessions by cosine distance.
	FindNearest(ctx context.Context, userId uuid.UUID, vector pgvector.Vector, limit int) ([]*model.SessionEmbedding, error)
	DeleteBySessionId(ctx context.Context, sessionId string) error
}

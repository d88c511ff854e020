package implementation

import (
	"context"

	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionEmbeddingRepository(db *gorm.DB) contract.SessionEmbeddingRepository {
	return &SessionEmbeddingRepositoryImpl{db: db}
}

func (r *SessionEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *model.SessionEmbedding) error {
	return r.db.WithContext(ctx).Create(embedding).Error
}

func (r *SessionEmbeddingRepositoryImpl) FindNearest(ctx context.Context, userId uuid.UUID, vector pgvector.Vector, limit int) ([]*model.SessionEmbedding, error) {
	var rows []*model.SessionEmbedding
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vector}}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SessionEmbeddingRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.SessionEmbedding{}).Error
}

package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/pkg/embedding"
	"ai-studypal-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedSessionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding session content for SessionId: %s", payload.SessionId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// A session restarted with fresh content replaces its old vectors.
	if err := uow.SessionEmbeddingRepository().DeleteBySessionId(ctx, payload.SessionId); err != nil {
		log.Printf("[ERROR] Failed to clear old embeddings for session %s: %v", payload.SessionId, err)
		msg.Nack()
		return
	}

	// ChunkSize 1500 chars with 200 overlap, small enough for embedding context limits.
	chunks := utils.SplitText(payload.Content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	for i, chunk := range chunks {
		vec, err := cs.embeddingProvider.Generate(chunk, embedding.TaskDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of session %s: %v", i, payload.SessionId, err)
			msg.Nack()
			return
		}

		excerpt := chunk
		if len(excerpt) > 300 {
			excerpt = excerpt[:300]
		}

		row := &model.SessionEmbedding{
			Id:        uuid.New(),
			UserId:    payload.UserId,
			SessionId: payload.SessionId,
			Excerpt:   excerpt,
			Embedding: pgvector.NewVector(vec),
		}
		if payload.Subject != "" {
			subject := payload.Subject
			row.Subject = &subject
		}

		if err := uow.SessionEmbeddingRepository().Create(ctx, row); err != nil {
			log.Printf("[ERROR] Failed to save embedding for session %s: %v", payload.SessionId, err)
			msg.Nack()
			return
		}
	}

	log.Printf("[INFO] Stored %d embedding chunks for session %s", len(chunks), payload.SessionId)
	msg.Ack()
}

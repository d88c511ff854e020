package contract

import (
	"context"

	"ai-studypal-be/internal/model"
)

type TopupRepository interface {
	Create(ctx context.Context, order *model.TopupOrder) error
	FindByOrderId(ctx context.Context, orderId string) (*model.TopupOrder, error)
	Update(ctx context.Context, order *model.TopupOrder) error
}

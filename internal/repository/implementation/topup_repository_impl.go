package implementation

import (
	"context"
	"errors"

	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/contract"

	"gorm.io/gorm"
)

type TopupRepositoryImpl struct {
	db *gorm.DB
}

func NewTopupRepository(db *gorm.DB) contract.TopupRepository {
	return &TopupRepositoryImpl{db: db}
}

func (r *TopupRepositoryImpl) Create(ctx context.Context, order *model.TopupOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *TopupRepositoryImpl) FindByOrderId(ctx context.Context, orderId string) (*model.TopupOrder, error) {
	var order model.TopupOrder
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderId).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *TopupRepositoryImpl) Update(ctx context.Context, order *model.TopupOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

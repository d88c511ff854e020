package implementation

import (
	"context"

	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/contract"
	"ai-studypal-be/internal/repository/specification"

	"gorm.io/gorm"
)

type WalletRepositoryImpl struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) contract.WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (r *WalletRepositoryImpl) CreateTransaction(ctx context.Context, tx *model.TokenTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *WalletRepositoryImpl) FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*model.TokenTransaction, error) {
	var txs []*model.TokenTransaction
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *WalletRepositoryImpl) CreateActivity(ctx context.Context, activity *model.StudyActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *WalletRepositoryImpl) FindActivities(ctx context.Context, specs ...specification.Specification) ([]*model.StudyActivity, error) {
	var activities []*model.StudyActivity
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

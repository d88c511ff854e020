package contract

import (
	"context"

	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/specification"
)

// WalletRepository persists the token ledger and study activity history.
type WalletRepository interface {
	CreateTransaction(ctx context.Context, tx *model.TokenTransaction) error
	FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*model.TokenTransaction, error)

	CreateActivity(ctx context.Context, activity *model.StudyActivity) error
	FindActivities(ctx context.Context, specs ...specification.Specification) ([]*model.StudyActivity, error)
}

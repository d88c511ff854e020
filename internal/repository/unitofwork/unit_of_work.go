package unitofwork

import (
	"context"

	"ai-studypal-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	WalletRepository() contract.WalletRepository
	SessionEmbeddingRepository() contract.SessionEmbeddingRepository
	TopupRepository() contract.TopupRepository
}

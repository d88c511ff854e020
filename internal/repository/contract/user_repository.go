package contract

import (
	"context"

	"ai-studypal-be/internal/entity"
	"ai-studypal-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	ActivateUser(ctx context.Context, userId uuid.UUID) error

	// CreditTokens adds delta atomically. Spending goes through read-then-write
	// in the wallet service instead; see the wallet service notes.
	CreditTokens(ctx context.Context, userId uuid.UUID, delta int) error

	CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindEmailVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error)
	DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error

	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"

	"ai-studypal-be/pkg/gate"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error
	GetTokenBalance(ctx context.Context, userId uuid.UUID) (*dto.TokenBalanceResponse, error)
	GetTransactions(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.TokenTransactionResponse, error)
	GetActivities(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.StudyActivityResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	classLevel := ""
	if user.ClassLevel != nil {
		classLevel = *user.ClassLevel
	}

	return &dto.UserProfileResponse{
		Id:           user.Id,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         string(user.Role),
		Status:       string(user.Status),
		ClassLevel:   classLevel,
		TokenBalance: user.TokenBalance,
		CreatedAt:    user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	user.FullName = req.FullName
	if req.ClassLevel != "" {
		user.ClassLevel = &req.ClassLevel
	}
	return repo.Update(ctx, user)
}

func (s *userService) GetTokenBalance(ctx context.Context, userId uuid.UUID) (*dto.TokenBalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return &dto.TokenBalanceResponse{
		Balance:   user.TokenBalance,
		Unlimited: user.TokenBalance > gate.UnlimitedBandThreshold,
	}, nil
}

func (s *userService) GetTransactions(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.TokenTransactionResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.WalletRepository().FindTransactions(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.TokenTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		res := &dto.TokenTransactionResponse{
			Id:        tx.Id,
			Type:      tx.TransactionType,
			Amount:    tx.Amount,
			CreatedAt: tx.CreatedAt,
		}
		if tx.ServiceUsed != nil {
			res.Reference = *tx.ServiceUsed
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *userService) GetActivities(ctx context.Context, userId uuid.UUID, limit int) ([]*dto.StudyActivityResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	activities, err := uow.WalletRepository().FindActivities(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.StudyActivityResponse, 0, len(activities))
	for _, a := range activities {
		res := &dto.StudyActivityResponse{
			Id:        a.Id,
			Kind:      a.Kind,
			Subject:   a.Subject,
			CreatedAt: a.CreatedAt,
		}
		if len(a.Payload) > 0 {
			payload := map[string]interface{}{}
			if err := json.Unmarshal(a.Payload, &payload); err == nil {
				res.Payload = payload
			}
		}
		out = append(out, res)
	}
	return out, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/internal/websocket"

	"ai-studypal-be/pkg/events"
	"ai-studypal-be/pkg/gate"
	pktNats "ai-studypal-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LowBalanceFloor triggers the low-balance push when a spend drops the user to
// or below it.
const LowBalanceFloor = 5

// IWalletService is the token wallet. It backs the gated pipeline's account
// operations and pushes balance changes to connected clients.
type IWalletService interface {
	gate.Accounts

	CreditTokens(ctx context.Context, userId uuid.UUID, amount int, source string, relatedId *uuid.UUID) error
}

type walletService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	hub            *websocket.Hub
}

func NewWalletService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, hub *websocket.Hub) IWalletService {
	return &walletService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		hub:            hub,
	}
}

func (s *walletService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, fmt.Errorf("user not found")
	}
	return user.TokenBalance, nil
}

// DecrementBalance spends one token. The read-then-write is deliberate: a
// concurrent double spend costs one token at most and the gated pipeline
// re-checks the balance on every call anyway.
func (s *walletService) DecrementBalance(ctx context.Context, userID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	remaining := user.TokenBalance - 1
	user.TokenBalance = remaining
	if err := repo.Update(ctx, user); err != nil {
		return err
	}

	spend := &model.TokenTransaction{
		Id:              uuid.New(),
		UserId:          userID,
		TransactionType: model.TokenTransactionSpend,
		Amount:          -1,
	}
	if err := uow.WalletRepository().CreateTransaction(ctx, spend); err != nil {
		fmt.Printf("[WARN] Failed to write spend ledger entry: %v\n", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewTokensSpent(userID.String(), 1, remaining, "ai_call")); err != nil {
			fmt.Printf("[WARN] Failed to publish TOKENS_SPENT event: %v\n", err)
		}
	}

	s.pushBalance(ctx, userID, remaining)

	return nil
}

func (s *walletService) RecordActivity(ctx context.Context, userID uuid.UUID, entry gate.ActivityEntry) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	activity := &model.StudyActivity{
		Id:      uuid.New(),
		UserId:  userID,
		Kind:    entry.Kind,
		Subject: entry.Subject,
	}
	if entry.Payload != nil {
		raw, err := json.Marshal(entry.Payload)
		if err == nil {
			activity.Payload = datatypes.JSON(raw)
		}
	}

	if err := uow.WalletRepository().CreateActivity(ctx, activity); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewStudyActivity(userID.String(), entry.Kind, entry.Subject)); err != nil {
			fmt.Printf("[WARN] Failed to publish STUDY_ACTIVITY event: %v\n", err)
		}
	}

	return nil
}

func (s *walletService) CreditTokens(ctx context.Context, userId uuid.UUID, amount int, source string, relatedId *uuid.UUID) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().CreditTokens(ctx, userId, amount); err != nil {
		return err
	}

	txType := model.TokenTransactionTopup
	if source == "signup_grant" {
		txType = model.TokenTransactionGrant
	}
	ledger := &model.TokenTransaction{
		Id:              uuid.New(),
		UserId:          userId,
		TransactionType: txType,
		Amount:          amount,
		RelatedId:       relatedId,
		Notes:           &source,
	}
	if err := uow.WalletRepository().CreateTransaction(ctx, ledger); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewTokensCredited(userId.String(), amount, source)); err != nil {
			fmt.Printf("[WARN] Failed to publish TOKENS_CREDITED event: %v\n", err)
		}
	}

	if balance, err := s.GetBalance(ctx, userId); err == nil {
		s.pushBalance(ctx, userId, balance)
	}

	return nil
}

func (s *walletService) pushBalance(ctx context.Context, userId uuid.UUID, balance int) {
	if s.hub != nil {
		s.hub.Send(userId, websocket.Message{
			Type: websocket.TypeBalanceUpdate,
			Data: map[string]interface{}{
				"balance":   balance,
				"unlimited": balance > gate.UnlimitedBandThreshold,
			},
		})
	}

	// Crossing the floor goes on the bus; the notification worker owns the
	// push and the email.
	if balance <= LowBalanceFloor && balance >= 0 && s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewLowTokenBalance(userId.String(), balance)); err != nil {
			fmt.Printf("[WARN] Failed to publish LOW_TOKEN_BALANCE event: %v\n", err)
		}
	}
}

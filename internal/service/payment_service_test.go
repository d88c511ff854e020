package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"testing"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/entity"
	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/contract"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/pkg/gate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubUserRepo struct {
	user *entity.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return r.user, nil
}
func (r *stubUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}
func (r *stubUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *stubUserRepo) ActivateUser(ctx context.Context, userId uuid.UUID) error { return nil }
func (r *stubUserRepo) CreditTokens(ctx context.Context, userId uuid.UUID, delta int) error {
	return nil
}
func (r *stubUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	return nil
}
func (r *stubUserRepo) FindEmailVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error) {
	return nil, nil
}
func (r *stubUserRepo) DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (r *stubUserRepo) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	return nil
}

type stubTopupRepo struct {
	order   *model.TopupOrder
	updates []*model.TopupOrder
}

func (r *stubTopupRepo) Create(ctx context.Context, order *model.TopupOrder) error { return nil }
func (r *stubTopupRepo) FindByOrderId(ctx context.Context, orderId string) (*model.TopupOrder, error) {
	if r.order != nil && r.order.OrderId == orderId {
		return r.order, nil
	}
	return nil, nil
}
func (r *stubTopupRepo) Update(ctx context.Context, order *model.TopupOrder) error {
	r.updates = append(r.updates, order)
	return nil
}

type stubUnitOfWork struct {
	users  *stubUserRepo
	topups *stubTopupRepo
}

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                   { return nil }
func (u *stubUnitOfWork) Rollback() error                 { return nil }
func (u *stubUnitOfWork) UserRepository() contract.UserRepository {
	return u.users
}
func (u *stubUnitOfWork) WalletRepository() contract.WalletRepository { return nil }
func (u *stubUnitOfWork) SessionEmbeddingRepository() contract.SessionEmbeddingRepository {
	return nil
}
func (u *stubUnitOfWork) TopupRepository() contract.TopupRepository {
	return u.topups
}

type stubRepoFactory struct {
	uow *stubUnitOfWork
}

func (f *stubRepoFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type walletCredit struct {
	userId uuid.UUID
	amount int
	source string
}

type stubWalletService struct {
	credits []walletCredit
}

func (s *stubWalletService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}
func (s *stubWalletService) DecrementBalance(ctx context.Context, userID uuid.UUID) error {
	return nil
}
func (s *stubWalletService) RecordActivity(ctx context.Context, userID uuid.UUID, entry gate.ActivityEntry) error {
	return nil
}
func (s *stubWalletService) CreditTokens(ctx context.Context, userId uuid.UUID, amount int, source string, relatedId *uuid.UUID) error {
	s.credits = append(s.credits, walletCredit{userId: userId, amount: amount, source: source})
	return nil
}

func newPaymentTestFixture(order *model.TopupOrder) (*stubRepoFactory, *stubWalletService, IPaymentService) {
	factory := &stubRepoFactory{uow: &stubUnitOfWork{
		users:  &stubUserRepo{},
		topups: &stubTopupRepo{order: order},
	}}
	wallet := &stubWalletService{}
	return factory, wallet, NewPaymentService(factory, wallet, "server-key")
}

func signNotification(req *dto.MidtransNotification, serverKey string) {
	input := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	req.SignatureKey = fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
}

func TestHandleNotificationRejectsBadSignature(t *testing.T) {
	order := &model.TopupOrder{
		Id:      uuid.New(),
		UserId:  uuid.New(),
		OrderId: "topup-123",
		Tokens:  50,
		Status:  model.TopupStatusPending,
	}
	factory, wallet, svc := newPaymentTestFixture(order)

	err := svc.HandleNotification(context.Background(), &dto.MidtransNotification{
		OrderId:           "topup-123",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "15000.00",
		SignatureKey:      "forged",
	})

	assert.EqualError(t, err, "invalid signature")
	assert.Empty(t, factory.uow.topups.updates)
	assert.Empty(t, wallet.credits)
}

func TestHandleNotificationRejectsMissingServerKey(t *testing.T) {
	svc := NewPaymentService(nil, nil, "")

	err := svc.HandleNotification(context.Background(), &dto.MidtransNotification{
		OrderId: "topup-123",
	})

	assert.Error(t, err)
}

func TestSettlementMarksOrderPaidAndCreditsTokens(t *testing.T) {
	userId := uuid.New()
	order := &model.TopupOrder{
		Id:          uuid.New(),
		UserId:      userId,
		OrderId:     "topup-123",
		Tokens:      50,
		GrossAmount: 15000,
		Status:      model.TopupStatusPending,
	}
	factory, wallet, svc := newPaymentTestFixture(order)

	req := &dto.MidtransNotification{
		OrderId:           "topup-123",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "15000.00",
	}
	signNotification(req, "server-key")

	err := svc.HandleNotification(context.Background(), req)

	assert.NoError(t, err)
	assert.Len(t, factory.uow.topups.updates, 1)
	assert.Equal(t, model.TopupStatusPaid, order.Status)
	assert.NotNil(t, order.PaidAt)
	assert.Equal(t, []walletCredit{{userId: userId, amount: 50, source: "topup"}}, wallet.credits)
}

func TestPaidOrderIsNotRecredited(t *testing.T) {
	order := &model.TopupOrder{
		Id:      uuid.New(),
		UserId:  uuid.New(),
		OrderId: "topup-123",
		Tokens:  50,
		Status:  model.TopupStatusPaid,
	}
	factory, wallet, svc := newPaymentTestFixture(order)

	req := &dto.MidtransNotification{
		OrderId:           "topup-123",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "15000.00",
	}
	signNotification(req, "server-key")

	err := svc.HandleNotification(context.Background(), req)

	assert.NoError(t, err)
	assert.Empty(t, factory.uow.topups.updates)
	assert.Empty(t, wallet.credits)
}

func TestFindPackageKnownAndUnknown(t *testing.T) {
	pkg := findPackage("starter")
	assert.NotNil(t, pkg)
	assert.Equal(t, 50, pkg.Tokens)

	assert.Nil(t, findPackage("nonexistent"))
}

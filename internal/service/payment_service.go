package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"os"
	"time"

	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/model"
	"ai-studypal-be/internal/repository/specification"
	"ai-studypal-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// TokenPackages are the purchasable bundles. Prices are IDR.
var TokenPackages = []dto.TokenPackage{
	{Slug: "starter", Name: "Starter Pack", Tokens: 50, Price: 15000},
	{Slug: "study", Name: "Study Pack", Tokens: 150, Price: 39000},
	{Slug: "semester", Name: "Semester Pack", Tokens: 400, Price: 89000},
}

type IPaymentService interface {
	ListPackages(ctx context.Context) []dto.TokenPackage
	CreateTopup(ctx context.Context, userId uuid.UUID, req *dto.CreateTopupRequest) (*dto.CreateTopupResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransNotification) error
	GetOrder(ctx context.Context, userId uuid.UUID, orderId string) (*dto.TopupOrderResponse, error)
}

type paymentService struct {
	uowFactory    unitofwork.RepositoryFactory
	walletService IWalletService
	serverKey     string
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, walletService IWalletService, serverKey string) IPaymentService {
	return &paymentService{
		uowFactory:    uowFactory,
		walletService: walletService,
		serverKey:     serverKey,
	}
}

func (s *paymentService) ListPackages(ctx context.Context) []dto.TokenPackage {
	return TokenPackages
}

func findPackage(slug string) *dto.TokenPackage {
	for i := range TokenPackages {
		if TokenPackages[i].Slug == slug {
			return &TokenPackages[i]
		}
	}
	return nil
}

func (s *paymentService) CreateTopup(ctx context.Context, userId uuid.UUID, req *dto.CreateTopupRequest) (*dto.CreateTopupResponse, error) {
	pkg := findPackage(req.PackageSlug)
	if pkg == nil {
		return nil, fmt.Errorf("unknown token package: %s", req.PackageSlug)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	order := &model.TopupOrder{
		Id:          uuid.New(),
		UserId:      userId,
		OrderId:     fmt.Sprintf("topup-%s", uuid.NewString()),
		Tokens:      pkg.Tokens,
		GrossAmount: int64(pkg.Price),
		Status:      model.TopupStatusPending,
	}

	if err := uow.TopupRepository().Create(ctx, order); err != nil {
		return nil, err
	}

	// Midtrans call stays outside the DB write; the webhook reconciles status.
	var sClient snap.Client
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(s.serverKey, env)

	frontendURL := os.Getenv("FRONTEND_URL")
	finishRedirectURL := fmt.Sprintf("%s/app?payment=success", frontendURL)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderId,
			GrossAmt: order.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    pkg.Slug,
				Price: order.GrossAmount,
				Qty:   1,
				Name:  pkg.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	order.SnapToken = &snapResp.Token
	if err := uow.TopupRepository().Update(ctx, order); err != nil {
		fmt.Printf("[WARN] Failed to store snap token for order %s: %v\n", order.OrderId, err)
	}

	return &dto.CreateTopupResponse{
		OrderId:   order.OrderId,
		SnapToken: snapResp.Token,
		Amount:    pkg.Price,
		Tokens:    pkg.Tokens,
	}, nil
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransNotification) error {
	fmt.Printf("[WEBHOOK] OrderId: %s | Status: %s\n", req.OrderId, req.TransactionStatus)

	if s.serverKey == "" {
		return fmt.Errorf("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + s.serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expectedSignature {
		fmt.Printf("[WEBHOOK ERROR] Signature mismatch for OrderId=%s\n", req.OrderId)
		return fmt.Errorf("invalid signature")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	order, err := uow.TopupRepository().FindByOrderId(ctx, req.OrderId)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("topup order not found")
	}

	var newStatus string
	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.FraudStatus == "challenge" || req.FraudStatus == "deny" {
			newStatus = model.TopupStatusFailed
		} else {
			newStatus = model.TopupStatusPaid
		}
	case "deny", "cancel":
		newStatus = model.TopupStatusFailed
	case "expire":
		newStatus = model.TopupStatusExpired
	case "pending":
		return nil
	default:
		fmt.Printf("[WEBHOOK] Unknown status '%s' - no action taken\n", req.TransactionStatus)
		return nil
	}

	// Idempotency: a paid order is never re-credited.
	if order.Status == newStatus || order.Status == model.TopupStatusPaid {
		return nil
	}

	order.Status = newStatus
	if newStatus == model.TopupStatusPaid {
		now := time.Now()
		order.PaidAt = &now
	}

	if err := uow.TopupRepository().Update(ctx, order); err != nil {
		return err
	}

	if newStatus == model.TopupStatusPaid {
		if err := s.walletService.CreditTokens(ctx, order.UserId, order.Tokens, "topup", &order.Id); err != nil {
			return fmt.Errorf("failed to credit tokens for order %s: %w", order.OrderId, err)
		}
		fmt.Printf("[WEBHOOK] Credited %d tokens to user %s\n", order.Tokens, order.UserId)
	}

	return nil
}

func (s *paymentService) GetOrder(ctx context.Context, userId uuid.UUID, orderId string) (*dto.TopupOrderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	order, err := uow.TopupRepository().FindByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserId != userId {
		return nil, fmt.Errorf("order not found")
	}

	return &dto.TopupOrderResponse{
		Id:        order.Id,
		OrderId:   order.OrderId,
		Status:    order.Status,
		Amount:    float64(order.GrossAmount),
		Tokens:    order.Tokens,
		CreatedAt: order.CreatedAt,
	}, nil
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type TokenPackage struct {
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Tokens int     `json:"tokens"`
	Price  float64 `json:"price"`
}

type CreateTopupRequest struct {
	PackageSlug string `json:"package_slug" validate:"required"`
}

type CreateTopupResponse struct {
	OrderId   string  `json:"order_id"`
	SnapToken string  `json:"snap_token"`
	Amount    float64 `json:"amount"`
	Tokens    int     `json:"tokens"`
}

type TopupOrderResponse struct {
	Id        uuid.UUID `json:"id"`
	OrderId   string    `json:"order_id"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// MidtransNotification is the subset of the webhook payload we act on.
type MidtransNotification struct {
	OrderId           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

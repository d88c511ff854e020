package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopupStatusPending = "pending"
	TopupStatusPaid    = "paid"
	TopupStatusFailed  = "failed"
	TopupStatusExpired = "expired"
)

// TopupOrder tracks a Midtrans Snap transaction that buys tokens.
type TopupOrder struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderId     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Tokens      int       `gorm:"not null"`
	GrossAmount int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(50);not null;default:'pending'"`
	SnapToken   *string   `gorm:"type:text"`
	PaidAt      *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (TopupOrder) TableName() string {
	return "topup_orders"
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TokenTransactionGrant = "grant"
	TokenTransactionSpend = "spend"
	TokenTransactionTopup = "topup"
)

// TokenTransaction is the ledger behind the user's token balance. The balance
// column on users is authoritative for gating; the ledger exists for audit.
type TokenTransaction struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	TransactionType string     `gorm:"type:varchar(50);not null"`
	Amount          int        `gorm:"not null"`
	ServiceUsed     *string    `gorm:"type:text;index"`
	RelatedId       *uuid.UUID `gorm:"type:uuid"`
	Notes           *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"default:now();not null"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}

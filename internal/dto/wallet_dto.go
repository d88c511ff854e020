package dto

import (
	"time"

	"github.com/google/uuid"
)

type TokenTransactionResponse struct {
	Id        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Amount    int       `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StudyActivityResponse struct {
	Id        uuid.UUID              `json:"id"`
	Kind      string                 `json:"kind"`
	Subject   string                 `json:"subject"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// --- Insufficient Balance Error Types ---

// InsufficientTokensData is the data payload for 402 responses
type InsufficientTokensData struct {
	Balance       int  `json:"balance"`
	ShowModalBuy  bool `json:"show_modal_buy"`
	MinimumTokens int  `json:"minimum_tokens"`
}

// InsufficientTokensResponse is the full 402 response structure
type InsufficientTokensResponse struct {
	Success   bool                   `json:"success"`
	Code      int                    `json:"code"`
	Message   string                 `json:"message"`
	ErrorType string                 `json:"error_type"`
	Data      InsufficientTokensData `json:"data"`
}

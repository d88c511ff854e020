package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	ClassLevel   string    `json:"class_level,omitempty"`
	TokenBalance int       `json:"token_balance"`
	CreatedAt    time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName   string `json:"full_name" validate:"required,min=3"`
	ClassLevel string `json:"class_level" validate:"omitempty,max=32"`
}

type TokenBalanceResponse struct {
	Balance   int  `json:"balance"`
	Unlimited bool `json:"unlimited"`
}

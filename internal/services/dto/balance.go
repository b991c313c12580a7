package dto

import (
	"time"

	"cargomarket_backend/internal/models"
)

// TopUpRequest - пополнение баланса; данные карты сохраняются только в виде последних 4 цифр
type TopUpRequest struct {
	Amount        float64              `json:"amount" validate:"required,gt=0,max=1000000"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=card bank_transfer"`
	CardHolder    string               `json:"card_holder" validate:"required,min=2,max=120"`
	CardLast4     string               `json:"card_last4" validate:"required,len=4,numeric"`
	Reference     string               `json:"reference" validate:"max=120"`
}

// Поля *_minor - точные суммы в центах, десятичные - для отображения
type BalanceResponse struct {
	WalletID     string    `json:"wallet_id"`
	Balance      float64   `json:"balance"`
	BalanceMinor int64     `json:"balance_minor"`
	Currency     string    `json:"currency"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewBalanceResponse(w *models.Wallet) *BalanceResponse {
	return &BalanceResponse{
		WalletID:     w.ID,
		Balance:      models.FromMinorUnits(w.BalanceMinor),
		BalanceMinor: w.BalanceMinor,
		Currency:     w.Currency,
		UpdatedAt:    w.UpdatedAt,
	}
}

type TopUpResponse struct {
	Success              bool                 `json:"success"`
	PreviousBalance      float64              `json:"previous_balance"`
	PreviousBalanceMinor int64                `json:"previous_balance_minor"`
	Balance              float64              `json:"balance"`
	BalanceMinor         int64                `json:"balance_minor"`
	Currency             string               `json:"currency"`
	Transaction          *TransactionResponse `json:"transaction"`
}

type TransactionResponse struct {
	ID                string               `json:"id"`
	Amount            float64              `json:"amount"`
	AmountMinor       int64                `json:"amount_minor"`
	Kind              string               `json:"kind"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	CardLast4         string               `json:"card_last4,omitempty"`
	Reference         string               `json:"reference,omitempty"`
	BalanceAfter      float64              `json:"balance_after"`
	BalanceAfterMinor int64                `json:"balance_after_minor"`
	CreatedAt         time.Time            `json:"created_at"`
}

func NewTransactionResponse(tx *models.BalanceTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                tx.ID,
		Amount:            models.FromMinorUnits(tx.AmountMinor),
		AmountMinor:       tx.AmountMinor,
		Kind:              tx.Kind,
		PaymentMethod:     tx.PaymentMethod,
		CardLast4:         tx.CardLast4,
		Reference:         tx.Reference,
		BalanceAfter:      models.FromMinorUnits(tx.BalanceAfterMinor),
		BalanceAfterMinor: tx.BalanceAfterMinor,
		CreatedAt:         tx.CreatedAt,
	}
}

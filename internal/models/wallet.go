package models

import "math"

// Суммы кошелька хранятся в минимальных единицах валюты (центах),
// чтобы balance_after всегда был ровно previous + amount
type Wallet struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	BalanceMinor int64  `gorm:"not null;default:0" json:"balance_minor"`
	Currency     string `gorm:"size:3;not null;default:'USD'" json:"currency"`
}

const BalanceTxTopUp = "top_up"

// BalanceTransaction - движение по кошельку
type BalanceTransaction struct {
	BaseModel
	WalletID          string        `gorm:"type:varchar(36);not null;index" json:"wallet_id"`
	UserID            string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	AmountMinor       int64         `gorm:"not null" json:"amount_minor"`
	Kind              string        `gorm:"size:20;not null" json:"kind"`
	PaymentMethod     PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	CardHolder        string        `gorm:"size:120" json:"card_holder,omitempty"`
	CardLast4         string        `gorm:"size:4" json:"card_last4,omitempty"`
	Reference         string        `gorm:"size:120" json:"reference,omitempty"`
	BalanceAfterMinor int64         `gorm:"not null" json:"balance_after_minor"`
}

// ToMinorUnits переводит сумму в центы. ok=false, если знаков после запятой больше двух
func ToMinorUnits(amount float64) (minor int64, ok bool) {
	scaled := amount * 100
	rounded := math.Round(scaled)
	return int64(rounded), math.Abs(scaled-rounded) < 1e-6
}

func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

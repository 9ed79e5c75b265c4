package models

import (
	"time"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
)

// Transaction tracks one STK push from initiation to its callback result.
// CheckoutRequestID is the provider handle correlating the two; the unique
// index is what makes redelivered callbacks resolvable to a single row.
type Transaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	MerchantRef       string     `gorm:"size:64;uniqueIndex" json:"merchant_ref"`
	CheckoutRequestID string     `gorm:"size:100;uniqueIndex" json:"checkout_request_id"`
	MerchantRequestID string     `gorm:"size:100" json:"merchant_request_id"`
	PhoneNumber       string     `gorm:"size:15;not null" json:"phone_number"`
	Amount            int64      `gorm:"not null" json:"amount"`
	Status            string     `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	ResultCode        *int       `json:"result_code"`
	ResultDesc        string     `gorm:"size:255" json:"result_desc"`
	ReceiptNumber     string     `gorm:"size:50" json:"receipt_number"`
	TransactionDate   string     `gorm:"size:20" json:"transaction_date"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "mpesa_transactions"
}

// Terminal reports whether the transaction already has a final outcome.
func (t *Transaction) Terminal() bool {
	return t.Status == TxStatusCompleted || t.Status == TxStatusFailed
}

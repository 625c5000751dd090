package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxTaskPayment TransactionType = "task-payment"
	TxTaskRefund  TransactionType = "task-refund"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTaskPayment, TxTaskRefund:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is one append-only ledger entry. Amounts are always positive;
// direction is implied by the type and the owning user.
type Transaction struct {
	ID          string            `bson:"id" json:"id"`
	UserID      string            `bson:"userId" json:"userId"`
	Type        TransactionType   `bson:"type" json:"type"`
	Amount      decimal.Decimal   `bson:"amount" json:"amount"`
	Description string            `bson:"description" json:"description"`
	TaskID      string            `bson:"taskId,omitempty" json:"taskId,omitempty"`
	Status      TransactionStatus `bson:"status" json:"status"`

	// External-payment bookkeeping for deposits and withdrawals.
	PaymentMethod string `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	ExternalRef   string `bson:"externalRef,omitempty" json:"externalRef,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// TransactionFilter narrows ledger listings for one user.
type TransactionFilter struct {
	Type  TransactionType
	Page  int
	Limit int
}

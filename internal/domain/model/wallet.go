package model

import "strings"

// TransactionType classifies wallet movements.
type TransactionType string

const (
	TransactionDeposit        TransactionType = "DEPOSIT"
	TransactionWithdraw       TransactionType = "WITHDRAW"
	TransactionPayment        TransactionType = "PAYMENT"
	TransactionRefund         TransactionType = "REFUND"
	TransactionEarn           TransactionType = "EARN"
	TransactionDeliveryIncome TransactionType = "DELIVERY_INCOME"
	TransactionManualIncome   TransactionType = "MANUAL_INCOME"
)

// ParseTransactionType decodes a transaction type; unknown values are PAYMENT.
func ParseTransactionType(s string) TransactionType {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TransactionDeposit, TransactionWithdraw, TransactionPayment, TransactionRefund,
		TransactionEarn, TransactionDeliveryIncome, TransactionManualIncome:
		return t
	default:
		return TransactionPayment
	}
}

// IsCredit reports whether the transaction increases the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionDeposit, TransactionRefund, TransactionEarn, TransactionDeliveryIncome, TransactionManualIncome:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// ParseTransactionStatus decodes a transaction status; unknown values are PENDING.
func ParseTransactionStatus(s string) TransactionStatus {
	switch st := TransactionStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionCancelled:
		return st
	default:
		return TransactionPending
	}
}

// Wallet is the driver balance summary.
type Wallet struct {
	ID             int64   `json:"id"`
	UserID         string  `json:"userId"`
	Balance        float64 `json:"balance"`
	TotalDeposited float64 `json:"totalDeposited"`
	TotalWithdrawn float64 `json:"totalWithdrawn"`
	TotalEarned    float64 `json:"totalEarned"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// Transaction is one wallet movement.
type Transaction struct {
	ID            int64             `json:"id"`
	WalletID      int64             `json:"walletId"`
	Amount        float64           `json:"amount"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	BalanceBefore float64           `json:"balanceBefore"`
	BalanceAfter  float64           `json:"balanceAfter"`
	Description   string            `json:"description"`
	ReferenceID   string            `json:"referenceId"`
	ReferenceType string            `json:"referenceType"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

// TopUp is a pending wallet deposit created through the payment provider.
type TopUp struct {
	ID                    int64   `json:"id"`
	Amount                float64 `json:"amount"`
	ProviderTransactionID string  `json:"providerTransactionId"`
	PaymentURL            string  `json:"paymentUrl"`
	Status                string  `json:"status"`
	CreatedAt             string  `json:"createdAt"`
}

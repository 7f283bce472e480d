package models

import "time"

// ContractStatus represents the lifecycle state of a BNPL contract
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "pending"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusDefaulted ContractStatus = "defaulted"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// InstallmentStatus represents the payment state of a single installment
// "due" and "overdue" are presentational states derived from the due date
// by the client; the store only ever writes "pending" and "paid".
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusDue     InstallmentStatus = "due"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
	InstallmentStatusPaid    InstallmentStatus = "paid"
)

// Contract represents a BNPL contract with its installment schedule
type Contract struct {
	ID                string         `json:"id"`
	MerchantPublicKey string         `json:"merchantPublicKey"`
	CustomerPublicKey string         `json:"customerPublicKey"`

	// Financials (decimal strings, matching on-ledger representation)
	TotalAmount       string `json:"totalAmount"`
	InstallmentsCount int    `json:"installmentsCount"`
	InstallmentAmount string `json:"installmentAmount"`

	Status       ContractStatus         `json:"status"`
	CustomerData map[string]interface{} `json:"customerData"`
	CreatedAt    time.Time              `json:"createdAt"`

	// Schedule, ordered by installment number
	Installments []Installment `json:"installments"`
}

// Installment represents one scheduled partial payment of a contract
type Installment struct {
	Number  int               `json:"number"` // 1-based, contiguous within a contract
	Amount  string            `json:"amount"`
	DueDate time.Time         `json:"dueDate"`
	Status  InstallmentStatus `json:"status"`
	TxHash  *string           `json:"txHash"`
	PaidAt  *time.Time        `json:"paidAt,omitempty"`
}

// Paid reports whether the installment has a recorded payment
func (i *Installment) Paid() bool {
	return i.Status == InstallmentStatusPaid
}

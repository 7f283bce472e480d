package models

import "time"

// QuotationOption represents one candidate installment plan for an amount
type QuotationOption struct {
	InstallmentsCount int    `json:"installmentsCount"`
	InstallmentAmount string `json:"installmentAmount"`
	TotalAmount       string `json:"totalAmount"`
	FrequencyDays     int    `json:"frequencyDays"`
	InterestRate      string `json:"interestRate"`
	Description       string `json:"description"`
}

// Quotation represents the full set of plans offered for an amount
type Quotation struct {
	OriginalAmount string            `json:"originalAmount"`
	Options        []QuotationOption `json:"options"`
	Currency       string            `json:"currency"`
	GeneratedAt    time.Time         `json:"generatedAt"`
}

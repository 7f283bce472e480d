package models

import "time"

// QuotationResponse is the envelope for POST /api/quotation
type QuotationResponse struct {
	Success        bool              `json:"success"`
	OriginalAmount string            `json:"originalAmount"`
	Options        []QuotationOption `json:"options"`
	Currency       string            `json:"currency"`
	GeneratedAt    time.Time         `json:"generatedAt"`
}

// ContractResponse is the envelope for contract creation and lookup
type ContractResponse struct {
	Success       bool      `json:"success"`
	Contract      *Contract `json:"contract"`
	StellarStatus string    `json:"stellarStatus,omitempty"`
}

// ContractListResponse is the envelope for GET /api/contracts
type ContractListResponse struct {
	Success   bool        `json:"success"`
	Contracts []*Contract `json:"contracts"`
	Total     int         `json:"total"`
}

// AccountResponse is the envelope for POST /api/stellar/create-account
// SecretKey is redacted outside development mode.
type AccountResponse struct {
	Success     bool        `json:"success"`
	Account     AccountKeys `json:"account"`
	Funded      bool        `json:"funded"`
	ExplorerURL string      `json:"explorerUrl"`
	Note        string      `json:"note,omitempty"`
}

// AccountKeys carries a Stellar keypair in API responses
type AccountKeys struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

// AccountDetailResponse is the envelope for GET /api/stellar/account/{publicKey}
type AccountDetailResponse struct {
	PublicKey   string `json:"publicKey"`
	Balance     string `json:"balance"`
	Sequence    string `json:"sequence"`
	Exists      bool   `json:"exists"`
	ExplorerURL string `json:"explorerUrl"`
	Note        string `json:"note,omitempty"`
}

// StellarHealthResponse is the envelope for GET /api/stellar/health
type StellarHealthResponse struct {
	Connected    bool   `json:"connected"`
	Network      string `json:"network"`
	LatestLedger uint32 `json:"latestLedger"`
	HorizonURL   string `json:"horizonUrl,omitempty"`
	Error        string `json:"error,omitempty"`
}

// PaymentResponse is the envelope for POST /api/stellar/process-payment
type PaymentResponse struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"txHash"`
	ExplorerURL string `json:"explorerUrl"`
	Status      string `json:"status"`
}

// TransactionsResponse is the envelope for GET /api/stellar/transactions/{accountID}
type TransactionsResponse struct {
	Success      bool              `json:"success"`
	Transactions []TransactionInfo `json:"transactions"`
	Note         string            `json:"note,omitempty"`
}

// TransactionInfo is a trimmed view of a ledger transaction
type TransactionInfo struct {
	Hash      string    `json:"hash"`
	Ledger    int32     `json:"ledger"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HealthResponse is the envelope for GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Package stellar provides the ledger gateway used to create and fund
// testnet accounts, look up balances, and submit installment payments.
// All network access is behind the Gateway interface so the API layer can
// degrade to the mock implementation when the network is unavailable.
package stellar

import (
	"context"
	"errors"
	"fmt"

	"bnpl/internal/models"
)

// ErrAccountNotFound is returned when a public key is unknown to the network
var ErrAccountNotFound = errors.New("account not found")

// GatewayError wraps a failure of the external ledger. Callers are expected
// to treat it as non-fatal and fall back to a local result.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("stellar gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HealthInfo describes the gateway's view of the network
type HealthInfo struct {
	Connected    bool
	Network      string
	LatestLedger uint32
	HorizonURL   string
}

// Account is a newly created ledger account. SecretKey is only ever exposed
// to API clients in development mode.
type Account struct {
	PublicKey string
	SecretKey string
	Funded    bool
}

// AccountInfo is the balance view of an existing account
type AccountInfo struct {
	PublicKey string
	Balance   string
	Sequence  string
}

// PaymentRequest describes a native-asset payment to submit
type PaymentRequest struct {
	SourceSecret string
	Destination  string
	Amount       string
	Memo         string
}

// PaymentResult is the outcome of a submitted payment
type PaymentResult struct {
	TxHash string
	Ledger int32
}

// Gateway defines the ledger operations the API depends on
type Gateway interface {
	// Health reports connectivity and the latest closed ledger
	Health(ctx context.Context) (*HealthInfo, error)

	// CreateAccount generates a keypair and attempts to fund it.
	// A keypair with Funded=false and a nil error means the account was
	// created locally but friendbot funding failed.
	CreateAccount(ctx context.Context) (*Account, error)

	// AccountDetail returns balance and sequence for a public key.
	// Returns ErrAccountNotFound when the network does not know the account.
	AccountDetail(ctx context.Context, publicKey string) (*AccountInfo, error)

	// SubmitPayment builds, signs, and submits a native payment
	SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)

	// Transactions returns the most recent transactions for an account
	Transactions(ctx context.Context, accountID string) ([]models.TransactionInfo, error)
}

// ExplorerAccountURL returns the stellar.expert link for an account
func ExplorerAccountURL(publicKey string) string {
	return "https://stellar.expert/explorer/testnet/account/" + publicKey
}

// ExplorerTxURL returns the stellar.expert link for a transaction
func ExplorerTxURL(txHash string) string {
	return "https://stellar.expert/explorer/testnet/tx/" + txHash
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bnpl/internal/models"
	"bnpl/internal/quotation"

	"github.com/google/uuid"
)

// Sentinel errors shared by all repository implementations
var (
	// ErrNotFound is returned when a contract or installment does not exist
	ErrNotFound = errors.New("contract not found")

	// ErrAlreadyPaid is returned when recording a payment against an
	// installment that already has one. Duplicate submissions are rejected,
	// never overwritten.
	ErrAlreadyPaid = errors.New("installment already paid")

	// ErrMissingFields is returned when required contract fields are absent
	ErrMissingFields = errors.New("missing required fields")
)

// CreateContractParams carries the caller-supplied fields for a new contract
type CreateContractParams struct {
	MerchantPublicKey string
	CustomerPublicKey string
	TotalAmount       string
	InstallmentsCount int
	CustomerData      map[string]interface{}
}

// Repository defines the interface for contract persistence.
// The repository is the sole authority over contract and installment state.
type Repository interface {
	// CreateContract persists a new contract with its installment schedule
	// and returns the assembled aggregate
	CreateContract(ctx context.Context, params CreateContractParams) (*models.Contract, error)

	// GetContract returns a contract with its installments ordered by number.
	// Returns ErrNotFound if the id is unknown.
	GetContract(ctx context.Context, id string) (*models.Contract, error)

	// ListContracts returns all contracts, most recently created first
	ListContracts(ctx context.Context) ([]*models.Contract, error)

	// RecordPayment marks an installment paid, storing the transaction hash
	// and payment time. Returns ErrNotFound for an unknown contract or
	// installment number, ErrAlreadyPaid if a payment was already recorded.
	RecordPayment(ctx context.Context, contractID string, installmentNumber int, txHash string) error

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}

// installmentInterval is the spacing between due dates; the first
// installment falls due one interval after creation
const installmentInterval = 30 * 24 * time.Hour

// newContractID generates a unique contract identifier. The millisecond
// timestamp keeps ids roughly sortable by creation time, the uuid fragment
// makes collisions within one millisecond irrelevant.
func newContractID(now time.Time) string {
	return fmt.Sprintf("BNPL-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// buildContract assembles the contract aggregate shared by every backend:
// id, per-installment amount, and the 30-day schedule. Persistence of the
// result is left to the caller.
func buildContract(params CreateContractParams, now time.Time) (*models.Contract, error) {
	if params.TotalAmount == "" || params.InstallmentsCount == 0 {
		return nil, ErrMissingFields
	}

	installmentAmount, err := quotation.SplitAmount(params.TotalAmount, params.InstallmentsCount)
	if err != nil {
		return nil, err
	}

	customerData := params.CustomerData
	if customerData == nil {
		customerData = map[string]interface{}{}
	}

	contract := &models.Contract{
		ID:                newContractID(now),
		MerchantPublicKey: params.MerchantPublicKey,
		CustomerPublicKey: params.CustomerPublicKey,
		TotalAmount:       params.TotalAmount,
		InstallmentsCount: params.InstallmentsCount,
		InstallmentAmount: installmentAmount,
		Status:            models.ContractStatusActive,
		CustomerData:      customerData,
		CreatedAt:         now,
		Installments:      make([]models.Installment, 0, params.InstallmentsCount),
	}

	for i := 1; i <= params.InstallmentsCount; i++ {
		contract.Installments = append(contract.Installments, models.Installment{
			Number:  i,
			Amount:  installmentAmount,
			DueDate: now.Add(time.Duration(i) * installmentInterval),
			Status:  models.InstallmentStatusPending,
		})
	}

	return contract, nil
}

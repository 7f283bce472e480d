package storage

import (
	"context"
	"sync"
	"time"

	"bnpl/internal/models"
)

// MemoryRepository implements Repository with process-lifetime storage.
// Used for demos without a database and as the test double elsewhere.
type MemoryRepository struct {
	mu        sync.RWMutex
	contracts map[string]*models.Contract
	order     []string // ids in creation order
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		contracts: make(map[string]*models.Contract),
	}
}

// CreateContract builds and stores a contract with its installment schedule
func (r *MemoryRepository) CreateContract(ctx context.Context, params CreateContractParams) (*models.Contract, error) {
	contract, err := buildContract(params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.contracts[contract.ID] = contract
	r.order = append(r.order, contract.ID)
	r.mu.Unlock()

	return cloneContract(contract), nil
}

// GetContract returns a contract by id
func (r *MemoryRepository) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contract, ok := r.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneContract(contract), nil
}

// ListContracts returns all contracts, newest first
func (r *MemoryRepository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := make([]*models.Contract, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		contracts = append(contracts, cloneContract(r.contracts[r.order[i]]))
	}
	return contracts, nil
}

// RecordPayment transitions an installment from pending to paid
func (r *MemoryRepository) RecordPayment(ctx context.Context, contractID string, installmentNumber int, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contract, ok := r.contracts[contractID]
	if !ok {
		return ErrNotFound
	}
	if installmentNumber < 1 || installmentNumber > len(contract.Installments) {
		return ErrNotFound
	}

	installment := &contract.Installments[installmentNumber-1]
	if installment.Paid() {
		return ErrAlreadyPaid
	}

	now := time.Now().UTC()
	installment.Status = models.InstallmentStatusPaid
	installment.TxHash = &txHash
	installment.PaidAt = &now

	return nil
}

// Ping always succeeds for the in-memory backend
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend
func (r *MemoryRepository) Close() error {
	return nil
}

// cloneContract copies the aggregate so callers cannot mutate stored state
func cloneContract(c *models.Contract) *models.Contract {
	clone := *c
	clone.Installments = make([]models.Installment, len(c.Installments))
	copy(clone.Installments, c.Installments)

	clone.CustomerData = make(map[string]interface{}, len(c.CustomerData))
	for k, v := range c.CustomerData {
		clone.CustomerData[k] = v
	}
	return &clone
}

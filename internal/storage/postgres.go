package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bnpl/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	merchant_public_key TEXT,
	customer_public_key TEXT,
	total_amount NUMERIC(20,7),
	installments_count INTEGER,
	installment_amount NUMERIC(20,7),
	status TEXT DEFAULT 'active',
	customer_data JSONB DEFAULT '{}',
	created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS installments (
	id BIGSERIAL PRIMARY KEY,
	contract_id TEXT REFERENCES contracts(id),
	number INTEGER,
	amount NUMERIC(20,7),
	due_date TIMESTAMPTZ,
	status TEXT DEFAULT 'pending',
	tx_hash TEXT,
	paid_at TIMESTAMPTZ,
	UNIQUE (contract_id, number)
);
`

// NewPostgresRepository creates a new PostgreSQL repository and ensures
// the schema exists
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// CreateContract persists the contract and its installments in one transaction
func (r *PostgresRepository) CreateContract(ctx context.Context, params CreateContractParams) (*models.Contract, error) {
	contract, err := buildContract(params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	customerDataJSON, err := json.Marshal(contract.CustomerData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer_data: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO contracts (
			id, merchant_public_key, customer_public_key, total_amount,
			installments_count, installment_amount, status, customer_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		contract.ID,
		contract.MerchantPublicKey,
		contract.CustomerPublicKey,
		contract.TotalAmount,
		contract.InstallmentsCount,
		contract.InstallmentAmount,
		string(contract.Status),
		customerDataJSON,
		contract.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}

	for _, installment := range contract.Installments {
		_, err = tx.Exec(ctx, `
			INSERT INTO installments (contract_id, number, amount, due_date, status)
			VALUES ($1, $2, $3, $4, $5)`,
			contract.ID,
			installment.Number,
			installment.Amount,
			installment.DueDate,
			string(installment.Status),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert installment %d: %w", installment.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contract: %w", err)
	}

	return contract, nil
}

// GetContract retrieves a contract with its ordered installments
func (r *PostgresRepository) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, merchant_public_key, customer_public_key, total_amount::text,
			installments_count, installment_amount::text, status, customer_data, created_at
		FROM contracts WHERE id = $1`, id)

	contract, err := scanPostgresContract(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadInstallments(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// ListContracts lists all contracts with installments, newest first
func (r *PostgresRepository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, merchant_public_key, customer_public_key, total_amount::text,
			installments_count, installment_amount::text, status, customer_data, created_at
		FROM contracts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract, err := scanPostgresContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}

	for _, contract := range contracts {
		if err := r.loadInstallments(ctx, contract); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

// RecordPayment marks an installment paid, guarding against duplicates
func (r *PostgresRepository) RecordPayment(ctx context.Context, contractID string, installmentNumber int, txHash string) error {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM installments WHERE contract_id = $1 AND number = $2`,
		contractID, installmentNumber,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load installment: %w", err)
	}
	if models.InstallmentStatus(status) == models.InstallmentStatusPaid {
		return ErrAlreadyPaid
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE installments
		SET status = $1, tx_hash = $2, paid_at = $3
		WHERE contract_id = $4 AND number = $5`,
		string(models.InstallmentStatusPaid),
		txHash,
		time.Now().UTC(),
		contractID,
		installmentNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresContract(row pgx.Row) (*models.Contract, error) {
	var contract models.Contract
	var status string
	var customerDataJSON []byte

	err := row.Scan(
		&contract.ID,
		&contract.MerchantPublicKey,
		&contract.CustomerPublicKey,
		&contract.TotalAmount,
		&contract.InstallmentsCount,
		&contract.InstallmentAmount,
		&status,
		&customerDataJSON,
		&contract.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	contract.Status = models.ContractStatus(status)
	if err := json.Unmarshal(customerDataJSON, &contract.CustomerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer_data: %w", err)
	}
	return &contract, nil
}

func (r *PostgresRepository) loadInstallments(ctx context.Context, contract *models.Contract) error {
	rows, err := r.pool.Query(ctx, `
		SELECT number, amount::text, due_date, status, tx_hash, paid_at
		FROM installments WHERE contract_id = $1 ORDER BY number`,
		contract.ID)
	if err != nil {
		return fmt.Errorf("failed to load installments: %w", err)
	}
	defer rows.Close()

	contract.Installments = contract.Installments[:0]
	for rows.Next() {
		var installment models.Installment
		var status string

		err := rows.Scan(
			&installment.Number,
			&installment.Amount,
			&installment.DueDate,
			&status,
			&installment.TxHash,
			&installment.PaidAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}
		installment.Status = models.InstallmentStatus(status)
		contract.Installments = append(contract.Installments, installment)
	}
	return rows.Err()
}

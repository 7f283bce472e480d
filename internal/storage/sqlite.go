package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bnpl/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Repository on an embedded SQLite file.
// Amounts are stored with 7-digit fractional precision to match the
// ledger's native representation.
type SQLiteRepository struct {
	db *sql.DB
}

// Fixed-width timestamp format so lexicographic ordering on the stored
// text matches chronological ordering
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	merchant_public_key TEXT,
	customer_public_key TEXT,
	total_amount DECIMAL(20,7),
	installments_count INTEGER,
	installment_amount DECIMAL(20,7),
	status TEXT DEFAULT 'active',
	customer_data TEXT,
	created_at TEXT
);

CREATE TABLE IF NOT EXISTS installments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	contract_id TEXT,
	number INTEGER,
	amount DECIMAL(20,7),
	due_date TEXT,
	status TEXT DEFAULT 'pending',
	tx_hash TEXT,
	paid_at TEXT,
	FOREIGN KEY (contract_id) REFERENCES contracts(id)
);
`

// NewSQLiteRepository opens (creating if needed) a SQLite database at path
// and ensures the schema exists
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer keeps the demo free of SQLITE_BUSY handling
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// CreateContract persists the contract and its installments in one transaction
func (r *SQLiteRepository) CreateContract(ctx context.Context, params CreateContractParams) (*models.Contract, error) {
	contract, err := buildContract(params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	customerDataJSON, err := json.Marshal(contract.CustomerData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer_data: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contracts (
			id, merchant_public_key, customer_public_key, total_amount,
			installments_count, installment_amount, status, customer_data, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ID,
		contract.MerchantPublicKey,
		contract.CustomerPublicKey,
		contract.TotalAmount,
		contract.InstallmentsCount,
		contract.InstallmentAmount,
		string(contract.Status),
		string(customerDataJSON),
		contract.CreatedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}

	for _, installment := range contract.Installments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO installments (contract_id, number, amount, due_date, status)
			VALUES (?, ?, ?, ?, ?)`,
			contract.ID,
			installment.Number,
			installment.Amount,
			installment.DueDate.Format(sqliteTimeFormat),
			string(installment.Status),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert installment %d: %w", installment.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contract: %w", err)
	}

	return contract, nil
}

// GetContract returns a contract joined with its ordered installments
func (r *SQLiteRepository) GetContract(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := r.scanContract(r.db.QueryRowContext(ctx, `
		SELECT id, merchant_public_key, customer_public_key, total_amount,
			installments_count, installment_amount, status, customer_data, created_at
		FROM contracts WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadInstallments(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// ListContracts returns all contracts with installments, newest first
func (r *SQLiteRepository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, merchant_public_key, customer_public_key, total_amount,
			installments_count, installment_amount, status, customer_data, created_at
		FROM contracts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract, err := r.scanContract(rows)
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
func (r *SQLiteRepository) RecordPayment(ctx context.Context, contractID string, installmentNumber int, txHash string) error {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM installments WHERE contract_id = ? AND number = ?`,
		contractID, installmentNumber,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load installment: %w", err)
	}
	if models.InstallmentStatus(status) == models.InstallmentStatusPaid {
		return ErrAlreadyPaid
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE installments
		SET status = ?, tx_hash = ?, paid_at = ?
		WHERE contract_id = ? AND number = ?`,
		string(models.InstallmentStatusPaid),
		txHash,
		time.Now().UTC().Format(sqliteTimeFormat),
		contractID,
		installmentNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *SQLiteRepository) scanContract(row scanner) (*models.Contract, error) {
	var contract models.Contract
	var status, customerDataJSON, createdAt string

	err := row.Scan(
		&contract.ID,
		&contract.MerchantPublicKey,
		&contract.CustomerPublicKey,
		&contract.TotalAmount,
		&contract.InstallmentsCount,
		&contract.InstallmentAmount,
		&status,
		&customerDataJSON,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	contract.Status = models.ContractStatus(status)
	if err := json.Unmarshal([]byte(customerDataJSON), &contract.CustomerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer_data: %w", err)
	}
	if contract.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &contract, nil
}

func (r *SQLiteRepository) loadInstallments(ctx context.Context, contract *models.Contract) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT number, amount, due_date, status, tx_hash, paid_at
		FROM installments WHERE contract_id = ? ORDER BY number`,
		contract.ID)
	if err != nil {
		return fmt.Errorf("failed to load installments: %w", err)
	}
	defer rows.Close()

	contract.Installments = contract.Installments[:0]
	for rows.Next() {
		var installment models.Installment
		var status, dueDate string
		var txHash, paidAt sql.NullString

		err := rows.Scan(&installment.Number, &installment.Amount, &dueDate, &status, &txHash, &paidAt)
		if err != nil {
			return fmt.Errorf("failed to scan installment: %w", err)
		}

		installment.Status = models.InstallmentStatus(status)
		if installment.DueDate, err = time.Parse(sqliteTimeFormat, dueDate); err != nil {
			return fmt.Errorf("failed to parse due_date: %w", err)
		}
		if txHash.Valid {
			installment.TxHash = &txHash.String
		}
		if paidAt.Valid {
			paidTime, err := time.Parse(sqliteTimeFormat, paidAt.String)
			if err != nil {
				return fmt.Errorf("failed to parse paid_at: %w", err)
			}
			installment.PaidAt = &paidTime
		}

		contract.Installments = append(contract.Installments, installment)
	}
	return rows.Err()
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bnpl/internal/models"
)

// runRepositoryTests exercises the Repository contract against any backend
func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("CreateContract_Schedule", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		before := time.Now().UTC()
		contract, err := repo.CreateContract(ctx, CreateContractParams{
			MerchantPublicKey: "GMERCHANT",
			CustomerPublicKey: "GCUSTOMER",
			TotalAmount:       "100",
			InstallmentsCount: 4,
			CustomerData:      map[string]interface{}{"name": "Ana"},
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		if contract.ID == "" {
			t.Error("Expected a generated contract id")
		}
		if contract.Status != models.ContractStatusActive {
			t.Errorf("Expected status active, got %s", contract.Status)
		}
		if contract.InstallmentAmount != "25.00" {
			t.Errorf("Expected installment amount 25.00, got %s", contract.InstallmentAmount)
		}
		if len(contract.Installments) != 4 {
			t.Fatalf("Expected 4 installments, got %d", len(contract.Installments))
		}

		for i, installment := range contract.Installments {
			number := i + 1
			if installment.Number != number {
				t.Errorf("Installment %d: expected number %d, got %d", i, number, installment.Number)
			}
			if installment.Amount != "25.00" {
				t.Errorf("Installment %d: expected amount 25.00, got %s", number, installment.Amount)
			}
			if installment.Status != models.InstallmentStatusPending {
				t.Errorf("Installment %d: expected pending, got %s", number, installment.Status)
			}
			if installment.TxHash != nil {
				t.Errorf("Installment %d: expected no tx hash", number)
			}

			wantDue := before.Add(time.Duration(number) * 30 * 24 * time.Hour)
			if diff := installment.DueDate.Sub(wantDue); diff < -time.Minute || diff > time.Minute {
				t.Errorf("Installment %d: due date %v too far from %v", number, installment.DueDate, wantDue)
			}
		}
	})

	t.Run("CreateContract_MissingFields", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		_, err := repo.CreateContract(ctx, CreateContractParams{InstallmentsCount: 3})
		if !errors.Is(err, ErrMissingFields) {
			t.Errorf("Expected ErrMissingFields for empty amount, got: %v", err)
		}

		_, err = repo.CreateContract(ctx, CreateContractParams{TotalAmount: "100"})
		if !errors.Is(err, ErrMissingFields) {
			t.Errorf("Expected ErrMissingFields for zero count, got: %v", err)
		}
	})

	t.Run("GetContract_RoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		created, err := repo.CreateContract(ctx, CreateContractParams{
			MerchantPublicKey: "GMERCHANT",
			CustomerPublicKey: "GCUSTOMER",
			TotalAmount:       "99.99",
			InstallmentsCount: 3,
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		got, err := repo.GetContract(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetContract: %v", err)
		}

		if got.TotalAmount != created.TotalAmount {
			t.Errorf("Expected total %s, got %s", created.TotalAmount, got.TotalAmount)
		}
		if got.InstallmentsCount != created.InstallmentsCount {
			t.Errorf("Expected count %d, got %d", created.InstallmentsCount, got.InstallmentsCount)
		}
		if len(got.Installments) != len(created.Installments) {
			t.Fatalf("Expected %d installments, got %d", len(created.Installments), len(got.Installments))
		}
		for i, installment := range got.Installments {
			if installment.Number != i+1 {
				t.Errorf("Expected installment %d at position %d, got %d", i+1, i, installment.Number)
			}
		}
	})

	t.Run("GetContract_NotFound", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		_, err := repo.GetContract(ctx, "BNPL-0-missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("ListContracts_NewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		first, err := repo.CreateContract(ctx, CreateContractParams{
			TotalAmount: "10", InstallmentsCount: 2,
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		// Creation-time ordering needs distinct timestamps
		time.Sleep(5 * time.Millisecond)

		second, err := repo.CreateContract(ctx, CreateContractParams{
			TotalAmount: "20", InstallmentsCount: 2,
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		contracts, err := repo.ListContracts(ctx)
		if err != nil {
			t.Fatalf("ListContracts: %v", err)
		}

		if len(contracts) != 2 {
			t.Fatalf("Expected 2 contracts, got %d", len(contracts))
		}
		if contracts[0].ID != second.ID || contracts[1].ID != first.ID {
			t.Errorf("Expected newest first [%s %s], got [%s %s]",
				second.ID, first.ID, contracts[0].ID, contracts[1].ID)
		}
	})

	t.Run("RecordPayment", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		contract, err := repo.CreateContract(ctx, CreateContractParams{
			TotalAmount: "100", InstallmentsCount: 2,
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		if err := repo.RecordPayment(ctx, contract.ID, 1, "HASH123"); err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}

		got, err := repo.GetContract(ctx, contract.ID)
		if err != nil {
			t.Fatalf("GetContract: %v", err)
		}

		paid := got.Installments[0]
		if paid.Status != models.InstallmentStatusPaid {
			t.Errorf("Expected status paid, got %s", paid.Status)
		}
		if paid.TxHash == nil || *paid.TxHash != "HASH123" {
			t.Errorf("Expected tx hash HASH123, got %v", paid.TxHash)
		}
		if paid.PaidAt == nil {
			t.Error("Expected paid_at to be set")
		}

		if got.Installments[1].Status != models.InstallmentStatusPending {
			t.Errorf("Installment 2 should stay pending, got %s", got.Installments[1].Status)
		}

		// Duplicate submission must be rejected, not overwritten
		err = repo.RecordPayment(ctx, contract.ID, 1, "HASH456")
		if !errors.Is(err, ErrAlreadyPaid) {
			t.Errorf("Expected ErrAlreadyPaid, got: %v", err)
		}

		got, err = repo.GetContract(ctx, contract.ID)
		if err != nil {
			t.Fatalf("GetContract: %v", err)
		}
		if *got.Installments[0].TxHash != "HASH123" {
			t.Errorf("Original tx hash overwritten: %s", *got.Installments[0].TxHash)
		}
	})

	t.Run("RecordPayment_NotFound", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		err := repo.RecordPayment(ctx, "BNPL-0-missing", 1, "HASH")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown contract, got: %v", err)
		}

		contract, err := repo.CreateContract(ctx, CreateContractParams{
			TotalAmount: "50", InstallmentsCount: 2,
		})
		if err != nil {
			t.Fatalf("CreateContract: %v", err)
		}

		err = repo.RecordPayment(ctx, contract.ID, 3, "HASH")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown installment, got: %v", err)
		}
		err = repo.RecordPayment(ctx, contract.ID, 0, "HASH")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for installment 0, got: %v", err)
		}
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		return NewMemoryRepository()
	})
}

func TestSQLiteRepository(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "bnpl.sqlite"))
		if err != nil {
			t.Fatalf("failed to open sqlite repository: %v", err)
		}
		return repo
	})
}

func TestMemoryRepository_CloneIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	contract, err := repo.CreateContract(ctx, CreateContractParams{
		TotalAmount: "100", InstallmentsCount: 2,
	})
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}

	// Mutating a returned aggregate must not touch stored state
	contract.Installments[0].Status = models.InstallmentStatusPaid
	contract.CustomerData["injected"] = true

	got, err := repo.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if got.Installments[0].Status != models.InstallmentStatusPending {
		t.Error("Stored installment mutated through returned copy")
	}
	if _, ok := got.CustomerData["injected"]; ok {
		t.Error("Stored customer data mutated through returned copy")
	}
}

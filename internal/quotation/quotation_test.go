package quotation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuote_ThreeOptions(t *testing.T) {
	engine := NewEngine("XLM")

	q, err := engine.Quote("100")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(q.Options) != 3 {
		t.Fatalf("Expected 3 options, got: %d", len(q.Options))
	}

	expected := []struct {
		count  int
		amount string
	}{
		{2, "50.00"},
		{3, "33.33"},
		{4, "25.00"},
	}

	for i, want := range expected {
		opt := q.Options[i]
		if opt.InstallmentsCount != want.count {
			t.Errorf("Option %d: expected count %d, got %d", i, want.count, opt.InstallmentsCount)
		}
		if opt.InstallmentAmount != want.amount {
			t.Errorf("Option %d: expected amount %s, got %s", i, want.amount, opt.InstallmentAmount)
		}
		if opt.TotalAmount != "100" {
			t.Errorf("Option %d: expected total 100, got %s", i, opt.TotalAmount)
		}
		if opt.FrequencyDays != 30 {
			t.Errorf("Option %d: expected frequency 30, got %d", i, opt.FrequencyDays)
		}
		if opt.InterestRate != "0.0000" {
			t.Errorf("Option %d: expected zero interest, got %s", i, opt.InterestRate)
		}
	}

	if q.Currency != "XLM" {
		t.Errorf("Expected currency XLM, got %s", q.Currency)
	}
}

func TestQuote_RoundingTolerance(t *testing.T) {
	engine := NewEngine("XLM")

	amounts := []string{"100", "99.99", "0.01", "1234.56", "333.33"}

	for _, amount := range amounts {
		q, err := engine.Quote(amount)
		if err != nil {
			t.Fatalf("Quote(%s): %v", amount, err)
		}

		total := decimal.RequireFromString(amount)
		for _, opt := range q.Options {
			per := decimal.RequireFromString(opt.InstallmentAmount)
			sum := per.Mul(decimal.NewFromInt(int64(opt.InstallmentsCount)))
			drift := sum.Sub(total).Abs()

			// One rounding unit per installment is the worst case
			limit := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(opt.InstallmentsCount)))
			if drift.GreaterThan(limit) {
				t.Errorf("Quote(%s) x%d: drift %s exceeds %s", amount, opt.InstallmentsCount, drift, limit)
			}
		}
	}
}

func TestQuote_InvalidAmounts(t *testing.T) {
	engine := NewEngine("XLM")

	cases := []string{"", "0", "-5", "abc", "-0.01"}

	for _, amount := range cases {
		_, err := engine.Quote(amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Quote(%q): expected ErrInvalidAmount, got: %v", amount, err)
		}
	}
}

func TestSplitAmount(t *testing.T) {
	got, err := SplitAmount("100", 4)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "25.00" {
		t.Errorf("Expected 25.00, got %s", got)
	}

	if _, err := SplitAmount("100", 0); err == nil {
		t.Error("Expected error for zero installments")
	}
	if _, err := SplitAmount("-1", 2); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got: %v", err)
	}
}

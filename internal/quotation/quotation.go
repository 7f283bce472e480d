// Package quotation computes BNPL installment plans for a purchase amount.
// The engine is pure: no storage, no ledger access, safe for concurrent use.
package quotation

import (
	"errors"
	"fmt"
	"time"

	"bnpl/internal/models"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when the requested amount is missing,
// non-numeric, or not strictly positive.
var ErrInvalidAmount = errors.New("valid amount required")

// installmentCounts is the fixed set of plans offered, in presentation order
var installmentCounts = []int{2, 3, 4}

const (
	frequencyDays = 30
	// Zero-interest demo product: the rate never varies with the plan
	interestRate = "0.0000"
)

// Engine generates quotation options for purchase amounts
type Engine struct {
	currency string
}

// NewEngine creates a quotation engine quoting in the given currency
func NewEngine(currency string) *Engine {
	return &Engine{currency: currency}
}

// Quote computes the installment plans for a raw amount string.
// Each option divides the amount by its installment count, rounded half-up
// to 2 decimal places. The last installment is not adjusted to absorb
// rounding drift, so the sum of installments may differ from the total by
// less than one rounding unit.
func (e *Engine) Quote(amount string) (*models.Quotation, error) {
	total, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	options := make([]models.QuotationOption, 0, len(installmentCounts))
	for _, count := range installmentCounts {
		per := total.DivRound(decimal.NewFromInt(int64(count)), 2)
		options = append(options, models.QuotationOption{
			InstallmentsCount: count,
			InstallmentAmount: per.StringFixed(2),
			TotalAmount:       amount,
			FrequencyDays:     frequencyDays,
			InterestRate:      interestRate,
			Description:       fmt.Sprintf("%dx de %s %s", count, per.StringFixed(2), e.currency),
		})
	}

	return &models.Quotation{
		OriginalAmount: amount,
		Options:        options,
		Currency:       e.currency,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// SplitAmount divides a total into per-installment amounts the same way
// Quote does. Used by contract creation so both agree on the math.
func SplitAmount(totalAmount string, installmentsCount int) (string, error) {
	total, err := parseAmount(totalAmount)
	if err != nil {
		return "", err
	}
	if installmentsCount <= 0 {
		return "", fmt.Errorf("%w: installments count must be positive", ErrInvalidAmount)
	}

	per := total.DivRound(decimal.NewFromInt(int64(installmentsCount)), 2)
	return per.StringFixed(2), nil
}

func parseAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

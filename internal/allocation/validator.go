package allocation

import (
	"strings"

	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// currencyPlaces is the minor-unit precision used for sum comparison
const currencyPlaces = 2

// Input is one candidate payee share as entered by the user. Amount arrives
// as a raw string because the upstream form does not pre-parse it.
type Input struct {
	Name   string
	Amount string
	Tag    string
}

// Validate normalizes candidate shares and checks that they sum to the
// transaction amount at currency precision. It is a pure function: on
// failure the caller's transaction is untouched.
//
// Normalization: names and tags are trimmed, amount strings that are empty
// or unparseable become zero. Validation compares round(sum, 2) against
// round(abs(total), 2); a mismatch returns AllocationMismatchError carrying
// both totals.
func Validate(total decimal.Decimal, inputs []Input) ([]domain.Allocation, error) {
	if len(inputs) == 0 {
		return nil, &domain.InvalidInputError{Field: "allocations", Reason: "at least one payee share is required"}
	}

	allocs := make([]domain.Allocation, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, &domain.InvalidInputError{Field: "name", Reason: "payee name is required"}
		}

		amount := parseAmount(in.Amount)
		if amount.IsNegative() {
			return nil, &domain.InvalidInputError{Field: "amount", Reason: "payee share cannot be negative"}
		}

		allocs = append(allocs, domain.Allocation{
			Name:   name,
			Amount: amount,
			Tag:    strings.TrimSpace(in.Tag),
		})
	}

	expected := total.Abs().Round(currencyPlaces)
	actual := domain.AllocationTotal(allocs).Round(currencyPlaces)

	if !actual.Equal(expected) {
		return nil, &domain.AllocationMismatchError{Expected: expected, Actual: actual}
	}

	return allocs, nil
}

// parseAmount coerces a raw amount string to a decimal. Empty or malformed
// input becomes zero so a half-filled split row surfaces as a sum mismatch
// rather than a hard parse error.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}

	return amount
}

package domain

import "github.com/shopspring/decimal"

// Allocation represents one payee's share of a split deposit
type Allocation struct {
	Name   string
	Amount decimal.Decimal
	Tag    string // optional program/grade/project label
}

// AllocationTotal sums a list of allocations
func AllocationTotal(allocs []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}

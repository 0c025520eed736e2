package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction represents the direction of money movement
type Direction string

// Transaction directions
const (
	Inbound  Direction = "inbound"  // deposit into a school account
	Outbound Direction = "outbound" // expense out of a school account
)

// TransactionStatus is the reconciliation status of a transaction, computed
// from field presence rather than stored
type TransactionStatus string

// Transaction statuses, in evaluation priority order
const (
	StatusNeedsSplit       TransactionStatus = "needs_split"
	StatusNeedsCategory    TransactionStatus = "needs_category"
	StatusNeedsProgram     TransactionStatus = "needs_program"
	StatusNeedsDescription TransactionStatus = "needs_description"
	StatusNeedsReceipt     TransactionStatus = "needs_receipt"
	StatusReady            TransactionStatus = "ready"
)

// AllocationType marks special split handling for a deposit
type AllocationType string

// AllocationTypeLEA marks a lump institutional/government deposit (e.g. an
// ESA tranche paid at the LEA level) that is exempt from per-payee splitting.
const AllocationTypeLEA AllocationType = "lea"

// Transaction represents one record from the bank/card/ESA activity feed.
// The fixed feed facts never change after ingestion; only the categorization
// and split fields are mutated, and only through the reconciler.
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal // signed; positive = inbound, negative = outbound
	Direction   Direction
	Account     string // source account the feed line came from
	Description string // raw feed description
	Reference   string // originating family or vendor reference

	GLAccount       string // ledger category id, empty until categorized
	ProgramCode     string
	DescriptionNote string
	ReceiptAttached bool

	RequiresSplit    bool
	SplitAllocations []Allocation
	AllocationType   AllocationType

	Reconciled bool
}

// Status computes the reconciliation status from field presence. The checks
// run in a fixed priority order: a transaction that still requires splitting
// reports needs_split even if other fields are also missing.
func (t Transaction) Status() TransactionStatus {
	switch {
	case t.RequiresSplit:
		return StatusNeedsSplit
	case t.GLAccount == "":
		return StatusNeedsCategory
	case t.ProgramCode == "":
		return StatusNeedsProgram
	case t.DescriptionNote == "":
		return StatusNeedsDescription
	case !t.ReceiptAttached:
		return StatusNeedsReceipt
	default:
		return StatusReady
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus is the review status of a statement line
type LineStatus string

// Statement line statuses. Lines start in needs_review; matched and flagged
// are both reachable from needs_review and from each other.
const (
	LineNeedsReview LineStatus = "needs_review"
	LineMatched     LineStatus = "matched"
	LineFlagged     LineStatus = "flagged"
)

// ValidLineStatus reports whether s is one of the known line statuses
func ValidLineStatus(s LineStatus) bool {
	switch s {
	case LineNeedsReview, LineMatched, LineFlagged:
		return true
	}
	return false
}

// CostCenter tags a statement line with the area of the school it belongs to
type CostCenter string

// Cost centers available for statement line tagging
const (
	CostCenterInstruction CostCenter = "instruction"
	CostCenterFacilities  CostCenter = "facilities"
	CostCenterOperations  CostCenter = "operations"
	CostCenterEnrichment  CostCenter = "enrichment"
	CostCenterAdmin       CostCenter = "admin"
)

// ValidCostCenter reports whether cc is one of the known cost centers
func ValidCostCenter(cc CostCenter) bool {
	switch cc {
	case CostCenterInstruction, CostCenterFacilities, CostCenterOperations, CostCenterEnrichment, CostCenterAdmin:
		return true
	}
	return false
}

// StatementLine represents one line within an uploaded account statement.
// Cost center and note are advisory metadata requested by month-close review;
// no invariant couples them to status transitions.
type StatementLine struct {
	ID              string
	StatementID     string
	Date            time.Time
	Description     string
	Amount          decimal.Decimal
	CostCenter      CostCenter // empty until tagged
	Note            string
	Status          LineStatus
	ReceiptAttached bool
}

// Statement represents one uploaded account statement and its lines
type Statement struct {
	ID      string
	Account string // account the statement covers
	Period  string // e.g. "2026-02"
	Lines   []StatementLine
}

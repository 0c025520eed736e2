package service

import (
	"fmt"

	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Summary aggregates the activity feed for the month-close view
type Summary struct {
	ByStatus           map[domain.TransactionStatus]int
	Reconciled         int
	TotalInbound       decimal.Decimal
	TotalOutbound      decimal.Decimal
	LinesNeedingReview int
}

// Feed is the full activity payload the review screens consume
type Feed struct {
	Transactions []domain.Transaction
	Statements   []domain.Statement
	Summary      Summary
}

// CloseReadiness reports whether the period is safe to close and, when it is
// not, which items block it. It is advisory: nothing here prevents further
// mutation.
type CloseReadiness struct {
	Ready               bool
	OpenSteps           []string
	PendingTransactions []string
	LinesNeedingReview  []string
}

// ActivityService composes the stores into the feed and close-readiness
// aggregates
type ActivityService struct {
	txnStore  domain.TransactionStore
	stmtStore domain.StatementStore
	checklist *checklist.Checklist
}

// NewActivityService creates a new ActivityService
func NewActivityService(txnStore domain.TransactionStore, stmtStore domain.StatementStore, cl *checklist.Checklist) *ActivityService {
	return &ActivityService{
		txnStore:  txnStore,
		stmtStore: stmtStore,
		checklist: cl,
	}
}

// ActivityFeed returns every transaction and statement with the computed
// summary
func (s *ActivityService) ActivityFeed() (Feed, error) {
	txns, err := s.txnStore.ListTransactions()
	if err != nil {
		return Feed{}, fmt.Errorf("listing transactions: %w", err)
	}

	stmts, err := s.stmtStore.ListStatements()
	if err != nil {
		return Feed{}, fmt.Errorf("listing statements: %w", err)
	}

	return Feed{
		Transactions: txns,
		Statements:   stmts,
		Summary:      summarize(txns, stmts),
	}, nil
}

// CloseReadiness evaluates the close gate: every checklist step done, no
// transaction short of ready, no statement line left in needs_review
func (s *ActivityService) CloseReadiness() (CloseReadiness, error) {
	steps, err := s.checklist.Steps()
	if err != nil {
		return CloseReadiness{}, fmt.Errorf("listing checklist steps: %w", err)
	}

	txns, err := s.txnStore.ListTransactions()
	if err != nil {
		return CloseReadiness{}, fmt.Errorf("listing transactions: %w", err)
	}

	stmts, err := s.stmtStore.ListStatements()
	if err != nil {
		return CloseReadiness{}, fmt.Errorf("listing statements: %w", err)
	}

	readiness := CloseReadiness{}

	for _, step := range steps {
		if !step.Done {
			readiness.OpenSteps = append(readiness.OpenSteps, step.ID)
		}
	}

	for _, txn := range txns {
		if txn.Reconciled {
			continue
		}
		if txn.Status() != domain.StatusReady {
			readiness.PendingTransactions = append(readiness.PendingTransactions, txn.ID)
		}
	}

	for _, stmt := range stmts {
		for _, line := range stmt.Lines {
			if line.Status == domain.LineNeedsReview {
				readiness.LinesNeedingReview = append(readiness.LinesNeedingReview, line.ID)
			}
		}
	}

	readiness.Ready = len(readiness.OpenSteps) == 0 &&
		len(readiness.PendingTransactions) == 0 &&
		len(readiness.LinesNeedingReview) == 0

	return readiness, nil
}

func summarize(txns []domain.Transaction, stmts []domain.Statement) Summary {
	summary := Summary{
		ByStatus:      make(map[domain.TransactionStatus]int),
		TotalInbound:  decimal.Zero,
		TotalOutbound: decimal.Zero,
	}

	for _, txn := range txns {
		if txn.Reconciled {
			summary.Reconciled++
		} else {
			summary.ByStatus[txn.Status()]++
		}

		if txn.Direction == domain.Inbound {
			summary.TotalInbound = summary.TotalInbound.Add(txn.Amount)
		} else {
			summary.TotalOutbound = summary.TotalOutbound.Add(txn.Amount.Abs())
		}
	}

	for _, stmt := range stmts {
		for _, line := range stmt.Lines {
			if line.Status == domain.LineNeedsReview {
				summary.LinesNeedingReview++
			}
		}
	}

	return summary
}

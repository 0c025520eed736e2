package service_test

import (
	"fmt"
	"testing"

	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/service"
	"github.com/shopspring/decimal"
)

type mockTransactionStore struct {
	txns []domain.Transaction
}

func (s *mockTransactionStore) GetTransaction(id string) (domain.Transaction, error) {
	for _, txn := range s.txns {
		if txn.ID == id {
			return txn, nil
		}
	}
	return domain.Transaction{}, fmt.Errorf("transaction %q: %w", id, domain.ErrNotFound)
}

func (s *mockTransactionStore) ListTransactions() ([]domain.Transaction, error) {
	return s.txns, nil
}

func (s *mockTransactionStore) PutTransaction(txn domain.Transaction) error {
	for i := range s.txns {
		if s.txns[i].ID == txn.ID {
			s.txns[i] = txn
			return nil
		}
	}
	s.txns = append(s.txns, txn)
	return nil
}

type mockStatementStore struct {
	stmts []domain.Statement
}

func (s *mockStatementStore) GetStatement(id string) (domain.Statement, error) {
	for _, stmt := range s.stmts {
		if stmt.ID == id {
			return stmt, nil
		}
	}
	return domain.Statement{}, fmt.Errorf("statement %q: %w", id, domain.ErrNotFound)
}

func (s *mockStatementStore) ListStatements() ([]domain.Statement, error) {
	return s.stmts, nil
}

func (s *mockStatementStore) PutStatement(stmt domain.Statement) error {
	for i := range s.stmts {
		if s.stmts[i].ID == stmt.ID {
			s.stmts[i] = stmt
			return nil
		}
	}
	s.stmts = append(s.stmts, stmt)
	return nil
}

type mockChecklistStore struct {
	steps []domain.ChecklistStep
}

func (s *mockChecklistStore) GetStep(id string) (domain.ChecklistStep, error) {
	for _, step := range s.steps {
		if step.ID == id {
			return step, nil
		}
	}
	return domain.ChecklistStep{}, fmt.Errorf("checklist step %q: %w", id, domain.ErrNotFound)
}

func (s *mockChecklistStore) ListSteps() ([]domain.ChecklistStep, error) {
	return s.steps, nil
}

func (s *mockChecklistStore) PutStep(step domain.ChecklistStep) error {
	for i := range s.steps {
		if s.steps[i].ID == step.ID {
			s.steps[i] = step
			return nil
		}
	}
	s.steps = append(s.steps, step)
	return nil
}

func readyTransaction(id string) domain.Transaction {
	return domain.Transaction{
		ID:              id,
		Amount:          decimal.NewFromInt(500),
		Direction:       domain.Inbound,
		GLAccount:       "rev_tuition",
		ProgramCode:     "full_time",
		DescriptionNote: "Payment received",
		ReceiptAttached: true,
	}
}

func TestActivityFeed_Summary(t *testing.T) {
	txnStore := &mockTransactionStore{
		txns: []domain.Transaction{
			{ID: "t1", Amount: decimal.NewFromInt(1166), Direction: domain.Inbound, RequiresSplit: true},
			{ID: "t2", Amount: decimal.NewFromFloat(-1200.50), Direction: domain.Outbound},
			readyTransaction("t3"),
			func() domain.Transaction {
				txn := readyTransaction("t4")
				txn.Reconciled = true
				return txn
			}(),
		},
	}
	stmtStore := &mockStatementStore{
		stmts: []domain.Statement{
			{ID: "s1", Lines: []domain.StatementLine{
				{ID: "l1", Status: domain.LineNeedsReview},
				{ID: "l2", Status: domain.LineMatched},
			}},
		},
	}
	svc := service.NewActivityService(txnStore, stmtStore, checklist.NewChecklist(&mockChecklistStore{}))

	feed, err := svc.ActivityFeed()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(feed.Transactions) != 4 || len(feed.Statements) != 1 {
		t.Fatalf("Expected 4 transactions and 1 statement, got %d/%d", len(feed.Transactions), len(feed.Statements))
	}

	summary := feed.Summary

	if summary.ByStatus[domain.StatusNeedsSplit] != 1 {
		t.Errorf("Expected 1 needs_split, got %d", summary.ByStatus[domain.StatusNeedsSplit])
	}
	if summary.ByStatus[domain.StatusNeedsCategory] != 1 {
		t.Errorf("Expected 1 needs_category, got %d", summary.ByStatus[domain.StatusNeedsCategory])
	}
	if summary.ByStatus[domain.StatusReady] != 1 {
		t.Errorf("Expected 1 ready, got %d", summary.ByStatus[domain.StatusReady])
	}
	if summary.Reconciled != 1 {
		t.Errorf("Expected 1 reconciled, got %d", summary.Reconciled)
	}

	// t1 + t3; the reconciled t4 still counts toward totals.
	wantInbound := decimal.NewFromInt(1166 + 500 + 500)
	if !summary.TotalInbound.Equal(wantInbound) {
		t.Errorf("Expected total inbound %s, got %s", wantInbound, summary.TotalInbound)
	}

	if !summary.TotalOutbound.Equal(decimal.NewFromFloat(1200.50)) {
		t.Errorf("Expected total outbound 1200.50, got %s", summary.TotalOutbound)
	}

	if summary.LinesNeedingReview != 1 {
		t.Errorf("Expected 1 line needing review, got %d", summary.LinesNeedingReview)
	}
}

func TestCloseReadiness(t *testing.T) {
	txnStore := &mockTransactionStore{txns: []domain.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(1166), Direction: domain.Inbound, RequiresSplit: true},
	}}
	stmtStore := &mockStatementStore{stmts: []domain.Statement{
		{ID: "s1", Lines: []domain.StatementLine{{ID: "l1", Status: domain.LineNeedsReview}}},
	}}
	clStore := &mockChecklistStore{steps: []domain.ChecklistStep{
		{ID: "categorize"},
		{ID: "reports", Done: true},
	}}
	svc := service.NewActivityService(txnStore, stmtStore, checklist.NewChecklist(clStore))

	readiness, err := svc.CloseReadiness()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if readiness.Ready {
		t.Error("Expected the period not to be ready to close")
	}
	if len(readiness.OpenSteps) != 1 || readiness.OpenSteps[0] != "categorize" {
		t.Errorf("Expected open step categorize, got %v", readiness.OpenSteps)
	}
	if len(readiness.PendingTransactions) != 1 || readiness.PendingTransactions[0] != "t1" {
		t.Errorf("Expected pending transaction t1, got %v", readiness.PendingTransactions)
	}
	if len(readiness.LinesNeedingReview) != 1 || readiness.LinesNeedingReview[0] != "l1" {
		t.Errorf("Expected line l1 needing review, got %v", readiness.LinesNeedingReview)
	}

	// Resolve every blocker.
	txnStore.txns[0] = readyTransaction("t1")
	stmtStore.stmts[0].Lines[0].Status = domain.LineMatched
	clStore.steps[0].Done = true

	readiness, err = svc.CloseReadiness()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !readiness.Ready {
		t.Errorf("Expected the period to be ready to close, got %+v", readiness)
	}
}

package reconciler_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/microschoolhq/finance-engine/internal/allocation"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/reconciler"
	"github.com/microschoolhq/finance-engine/internal/suggest"
	"github.com/shopspring/decimal"
)

// mockTransactionStore is a minimal in-memory TransactionStore for tests
type mockTransactionStore struct {
	txns map[string]domain.Transaction
}

func newMockTransactionStore(txns ...domain.Transaction) *mockTransactionStore {
	s := &mockTransactionStore{txns: make(map[string]domain.Transaction)}
	for _, txn := range txns {
		s.txns[txn.ID] = txn
	}
	return s
}

func (s *mockTransactionStore) GetTransaction(id string) (domain.Transaction, error) {
	txn, ok := s.txns[id]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %q: %w", id, domain.ErrNotFound)
	}
	return txn, nil
}

func (s *mockTransactionStore) ListTransactions() ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for _, txn := range s.txns {
		txns = append(txns, txn)
	}
	return txns, nil
}

func (s *mockTransactionStore) PutTransaction(txn domain.Transaction) error {
	s.txns[txn.ID] = txn
	return nil
}

func newReconciler(txns ...domain.Transaction) (*reconciler.TransactionReconciler, *mockTransactionStore) {
	store := newMockTransactionStore(txns...)
	return reconciler.NewTransactionReconciler(store, suggest.NewDefaultSuggester()), store
}

func TestStatusPriorityOrder(t *testing.T) {
	// A transaction missing everything reports needs_split first; resolving
	// each requirement surfaces the next one in the fixed order.
	txn := domain.Transaction{
		ID:            "t1",
		Amount:        decimal.NewFromInt(1166),
		Direction:     domain.Inbound,
		RequiresSplit: true,
	}

	if got := txn.Status(); got != domain.StatusNeedsSplit {
		t.Errorf("Expected needs_split, got %s", got)
	}

	txn.RequiresSplit = false
	if got := txn.Status(); got != domain.StatusNeedsCategory {
		t.Errorf("Expected needs_category, got %s", got)
	}

	txn.GLAccount = "rev_tuition"
	if got := txn.Status(); got != domain.StatusNeedsProgram {
		t.Errorf("Expected needs_program, got %s", got)
	}

	txn.ProgramCode = "full_time"
	if got := txn.Status(); got != domain.StatusNeedsDescription {
		t.Errorf("Expected needs_description, got %s", got)
	}

	txn.DescriptionNote = "Payment received"
	if got := txn.Status(); got != domain.StatusNeedsReceipt {
		t.Errorf("Expected needs_receipt, got %s", got)
	}

	txn.ReceiptAttached = true
	if got := txn.Status(); got != domain.StatusReady {
		t.Errorf("Expected ready, got %s", got)
	}
}

func TestSplit_Success(t *testing.T) {
	rec, store := newReconciler(domain.Transaction{
		ID:            "t1",
		Amount:        decimal.NewFromInt(1166),
		Direction:     domain.Inbound,
		Description:   "ClassWallet tranche 2211",
		RequiresSplit: true,
	})

	txn, err := rec.Split("t1", []allocation.Input{
		{Name: "Carlos", Amount: "583"},
		{Name: "Sofia", Amount: "583"},
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if txn.RequiresSplit {
		t.Error("Expected requiresSplit to be cleared after a successful split")
	}

	if got := txn.Status(); got != domain.StatusNeedsCategory {
		t.Errorf("Expected status needs_category after split, got %s", got)
	}

	if len(txn.SplitAllocations) != 2 {
		t.Fatalf("Expected 2 allocations, got %d", len(txn.SplitAllocations))
	}

	sum := domain.AllocationTotal(txn.SplitAllocations)
	if !sum.Equal(txn.Amount.Abs()) {
		t.Errorf("Expected allocations to sum to %s, got %s", txn.Amount.Abs(), sum)
	}

	stored, _ := store.GetTransaction("t1")
	if stored.RequiresSplit {
		t.Error("Expected the stored transaction to be updated")
	}
}

func TestSplit_MismatchLeavesStateUntouched(t *testing.T) {
	rec, store := newReconciler(domain.Transaction{
		ID:            "t1",
		Amount:        decimal.NewFromInt(1166),
		Direction:     domain.Inbound,
		RequiresSplit: true,
	})

	_, err := rec.Split("t1", []allocation.Input{
		{Name: "Carlos", Amount: "500"},
		{Name: "Sofia", Amount: "500"},
	})

	var mismatch *domain.AllocationMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected AllocationMismatchError, got %v", err)
	}

	if !mismatch.Expected.Equal(decimal.NewFromInt(1166)) || !mismatch.Actual.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected mismatch 1166/1000, got %s/%s", mismatch.Expected, mismatch.Actual)
	}

	stored, _ := store.GetTransaction("t1")
	if !stored.RequiresSplit {
		t.Error("Expected requiresSplit to remain true after a failed split")
	}
	if len(stored.SplitAllocations) != 0 {
		t.Errorf("Expected no allocations recorded, got %d", len(stored.SplitAllocations))
	}
}

func TestMarkInstitutionalFunding(t *testing.T) {
	rec, _ := newReconciler(domain.Transaction{
		ID:            "t1",
		Amount:        decimal.NewFromInt(9400),
		Direction:     domain.Inbound,
		Description:   "State ESA quarterly disbursement",
		RequiresSplit: true,
	})

	txn, err := rec.MarkInstitutionalFunding("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if txn.RequiresSplit {
		t.Error("Expected requiresSplit to be cleared")
	}

	if txn.AllocationType != domain.AllocationTypeLEA {
		t.Errorf("Expected allocation type lea, got %q", txn.AllocationType)
	}

	if len(txn.SplitAllocations) != 0 {
		t.Error("Expected no allocations on the exemption path")
	}
}

func TestMarkCategorized(t *testing.T) {
	rec, _ := newReconciler(domain.Transaction{
		ID:          "t1",
		Amount:      decimal.NewFromInt(500),
		Direction:   domain.Inbound,
		Description: "VELA grant installment",
	})

	// Explicit selection wins.
	txn, err := rec.MarkCategorized("t1", "rev_donations")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if txn.GLAccount != "rev_donations" {
		t.Errorf("Expected rev_donations, got %q", txn.GLAccount)
	}

	// Empty selection falls back to the rule engine's pick.
	txn, err = rec.MarkCategorized("t1", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if txn.GLAccount != "rev_grants" {
		t.Errorf("Expected suggested rev_grants, got %q", txn.GLAccount)
	}
}

func TestApplySuggestions_ReportsChanges(t *testing.T) {
	rec, _ := newReconciler(domain.Transaction{
		ID:          "t1",
		Amount:      decimal.NewFromFloat(-1200.00),
		Direction:   domain.Outbound,
		Description: "February rent - Oak Hall",
	})

	txn, changed, err := rec.ApplySuggestions("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !changed {
		t.Error("Expected the first pass to report a change")
	}
	if txn.GLAccount != "exp_facilities" {
		t.Errorf("Expected exp_facilities, got %q", txn.GLAccount)
	}
	if txn.DescriptionNote != "Expense paid: February rent - Oak Hall" {
		t.Errorf("Unexpected note: %q", txn.DescriptionNote)
	}

	// Second pass is a no-op.
	again, changed, err := rec.ApplySuggestions("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if changed {
		t.Error("Expected the second pass to report no change")
	}
	if again.GLAccount != txn.GLAccount || again.ProgramCode != txn.ProgramCode || again.DescriptionNote != txn.DescriptionNote {
		t.Error("Expected the second pass to leave the transaction as-is")
	}
}

func TestApplySuggestionsBulk(t *testing.T) {
	rec, _ := newReconciler(
		domain.Transaction{ID: "t1", Direction: domain.Inbound, Description: "Tuition payment"},
		domain.Transaction{
			ID: "t2", Direction: domain.Inbound, Description: "Tuition payment",
			GLAccount: "rev_tuition", ProgramCode: "full_time", DescriptionNote: "already set",
		},
	)

	updated, err := rec.ApplySuggestionsBulk([]string{"t1", "t2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if updated != 1 {
		t.Errorf("Expected 1 updated transaction, got %d", updated)
	}
}

func TestAttachReceipt_Idempotent(t *testing.T) {
	rec, _ := newReconciler(domain.Transaction{ID: "t1", Direction: domain.Inbound})

	txn, err := rec.AttachReceipt("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !txn.ReceiptAttached {
		t.Error("Expected receipt to be attached")
	}

	txn, err = rec.AttachReceipt("t1")
	if err != nil {
		t.Fatalf("Unexpected error on repeat attach: %v", err)
	}
	if !txn.ReceiptAttached {
		t.Error("Expected receipt to stay attached")
	}
}

func TestReconcile_Gating(t *testing.T) {
	rec, store := newReconciler(domain.Transaction{
		ID:          "t1",
		Direction:   domain.Inbound,
		GLAccount:   "rev_tuition",
		ProgramCode: "full_time",
	})

	_, err := rec.Reconcile("t1")

	var notReady *domain.NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("Expected NotReadyError, got %v", err)
	}
	if notReady.Status != domain.StatusNeedsDescription {
		t.Errorf("Expected the error to name needs_description, got %s", notReady.Status)
	}

	stored, _ := store.GetTransaction("t1")
	if stored.Reconciled {
		t.Error("Expected a failed reconcile to leave the transaction unreconciled")
	}

	// Complete the record, then reconcile.
	stored.DescriptionNote = "Payment received: tuition"
	stored.ReceiptAttached = true
	if err := store.PutTransaction(stored); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	txn, err := rec.Reconcile("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !txn.Reconciled {
		t.Error("Expected the transaction to be reconciled")
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	rec, _ := newReconciler()

	ops := map[string]func() error{
		"MarkCategorized":          func() error { _, err := rec.MarkCategorized("ghost", ""); return err },
		"Split":                    func() error { _, err := rec.Split("ghost", nil); return err },
		"MarkInstitutionalFunding": func() error { _, err := rec.MarkInstitutionalFunding("ghost"); return err },
		"ApplySuggestions":         func() error { _, _, err := rec.ApplySuggestions("ghost"); return err },
		"AttachReceipt":            func() error { _, err := rec.AttachReceipt("ghost"); return err },
		"Reconcile":                func() error { _, err := rec.Reconcile("ghost"); return err },
	}

	for name, op := range ops {
		if err := op(); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

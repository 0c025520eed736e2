package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/repository"
	"github.com/shopspring/decimal"
)

func TestMemoryStore_TransactionRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()

	txn := domain.Transaction{
		ID:        "t1",
		Date:      time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(1166),
		Direction: domain.Inbound,
		SplitAllocations: []domain.Allocation{
			{Name: "Carlos", Amount: decimal.NewFromInt(583)},
			{Name: "Sofia", Amount: decimal.NewFromInt(583)},
		},
	}

	if err := store.PutTransaction(txn); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.GetTransaction("t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got.ID != "t1" || len(got.SplitAllocations) != 2 {
		t.Errorf("Unexpected stored transaction: %+v", got)
	}

	// Mutating the returned copy must not touch stored state.
	got.SplitAllocations[0].Name = "changed"
	again, _ := store.GetTransaction("t1")
	if again.SplitAllocations[0].Name != "Carlos" {
		t.Error("Expected stored allocations to be isolated from caller mutation")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := repository.NewMemoryStore()

	if _, err := store.GetTransaction("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for transaction, got %v", err)
	}
	if _, err := store.GetStatement("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for statement, got %v", err)
	}
	if _, err := store.GetStep("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for checklist step, got %v", err)
	}
	if _, err := store.GetOpportunity("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for opportunity, got %v", err)
	}
}

func TestMemoryStore_ListTransactionsOrder(t *testing.T) {
	store := repository.NewMemoryStore()

	feb5 := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	feb3 := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	_ = store.PutTransaction(domain.Transaction{ID: "b", Date: feb5})
	_ = store.PutTransaction(domain.Transaction{ID: "c", Date: feb3})
	_ = store.PutTransaction(domain.Transaction{ID: "a", Date: feb3})

	txns, err := store.ListTransactions()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"a", "c", "b"} // date asc, id asc within a day
	for i, id := range want {
		if txns[i].ID != id {
			t.Errorf("Expected transaction %d to be %s, got %s", i, id, txns[i].ID)
		}
	}
}

func TestMemoryStore_ChecklistKeepsSeededOrder(t *testing.T) {
	store := repository.NewMemoryStore()

	_ = store.PutStep(domain.ChecklistStep{ID: "categorize"})
	_ = store.PutStep(domain.ChecklistStep{ID: "split"})
	_ = store.PutStep(domain.ChecklistStep{ID: "reports"})

	// Updating a step in place must not reorder it.
	_ = store.PutStep(domain.ChecklistStep{ID: "split", Done: true})

	steps, err := store.ListSteps()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"categorize", "split", "reports"}
	for i, id := range want {
		if steps[i].ID != id {
			t.Errorf("Expected step %d to be %s, got %s", i, id, steps[i].ID)
		}
	}

	if !steps[1].Done {
		t.Error("Expected the split step to be updated in place")
	}
}

func TestMemoryStore_Goal(t *testing.T) {
	store := repository.NewMemoryStore()

	goal, err := store.Goal()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !goal.IsZero() {
		t.Errorf("Expected zero initial goal, got %s", goal)
	}

	if err := store.SetGoal(decimal.NewFromInt(150000)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	goal, _ = store.Goal()
	if !goal.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("Expected goal 150000, got %s", goal)
	}
}

package reconciler_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/reconciler"
	"github.com/shopspring/decimal"
)

type mockStatementStore struct {
	stmts map[string]domain.Statement
}

func newMockStatementStore(stmts ...domain.Statement) *mockStatementStore {
	s := &mockStatementStore{stmts: make(map[string]domain.Statement)}
	for _, stmt := range stmts {
		s.stmts[stmt.ID] = stmt
	}
	return s
}

func (s *mockStatementStore) GetStatement(id string) (domain.Statement, error) {
	stmt, ok := s.stmts[id]
	if !ok {
		return domain.Statement{}, fmt.Errorf("statement %q: %w", id, domain.ErrNotFound)
	}
	return stmt, nil
}

func (s *mockStatementStore) ListStatements() ([]domain.Statement, error) {
	var stmts []domain.Statement
	for _, stmt := range s.stmts {
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (s *mockStatementStore) PutStatement(stmt domain.Statement) error {
	s.stmts[stmt.ID] = stmt
	return nil
}

func testStatement() domain.Statement {
	return domain.Statement{
		ID:      "stmt-feb",
		Account: "operating-checking",
		Period:  "2026-02",
		Lines: []domain.StatementLine{
			{
				ID:          "l1",
				StatementID: "stmt-feb",
				Description: "Check #1041",
				Amount:      decimal.NewFromFloat(-89.99),
				Status:      domain.LineNeedsReview,
			},
		},
	}
}

func statusPtr(s domain.LineStatus) *domain.LineStatus { return &s }

func costCenterPtr(c domain.CostCenter) *domain.CostCenter { return &c }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestUpdateLine_StatusMovesFreely(t *testing.T) {
	store := newMockStatementStore(testStatement())
	rec := reconciler.NewStatementReconciler(store)

	// needs_review -> flagged -> matched -> flagged: no terminal trap.
	transitions := []domain.LineStatus{domain.LineFlagged, domain.LineMatched, domain.LineFlagged}

	for _, next := range transitions {
		stmt, err := rec.UpdateLine("stmt-feb", "l1", reconciler.LineUpdate{Status: statusPtr(next)})
		if err != nil {
			t.Fatalf("Unexpected error moving to %s: %v", next, err)
		}
		if stmt.Lines[0].Status != next {
			t.Errorf("Expected status %s, got %s", next, stmt.Lines[0].Status)
		}
	}
}

func TestUpdateLine_AdvisoryMetadata(t *testing.T) {
	store := newMockStatementStore(testStatement())
	rec := reconciler.NewStatementReconciler(store)

	stmt, err := rec.UpdateLine("stmt-feb", "l1", reconciler.LineUpdate{
		CostCenter:      costCenterPtr(domain.CostCenterFacilities),
		Note:            strPtr("  pest control invoice  "),
		ReceiptAttached: boolPtr(true),
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	line := stmt.Lines[0]
	if line.CostCenter != domain.CostCenterFacilities {
		t.Errorf("Expected cost center facilities, got %q", line.CostCenter)
	}
	if line.Note != "pest control invoice" {
		t.Errorf("Expected trimmed note, got %q", line.Note)
	}
	if !line.ReceiptAttached {
		t.Error("Expected receipt attached")
	}

	// Metadata never touches status.
	if line.Status != domain.LineNeedsReview {
		t.Errorf("Expected status to stay needs_review, got %s", line.Status)
	}
}

func TestUpdateLine_RejectsInvalidValues(t *testing.T) {
	store := newMockStatementStore(testStatement())
	rec := reconciler.NewStatementReconciler(store)

	_, err := rec.UpdateLine("stmt-feb", "l1", reconciler.LineUpdate{Status: statusPtr("archived")})
	var invalid *domain.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidInputError for unknown status, got %v", err)
	}

	_, err = rec.UpdateLine("stmt-feb", "l1", reconciler.LineUpdate{CostCenter: costCenterPtr("cafeteria")})
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidInputError for unknown cost center, got %v", err)
	}

	stored, _ := store.GetStatement("stmt-feb")
	if stored.Lines[0].Status != domain.LineNeedsReview || stored.Lines[0].CostCenter != "" {
		t.Error("Expected failed updates to leave the line untouched")
	}
}

func TestUpdateLine_NotFound(t *testing.T) {
	store := newMockStatementStore(testStatement())
	rec := reconciler.NewStatementReconciler(store)

	if _, err := rec.UpdateLine("ghost", "l1", reconciler.LineUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown statement, got %v", err)
	}

	if _, err := rec.UpdateLine("stmt-feb", "ghost", reconciler.LineUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown line, got %v", err)
	}
}

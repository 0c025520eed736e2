package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryStore is the in-memory implementation of every engine store. The
// engine itself is synchronous; the mutex only guards concurrent reads from
// the HTTP layer against a writer.
type MemoryStore struct {
	mu    sync.RWMutex
	txns  map[string]domain.Transaction
	stmts map[string]domain.Statement
	steps []domain.ChecklistStep
	opps  map[string]domain.FundraisingOpportunity
	goal  decimal.Decimal
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txns:  make(map[string]domain.Transaction),
		stmts: make(map[string]domain.Statement),
		opps:  make(map[string]domain.FundraisingOpportunity),
		goal:  decimal.Zero,
	}
}

// GetTransaction implements domain.TransactionStore
func (s *MemoryStore) GetTransaction(id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.txns[id]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %q: %w", id, domain.ErrNotFound)
	}
	return copyTransaction(txn), nil
}

// ListTransactions implements domain.TransactionStore, ordered by date then id
func (s *MemoryStore) ListTransactions() ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns := make([]domain.Transaction, 0, len(s.txns))
	for _, txn := range s.txns {
		txns = append(txns, copyTransaction(txn))
	}

	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})

	return txns, nil
}

// PutTransaction implements domain.TransactionStore
func (s *MemoryStore) PutTransaction(txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns[txn.ID] = copyTransaction(txn)
	return nil
}

// GetStatement implements domain.StatementStore
func (s *MemoryStore) GetStatement(id string) (domain.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stmt, ok := s.stmts[id]
	if !ok {
		return domain.Statement{}, fmt.Errorf("statement %q: %w", id, domain.ErrNotFound)
	}
	return copyStatement(stmt), nil
}

// ListStatements implements domain.StatementStore, ordered by id
func (s *MemoryStore) ListStatements() ([]domain.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stmts := make([]domain.Statement, 0, len(s.stmts))
	for _, stmt := range s.stmts {
		stmts = append(stmts, copyStatement(stmt))
	}

	sort.Slice(stmts, func(i, j int) bool { return stmts[i].ID < stmts[j].ID })

	return stmts, nil
}

// PutStatement implements domain.StatementStore
func (s *MemoryStore) PutStatement(stmt domain.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stmts[stmt.ID] = copyStatement(stmt)
	return nil
}

// GetStep implements domain.ChecklistStore
func (s *MemoryStore) GetStep(id string) (domain.ChecklistStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, step := range s.steps {
		if step.ID == id {
			return step, nil
		}
	}
	return domain.ChecklistStep{}, fmt.Errorf("checklist step %q: %w", id, domain.ErrNotFound)
}

// ListSteps implements domain.ChecklistStore, preserving seeded order
func (s *MemoryStore) ListSteps() ([]domain.ChecklistStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := make([]domain.ChecklistStep, len(s.steps))
	copy(steps, s.steps)
	return steps, nil
}

// PutStep implements domain.ChecklistStore. New steps append in call order.
func (s *MemoryStore) PutStep(step domain.ChecklistStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.steps {
		if s.steps[i].ID == step.ID {
			s.steps[i] = step
			return nil
		}
	}
	s.steps = append(s.steps, step)
	return nil
}

// GetOpportunity implements domain.OpportunityStore
func (s *MemoryStore) GetOpportunity(id string) (domain.FundraisingOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.FundraisingOpportunity{}, fmt.Errorf("opportunity %q: %w", id, domain.ErrNotFound)
	}
	return opp, nil
}

// ListOpportunities implements domain.OpportunityStore, ordered by id
func (s *MemoryStore) ListOpportunities() ([]domain.FundraisingOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opps := make([]domain.FundraisingOpportunity, 0, len(s.opps))
	for _, opp := range s.opps {
		opps = append(opps, opp)
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].ID < opps[j].ID })

	return opps, nil
}

// PutOpportunity implements domain.OpportunityStore
func (s *MemoryStore) PutOpportunity(opp domain.FundraisingOpportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opps[opp.ID] = opp
	return nil
}

// Goal implements domain.OpportunityStore
func (s *MemoryStore) Goal() (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.goal, nil
}

// SetGoal implements domain.OpportunityStore
func (s *MemoryStore) SetGoal(amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goal = amount
	return nil
}

// copyTransaction clones the allocation slice so callers cannot alias stored
// state
func copyTransaction(txn domain.Transaction) domain.Transaction {
	if len(txn.SplitAllocations) > 0 {
		allocs := make([]domain.Allocation, len(txn.SplitAllocations))
		copy(allocs, txn.SplitAllocations)
		txn.SplitAllocations = allocs
	}
	return txn
}

// copyStatement clones the line slice so callers cannot alias stored state
func copyStatement(stmt domain.Statement) domain.Statement {
	if len(stmt.Lines) > 0 {
		lines := make([]domain.StatementLine, len(stmt.Lines))
		copy(lines, stmt.Lines)
		stmt.Lines = lines
	}
	return stmt
}

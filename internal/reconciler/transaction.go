package reconciler

import (
	"fmt"

	"github.com/microschoolhq/finance-engine/internal/allocation"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/suggest"
)

// TransactionReconciler drives feed transactions through categorization,
// split allocation and reconciliation. Every operation loads the record,
// validates fully, then writes the mutated copy back: a failed operation
// leaves the stored record untouched.
type TransactionReconciler struct {
	store     domain.TransactionStore
	suggester *suggest.Suggester
}

// NewTransactionReconciler creates a new TransactionReconciler
func NewTransactionReconciler(store domain.TransactionStore, suggester *suggest.Suggester) *TransactionReconciler {
	return &TransactionReconciler{
		store:     store,
		suggester: suggester,
	}
}

// Get returns one transaction by id
func (r *TransactionReconciler) Get(id string) (domain.Transaction, error) {
	return r.store.GetTransaction(id)
}

// MarkCategorized sets the transaction's ledger category. An empty glAccount
// selects the catalog's default category.
func (r *TransactionReconciler) MarkCategorized(id string, glAccount string) (domain.Transaction, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	if glAccount == "" {
		glAccount = r.suggester.Suggest(domain.Transaction{Description: txn.Description, Direction: txn.Direction}).GLAccount
	}

	txn.GLAccount = glAccount

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, fmt.Errorf("storing categorized transaction: %w", err)
	}

	return txn, nil
}

// Split validates the candidate payee shares against the transaction amount
// and, on success, records them and clears the split requirement. On a sum
// mismatch the error carries the expected and actual totals and the stored
// transaction is unchanged.
func (r *TransactionReconciler) Split(id string, inputs []allocation.Input) (domain.Transaction, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	allocs, err := allocation.Validate(txn.Amount, inputs)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn.SplitAllocations = allocs
	txn.RequiresSplit = false

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, fmt.Errorf("storing split transaction: %w", err)
	}

	return txn, nil
}

// MarkInstitutionalFunding exempts a lump institutional deposit (an ESA or
// LEA-level tranche not attributable per student) from per-payee splitting.
// The exemption is unconditional: no allocations are required.
func (r *TransactionReconciler) MarkInstitutionalFunding(id string) (domain.Transaction, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn.RequiresSplit = false
	txn.AllocationType = domain.AllocationTypeLEA

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, fmt.Errorf("storing institutional funding transaction: %w", err)
	}

	return txn, nil
}

// ApplySuggestions fills the transaction's missing categorization fields from
// the rule engine. Fields the caller already set are never overwritten. It
// returns whether anything changed, so a second run on the same transaction
// reports false.
func (r *TransactionReconciler) ApplySuggestions(id string) (domain.Transaction, bool, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, false, err
	}

	update := r.suggester.Suggest(txn)
	if update.Empty() {
		return txn, false, nil
	}

	if update.GLAccount != "" {
		txn.GLAccount = update.GLAccount
	}
	if update.ProgramCode != "" {
		txn.ProgramCode = update.ProgramCode
	}
	if update.DescriptionNote != "" {
		txn.DescriptionNote = update.DescriptionNote
	}

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, false, fmt.Errorf("storing suggested fields: %w", err)
	}

	return txn, true, nil
}

// ApplySuggestionsBulk applies suggestions to each id and returns how many
// transactions actually changed
func (r *TransactionReconciler) ApplySuggestionsBulk(ids []string) (int, error) {
	updated := 0
	for _, id := range ids {
		_, changed, err := r.ApplySuggestions(id)
		if err != nil {
			return updated, fmt.Errorf("applying suggestions to %s: %w", id, err)
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

// AttachReceipt marks the transaction's receipt as attached. Attaching twice
// is a no-op.
func (r *TransactionReconciler) AttachReceipt(id string) (domain.Transaction, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	if txn.ReceiptAttached {
		return txn, nil
	}

	txn.ReceiptAttached = true

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, fmt.Errorf("storing receipt flag: %w", err)
	}

	return txn, nil
}

// Reconcile marks a ready transaction as reconciled. A transaction whose
// computed status is not ready is rejected with NotReadyError naming the
// missing requirement, and nothing is written.
func (r *TransactionReconciler) Reconcile(id string) (domain.Transaction, error) {
	txn, err := r.store.GetTransaction(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	if status := txn.Status(); status != domain.StatusReady {
		return domain.Transaction{}, &domain.NotReadyError{Status: status}
	}

	if txn.Reconciled {
		return txn, nil
	}

	txn.Reconciled = true

	if err := r.store.PutTransaction(txn); err != nil {
		return domain.Transaction{}, fmt.Errorf("storing reconciled transaction: %w", err)
	}

	return txn, nil
}

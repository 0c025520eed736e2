package reconciler

import (
	"fmt"
	"strings"

	"github.com/microschoolhq/finance-engine/internal/domain"
)

// LineUpdate carries optional changes to a statement line. Nil fields are
// left as they are.
type LineUpdate struct {
	Status          *domain.LineStatus
	CostCenter      *domain.CostCenter
	Note            *string
	ReceiptAttached *bool
}

// StatementReconciler drives statement lines through review. Lines move
// freely between matched and flagged; neither is terminal. Cost center and
// note are advisory and never gate a status change.
type StatementReconciler struct {
	store domain.StatementStore
}

// NewStatementReconciler creates a new StatementReconciler
func NewStatementReconciler(store domain.StatementStore) *StatementReconciler {
	return &StatementReconciler{store: store}
}

// Get returns one statement by id
func (r *StatementReconciler) Get(id string) (domain.Statement, error) {
	return r.store.GetStatement(id)
}

// UpdateLine applies the update to one line of the statement and returns the
// whole statement. Unknown statement or line ids return ErrNotFound; invalid
// status or cost center values return InvalidInputError without writing.
func (r *StatementReconciler) UpdateLine(statementID, lineID string, update LineUpdate) (domain.Statement, error) {
	stmt, err := r.store.GetStatement(statementID)
	if err != nil {
		return domain.Statement{}, err
	}

	idx := -1
	for i := range stmt.Lines {
		if stmt.Lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Statement{}, fmt.Errorf("statement line %q: %w", lineID, domain.ErrNotFound)
	}

	if update.Status != nil && !domain.ValidLineStatus(*update.Status) {
		return domain.Statement{}, &domain.InvalidInputError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *update.Status)}
	}

	if update.CostCenter != nil && *update.CostCenter != "" && !domain.ValidCostCenter(*update.CostCenter) {
		return domain.Statement{}, &domain.InvalidInputError{Field: "costCenter", Reason: fmt.Sprintf("unknown cost center %q", *update.CostCenter)}
	}

	line := stmt.Lines[idx]
	if update.Status != nil {
		line.Status = *update.Status
	}
	if update.CostCenter != nil {
		line.CostCenter = *update.CostCenter
	}
	if update.Note != nil {
		line.Note = strings.TrimSpace(*update.Note)
	}
	if update.ReceiptAttached != nil {
		line.ReceiptAttached = *update.ReceiptAttached
	}
	stmt.Lines[idx] = line

	if err := r.store.PutStatement(stmt); err != nil {
		return domain.Statement{}, fmt.Errorf("storing statement line update: %w", err)
	}

	return stmt, nil
}

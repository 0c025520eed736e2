package checklist

import (
	"fmt"
	"math"

	"github.com/microschoolhq/finance-engine/internal/domain"
)

// Progress summarizes checklist completion
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// ComputeProgress reduces the steps to a completion summary. Percent is zero
// for an empty checklist.
func ComputeProgress(steps []domain.ChecklistStep) Progress {
	completed := 0
	for _, step := range steps {
		if step.Done {
			completed++
		}
	}

	percent := 0
	if len(steps) > 0 {
		percent = int(math.Round(float64(completed) / float64(len(steps)) * 100))
	}

	return Progress{
		Completed: completed,
		Total:     len(steps),
		Percent:   percent,
	}
}

// Checklist tracks the ordered month-close gates for one close period
type Checklist struct {
	store domain.ChecklistStore
}

// NewChecklist creates a new Checklist over the given store
func NewChecklist(store domain.ChecklistStore) *Checklist {
	return &Checklist{store: store}
}

// Steps returns the steps in their seeded order
func (c *Checklist) Steps() ([]domain.ChecklistStep, error) {
	return c.store.ListSteps()
}

// Toggle sets one step's done flag and returns the full checklist with its
// recomputed progress. Toggling to the current value is a no-op.
func (c *Checklist) Toggle(stepID string, done bool) ([]domain.ChecklistStep, Progress, error) {
	step, err := c.store.GetStep(stepID)
	if err != nil {
		return nil, Progress{}, err
	}

	if step.Done != done {
		step.Done = done
		if err := c.store.PutStep(step); err != nil {
			return nil, Progress{}, fmt.Errorf("storing checklist step: %w", err)
		}
	}

	steps, err := c.store.ListSteps()
	if err != nil {
		return nil, Progress{}, fmt.Errorf("listing checklist steps: %w", err)
	}

	return steps, ComputeProgress(steps), nil
}

// DefaultSteps returns the close gates seeded for a new period
func DefaultSteps() []domain.ChecklistStep {
	return []domain.ChecklistStep{
		{ID: "categorize", Title: "Categorize all activity", Description: "Every feed transaction has a ledger category and program code"},
		{ID: "split", Title: "Split tranche deposits", Description: "Multi-payee deposits are divided per payee or marked institutional"},
		{ID: "statements", Title: "Review statement lines", Description: "Every uploaded statement line is matched or flagged"},
		{ID: "receipts", Title: "Attach receipts", Description: "Receipts are attached for all outbound activity"},
		{ID: "reports", Title: "Generate financial reports", Description: "Monthly reports are generated and filed for the board"},
	}
}

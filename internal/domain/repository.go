package domain

import "github.com/shopspring/decimal"

// TransactionStore defines the interface for accessing feed transactions.
// Updates are atomic per record: Put replaces the stored transaction wholesale.
type TransactionStore interface {
	// GetTransaction gets one transaction by id
	GetTransaction(id string) (Transaction, error)

	// ListTransactions lists all transactions in a stable order
	ListTransactions() ([]Transaction, error)

	// PutTransaction inserts or replaces a transaction
	PutTransaction(txn Transaction) error
}

// StatementStore defines the interface for accessing uploaded statements
type StatementStore interface {
	// GetStatement gets one statement (with its lines) by id
	GetStatement(id string) (Statement, error)

	// ListStatements lists all statements in a stable order
	ListStatements() ([]Statement, error)

	// PutStatement inserts or replaces a statement and its lines
	PutStatement(stmt Statement) error
}

// ChecklistStore defines the interface for accessing month-close steps
type ChecklistStore interface {
	// GetStep gets one checklist step by id
	GetStep(id string) (ChecklistStep, error)

	// ListSteps lists steps in their seeded order
	ListSteps() ([]ChecklistStep, error)

	// PutStep inserts or replaces a step
	PutStep(step ChecklistStep) error
}

// OpportunityStore defines the interface for accessing the fundraising
// pipeline and the per-tenant fundraising goal
type OpportunityStore interface {
	// GetOpportunity gets one opportunity by id
	GetOpportunity(id string) (FundraisingOpportunity, error)

	// ListOpportunities lists all opportunities in a stable order
	ListOpportunities() ([]FundraisingOpportunity, error)

	// PutOpportunity inserts or replaces an opportunity
	PutOpportunity(opp FundraisingOpportunity) error

	// Goal returns the fundraising goal for the current period
	Goal() (decimal.Decimal, error)

	// SetGoal replaces the fundraising goal
	SetGoal(amount decimal.Decimal) error
}

// Package mysqlstore implements the engine stores on MySQL. Each Put is one
// database transaction, which gives the per-record atomicity the engine
// expects from its store.
package mysqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

// Store implements domain.TransactionStore, domain.StatementStore,
// domain.ChecklistStore and domain.OpportunityStore over MySQL
type Store struct {
	db *sql.DB
}

// Open connects to MySQL and ensures the schema exists
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id VARCHAR(64) PRIMARY KEY,
		txn_date DATE NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		direction VARCHAR(16) NOT NULL,
		account VARCHAR(128) NOT NULL,
		description TEXT NOT NULL,
		reference VARCHAR(128) NOT NULL,
		gl_account VARCHAR(64) NOT NULL DEFAULT '',
		program_code VARCHAR(64) NOT NULL DEFAULT '',
		description_note TEXT,
		receipt_attached TINYINT(1) NOT NULL DEFAULT 0,
		requires_split TINYINT(1) NOT NULL DEFAULT 0,
		allocation_type VARCHAR(16) NOT NULL DEFAULT '',
		reconciled TINYINT(1) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_allocations (
		transaction_id VARCHAR(64) NOT NULL,
		position INT NOT NULL,
		payee_name VARCHAR(128) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		tag VARCHAR(64) NOT NULL DEFAULT '',
		PRIMARY KEY (transaction_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS statements (
		id VARCHAR(64) PRIMARY KEY,
		account VARCHAR(128) NOT NULL DEFAULT '',
		period VARCHAR(16) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS statement_lines (
		id VARCHAR(64) NOT NULL,
		statement_id VARCHAR(64) NOT NULL,
		line_date DATE NOT NULL,
		description TEXT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		cost_center VARCHAR(32) NOT NULL DEFAULT '',
		note TEXT,
		status VARCHAR(16) NOT NULL,
		receipt_attached TINYINT(1) NOT NULL DEFAULT 0,
		position INT NOT NULL,
		PRIMARY KEY (statement_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS checklist_steps (
		id VARCHAR(64) PRIMARY KEY,
		title VARCHAR(128) NOT NULL,
		description TEXT,
		done TINYINT(1) NOT NULL DEFAULT 0,
		position INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS opportunities (
		id VARCHAR(64) PRIMARY KEY,
		funder VARCHAR(128) NOT NULL DEFAULT '',
		stage VARCHAR(32) NOT NULL,
		ask_amount DECIMAL(12,2) NOT NULL,
		amount_awarded DECIMAL(12,2) NOT NULL DEFAULT 0,
		award_type VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		name VARCHAR(64) PRIMARY KEY,
		value VARCHAR(64) NOT NULL
	)`,
}

func (s *Store) ensureSchema() error {
	for _, ddl := range schema {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// GetTransaction implements domain.TransactionStore
func (s *Store) GetTransaction(id string) (domain.Transaction, error) {
	row := s.db.QueryRow(`SELECT id, txn_date, amount, direction, account, description, reference,
		gl_account, program_code, COALESCE(description_note, ''), receipt_attached,
		requires_split, allocation_type, reconciled
		FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, fmt.Errorf("transaction %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("loading transaction: %w", err)
	}

	allocs, err := s.loadAllocations(id)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.SplitAllocations = allocs

	return txn, nil
}

// ListTransactions implements domain.TransactionStore
func (s *Store) ListTransactions() ([]domain.Transaction, error) {
	rows, err := s.db.Query(`SELECT id, txn_date, amount, direction, account, description, reference,
		gl_account, program_code, COALESCE(description_note, ''), receipt_attached,
		requires_split, allocation_type, reconciled
		FROM transactions ORDER BY txn_date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	for i := range txns {
		allocs, err := s.loadAllocations(txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].SplitAllocations = allocs
	}

	return txns, nil
}

// PutTransaction implements domain.TransactionStore
func (s *Store) PutTransaction(txn domain.Transaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`REPLACE INTO transactions
		(id, txn_date, amount, direction, account, description, reference,
		gl_account, program_code, description_note, receipt_attached,
		requires_split, allocation_type, reconciled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Date.Format(dateFormat), txn.Amount.StringFixed(2), string(txn.Direction),
		txn.Account, txn.Description, txn.Reference,
		txn.GLAccount, txn.ProgramCode, txn.DescriptionNote, txn.ReceiptAttached,
		txn.RequiresSplit, string(txn.AllocationType), txn.Reconciled)
	if err != nil {
		return fmt.Errorf("writing transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM transaction_allocations WHERE transaction_id = ?`, txn.ID); err != nil {
		return fmt.Errorf("clearing allocations: %w", err)
	}

	for i, alloc := range txn.SplitAllocations {
		_, err := tx.Exec(`INSERT INTO transaction_allocations (transaction_id, position, payee_name, amount, tag)
			VALUES (?, ?, ?, ?, ?)`,
			txn.ID, i, alloc.Name, alloc.Amount.StringFixed(2), alloc.Tag)
		if err != nil {
			return fmt.Errorf("writing allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction write: %w", err)
	}

	return nil
}

func (s *Store) loadAllocations(txnID string) ([]domain.Allocation, error) {
	rows, err := s.db.Query(`SELECT payee_name, amount, tag FROM transaction_allocations
		WHERE transaction_id = ? ORDER BY position`, txnID)
	if err != nil {
		return nil, fmt.Errorf("loading allocations: %w", err)
	}
	defer rows.Close()

	var allocs []domain.Allocation
	for rows.Next() {
		var alloc domain.Allocation
		var amount string
		if err := rows.Scan(&alloc.Name, &amount, &alloc.Tag); err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		alloc.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing allocation amount: %w", err)
		}
		allocs = append(allocs, alloc)
	}
	return allocs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var txn domain.Transaction
	var date, amount, direction, allocationType string

	err := row.Scan(&txn.ID, &date, &amount, &direction, &txn.Account, &txn.Description, &txn.Reference,
		&txn.GLAccount, &txn.ProgramCode, &txn.DescriptionNote, &txn.ReceiptAttached,
		&txn.RequiresSplit, &allocationType, &txn.Reconciled)
	if err != nil {
		return domain.Transaction{}, err
	}

	txn.Date, err = time.Parse(dateFormat, date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing transaction date: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("parsing transaction amount: %w", err)
	}

	txn.Direction = domain.Direction(direction)
	txn.AllocationType = domain.AllocationType(allocationType)

	return txn, nil
}

// GetStatement implements domain.StatementStore
func (s *Store) GetStatement(id string) (domain.Statement, error) {
	var stmt domain.Statement
	err := s.db.QueryRow(`SELECT id, account, period FROM statements WHERE id = ?`, id).
		Scan(&stmt.ID, &stmt.Account, &stmt.Period)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Statement{}, fmt.Errorf("statement %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Statement{}, fmt.Errorf("loading statement: %w", err)
	}

	lines, err := s.loadLines(id)
	if err != nil {
		return domain.Statement{}, err
	}
	stmt.Lines = lines

	return stmt, nil
}

// ListStatements implements domain.StatementStore
func (s *Store) ListStatements() ([]domain.Statement, error) {
	rows, err := s.db.Query(`SELECT id, account, period FROM statements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing statements: %w", err)
	}
	defer rows.Close()

	var stmts []domain.Statement
	for rows.Next() {
		var stmt domain.Statement
		if err := rows.Scan(&stmt.ID, &stmt.Account, &stmt.Period); err != nil {
			return nil, fmt.Errorf("scanning statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing statements: %w", err)
	}

	for i := range stmts {
		lines, err := s.loadLines(stmts[i].ID)
		if err != nil {
			return nil, err
		}
		stmts[i].Lines = lines
	}

	return stmts, nil
}

// PutStatement implements domain.StatementStore
func (s *Store) PutStatement(stmt domain.Statement) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning statement write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`REPLACE INTO statements (id, account, period) VALUES (?, ?, ?)`,
		stmt.ID, stmt.Account, stmt.Period)
	if err != nil {
		return fmt.Errorf("writing statement: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM statement_lines WHERE statement_id = ?`, stmt.ID); err != nil {
		return fmt.Errorf("clearing statement lines: %w", err)
	}

	for i, line := range stmt.Lines {
		_, err := tx.Exec(`INSERT INTO statement_lines
			(id, statement_id, line_date, description, amount, cost_center, note, status, receipt_attached, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, stmt.ID, line.Date.Format(dateFormat), line.Description,
			line.Amount.StringFixed(2), string(line.CostCenter), line.Note,
			string(line.Status), line.ReceiptAttached, i)
		if err != nil {
			return fmt.Errorf("writing statement line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing statement write: %w", err)
	}

	return nil
}

func (s *Store) loadLines(stmtID string) ([]domain.StatementLine, error) {
	rows, err := s.db.Query(`SELECT id, statement_id, line_date, description, amount,
		cost_center, COALESCE(note, ''), status, receipt_attached
		FROM statement_lines WHERE statement_id = ? ORDER BY position`, stmtID)
	if err != nil {
		return nil, fmt.Errorf("loading statement lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.StatementLine
	for rows.Next() {
		var line domain.StatementLine
		var date, amount, costCenter, status string
		err := rows.Scan(&line.ID, &line.StatementID, &date, &line.Description, &amount,
			&costCenter, &line.Note, &status, &line.ReceiptAttached)
		if err != nil {
			return nil, fmt.Errorf("scanning statement line: %w", err)
		}

		line.Date, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parsing line date: %w", err)
		}
		line.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing line amount: %w", err)
		}
		line.CostCenter = domain.CostCenter(costCenter)
		line.Status = domain.LineStatus(status)

		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// GetStep implements domain.ChecklistStore
func (s *Store) GetStep(id string) (domain.ChecklistStep, error) {
	var step domain.ChecklistStep
	err := s.db.QueryRow(`SELECT id, title, COALESCE(description, ''), done FROM checklist_steps WHERE id = ?`, id).
		Scan(&step.ID, &step.Title, &step.Description, &step.Done)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ChecklistStep{}, fmt.Errorf("checklist step %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ChecklistStep{}, fmt.Errorf("loading checklist step: %w", err)
	}
	return step, nil
}

// ListSteps implements domain.ChecklistStore
func (s *Store) ListSteps() ([]domain.ChecklistStep, error) {
	rows, err := s.db.Query(`SELECT id, title, COALESCE(description, ''), done FROM checklist_steps ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing checklist steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.ChecklistStep
	for rows.Next() {
		var step domain.ChecklistStep
		if err := rows.Scan(&step.ID, &step.Title, &step.Description, &step.Done); err != nil {
			return nil, fmt.Errorf("scanning checklist step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// PutStep implements domain.ChecklistStore. New steps append after existing
// ones; updates keep their position.
func (s *Store) PutStep(step domain.ChecklistStep) error {
	// MySQL rejects a subquery on the insert target unless it goes through a
	// derived table.
	_, err := s.db.Exec(`INSERT INTO checklist_steps (id, title, description, done, position)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(p.position), 0) + 1 FROM (SELECT position FROM checklist_steps) AS p))
		ON DUPLICATE KEY UPDATE title = VALUES(title), description = VALUES(description), done = VALUES(done)`,
		step.ID, step.Title, step.Description, step.Done)
	if err != nil {
		return fmt.Errorf("writing checklist step: %w", err)
	}
	return nil
}

// GetOpportunity implements domain.OpportunityStore
func (s *Store) GetOpportunity(id string) (domain.FundraisingOpportunity, error) {
	row := s.db.QueryRow(`SELECT id, funder, stage, ask_amount, amount_awarded, award_type
		FROM opportunities WHERE id = ?`, id)

	opp, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FundraisingOpportunity{}, fmt.Errorf("opportunity %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.FundraisingOpportunity{}, fmt.Errorf("loading opportunity: %w", err)
	}
	return opp, nil
}

// ListOpportunities implements domain.OpportunityStore
func (s *Store) ListOpportunities() ([]domain.FundraisingOpportunity, error) {
	rows, err := s.db.Query(`SELECT id, funder, stage, ask_amount, amount_awarded, award_type
		FROM opportunities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.FundraisingOpportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// PutOpportunity implements domain.OpportunityStore
func (s *Store) PutOpportunity(opp domain.FundraisingOpportunity) error {
	_, err := s.db.Exec(`REPLACE INTO opportunities (id, funder, stage, ask_amount, amount_awarded, award_type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		opp.ID, opp.Funder, string(opp.Stage), opp.AskAmount.StringFixed(2),
		opp.AmountAwarded.StringFixed(2), string(opp.AwardType))
	if err != nil {
		return fmt.Errorf("writing opportunity: %w", err)
	}
	return nil
}

func scanOpportunity(row rowScanner) (domain.FundraisingOpportunity, error) {
	var opp domain.FundraisingOpportunity
	var stage, ask, awarded, awardType string

	err := row.Scan(&opp.ID, &opp.Funder, &stage, &ask, &awarded, &awardType)
	if err != nil {
		return domain.FundraisingOpportunity{}, err
	}

	opp.Stage = domain.PipelineStage(stage)
	opp.AwardType = domain.AwardType(awardType)

	opp.AskAmount, err = decimal.NewFromString(ask)
	if err != nil {
		return domain.FundraisingOpportunity{}, fmt.Errorf("parsing ask amount: %w", err)
	}
	opp.AmountAwarded, err = decimal.NewFromString(awarded)
	if err != nil {
		return domain.FundraisingOpportunity{}, fmt.Errorf("parsing awarded amount: %w", err)
	}

	return opp, nil
}

// Goal implements domain.OpportunityStore. A missing setting reads as zero.
func (s *Store) Goal() (decimal.Decimal, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE name = 'fundraising_goal'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading goal: %w", err)
	}

	goal, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing goal: %w", err)
	}
	return goal, nil
}

// SetGoal implements domain.OpportunityStore
func (s *Store) SetGoal(amount decimal.Decimal) error {
	_, err := s.db.Exec(`REPLACE INTO settings (name, value) VALUES ('fundraising_goal', ?)`,
		amount.StringFixed(2))
	if err != nil {
		return fmt.Errorf("writing goal: %w", err)
	}
	return nil
}

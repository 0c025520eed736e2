package repository

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/pkg/fileutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	feedHeaderFields      = []string{"id", "date", "amount", "account", "description", "reference", "multi_payee"}
	statementHeaderFields = []string{"id", "date", "description", "amount"}
)

// CSVFeedRepository ingests bank/card/ESA feed exports and uploaded account
// statements from CSV files. Rows that fail to parse are logged and skipped
// so one bad export line does not block the whole feed.
type CSVFeedRepository struct {
	DateFormat string
	Logger     zerolog.Logger
}

// NewCSVFeedRepository creates a new CSVFeedRepository
func NewCSVFeedRepository(dateFormat string, logger zerolog.Logger) *CSVFeedRepository {
	if dateFormat == "" {
		dateFormat = "2006-01-02" // Default format
	}

	return &CSVFeedRepository{
		DateFormat: dateFormat,
		Logger:     logger,
	}
}

// LoadTransactions reads one feed export into transaction records. Direction
// is derived from the amount sign; multi_payee marks inbound tranche deposits
// that still require splitting.
func (r *CSVFeedRepository) LoadTransactions(filePath string) ([]domain.Transaction, error) {
	reader := fileutil.NewCSVReader(filePath)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading feed header: %w", err)
	}

	columnMap, err := createHeaderMap(header, feedHeaderFields)
	if err != nil {
		return nil, fmt.Errorf("mapping feed columns: %w", err)
	}

	maxIndex := maxColumnIndex(columnMap)

	var txns []domain.Transaction
	rowProcessorFn := func(rowNum int, row []string) error {
		if len(row) <= maxIndex {
			r.Logger.Warn().Int("row", rowNum).Msg("skipping short feed row")
			return nil
		}

		date, err := time.Parse(r.DateFormat, row[columnMap["date"]])
		if err != nil {
			r.Logger.Warn().Int("row", rowNum).Err(err).Msg("skipping feed row with invalid date")
			return nil
		}

		amount, err := decimal.NewFromString(row[columnMap["amount"]])
		if err != nil {
			r.Logger.Warn().Int("row", rowNum).Err(err).Msg("skipping feed row with invalid amount")
			return nil
		}

		id := strings.TrimSpace(row[columnMap["id"]])
		if id == "" {
			id = uuid.NewString()
		}

		direction := domain.Inbound
		if amount.IsNegative() {
			direction = domain.Outbound
		}

		multiPayee := strings.EqualFold(strings.TrimSpace(row[columnMap["multi_payee"]]), "true")

		txns = append(txns, domain.Transaction{
			ID:            id,
			Date:          date,
			Amount:        amount,
			Direction:     direction,
			Account:       row[columnMap["account"]],
			Description:   row[columnMap["description"]],
			Reference:     row[columnMap["reference"]],
			RequiresSplit: multiPayee && direction == domain.Inbound,
		})
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, fmt.Errorf("processing feed transactions: %w", err)
	}

	return txns, nil
}

// LoadStatement reads one uploaded statement file. The statement id comes
// from the filename, the same way bank exports are keyed by their source
// file. Every line starts in needs_review.
func (r *CSVFeedRepository) LoadStatement(filePath string) (domain.Statement, error) {
	reader := fileutil.NewCSVReader(filePath)

	header, err := reader.ReadHeader()
	if err != nil {
		return domain.Statement{}, fmt.Errorf("reading statement header: %w", err)
	}

	columnMap, err := createHeaderMap(header, statementHeaderFields)
	if err != nil {
		return domain.Statement{}, fmt.Errorf("mapping statement columns: %w", err)
	}

	maxIndex := maxColumnIndex(columnMap)

	stmtID := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	stmt := domain.Statement{ID: stmtID}

	rowProcessorFn := func(rowNum int, row []string) error {
		if len(row) <= maxIndex {
			r.Logger.Warn().Int("row", rowNum).Msg("skipping short statement row")
			return nil
		}

		date, err := time.Parse(r.DateFormat, row[columnMap["date"]])
		if err != nil {
			r.Logger.Warn().Int("row", rowNum).Err(err).Msg("skipping statement row with invalid date")
			return nil
		}

		amount, err := decimal.NewFromString(row[columnMap["amount"]])
		if err != nil {
			r.Logger.Warn().Int("row", rowNum).Err(err).Msg("skipping statement row with invalid amount")
			return nil
		}

		id := strings.TrimSpace(row[columnMap["id"]])
		if id == "" {
			id = uuid.NewString()
		}

		stmt.Lines = append(stmt.Lines, domain.StatementLine{
			ID:          id,
			StatementID: stmtID,
			Date:        date,
			Description: row[columnMap["description"]],
			Amount:      amount,
			Status:      domain.LineNeedsReview,
		})
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return domain.Statement{}, fmt.Errorf("processing statement lines: %w", err)
	}

	return stmt, nil
}

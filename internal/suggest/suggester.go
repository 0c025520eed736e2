package suggest

import (
	"strings"

	"github.com/microschoolhq/finance-engine/internal/domain"
)

// Update carries suggested values for the fields a transaction is still
// missing. Fields the transaction already has stay empty, so applying an
// Update never overwrites caller-set values.
type Update struct {
	GLAccount       string
	ProgramCode     string
	DescriptionNote string
}

// Empty reports whether the update would change nothing
func (u Update) Empty() bool {
	return u.GLAccount == "" && u.ProgramCode == "" && u.DescriptionNote == ""
}

// Suggester is a pure rule engine producing categorization suggestions from
// a transaction's raw description
type Suggester struct {
	catalog Catalog
}

// NewSuggester creates a Suggester over the given catalog
func NewSuggester(catalog Catalog) *Suggester {
	return &Suggester{catalog: catalog}
}

// NewDefaultSuggester creates a Suggester over the shipped default catalog
func NewDefaultSuggester() *Suggester {
	return NewSuggester(DefaultCatalog())
}

// Suggest produces an update containing only the fields txn is missing.
// Applying the result and calling Suggest again yields an empty update, so
// repeated application is safe.
func (s *Suggester) Suggest(txn domain.Transaction) Update {
	var update Update
	desc := strings.ToLower(txn.Description)

	if txn.GLAccount == "" {
		update.GLAccount = s.matchCategory(desc)
	}

	if txn.ProgramCode == "" {
		update.ProgramCode = s.matchProgram(desc)
	}

	if txn.DescriptionNote == "" {
		update.DescriptionNote = describeNote(txn)
	}

	return update
}

// matchCategory scans the category rules in order; first match wins. When no
// rule matches it falls back to the catalog's first category entry rather
// than leaving the field unset.
func (s *Suggester) matchCategory(desc string) string {
	for _, rule := range s.catalog.CategoryRules {
		if strings.Contains(desc, rule.Keyword) {
			return rule.ID
		}
	}
	return s.catalog.DefaultCategoryID()
}

func (s *Suggester) matchProgram(desc string) string {
	for _, rule := range s.catalog.ProgramRules {
		if strings.Contains(desc, rule.Keyword) {
			return rule.ID
		}
	}
	return s.catalog.DefaultProgram
}

func describeNote(txn domain.Transaction) string {
	if txn.Direction == domain.Inbound {
		return "Payment received: " + txn.Description
	}
	return "Expense paid: " + txn.Description
}

package suggest

// Category is one ledger category the school books transactions against
type Category struct {
	ID   string
	Name string
}

// Rule maps a description keyword to a catalog id. Rules are tried in order
// and the first match wins, so rule order is part of the catalog's contract:
// reordering rules silently changes suggested categories.
type Rule struct {
	Keyword string
	ID      string
}

// Catalog is the reference data the suggester matches against. The first
// entry of Categories is the fallback when no category rule matches.
type Catalog struct {
	Categories     []Category
	CategoryRules  []Rule
	ProgramRules   []Rule
	DefaultProgram string
}

// DefaultCategoryID returns the fallback ledger category id
func (c Catalog) DefaultCategoryID() string {
	if len(c.Categories) == 0 {
		return ""
	}
	return c.Categories[0].ID
}

// DefaultCatalog returns the reference catalog shipped with the engine.
// Keyword order mirrors the review screens: tuition/family rules come before
// the broader funding keywords, which come before expense keywords.
func DefaultCatalog() Catalog {
	return Catalog{
		Categories: []Category{
			{ID: "rev_tuition", Name: "Tuition Revenue"},
			{ID: "rev_esa", Name: "ESA / Voucher Revenue"},
			{ID: "rev_grants", Name: "Grant Revenue"},
			{ID: "rev_donations", Name: "Donation Revenue"},
			{ID: "exp_payroll", Name: "Payroll & Benefits"},
			{ID: "exp_facilities", Name: "Facilities & Rent"},
			{ID: "exp_curriculum", Name: "Curriculum & Materials"},
			{ID: "exp_supplies", Name: "Supplies"},
			{ID: "exp_insurance", Name: "Insurance"},
			{ID: "exp_other", Name: "Other Expense"},
		},
		CategoryRules: []Rule{
			{Keyword: "tuition", ID: "rev_tuition"},
			{Keyword: "family", ID: "rev_tuition"},
			{Keyword: "esa", ID: "rev_esa"},
			{Keyword: "voucher", ID: "rev_esa"},
			{Keyword: "classwallet", ID: "rev_esa"},
			{Keyword: "grant", ID: "rev_grants"},
			{Keyword: "donation", ID: "rev_donations"},
			{Keyword: "donor", ID: "rev_donations"},
			{Keyword: "payroll", ID: "exp_payroll"},
			{Keyword: "salary", ID: "exp_payroll"},
			{Keyword: "gusto", ID: "exp_payroll"},
			{Keyword: "rent", ID: "exp_facilities"},
			{Keyword: "lease", ID: "exp_facilities"},
			{Keyword: "utilities", ID: "exp_facilities"},
			{Keyword: "insurance", ID: "exp_insurance"},
			{Keyword: "curriculum", ID: "exp_curriculum"},
			{Keyword: "books", ID: "exp_curriculum"},
			{Keyword: "supplies", ID: "exp_supplies"},
			{Keyword: "amazon", ID: "exp_supplies"},
		},
		ProgramRules: []Rule{
			{Keyword: "after-school", ID: "after_school"},
			{Keyword: "after school", ID: "after_school"},
			{Keyword: "aftercare", ID: "after_school"},
			{Keyword: "summer", ID: "summer_program"},
			{Keyword: "camp", ID: "summer_program"},
			{Keyword: "esa", ID: "esa_enrichment"},
			{Keyword: "voucher", ID: "esa_enrichment"},
		},
		DefaultProgram: "full_time",
	}
}

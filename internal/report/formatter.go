package report

import (
	"encoding/json"

	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/service"
)

// CloseReport is the month-close package handed to the operator: the feed
// summary, checklist progress and the readiness verdict with its blockers
type CloseReport struct {
	Summary   service.Summary
	Progress  checklist.Progress
	Readiness service.CloseReadiness
}

// OutputFormatter defines the interface for formatting close reports
type OutputFormatter interface {
	Format(report CloseReport) ([]byte, error)
	FileExtension() string
}

// JSONFormatter formats close reports as JSON
type JSONFormatter struct {
	PrettyPrint bool
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{
		PrettyPrint: prettyPrint,
	}
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(report CloseReport) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

// FileExtension returns the default extension for JSON output
func (f *JSONFormatter) FileExtension() string {
	return "json"
}

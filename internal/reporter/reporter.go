// Package reporter renders posting run results for people and downstream
// systems.
//
// Supported output formats:
//   - Console: tabular output for terminal review of a run
//   - JSON: structured document for programmatic consumption
//   - CSV: the Matched_Postings layout imported by the ledger system
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"

	"golang-cashposting-service/internal/poster"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// postingsCSVHeaders is the column layout of the Matched_Postings export
// consumed by the ledger system. Order is part of the contract.
var postingsCSVHeaders = []string{
	"Payment_Ref",
	"Payer_Name",
	"Matched_Invoice",
	"Match_Type",
	"Confidence",
	"Posting_Status",
	"Bank_Amount",
	"Invoice_Amount",
	"Amount_Difference",
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludePostings        bool `json:"include_postings"`
	IncludeUnmatched       bool `json:"include_unmatched"`
	IncludeLedgerEntries   bool `json:"include_ledger_entries"`
	IncludeProcessingStats bool `json:"include_processing_stats"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                 FormatConsole,
		IncludePostings:        true,
		IncludeUnmatched:       true,
		IncludeLedgerEntries:   false,
		IncludeProcessingStats: true,
		CSVDelimiter:           ',',
		CSVHeaders:             true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator generates posting run reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified
// configuration. A nil config selects the defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders a posting run result to the writer in the configured
// format.
func (rg *ReportGenerator) GenerateReport(result *poster.RunResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("posting run result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(result *poster.RunResult, writer io.Writer) error {
	fmt.Fprintf(writer, "CASH POSTING REPORT\n")
	fmt.Fprintf(writer, "Run ID:    %s\n", result.RunID.String())
	fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration:  %v\n\n", result.Summary.ProcessingDuration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummaryTable(result.Summary, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== MATCH BREAKDOWN ===\n")
	rg.printMatchBreakdown(result.Summary, writer)
	fmt.Fprintf(writer, "\n")

	if rg.config.IncludePostings && len(result.Postings) > 0 {
		fmt.Fprintf(writer, "=== MATCHED POSTINGS ===\n")
		rg.printPostingsTable(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeUnmatched && len(result.Unmatched) > 0 {
		fmt.Fprintf(writer, "=== UNMATCHED PAYMENTS ===\n")
		rg.printUnmatchedTable(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeLedgerEntries && len(result.LedgerEntries) > 0 {
		fmt.Fprintf(writer, "=== LEDGER ENTRIES ===\n")
		rg.printLedgerTable(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeProcessingStats && result.Stats != nil {
		fmt.Fprintf(writer, "=== PROCESSING STATISTICS ===\n")
		rg.printProcessingStats(result.Stats, writer)
	}

	return nil
}

func (rg *ReportGenerator) printSummaryTable(summary *poster.RunSummary, writer io.Writer) {
	fmt.Fprintf(writer, "Payments:\n")
	fmt.Fprintf(writer, "  Total:      %d\n", summary.TotalPayments)
	fmt.Fprintf(writer, "  Matched:    %d\n", summary.MatchedPayments)
	fmt.Fprintf(writer, "  Unmatched:  %d\n", summary.UnmatchedPayments)
	fmt.Fprintf(writer, "  Match rate: %.2f%%\n", summary.MatchRate)

	fmt.Fprintf(writer, "\nAmounts:\n")
	fmt.Fprintf(writer, "  Total received: %s\n", summary.TotalBankAmount.StringFixed(2))
	fmt.Fprintf(writer, "  Total posted:   %s\n", summary.TotalPostedAmount.StringFixed(2))
	fmt.Fprintf(writer, "  Unposted:       %s\n", summary.NetDifference.StringFixed(2))
}

func (rg *ReportGenerator) printMatchBreakdown(summary *poster.RunSummary, writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Match Type", "Count"})

	table.Append([]string{"Exact", fmt.Sprintf("%d", summary.ExactMatches)})
	table.Append([]string{"Reference", fmt.Sprintf("%d", summary.ReferenceMatches)})
	table.Append([]string{"Fuzzy (name)", fmt.Sprintf("%d", summary.FuzzyNameMatches)})
	table.Append([]string{"Fuzzy (amount)", fmt.Sprintf("%d", summary.FuzzyAmountMatches)})
	table.Append([]string{"Contextual", fmt.Sprintf("%d", summary.ContextualMatches)})

	table.Render()
}

func (rg *ReportGenerator) printPostingsTable(result *poster.RunResult, writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Payment Ref", "Payer", "Invoice", "Type", "Confidence", "Bank Amt", "Invoice Amt", "Diff"})

	for _, posting := range result.Postings {
		table.Append([]string{
			posting.PaymentRef,
			posting.PayerName,
			posting.MatchedInvoice,
			posting.MatchType,
			posting.Confidence,
			posting.BankAmount.StringFixed(2),
			posting.InvoiceAmount.StringFixed(2),
			posting.AmountDifference.StringFixed(2),
		})
	}

	table.Render()
}

func (rg *ReportGenerator) printUnmatchedTable(result *poster.RunResult, writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Reference", "Payer", "Amount", "Currency", "Value Date"})

	for _, tx := range result.Unmatched {
		valueDate := ""
		if !tx.ValueDate.IsZero() {
			valueDate = tx.ValueDate.Format("2006-01-02")
		}
		table.Append([]string{
			tx.ReferenceNo,
			tx.PayerName,
			tx.Amount.StringFixed(2),
			tx.Currency,
			valueDate,
		})
	}

	table.Render()
}

func (rg *ReportGenerator) printLedgerTable(result *poster.RunResult, writer io.Writer) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"Payment Ref", "Invoice", "Account", "Direction", "Amount"})

	for _, entry := range result.LedgerEntries {
		table.Append([]string{
			entry.PaymentRef,
			entry.InvoiceID,
			entry.Account,
			string(entry.Direction),
			entry.Amount.StringFixed(2),
		})
	}

	table.Render()
}

func (rg *ReportGenerator) printProcessingStats(stats *poster.ProcessingStats, writer io.Writer) {
	fmt.Fprintf(writer, "Parse errors:       %d\n", stats.ParseErrors)
	fmt.Fprintf(writer, "Records per second: %.2f\n", stats.RecordsPerSecond)
	fmt.Fprintf(writer, "Loading time:       %v\n", stats.LoadingTime)
	fmt.Fprintf(writer, "Matching time:      %v\n", stats.MatchingTime)
	fmt.Fprintf(writer, "Total time:         %v\n", stats.TotalProcessingTime)
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(result *poster.RunResult, writer io.Writer) error {
	filtered := rg.filterResultForOutput(result)

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(filtered)
}

// filterResultForOutput builds the JSON document honoring the detail options
func (rg *ReportGenerator) filterResultForOutput(result *poster.RunResult) map[string]interface{} {
	doc := map[string]interface{}{
		"run_id":       result.RunID.String(),
		"processed_at": result.ProcessedAt,
		"summary":      result.Summary,
	}

	if rg.config.IncludePostings {
		doc["postings"] = result.Postings
	}
	if rg.config.IncludeUnmatched {
		doc["unmatched"] = result.Unmatched
	}
	if rg.config.IncludeLedgerEntries {
		doc["ledger_entries"] = result.LedgerEntries
	}
	if rg.config.IncludeProcessingStats && result.Stats != nil {
		doc["processing_stats"] = result.Stats
	}

	return doc
}

// generateCSVReport writes the postings in the Matched_Postings layout
func (rg *ReportGenerator) generateCSVReport(result *poster.RunResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(postingsCSVHeaders); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, posting := range result.Postings {
		record := []string{
			posting.PaymentRef,
			posting.PayerName,
			posting.MatchedInvoice,
			posting.MatchType,
			posting.Confidence,
			posting.PostingStatus,
			posting.BankAmount.StringFixed(2),
			posting.InvoiceAmount.StringFixed(2),
			posting.AmountDifference.StringFixed(2),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write posting record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WritePostingsFile writes the Matched_Postings CSV into outputDir using the
// timestamped file name the ledger import expects, and returns the full path.
func (rg *ReportGenerator) WritePostingsFile(result *poster.RunResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	fileName := fmt.Sprintf("Matched_Postings_%s.csv", result.ProcessedAt.Format("20060102_150405"))
	fullPath := filepath.Join(outputDir, fileName)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create postings file: %w", err)
	}
	defer file.Close()

	if err := rg.generateCSVReport(result, file); err != nil {
		return "", err
	}

	return fullPath, nil
}

// UpdateConfiguration replaces the report configuration after validating it
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current report configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

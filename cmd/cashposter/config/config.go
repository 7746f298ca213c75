// Package config builds the component configurations the CLI hands to the
// loaders, the matching engine, the posting service, and the reporter.
package config

import (
	"fmt"

	"golang-cashposting-service/internal/loader"
	"golang-cashposting-service/internal/matcher"
	"golang-cashposting-service/internal/poster"
	"golang-cashposting-service/internal/reporter"
)

// CreateBankParserConfig creates the bank statement loader configuration.
func CreateBankParserConfig() *loader.BankParserConfig {
	return loader.DefaultBankParserConfig()
}

// CreateRemittanceParserConfig creates the remittance loader configuration.
func CreateRemittanceParserConfig() *loader.RemittanceParserConfig {
	return loader.DefaultRemittanceParserConfig()
}

// CreateInvoiceParserConfig creates the invoice loader configuration.
func CreateInvoiceParserConfig() *loader.InvoiceParserConfig {
	return loader.DefaultInvoiceParserConfig()
}

// CreateMatchingConfig builds a matching configuration from the selected
// profile and applies any non-zero CLI threshold overrides.
func CreateMatchingConfig(profile string, nameThreshold, amountThreshold, fuzzyMinScore float64) (*matcher.MatchingConfig, error) {
	var config *matcher.MatchingConfig

	switch profile {
	case "", "default":
		config = matcher.DefaultMatchingConfig()
	case "strict":
		config = matcher.StrictMatchingConfig()
	case "relaxed":
		config = matcher.RelaxedMatchingConfig()
	default:
		return nil, fmt.Errorf("unknown matching profile: %s", profile)
	}

	if nameThreshold > 0 {
		config.RemittanceNameThreshold = nameThreshold
	}
	if amountThreshold > 0 {
		config.RemittanceAmountThreshold = amountThreshold
	}
	if fuzzyMinScore > 0 {
		config.FuzzyMinScore = fuzzyMinScore
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}

	return config, nil
}

// CreatePosterConfig creates a posting service configuration.
func CreatePosterConfig(workers int, showProgress, generateLedger bool) *poster.Config {
	config := poster.DefaultConfig()

	config.Workers = workers
	config.ProgressReporting = showProgress
	config.GenerateLedger = generateLedger
	config.IncludeStatistics = true

	return config
}

// CreateReportConfig creates a report configuration for the specified output
// format.
func CreateReportConfig(format string, includeLedger bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludePostings = true
		config.IncludeUnmatched = true
		config.IncludeProcessingStats = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludePostings = true
		config.IncludeUnmatched = true
		config.IncludeProcessingStats = true
	case "csv":
		// CSV is the ledger import payload: postings only.
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeUnmatched = false
		config.IncludeProcessingStats = false
	}

	config.IncludeLedgerEntries = includeLedger

	return config
}

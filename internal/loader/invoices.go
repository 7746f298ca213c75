package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang-cashposting-service/internal/models"
	"golang-cashposting-service/pkg/errors"
	"golang-cashposting-service/pkg/logger"
)

// InvoiceLoader reads open invoice CSV exports.
type InvoiceLoader struct {
	*BaseParser
	config *InvoiceParserConfig
	logger logger.Logger
}

// NewInvoiceLoader creates an invoice loader with the given configuration.
// A nil config selects the standard billing export layout.
func NewInvoiceLoader(config *InvoiceParserConfig) (*InvoiceLoader, error) {
	if config == nil {
		config = DefaultInvoiceParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"invoice_loader_config",
			config,
			err,
		)
	}

	parseConfig := DefaultParseConfig()
	parseConfig.HasHeader = config.HasHeader
	parseConfig.Delimiter = config.Delimiter

	return &InvoiceLoader{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("invoice_loader"),
	}, nil
}

// LoadInvoices parses a CSV file of open invoices.
func (il *InvoiceLoader) LoadInvoices(filePath string) ([]*models.Invoice, *ParseStats, error) {
	return il.LoadInvoicesWithContext(context.Background(), filePath)
}

// LoadInvoicesWithContext parses invoices with cancellation support. Rows that
// fail to parse or validate are recorded in the returned stats and skipped.
func (il *InvoiceLoader) LoadInvoicesWithContext(ctx context.Context, filePath string) ([]*models.Invoice, *ParseStats, error) {
	il.logger.WithField("file_path", filePath).Info("Loading invoices")

	file, reader, err := il.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	required := []string{
		il.config.GetColumnName("invoice_id"),
		il.config.GetColumnName("client_name"),
		il.config.GetColumnName("currency"),
	}
	if err := il.ReadHeaders(reader, parseCtx, required); err != nil {
		return nil, stats, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeMissingColumn,
			fmt.Sprintf("failed to read headers from %s", filePath))
	}

	amountColumn, err := il.resolveAmountColumn(parseCtx, filePath)
	if err != nil {
		return nil, stats, err
	}

	var invoices []*models.Invoice

	for {
		record, err := il.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			if parseCtx.IsCancelled() {
				return invoices, stats, err
			}
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++

		invoice, parseErr := il.parseInvoiceFromRecord(record, parseCtx, amountColumn)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := invoice.Validate(); err != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   "invoice",
				Value:   invoice.InvoiceID,
				Message: "invoice validation failed",
				Err:     err,
			})
			continue
		}

		invoices = append(invoices, invoice)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	il.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"records_parsed": stats.RecordsParsed,
		"records_valid":  stats.RecordsValid,
		"error_count":    stats.ErrorCount,
	}).Info("Invoice loading completed")

	if stats.HasErrors() {
		il.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors while loading invoices")
	}

	return invoices, stats, nil
}

// resolveAmountColumn locates the amount header in the file: the configured
// column first, then the accepted fallback names.
func (il *InvoiceLoader) resolveAmountColumn(parseCtx *ParseContext, filePath string) (string, error) {
	configured := il.config.GetColumnName("amount")
	if parseCtx.GetColumnIndex(configured) != -1 {
		return configured, nil
	}

	for _, fallback := range invoiceAmountFallbacks {
		if parseCtx.GetColumnIndex(fallback) != -1 {
			il.logger.WithFields(logger.Fields{
				"configured_column": configured,
				"resolved_column":   fallback,
			}).Info("Amount column resolved through fallback name")
			return fallback, nil
		}
	}

	return "", errors.ParseError(
		errors.CodeMissingColumn,
		filePath,
		parseCtx.LineNumber,
		"headers",
		configured,
		nil,
	).WithSuggestion(fmt.Sprintf("Ensure the CSV file contains an amount column named '%s' or '%s'",
		configured, strings.Join(invoiceAmountFallbacks, "', '")))
}

func (il *InvoiceLoader) parseInvoiceFromRecord(record []string, parseCtx *ParseContext, amountColumn string) (*models.Invoice, *ParseError) {
	columns := []struct {
		name   string
		column string
	}{
		{"invoice_id", il.config.GetColumnName("invoice_id")},
		{"client_name", il.config.GetColumnName("client_name")},
		{"amount", amountColumn},
		{"currency", il.config.GetColumnName("currency")},
	}

	values := make(map[string]string)
	for _, field := range columns {
		value, err := il.GetFieldValue(record, parseCtx, field.column)
		if err != nil {
			return nil, &ParseError{
				Line:    parseCtx.LineNumber,
				Field:   field.column,
				Message: "missing required field",
				Err:     err,
			}
		}
		values[field.name] = value
	}

	matterID := il.GetOptionalFieldValue(record, parseCtx, il.config.GetColumnName("matter_id"))
	invoiceDate := il.GetOptionalFieldValue(record, parseCtx, il.config.GetColumnName("invoice_date"))
	dueDate := il.GetOptionalFieldValue(record, parseCtx, il.config.GetColumnName("due_date"))
	status := il.GetOptionalFieldValue(record, parseCtx, il.config.GetColumnName("status"))

	invoice, err := models.CreateInvoiceFromCSV(
		values["invoice_id"],
		values["client_name"],
		matterID,
		invoiceDate,
		values["amount"],
		values["currency"],
		dueDate,
		status,
	)
	if err != nil {
		il.logger.WithError(err).WithFields(logger.Fields{
			"line_number": parseCtx.LineNumber,
			"invoice_id":  values["invoice_id"],
		}).Warn("Failed to create invoice from CSV data")

		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   "invoice_data",
			Value:   values["invoice_id"],
			Message: "failed to create invoice from CSV data",
			Err:     err,
		}
	}

	return invoice, nil
}

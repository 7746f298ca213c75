package loader

import (
	"context"
	"fmt"
	"io"

	"golang-cashposting-service/internal/models"
	"golang-cashposting-service/pkg/errors"
	"golang-cashposting-service/pkg/logger"
)

// BankLoader reads bank statement CSV exports.
type BankLoader struct {
	*BaseParser
	config *BankParserConfig
	logger logger.Logger
}

// NewBankLoader creates a bank statement loader with the given configuration.
// A nil config selects the standard bank export layout.
func NewBankLoader(config *BankParserConfig) (*BankLoader, error) {
	if config == nil {
		config = DefaultBankParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"bank_loader_config",
			config,
			err,
		)
	}

	parseConfig := DefaultParseConfig()
	parseConfig.HasHeader = config.HasHeader
	parseConfig.Delimiter = config.Delimiter

	return &BankLoader{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("bank_loader"),
	}, nil
}

// LoadTransactions parses a CSV bank statement.
func (bl *BankLoader) LoadTransactions(filePath string) ([]*models.BankTransaction, *ParseStats, error) {
	return bl.LoadTransactionsWithContext(context.Background(), filePath)
}

// LoadTransactionsWithContext parses bank transactions with cancellation
// support. Rows that fail to parse or validate are recorded in the returned
// stats and skipped.
func (bl *BankLoader) LoadTransactionsWithContext(ctx context.Context, filePath string) ([]*models.BankTransaction, *ParseStats, error) {
	bl.logger.WithField("file_path", filePath).Info("Loading bank transactions")

	file, reader, err := bl.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	required := []string{
		bl.config.GetColumnName("reference_no"),
		bl.config.GetColumnName("payer_name"),
		bl.config.GetColumnName("amount"),
		bl.config.GetColumnName("currency"),
	}
	if err := bl.ReadHeaders(reader, parseCtx, required); err != nil {
		return nil, stats, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeMissingColumn,
			fmt.Sprintf("failed to read headers from %s", filePath))
	}

	var transactions []*models.BankTransaction

	for {
		record, err := bl.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			if parseCtx.IsCancelled() {
				return transactions, stats, err
			}
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++

		transaction, parseErr := bl.parseTransactionFromRecord(record, parseCtx)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := transaction.Validate(); err != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   "transaction",
				Value:   transaction.ReferenceNo,
				Message: "transaction validation failed",
				Err:     err,
			})
			continue
		}

		transactions = append(transactions, transaction)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	bl.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"records_parsed": stats.RecordsParsed,
		"records_valid":  stats.RecordsValid,
		"error_count":    stats.ErrorCount,
	}).Info("Bank transaction loading completed")

	if stats.HasErrors() {
		bl.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors while loading bank transactions")
	}

	return transactions, stats, nil
}

func (bl *BankLoader) parseTransactionFromRecord(record []string, parseCtx *ParseContext) (*models.BankTransaction, *ParseError) {
	values := make(map[string]string)
	for _, name := range []string{"reference_no", "payer_name", "amount", "currency"} {
		column := bl.config.GetColumnName(name)
		value, err := bl.GetFieldValue(record, parseCtx, column)
		if err != nil {
			return nil, &ParseError{
				Line:    parseCtx.LineNumber,
				Field:   column,
				Message: "missing required field",
				Err:     err,
			}
		}
		values[name] = value
	}

	valueDate := bl.GetOptionalFieldValue(record, parseCtx, bl.config.GetColumnName("value_date"))
	description := bl.GetOptionalFieldValue(record, parseCtx, bl.config.GetColumnName("description"))

	transaction, err := models.CreateBankTransactionFromCSV(
		valueDate,
		values["reference_no"],
		description,
		values["payer_name"],
		values["amount"],
		values["currency"],
	)
	if err != nil {
		bl.logger.WithError(err).WithFields(logger.Fields{
			"line_number":  parseCtx.LineNumber,
			"reference_no": values["reference_no"],
		}).Warn("Failed to create bank transaction from CSV data")

		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   "transaction_data",
			Value:   values["reference_no"],
			Message: "failed to create bank transaction from CSV data",
			Err:     err,
		}
	}

	return transaction, nil
}

package loader

import (
	"context"
	"fmt"
	"io"

	"golang-cashposting-service/internal/models"
	"golang-cashposting-service/pkg/errors"
	"golang-cashposting-service/pkg/logger"
)

// RemittanceLoader reads remittance advice CSV exports.
type RemittanceLoader struct {
	*BaseParser
	config *RemittanceParserConfig
	logger logger.Logger
}

// NewRemittanceLoader creates a remittance loader with the given
// configuration. A nil config selects the standard advice layout.
func NewRemittanceLoader(config *RemittanceParserConfig) (*RemittanceLoader, error) {
	if config == nil {
		config = DefaultRemittanceParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"remittance_loader_config",
			config,
			err,
		)
	}

	parseConfig := DefaultParseConfig()
	parseConfig.HasHeader = config.HasHeader
	parseConfig.Delimiter = config.Delimiter

	return &RemittanceLoader{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("remittance_loader"),
	}, nil
}

// LoadRemittances parses a CSV file of remittance advices.
func (rl *RemittanceLoader) LoadRemittances(filePath string) ([]*models.Remittance, *ParseStats, error) {
	return rl.LoadRemittancesWithContext(context.Background(), filePath)
}

// LoadRemittancesWithContext parses remittances with cancellation support.
// Rows that fail to parse or validate are recorded in the returned stats and
// skipped.
func (rl *RemittanceLoader) LoadRemittancesWithContext(ctx context.Context, filePath string) ([]*models.Remittance, *ParseStats, error) {
	rl.logger.WithField("file_path", filePath).Info("Loading remittance advices")

	file, reader, err := rl.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	required := []string{
		rl.config.GetColumnName("remittance_id"),
		rl.config.GetColumnName("payer_name"),
		rl.config.GetColumnName("invoice_reference"),
		rl.config.GetColumnName("payment_amount"),
	}
	if err := rl.ReadHeaders(reader, parseCtx, required); err != nil {
		return nil, stats, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeMissingColumn,
			fmt.Sprintf("failed to read headers from %s", filePath))
	}

	var remittances []*models.Remittance

	for {
		record, err := rl.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			if parseCtx.IsCancelled() {
				return remittances, stats, err
			}
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++

		remittance, parseErr := rl.parseRemittanceFromRecord(record, parseCtx)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := remittance.Validate(); err != nil {
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Field:   "remittance",
				Value:   remittance.RemittanceID,
				Message: "remittance validation failed",
				Err:     err,
			})
			continue
		}

		remittances = append(remittances, remittance)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	rl.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"records_parsed": stats.RecordsParsed,
		"records_valid":  stats.RecordsValid,
		"error_count":    stats.ErrorCount,
	}).Info("Remittance loading completed")

	if stats.HasErrors() {
		rl.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors while loading remittances")
	}

	return remittances, stats, nil
}

func (rl *RemittanceLoader) parseRemittanceFromRecord(record []string, parseCtx *ParseContext) (*models.Remittance, *ParseError) {
	values := make(map[string]string)
	for _, name := range []string{"remittance_id", "payer_name", "invoice_reference", "payment_amount"} {
		column := rl.config.GetColumnName(name)
		value, err := rl.GetFieldValue(record, parseCtx, column)
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

	notes := rl.GetOptionalFieldValue(record, parseCtx, rl.config.GetColumnName("notes"))

	remittance, err := models.CreateRemittanceFromCSV(
		values["remittance_id"],
		values["payer_name"],
		values["invoice_reference"],
		values["payment_amount"],
		notes,
	)
	if err != nil {
		rl.logger.WithError(err).WithFields(logger.Fields{
			"line_number":   parseCtx.LineNumber,
			"remittance_id": values["remittance_id"],
		}).Warn("Failed to create remittance from CSV data")

		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   "remittance_data",
			Value:   values["remittance_id"],
			Message: "failed to create remittance from CSV data",
			Err:     err,
		}
	}

	return remittance, nil
}

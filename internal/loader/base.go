// Package loader reads the three CSV inputs of a posting run: bank
// transactions, remittance advices, and open invoices.
//
// Each loader is configurable for the column layouts different billing and
// banking systems export. Parsing is tolerant by default: malformed rows are
// collected into ParseStats instead of aborting the run, so one bad line in a
// bank export does not block posting the rest of the batch.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang-cashposting-service/pkg/errors"
	"golang-cashposting-service/pkg/logger"
)

// ParseError represents an error that occurred during CSV parsing
type ParseError struct {
	Line    int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at line %d (%s='%s'): %s: %v",
			e.Line, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error at line %d (%s='%s'): %s",
		e.Line, e.Field, e.Value, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	HasHeader        bool
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	ValidateEncoding bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}
}

// BaseParser provides common CSV parsing functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	return &BaseParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("csv_loader"),
	}
}

// ParseContext holds state during parsing operations
type ParseContext struct {
	LineNumber int
	Headers    []string
	HeaderMap  map[string]int
	ctx        context.Context
}

// NewParseContext creates a new parsing context
func NewParseContext(ctx context.Context) *ParseContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ParseContext{
		HeaderMap: make(map[string]int),
		ctx:       ctx,
	}
}

// IsCancelled checks if the parsing context has been cancelled
func (pc *ParseContext) IsCancelled() bool {
	select {
	case <-pc.ctx.Done():
		return true
	default:
		return false
	}
}

// GetColumnIndex returns the index of a column by name, or -1 if not found.
// Lookup is exact first, then case-insensitive.
func (pc *ParseContext) GetColumnIndex(name string) int {
	if index, exists := pc.HeaderMap[name]; exists {
		return index
	}

	lowerName := strings.ToLower(name)
	for header, index := range pc.HeaderMap {
		if strings.ToLower(header) == lowerName {
			return index
		}
	}

	return -1
}

// OpenFile opens a CSV file and returns a configured csv.Reader
func (bp *BaseParser) OpenFile(filePath string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		bp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open CSV file")

		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, nil, errors.FileError(errors.CodeDirectoryError, filePath, err)
	}

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(file, filePath); err != nil {
			file.Close()
			return nil, nil, err
		}
		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
		}
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// validateEncoding checks the first lines of the file for valid UTF-8
func (bp *BaseParser) validateEncoding(file *os.File, filePath string) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(
				errors.CodeEncodingError,
				filePath,
				lineNum,
				"encoding",
				"",
				fmt.Errorf("invalid UTF-8 encoding detected"),
			)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	return nil
}

// ReadHeaders reads the header row and validates required columns are present
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, parseCtx *ParseContext, requiredHeaders []string) error {
	if !bp.config.HasHeader {
		parseCtx.Headers = make([]string, len(requiredHeaders))
		copy(parseCtx.Headers, requiredHeaders)
		bp.buildHeaderMap(parseCtx)
		return nil
	}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return errors.ValidationError(
				errors.CodeMissingField,
				"file_content",
				"empty",
				nil,
			).WithSuggestion("Ensure the file contains header and data rows")
		}

		return errors.ParseError(errors.CodeInvalidFormat, "", 1, "headers", "", err)
	}

	parseCtx.LineNumber++
	parseCtx.Headers = make([]string, len(headers))
	for i, header := range headers {
		parseCtx.Headers[i] = strings.TrimSpace(header)
	}
	bp.buildHeaderMap(parseCtx)

	var missing []string
	for _, header := range requiredHeaders {
		if parseCtx.GetColumnIndex(header) == -1 {
			missing = append(missing, header)
		}
	}
	if len(missing) > 0 {
		bp.logger.WithFields(logger.Fields{
			"missing_headers":   missing,
			"available_headers": parseCtx.Headers,
		}).Error("Required headers are missing")

		return errors.ParseError(
			errors.CodeMissingColumn,
			"",
			parseCtx.LineNumber,
			"headers",
			strings.Join(missing, ", "),
			nil,
		).WithSuggestion(fmt.Sprintf("Ensure the CSV file contains these headers: %s", strings.Join(missing, ", ")))
	}

	return nil
}

func (bp *BaseParser) buildHeaderMap(parseCtx *ParseContext) {
	parseCtx.HeaderMap = make(map[string]int)
	for i, header := range parseCtx.Headers {
		parseCtx.HeaderMap[header] = i
	}
}

// ReadRecord reads the next CSV record, skipping empty rows if configured
func (bp *BaseParser) ReadRecord(reader *csv.Reader, parseCtx *ParseContext) ([]string, error) {
	for {
		if parseCtx.IsCancelled() {
			return nil, errors.InternalError(
				errors.CodeUnexpectedError,
				"csv_parsing",
				fmt.Errorf("parsing cancelled"),
			)
		}

		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err
			}
			bp.logger.WithError(err).WithField("line_number", parseCtx.LineNumber+1).Warn("Failed to read CSV record")
			return nil, err
		}

		parseCtx.LineNumber++

		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}

		return record, nil
	}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// GetFieldValue retrieves a trimmed field value by column name
func (bp *BaseParser) GetFieldValue(record []string, parseCtx *ParseContext, fieldName string) (string, error) {
	index := parseCtx.GetColumnIndex(fieldName)
	if index == -1 {
		return "", errors.ParseError(
			errors.CodeMissingColumn,
			"",
			parseCtx.LineNumber,
			fieldName,
			"",
			fmt.Errorf("field '%s' not found in headers", fieldName),
		).WithSuggestion(fmt.Sprintf("Check the CSV headers. Available headers: %v", parseCtx.Headers))
	}

	if index >= len(record) {
		return "", errors.ParseError(
			errors.CodeInvalidData,
			"",
			parseCtx.LineNumber,
			fieldName,
			"",
			fmt.Errorf("field '%s' (index %d) not present in record with %d fields", fieldName, index, len(record)),
		).WithSuggestion("Check that all rows have the same number of columns as the header")
	}

	return strings.TrimSpace(record[index]), nil
}

// GetOptionalFieldValue retrieves a field value, returning empty string when
// the column is absent from the file.
func (bp *BaseParser) GetOptionalFieldValue(record []string, parseCtx *ParseContext, fieldName string) string {
	index := parseCtx.GetColumnIndex(fieldName)
	if index == -1 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	TotalLines    int
	RecordsParsed int
	RecordsValid  int
	ErrorCount    int
	Errors        []*ParseError
}

// NewParseStats creates a new ParseStats instance
func NewParseStats() *ParseStats {
	return &ParseStats{
		Errors: make([]*ParseError, 0),
	}
}

// AddError adds an error to the parsing statistics
func (ps *ParseStats) AddError(err *ParseError) {
	ps.Errors = append(ps.Errors, err)
	ps.ErrorCount++
}

// HasErrors returns true if there were any parsing errors
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records (%d valid), %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.RecordsValid, ps.ErrorCount)
}

// GetSampleErrors returns up to maxSamples error messages for logging
func (ps *ParseStats) GetSampleErrors(maxSamples int) []string {
	if len(ps.Errors) == 0 {
		return nil
	}

	limit := len(ps.Errors)
	if maxSamples > 0 && maxSamples < limit {
		limit = maxSamples
	}

	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Errors[i].Error())
	}

	return samples
}

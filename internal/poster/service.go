// Package poster orchestrates a cash posting run: it loads bank transactions,
// remittance advices, and open invoices, matches each payment through the
// matching engine, and produces posting records with run-level statistics.
package poster

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"golang-cashposting-service/internal/loader"
	"golang-cashposting-service/internal/matcher"
	"golang-cashposting-service/internal/models"
	"golang-cashposting-service/pkg/logger"
)

// PostingService wires the loaders and the matching engine into a batch
// posting pipeline.
type PostingService struct {
	bankLoader       *loader.BankLoader
	remittanceLoader *loader.RemittanceLoader
	invoiceLoader    *loader.InvoiceLoader
	matchingEngine   *matcher.MatchingEngine
	config           *Config
	logger           logger.Logger
}

// Config holds configuration options for the posting service
type Config struct {
	// Workers sets the number of concurrent matching workers.
	// 1 means sequential processing.
	Workers int

	// Processing options
	ProgressReporting bool
	ValidateInputs    bool

	// Output options
	IncludeStatistics bool
	GenerateLedger    bool
}

// DefaultConfig returns a default configuration for the posting service
func DefaultConfig() *Config {
	return &Config{
		Workers:           1,
		ProgressReporting: false,
		ValidateInputs:    true,
		IncludeStatistics: true,
		GenerateLedger:    true,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// PostingRequest describes the three input files of a posting run.
type PostingRequest struct {
	BankFile       string
	RemittanceFile string
	InvoiceFile    string

	BankConfig       *loader.BankParserConfig
	RemittanceConfig *loader.RemittanceParserConfig
	InvoiceConfig    *loader.InvoiceParserConfig
}

// Validate validates the posting request
func (r *PostingRequest) Validate() error {
	if r.BankFile == "" {
		return fmt.Errorf("bank transactions file path is required")
	}
	if r.RemittanceFile == "" {
		return fmt.Errorf("remittance advices file path is required")
	}
	if r.InvoiceFile == "" {
		return fmt.Errorf("invoices file path is required")
	}
	return nil
}

// RunResult contains the complete results of a posting run
type RunResult struct {
	RunID       uuid.UUID `json:"run_id"`
	ProcessedAt time.Time `json:"processed_at"`

	Postings  []*models.MatchedPosting  `json:"postings"`
	Unmatched []*models.BankTransaction `json:"unmatched,omitempty"`

	LedgerEntries []*LedgerEntry `json:"ledger_entries,omitempty"`

	Summary *RunSummary      `json:"summary"`
	Stats   *ProcessingStats `json:"processing_stats,omitempty"`
}

// RunSummary provides a high-level overview of a posting run
type RunSummary struct {
	// Payment counts
	TotalPayments     int `json:"total_payments"`
	MatchedPayments   int `json:"matched_payments"`
	UnmatchedPayments int `json:"unmatched_payments"`

	// Match rate in percent, rounded to two decimal places
	MatchRate float64 `json:"match_rate"`

	// Match quality breakdown
	ExactMatches       int `json:"exact_matches"`
	ReferenceMatches   int `json:"reference_matches"`
	FuzzyNameMatches   int `json:"fuzzy_name_matches"`
	FuzzyAmountMatches int `json:"fuzzy_amount_matches"`
	ContextualMatches  int `json:"contextual_matches"`

	// Financial summary
	TotalBankAmount   decimal.Decimal `json:"total_bank_amount"`
	TotalPostedAmount decimal.Decimal `json:"total_posted_amount"`
	NetDifference     decimal.Decimal `json:"net_difference"`

	ProcessingDuration time.Duration `json:"processing_duration"`
}

// ProcessingStats contains detailed processing statistics
type ProcessingStats struct {
	ParseErrors      int `json:"parse_errors"`
	ValidationErrors int `json:"validation_errors"`

	RecordsPerSecond    float64       `json:"records_per_second"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`
	LoadingTime         time.Duration `json:"loading_time"`
	MatchingTime        time.Duration `json:"matching_time"`
}

// NewPostingService creates a new posting service
func NewPostingService(
	bankConfig *loader.BankParserConfig,
	remittanceConfig *loader.RemittanceParserConfig,
	invoiceConfig *loader.InvoiceParserConfig,
	matchingConfig *matcher.MatchingConfig,
	config *Config,
) (*PostingService, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	bankLoader, err := loader.NewBankLoader(bankConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank loader: %w", err)
	}

	remittanceLoader, err := loader.NewRemittanceLoader(remittanceConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create remittance loader: %w", err)
	}

	invoiceLoader, err := loader.NewInvoiceLoader(invoiceConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice loader: %w", err)
	}

	return &PostingService{
		bankLoader:       bankLoader,
		remittanceLoader: remittanceLoader,
		invoiceLoader:    invoiceLoader,
		matchingEngine:   matcher.NewMatchingEngine(matchingConfig),
		config:           config,
		logger:           logger.GetGlobalLogger().WithComponent("posting_service"),
	}, nil
}

// ProcessPostingRun performs a complete posting run over the request's files.
func (ps *PostingService) ProcessPostingRun(
	ctx context.Context,
	request *PostingRequest,
) (*RunResult, error) {
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	startTime := time.Now()
	result := &RunResult{
		RunID:       uuid.New(),
		ProcessedAt: startTime,
		Summary:     &RunSummary{},
	}

	ps.logger.WithFields(logger.Fields{
		"run_id":          result.RunID.String(),
		"bank_file":       request.BankFile,
		"remittance_file": request.RemittanceFile,
		"invoice_file":    request.InvoiceFile,
	}).Info("Starting posting run")

	loadStart := time.Now()
	transactions, remittances, invoices, parseErrors, err := ps.loadInputs(ctx, request)
	if err != nil {
		return nil, err
	}
	loadingTime := time.Since(loadStart)

	matchStart := time.Now()
	postings, unmatched, err := ps.matchPayments(ctx, transactions, remittances, invoices)
	if err != nil {
		return nil, err
	}
	matchingTime := time.Since(matchStart)

	result.Postings = postings
	result.Unmatched = unmatched

	if ps.config.GenerateLedger {
		result.LedgerEntries = GenerateLedgerEntries(postings, result.ProcessedAt)
	}

	ps.buildSummary(result, transactions, time.Since(startTime))

	if ps.config.IncludeStatistics {
		totalTime := time.Since(startTime)
		stats := &ProcessingStats{
			ParseErrors:         parseErrors,
			TotalProcessingTime: totalTime,
			LoadingTime:         loadingTime,
			MatchingTime:        matchingTime,
		}
		if totalTime.Seconds() > 0 {
			stats.RecordsPerSecond = float64(len(transactions)) / totalTime.Seconds()
		}
		result.Stats = stats
	}

	ps.logger.WithFields(logger.Fields{
		"run_id":     result.RunID.String(),
		"total":      result.Summary.TotalPayments,
		"matched":    result.Summary.MatchedPayments,
		"unmatched":  result.Summary.UnmatchedPayments,
		"match_rate": result.Summary.MatchRate,
		"duration":   result.Summary.ProcessingDuration.String(),
	}).Info("Posting run completed")

	return result, nil
}

// loadInputs loads the three input files and accumulates their parse error
// counts.
func (ps *PostingService) loadInputs(
	ctx context.Context,
	request *PostingRequest,
) ([]*models.BankTransaction, []*models.Remittance, []*models.Invoice, int, error) {
	transactions, bankStats, err := ps.bankLoader.LoadTransactionsWithContext(ctx, request.BankFile)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("failed to load bank transactions: %w", err)
	}

	remittances, remitStats, err := ps.remittanceLoader.LoadRemittancesWithContext(ctx, request.RemittanceFile)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("failed to load remittances: %w", err)
	}

	invoices, invoiceStats, err := ps.invoiceLoader.LoadInvoicesWithContext(ctx, request.InvoiceFile)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("failed to load invoices: %w", err)
	}

	parseErrors := bankStats.ErrorCount + remitStats.ErrorCount + invoiceStats.ErrorCount

	if ps.config.ValidateInputs && len(transactions) == 0 {
		return nil, nil, nil, parseErrors, fmt.Errorf("bank file %s contains no valid transactions", request.BankFile)
	}

	return transactions, remittances, invoices, parseErrors, nil
}

// matchPayments runs the matching engine over every payment. Output order
// follows input order regardless of worker count.
func (ps *PostingService) matchPayments(
	ctx context.Context,
	transactions []*models.BankTransaction,
	remittances []*models.Remittance,
	invoices []*models.Invoice,
) ([]*models.MatchedPosting, []*models.BankTransaction, error) {
	var tracker *logger.ProgressTracker
	if ps.config.ProgressReporting {
		tracker = logger.NewProgressTracker(logger.ProgressConfig{
			Operation: "payment_matching",
			Total:     int64(len(transactions)),
			Logger:    ps.logger,
		})
	}

	results := make([]*models.MatchedPosting, len(transactions))

	if ps.config.Workers > 1 {
		if err := ps.matchConcurrent(ctx, transactions, remittances, invoices, results, tracker); err != nil {
			if tracker != nil {
				tracker.CompleteWithError(err)
			}
			return nil, nil, err
		}
	} else {
		for i, tx := range transactions {
			select {
			case <-ctx.Done():
				if tracker != nil {
					tracker.CompleteWithError(ctx.Err())
				}
				return nil, nil, fmt.Errorf("matching cancelled: %w", ctx.Err())
			default:
			}

			if posting, ok := ps.matchingEngine.MatchPayment(tx, remittances, invoices); ok {
				results[i] = posting
			}
			if tracker != nil {
				tracker.Increment()
			}
		}
	}

	if tracker != nil {
		tracker.Complete()
	}

	var postings []*models.MatchedPosting
	var unmatched []*models.BankTransaction
	for i, posting := range results {
		if posting != nil {
			postings = append(postings, posting)
		} else {
			unmatched = append(unmatched, transactions[i])
		}
	}

	return postings, unmatched, nil
}

// matchConcurrent fans payment indices out to a fixed pool of workers. Each
// worker writes only its own result slots, so no locking is needed.
func (ps *PostingService) matchConcurrent(
	ctx context.Context,
	transactions []*models.BankTransaction,
	remittances []*models.Remittance,
	invoices []*models.Invoice,
	results []*models.MatchedPosting,
	tracker *logger.ProgressTracker,
) error {
	workers := ps.config.Workers
	if workers > len(transactions) {
		workers = len(transactions)
	}

	indices := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if posting, ok := ps.matchingEngine.MatchPayment(transactions[i], remittances, invoices); ok {
					results[i] = posting
				}
				if tracker != nil {
					tracker.Increment()
				}
			}
		}()
	}

	go func() {
		defer close(indices)
		for i := range transactions {
			select {
			case <-ctx.Done():
				errs <- fmt.Errorf("matching cancelled: %w", ctx.Err())
				return
			case indices <- i:
			}
		}
	}()

	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return err
	}
	return nil
}

// buildSummary fills in the run summary counts, amounts, and match rate.
func (ps *PostingService) buildSummary(result *RunResult, transactions []*models.BankTransaction, duration time.Duration) {
	summary := result.Summary

	summary.TotalPayments = len(transactions)
	summary.MatchedPayments = len(result.Postings)
	summary.UnmatchedPayments = len(result.Unmatched)
	summary.ProcessingDuration = duration

	if summary.TotalPayments > 0 {
		rate := float64(summary.MatchedPayments) / float64(summary.TotalPayments) * 100
		summary.MatchRate = math.Round(rate*100) / 100
	}

	totalBank := decimal.Zero
	for _, tx := range transactions {
		totalBank = totalBank.Add(tx.Amount)
	}
	summary.TotalBankAmount = totalBank

	totalPosted := decimal.Zero
	for _, posting := range result.Postings {
		totalPosted = totalPosted.Add(posting.BankAmount)

		switch posting.MatchType {
		case matcher.MatchExact:
			summary.ExactMatches++
		case matcher.MatchReference:
			summary.ReferenceMatches++
		case matcher.MatchFuzzyName:
			summary.FuzzyNameMatches++
		case matcher.MatchFuzzyAmount:
			summary.FuzzyAmountMatches++
		case matcher.MatchContextual:
			summary.ContextualMatches++
		}
	}
	summary.TotalPostedAmount = totalPosted
	summary.NetDifference = totalBank.Sub(totalPosted)
}

// UpdateConfiguration updates the service configuration
func (ps *PostingService) UpdateConfiguration(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ps.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (ps *PostingService) GetConfiguration() *Config {
	return ps.config
}

// GetMatchingEngine exposes the underlying matching engine so callers can
// inspect the thresholds in effect for a run.
func (ps *PostingService) GetMatchingEngine() *matcher.MatchingEngine {
	return ps.matchingEngine
}

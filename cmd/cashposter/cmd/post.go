package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang-cashposting-service/cmd/cashposter/config"
	"golang-cashposting-service/internal/poster"
	"golang-cashposting-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the post command
var (
	bankFile       string
	remittanceFile string
	invoiceFile    string
	outputFormat   string
	outputFile     string
	outputDir      string

	matchingProfile string
	nameThreshold   float64
	amountThreshold float64
	fuzzyMinScore   float64

	workers       int
	showProgress  bool
	includeLedger bool
)

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Match bank payments against open invoices and generate postings",
	Long: `Post matches each incoming bank payment against open invoices and
produces posting records for the ledger.

This command requires:
- A bank transactions file (CSV format)
- A remittance advices file (CSV format)
- An open invoices file (CSV format)

Examples:
  # Basic posting run, console report
  cashposter post -b bank.csv -r remittances.csv -i invoices.csv

  # JSON report to a file
  cashposter post -b bank.csv -r remittances.csv -i invoices.csv \
    --output-format json --output-file report.json

  # Write the Matched_Postings CSV into an output directory
  cashposter post -b bank.csv -r remittances.csv -i invoices.csv \
    --output-dir ./postings

  # Stricter matching with progress indicators
  cashposter post -b bank.csv -r remittances.csv -i invoices.csv \
    --profile strict --progress

  # Parallel matching for large batches
  cashposter post -b bank.csv -r remittances.csv -i invoices.csv --workers 4`,

	PreRunE: validatePostFlags,
	RunE:    runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)

	// Required flags
	postCmd.Flags().StringVarP(&bankFile, "bank-file", "b", "", "path to bank transactions CSV file (required)")
	postCmd.Flags().StringVarP(&remittanceFile, "remittance-file", "r", "", "path to remittance advices CSV file (required)")
	postCmd.Flags().StringVarP(&invoiceFile, "invoice-file", "i", "", "path to open invoices CSV file (required)")

	// Output flags
	postCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	postCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	postCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the timestamped Matched_Postings CSV (optional)")

	// Matching configuration flags
	postCmd.Flags().StringVar(&matchingProfile, "profile", "default", "matching profile: default, strict, relaxed")
	postCmd.Flags().Float64Var(&nameThreshold, "name-threshold", 0, "remittance payer-name similarity threshold override (0-1)")
	postCmd.Flags().Float64Var(&amountThreshold, "amount-threshold", 0, "remittance amount similarity threshold override (0-1)")
	postCmd.Flags().Float64Var(&fuzzyMinScore, "fuzzy-min-score", 0, "fuzzy combined score floor override (0-1)")

	// Processing flags
	postCmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of concurrent matching workers")
	postCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")
	postCmd.Flags().BoolVar(&includeLedger, "ledger", false, "include generated ledger entries in the report")

	postCmd.MarkFlagRequired("bank-file")
	postCmd.MarkFlagRequired("remittance-file")
	postCmd.MarkFlagRequired("invoice-file")

	viper.BindPFlag("bank-file", postCmd.Flags().Lookup("bank-file"))
	viper.BindPFlag("remittance-file", postCmd.Flags().Lookup("remittance-file"))
	viper.BindPFlag("invoice-file", postCmd.Flags().Lookup("invoice-file"))
	viper.BindPFlag("output-format", postCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", postCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("output-dir", postCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("profile", postCmd.Flags().Lookup("profile"))
	viper.BindPFlag("name-threshold", postCmd.Flags().Lookup("name-threshold"))
	viper.BindPFlag("amount-threshold", postCmd.Flags().Lookup("amount-threshold"))
	viper.BindPFlag("fuzzy-min-score", postCmd.Flags().Lookup("fuzzy-min-score"))
	viper.BindPFlag("workers", postCmd.Flags().Lookup("workers"))
	viper.BindPFlag("progress", postCmd.Flags().Lookup("progress"))
	viper.BindPFlag("ledger", postCmd.Flags().Lookup("ledger"))
}

func validatePostFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	bankFile = viper.GetString("bank-file")
	remittanceFile = viper.GetString("remittance-file")
	invoiceFile = viper.GetString("invoice-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	outputDir = viper.GetString("output-dir")
	matchingProfile = viper.GetString("profile")
	nameThreshold = viper.GetFloat64("name-threshold")
	amountThreshold = viper.GetFloat64("amount-threshold")
	fuzzyMinScore = viper.GetFloat64("fuzzy-min-score")
	workers = viper.GetInt("workers")
	showProgress = viper.GetBool("progress")
	includeLedger = viper.GetBool("ledger")

	if err := validateFileExists(bankFile, "bank transactions file"); err != nil {
		return err
	}
	if err := validateFileExists(remittanceFile, "remittance advices file"); err != nil {
		return err
	}
	if err := validateFileExists(invoiceFile, "invoices file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	validProfiles := map[string]bool{"default": true, "strict": true, "relaxed": true}
	if !validProfiles[matchingProfile] {
		return fmt.Errorf("invalid matching profile '%s'. Valid profiles: default, strict, relaxed", matchingProfile)
	}

	for name, value := range map[string]float64{
		"name-threshold":   nameThreshold,
		"amount-threshold": amountThreshold,
		"fuzzy-min-score":  fuzzyMinScore,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, value)
		}
	}

	if workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", workers)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting posting run...\n")
		fmt.Fprintf(os.Stderr, "Bank file:       %s\n", bankFile)
		fmt.Fprintf(os.Stderr, "Remittance file: %s\n", remittanceFile)
		fmt.Fprintf(os.Stderr, "Invoice file:    %s\n", invoiceFile)
		fmt.Fprintf(os.Stderr, "Output format:   %s\n", outputFormat)
	}

	matchingConfig, err := config.CreateMatchingConfig(matchingProfile, nameThreshold, amountThreshold, fuzzyMinScore)
	if err != nil {
		return fmt.Errorf("failed to create matching config: %w", err)
	}

	posterConfig := config.CreatePosterConfig(workers, showProgress, includeLedger)

	service, err := poster.NewPostingService(
		config.CreateBankParserConfig(),
		config.CreateRemittanceParserConfig(),
		config.CreateInvoiceParserConfig(),
		matchingConfig,
		posterConfig,
	)
	if err != nil {
		return fmt.Errorf("failed to create posting service: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Matching:        %s\n", service.GetMatchingEngine().GetConfiguration())
	}

	request := &poster.PostingRequest{
		BankFile:       bankFile,
		RemittanceFile: remittanceFile,
		InvoiceFile:    invoiceFile,
	}

	result, err := service.ProcessPostingRun(ctx, request)
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	reportConfig := config.CreateReportConfig(outputFormat, includeLedger)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if outputDir != "" {
		path, err := reportGenerator.WritePostingsFile(result, outputDir)
		if err != nil {
			return fmt.Errorf("failed to write postings file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Postings written to %s\n", path)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nPosting run completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d payments: %d matched, %d unmatched (%.2f%% match rate).\n",
			result.Summary.TotalPayments, result.Summary.MatchedPayments,
			result.Summary.UnmatchedPayments, result.Summary.MatchRate)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Summary.ProcessingDuration)
	}

	return nil
}

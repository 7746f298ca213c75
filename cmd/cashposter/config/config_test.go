package config

import (
	"testing"

	"golang-cashposting-service/internal/matcher"
	"golang-cashposting-service/internal/reporter"
)

func TestCreateMatchingConfig(t *testing.T) {
	t.Run("profiles", func(t *testing.T) {
		for _, profile := range []string{"", "default", "strict", "relaxed"} {
			config, err := CreateMatchingConfig(profile, 0, 0, 0)
			if err != nil {
				t.Errorf("profile %q rejected: %v", profile, err)
				continue
			}
			if err := config.Validate(); err != nil {
				t.Errorf("profile %q produced invalid config: %v", profile, err)
			}
		}
	})

	t.Run("strict raises thresholds over default", func(t *testing.T) {
		def, _ := CreateMatchingConfig("default", 0, 0, 0)
		strict, _ := CreateMatchingConfig("strict", 0, 0, 0)

		if strict.FuzzyMinScore <= def.FuzzyMinScore {
			t.Errorf("strict FuzzyMinScore %v not above default %v", strict.FuzzyMinScore, def.FuzzyMinScore)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		if _, err := CreateMatchingConfig("aggressive", 0, 0, 0); err == nil {
			t.Error("expected an error for an unknown profile")
		}
	})

	t.Run("zero overrides keep profile values", func(t *testing.T) {
		config, err := CreateMatchingConfig("default", 0, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		base := matcher.DefaultMatchingConfig()
		if config.RemittanceNameThreshold != base.RemittanceNameThreshold {
			t.Errorf("name threshold = %v, want %v", config.RemittanceNameThreshold, base.RemittanceNameThreshold)
		}
		if config.FuzzyMinScore != base.FuzzyMinScore {
			t.Errorf("fuzzy min score = %v, want %v", config.FuzzyMinScore, base.FuzzyMinScore)
		}
	})

	t.Run("non-zero overrides applied", func(t *testing.T) {
		config, err := CreateMatchingConfig("default", 0.75, 0.9, 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.RemittanceNameThreshold != 0.75 {
			t.Errorf("name threshold = %v, want 0.75", config.RemittanceNameThreshold)
		}
		if config.RemittanceAmountThreshold != 0.9 {
			t.Errorf("amount threshold = %v, want 0.9", config.RemittanceAmountThreshold)
		}
		if config.FuzzyMinScore != 0.8 {
			t.Errorf("fuzzy min score = %v, want 0.8", config.FuzzyMinScore)
		}
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		if _, err := CreateMatchingConfig("default", 1.5, 0, 0); err == nil {
			t.Error("expected an error for a threshold above 1")
		}
	})
}

func TestCreatePosterConfig(t *testing.T) {
	config := CreatePosterConfig(4, true, false)

	if config.Workers != 4 {
		t.Errorf("Workers = %d, want 4", config.Workers)
	}
	if !config.ProgressReporting {
		t.Error("ProgressReporting not set")
	}
	if config.GenerateLedger {
		t.Error("GenerateLedger should be off")
	}
	if !config.IncludeStatistics {
		t.Error("IncludeStatistics should stay on")
	}
}

func TestCreateReportConfig(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		config := CreateReportConfig("console", false)

		if config.Format != reporter.FormatConsole {
			t.Errorf("Format = %s, want console", config.Format)
		}
		if !config.IncludePostings || !config.IncludeUnmatched {
			t.Error("console report should include postings and unmatched payments")
		}
	})

	t.Run("csv keeps only the ledger payload", func(t *testing.T) {
		config := CreateReportConfig("csv", false)

		if config.Format != reporter.FormatCSV {
			t.Errorf("Format = %s, want csv", config.Format)
		}
		if !config.CSVHeaders {
			t.Error("CSV headers should be on")
		}
		if config.IncludeUnmatched {
			t.Error("CSV export must not include unmatched payments")
		}
		if config.IncludeProcessingStats {
			t.Error("CSV export must not include processing stats")
		}
	})

	t.Run("ledger flag propagates", func(t *testing.T) {
		if !CreateReportConfig("json", true).IncludeLedgerEntries {
			t.Error("IncludeLedgerEntries not set")
		}
		if CreateReportConfig("json", false).IncludeLedgerEntries {
			t.Error("IncludeLedgerEntries should be off")
		}
	})
}

func TestCreateParserConfigs(t *testing.T) {
	if err := CreateBankParserConfig().Validate(); err != nil {
		t.Errorf("bank parser config invalid: %v", err)
	}
	if err := CreateRemittanceParserConfig().Validate(); err != nil {
		t.Errorf("remittance parser config invalid: %v", err)
	}
	if err := CreateInvoiceParserConfig().Validate(); err != nil {
		t.Errorf("invoice parser config invalid: %v", err)
	}
}

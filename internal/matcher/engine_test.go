package matcher

import (
	"strconv"
	"strings"
	"testing"

	"golang-cashposting-service/internal/models"
)

func parseConfidence(t *testing.T, confidence string) int {
	t.Helper()

	if !strings.HasSuffix(confidence, "%") {
		t.Fatalf("confidence %q does not end in %%", confidence)
	}
	value, err := strconv.Atoi(strings.TrimSuffix(confidence, "%"))
	if err != nil {
		t.Fatalf("confidence %q is not a whole percent: %v", confidence, err)
	}
	return value
}

func TestMatchPayment(t *testing.T) {
	engine := NewMatchingEngine(nil)

	t.Run("remittance linked payment posts as exact", func(t *testing.T) {
		tx := testTx("Acme Holdings", "1000.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme", "INV-100", "1000.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "1000.00", "USD"),
		}

		posting, ok := engine.MatchPayment(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a posting")
		}

		if posting.MatchType != MatchExact {
			t.Errorf("MatchType = %q, want %q", posting.MatchType, MatchExact)
		}
		if posting.MatchedInvoice != "INV-100" {
			t.Errorf("MatchedInvoice = %q, want INV-100", posting.MatchedInvoice)
		}
		if posting.PostingStatus != models.PostingStatusAutoPosted {
			t.Errorf("PostingStatus = %q, want %q", posting.PostingStatus, models.PostingStatusAutoPosted)
		}
		if got := parseConfidence(t, posting.Confidence); got < 95 {
			t.Errorf("Confidence = %d%%, want at least 95%%", got)
		}
		if !posting.AmountDifference.IsZero() {
			t.Errorf("AmountDifference = %s, want 0", posting.AmountDifference)
		}
	})

	t.Run("fuzzy fallback when no remittance links", func(t *testing.T) {
		tx := testTx("Acme Corp", "1000.00", "USD")
		invoices := []*models.Invoice{
			testInvoice("INV-1", "Acme Corp", "950.00", "USD"),
		}

		posting, ok := engine.MatchPayment(tx, nil, invoices)
		if !ok {
			t.Fatal("expected a posting")
		}

		if posting.MatchType != MatchFuzzyAmount {
			t.Errorf("MatchType = %q, want %q", posting.MatchType, MatchFuzzyAmount)
		}
		// Overpayment of 50 against the invoice.
		if posting.AmountDifference.String() != "50" {
			t.Errorf("AmountDifference = %s, want 50", posting.AmountDifference)
		}
	})

	t.Run("reference stage shadows a better fuzzy candidate", func(t *testing.T) {
		tx := testTx("Acme Corp", "1000.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme Corp", "INV-OLD", "950.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-OLD", "Acme Corp", "950.00", "USD"),
			testInvoice("INV-NEW", "Acme Corp", "1000.00", "USD"),
		}

		posting, ok := engine.MatchPayment(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a posting")
		}
		if posting.MatchedInvoice != "INV-OLD" {
			t.Errorf("MatchedInvoice = %q, want INV-OLD from the reference stage", posting.MatchedInvoice)
		}
	})

	t.Run("no match leaves the payment unposted", func(t *testing.T) {
		tx := testTx("Wxyz", "1000.00", "USD")
		invoices := []*models.Invoice{
			testInvoice("INV-1", "Qjkv", "10.00", "USD"),
		}

		posting, ok := engine.MatchPayment(tx, nil, invoices)
		if ok {
			t.Fatalf("expected no posting, got %v", posting)
		}
		if posting != nil {
			t.Error("posting should be nil on no match")
		}
	})

	t.Run("matching is idempotent", func(t *testing.T) {
		tx := testTx("Acme Holdings", "1000.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme", "INV-100", "1000.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "1000.00", "USD"),
			testInvoice("INV-200", "Acme Corp", "1000.00", "USD"),
		}

		first, ok := engine.MatchPayment(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a posting")
		}
		second, ok := engine.MatchPayment(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a posting on the second run")
		}

		if !first.Equals(second) {
			t.Errorf("repeated runs disagree: %v vs %v", first, second)
		}
	})
}

func TestEngineConfiguration(t *testing.T) {
	t.Run("nil config selects defaults", func(t *testing.T) {
		engine := NewMatchingEngine(nil)
		if engine.Config == nil {
			t.Fatal("expected a default configuration")
		}
		if err := engine.ValidateConfiguration(); err != nil {
			t.Errorf("default configuration invalid: %v", err)
		}
	})

	t.Run("get returns a copy", func(t *testing.T) {
		engine := NewMatchingEngine(nil)
		copy := engine.GetConfiguration()
		copy.FuzzyMinScore = 0.99

		if engine.Config.FuzzyMinScore == 0.99 {
			t.Error("mutating the copy changed the engine configuration")
		}
	})

	t.Run("update rejects invalid config", func(t *testing.T) {
		engine := NewMatchingEngine(nil)
		bad := DefaultMatchingConfig()
		bad.NameWeight = 0.9 // weights no longer sum to one

		if err := engine.UpdateConfiguration(bad); err == nil {
			t.Error("expected an error for invalid configuration")
		}
	})

	t.Run("profiles validate", func(t *testing.T) {
		for name, config := range map[string]*MatchingConfig{
			"default": DefaultMatchingConfig(),
			"strict":  StrictMatchingConfig(),
			"relaxed": RelaxedMatchingConfig(),
		} {
			if err := config.Validate(); err != nil {
				t.Errorf("%s profile invalid: %v", name, err)
			}
		}
	})
}

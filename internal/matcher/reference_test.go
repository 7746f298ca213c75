package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-cashposting-service/internal/models"
)

func testTx(payer, amount, currency string) *models.BankTransaction {
	return models.NewBankTransaction(
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"TXN-001",
		"incoming wire",
		payer,
		decimal.RequireFromString(amount),
		currency,
	)
}

func testInvoice(id, client, amount, currency string) *models.Invoice {
	return models.NewInvoice(
		id,
		client,
		"M-100",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString(amount),
		currency,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"Open",
	)
}

func testRemittance(id, payer, invoiceRef, amount string) *models.Remittance {
	return models.NewRemittance(id, payer, invoiceRef, decimal.RequireFromString(amount), "")
}

func TestMatchByReference(t *testing.T) {
	engine := NewMatchingEngine(nil)

	t.Run("exact when amount matches invoice", func(t *testing.T) {
		tx := testTx("Acme Corp", "1000.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme Corp", "INV-100", "1000.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "1000.00", "USD"),
		}

		match, ok := engine.MatchByReference(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a match")
		}
		if match.MatchType != MatchExact {
			t.Errorf("MatchType = %q, want %q", match.MatchType, MatchExact)
		}
		if match.Invoice.InvoiceID != "INV-100" {
			t.Errorf("matched invoice = %q, want INV-100", match.Invoice.InvoiceID)
		}
		if match.Confidence > engine.Config.ExactConfidenceCap {
			t.Errorf("confidence %d exceeds cap %d", match.Confidence, engine.Config.ExactConfidenceCap)
		}
	})

	t.Run("reference when amount deviates", func(t *testing.T) {
		// 920 against 1000 keeps amount similarity at 0.84, below the
		// exact classification threshold but above the remittance gate.
		tx := testTx("Acme Corp", "920.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme Corp", "INV-100", "920.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "1000.00", "USD"),
		}

		match, ok := engine.MatchByReference(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a match")
		}
		if match.MatchType != MatchReference {
			t.Errorf("MatchType = %q, want %q", match.MatchType, MatchReference)
		}
		if match.Confidence > engine.Config.ReferenceConfidenceCap {
			t.Errorf("confidence %d exceeds cap %d", match.Confidence, engine.Config.ReferenceConfidenceCap)
		}
	})

	t.Run("first qualifying remittance wins regardless of later scores", func(t *testing.T) {
		tx := testTx("Acme Corp", "100.00", "USD")
		remittances := []*models.Remittance{
			// Qualifies with a lower amount similarity.
			testRemittance("REM-1", "Acme Holdings", "INV-1", "95.00"),
			// Would score higher but is visited second.
			testRemittance("REM-2", "Acme Corp", "INV-2", "100.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-1", "Acme Corp", "95.00", "USD"),
			testInvoice("INV-2", "Acme Corp", "100.00", "USD"),
		}

		match, ok := engine.MatchByReference(tx, remittances, invoices)
		if !ok {
			t.Fatal("expected a match")
		}
		if match.Remittance.RemittanceID != "REM-1" {
			t.Errorf("selected remittance = %q, want REM-1", match.Remittance.RemittanceID)
		}
		if match.Invoice.InvoiceID != "INV-1" {
			t.Errorf("matched invoice = %q, want INV-1", match.Invoice.InvoiceID)
		}
	})

	t.Run("invoice reference is case sensitive", func(t *testing.T) {
		tx := testTx("Acme Corp", "100.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme Corp", "inv-100", "100.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "100.00", "USD"),
		}

		if _, ok := engine.MatchByReference(tx, remittances, invoices); ok {
			t.Error("expected no match for case-mismatched invoice reference")
		}
	})

	t.Run("no remittance clears both thresholds", func(t *testing.T) {
		tx := testTx("Acme Corp", "100.00", "USD")
		remittances := []*models.Remittance{
			// Name fine, amount way off.
			testRemittance("REM-1", "Acme Corp", "INV-100", "500.00"),
			// Amount fine, name unrelated.
			testRemittance("REM-2", "Zenith Industrial", "INV-100", "100.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "100.00", "USD"),
		}

		if _, ok := engine.MatchByReference(tx, remittances, invoices); ok {
			t.Error("expected no match when every remittance fails a threshold")
		}
	})

	t.Run("dangling invoice reference fails the stage", func(t *testing.T) {
		tx := testTx("Acme Corp", "100.00", "USD")
		remittances := []*models.Remittance{
			testRemittance("REM-1", "Acme Corp", "INV-404", "100.00"),
		}
		invoices := []*models.Invoice{
			testInvoice("INV-100", "Acme Corp", "100.00", "USD"),
		}

		if _, ok := engine.MatchByReference(tx, remittances, invoices); ok {
			t.Error("expected no match for a reference to a missing invoice")
		}
	})

	t.Run("empty collections", func(t *testing.T) {
		tx := testTx("Acme Corp", "100.00", "USD")

		if _, ok := engine.MatchByReference(tx, nil, nil); ok {
			t.Error("expected no match with no remittances")
		}
	})
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		limit     int
		amountSim float64
		nameSim   float64
		expected  int
	}{
		{"perfect similarities capped", 85, 99, 1.0, 1.0, 99},
		{"reference base stays under cap", 80, 98, 1.0, 1.0, 95},
		{"contributions truncate", 85, 99, 0.84, 0.79, 96},
		{"zero similarities keep base", 80, 98, 0.0, 0.0, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(tt.base, tt.limit, tt.amountSim, tt.nameSim)
			if got != tt.expected {
				t.Errorf("confidenceScore(%d, %d, %v, %v) = %d, want %d",
					tt.base, tt.limit, tt.amountSim, tt.nameSim, got, tt.expected)
			}
		})
	}
}

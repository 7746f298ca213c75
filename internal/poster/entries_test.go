package poster

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"golang-cashposting-service/internal/models"
)

func TestGenerateLedgerEntries(t *testing.T) {
	postedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	postings := []*models.MatchedPosting{
		{
			PaymentRef:     "TXN-001",
			PayerName:      "Acme Corp",
			MatchedInvoice: "INV-100",
			BankAmount:     decimal.RequireFromString("1000.00"),
			InvoiceAmount:  decimal.RequireFromString("1000.00"),
		},
		{
			PaymentRef:     "TXN-002",
			PayerName:      "Globex Ltd",
			MatchedInvoice: "INV-101",
			BankAmount:     decimal.RequireFromString("950.00"),
			InvoiceAmount:  decimal.RequireFromString("1000.00"),
		},
	}

	entries := GenerateLedgerEntries(postings, postedAt)

	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	t.Run("debit and credit per posting", func(t *testing.T) {
		debit, credit := entries[0], entries[1]

		if debit.Account != AccountBank || debit.Direction != DirectionDebit {
			t.Errorf("first leg = %s/%s, want %s debit", debit.Account, debit.Direction, AccountBank)
		}
		if credit.Account != AccountAccountsReceivable || credit.Direction != DirectionCredit {
			t.Errorf("second leg = %s/%s, want %s credit", credit.Account, credit.Direction, AccountAccountsReceivable)
		}
		if !debit.Amount.Equal(credit.Amount) {
			t.Errorf("legs disagree: %s vs %s", debit.Amount, credit.Amount)
		}
	})

	t.Run("legs carry the bank amount, not the invoice amount", func(t *testing.T) {
		short := entries[2]
		if !short.Amount.Equal(decimal.RequireFromString("950.00")) {
			t.Errorf("Amount = %s, want the 950.00 actually received", short.Amount)
		}
	})

	t.Run("entries reference their posting", func(t *testing.T) {
		if entries[0].PaymentRef != "TXN-001" || entries[0].InvoiceID != "INV-100" {
			t.Errorf("entry references %s/%s, want TXN-001/INV-100", entries[0].PaymentRef, entries[0].InvoiceID)
		}
		if !entries[0].PostedAt.Equal(postedAt) {
			t.Errorf("PostedAt = %v, want %v", entries[0].PostedAt, postedAt)
		}
	})

	t.Run("description names payer and invoice", func(t *testing.T) {
		want := "Payment from Acme Corp for INV-100"
		if entries[0].Description != want {
			t.Errorf("Description = %q, want %q", entries[0].Description, want)
		}
		if entries[1].Description != want {
			t.Errorf("credit leg Description = %q, want %q", entries[1].Description, want)
		}
		if entries[2].Description != "Payment from Globex Ltd for INV-101" {
			t.Errorf("Description = %q", entries[2].Description)
		}
	})

	t.Run("entry IDs are unique", func(t *testing.T) {
		seen := make(map[uuid.UUID]bool)
		for _, entry := range entries {
			if entry.EntryID == uuid.Nil {
				t.Error("entry ID not assigned")
			}
			if seen[entry.EntryID] {
				t.Errorf("duplicate entry ID %s", entry.EntryID)
			}
			seen[entry.EntryID] = true
		}
	})

	t.Run("no postings no entries", func(t *testing.T) {
		if got := GenerateLedgerEntries(nil, postedAt); len(got) != 0 {
			t.Errorf("got %d entries, want 0", len(got))
		}
	})
}

func TestBalanceCheck(t *testing.T) {
	amount := decimal.RequireFromString("100.00")

	t.Run("balanced", func(t *testing.T) {
		entries := []*LedgerEntry{
			{Direction: DirectionDebit, Amount: amount},
			{Direction: DirectionCredit, Amount: amount},
		}
		if !BalanceCheck(entries) {
			t.Error("balanced entries reported unbalanced")
		}
	})

	t.Run("unbalanced", func(t *testing.T) {
		entries := []*LedgerEntry{
			{Direction: DirectionDebit, Amount: amount},
			{Direction: DirectionCredit, Amount: decimal.RequireFromString("99.00")},
		}
		if BalanceCheck(entries) {
			t.Error("unbalanced entries reported balanced")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if !BalanceCheck(nil) {
			t.Error("empty entry set should balance")
		}
	})
}

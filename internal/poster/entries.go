package poster

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"golang-cashposting-service/internal/models"
)

// Ledger accounts used by generated postings.
const (
	AccountBank               = "Bank Account"
	AccountAccountsReceivable = "Accounts Receivable"
)

// EntryDirection marks a ledger entry as debit or credit.
type EntryDirection string

const (
	DirectionDebit  EntryDirection = "debit"
	DirectionCredit EntryDirection = "credit"
)

// LedgerEntry is one leg of the double entry generated for a posted payment.
type LedgerEntry struct {
	EntryID     uuid.UUID       `json:"entry_id"`
	PaymentRef  string          `json:"payment_ref"`
	InvoiceID   string          `json:"invoice_id"`
	Account     string          `json:"account"`
	Direction   EntryDirection  `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	PostedAt    time.Time       `json:"posted_at"`
}

// GenerateLedgerEntries produces the double-entry legs for every posting:
// a debit to the bank account and a credit to accounts receivable, both for
// the amount actually received. Amount differences against the invoice stay
// on the posting record for manual review.
func GenerateLedgerEntries(postings []*models.MatchedPosting, postedAt time.Time) []*LedgerEntry {
	entries := make([]*LedgerEntry, 0, len(postings)*2)

	for _, posting := range postings {
		description := fmt.Sprintf("Payment from %s for %s", posting.PayerName, posting.MatchedInvoice)

		entries = append(entries, &LedgerEntry{
			EntryID:     uuid.New(),
			PaymentRef:  posting.PaymentRef,
			InvoiceID:   posting.MatchedInvoice,
			Account:     AccountBank,
			Direction:   DirectionDebit,
			Amount:      posting.BankAmount,
			Description: description,
			PostedAt:    postedAt,
		})

		entries = append(entries, &LedgerEntry{
			EntryID:     uuid.New(),
			PaymentRef:  posting.PaymentRef,
			InvoiceID:   posting.MatchedInvoice,
			Account:     AccountAccountsReceivable,
			Direction:   DirectionCredit,
			Amount:      posting.BankAmount,
			Description: description,
			PostedAt:    postedAt,
		})
	}

	return entries
}

// BalanceCheck verifies that debits equal credits across a set of entries.
func BalanceCheck(entries []*LedgerEntry) bool {
	debits := decimal.Zero
	credits := decimal.Zero

	for _, entry := range entries {
		switch entry.Direction {
		case DirectionDebit:
			debits = debits.Add(entry.Amount)
		case DirectionCredit:
			credits = credits.Add(entry.Amount)
		}
	}

	return debits.Equal(credits)
}

// Package models defines the value records exchanged between the loader,
// the matching engine, and the exporter.
//
// All records are constructed once by the loader (or by the engine, for
// MatchedPosting) and treated as read-only afterwards. Monetary amounts use
// shopspring/decimal so no precision is lost before display formatting.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical date-only format used across the service.
const DateLayout = "2006-01-02"

// BankTransaction represents a single incoming payment from a bank statement.
type BankTransaction struct {
	ValueDate   time.Time       `json:"value_date" csv:"Value_Date"`
	ReferenceNo string          `json:"reference_no" csv:"Reference_No"`
	Description string          `json:"description" csv:"Description"`
	PayerName   string          `json:"payer_name" csv:"Payer_Name"`
	Amount      decimal.Decimal `json:"amount" csv:"Amount"`
	Currency    string          `json:"currency" csv:"Currency"`
}

// NewBankTransaction creates a new BankTransaction instance.
func NewBankTransaction(valueDate time.Time, referenceNo, description, payerName string, amount decimal.Decimal, currency string) *BankTransaction {
	return &BankTransaction{
		ValueDate:   valueDate,
		ReferenceNo: referenceNo,
		Description: description,
		PayerName:   payerName,
		Amount:      amount,
		Currency:    currency,
	}
}

// Validate performs basic validation on the BankTransaction.
func (t *BankTransaction) Validate() error {
	if strings.TrimSpace(t.ReferenceNo) == "" {
		return fmt.Errorf("bank transaction reference cannot be empty")
	}

	if strings.TrimSpace(t.PayerName) == "" {
		return fmt.Errorf("bank transaction payer name cannot be empty")
	}

	if strings.TrimSpace(t.Currency) == "" {
		return fmt.Errorf("bank transaction currency cannot be empty")
	}

	if t.ValueDate.IsZero() {
		return fmt.Errorf("bank transaction value date cannot be zero")
	}

	return nil
}

// String returns a string representation of the BankTransaction.
func (t *BankTransaction) String() string {
	return fmt.Sprintf("BankTransaction{Ref: %s, Payer: %s, Amount: %s %s, Date: %s}",
		t.ReferenceNo, t.PayerName, t.Amount.String(), t.Currency, t.ValueDate.Format(DateLayout))
}

// MarshalJSON implements custom JSON marshaling for BankTransaction.
func (t *BankTransaction) MarshalJSON() ([]byte, error) {
	type Alias BankTransaction
	return json.Marshal(&struct {
		ValueDate string `json:"value_date"`
		Amount    string `json:"amount"`
		*Alias
	}{
		ValueDate: t.ValueDate.Format(DateLayout),
		Amount:    t.Amount.String(),
		Alias:     (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for BankTransaction.
func (t *BankTransaction) UnmarshalJSON(data []byte) error {
	type Alias BankTransaction
	aux := &struct {
		ValueDate string `json:"value_date"`
		Amount    string `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	t.ValueDate, err = ParseDate(aux.ValueDate)
	if err != nil {
		return fmt.Errorf("invalid value date format: %w", err)
	}

	return nil
}

// Equals compares two BankTransaction instances for equality.
func (t *BankTransaction) Equals(other *BankTransaction) bool {
	if other == nil {
		return false
	}

	return t.ReferenceNo == other.ReferenceNo &&
		t.PayerName == other.PayerName &&
		t.Description == other.Description &&
		t.Currency == other.Currency &&
		t.Amount.Equal(other.Amount) &&
		t.ValueDate.Format(DateLayout) == other.ValueDate.Format(DateLayout)
}

// Invoice represents an open invoice loaded from the ERP extract.
type Invoice struct {
	InvoiceID     string          `json:"invoice_id" csv:"Invoice_ID"`
	ClientName    string          `json:"client_name" csv:"Client_Name"`
	MatterID      string          `json:"matter_id" csv:"Matter_ID"`
	InvoiceDate   time.Time       `json:"invoice_date" csv:"Invoice_Date"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount" csv:"Invoice_Amount"`
	Currency      string          `json:"currency" csv:"Currency"`
	DueDate       time.Time       `json:"due_date" csv:"Due_Date"`
	Status        string          `json:"status" csv:"Status"`
}

// NewInvoice creates a new Invoice instance.
func NewInvoice(invoiceID, clientName, matterID string, invoiceDate time.Time, amount decimal.Decimal, currency string, dueDate time.Time, status string) *Invoice {
	return &Invoice{
		InvoiceID:     invoiceID,
		ClientName:    clientName,
		MatterID:      matterID,
		InvoiceDate:   invoiceDate,
		InvoiceAmount: amount,
		Currency:      currency,
		DueDate:       dueDate,
		Status:        status,
	}
}

// Validate performs basic validation on the Invoice.
//
// Invoice IDs are expected to be unique within a batch, but uniqueness is not
// enforced here; duplicate IDs are resolved by iteration order downstream.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceID) == "" {
		return fmt.Errorf("invoice ID cannot be empty")
	}

	if strings.TrimSpace(inv.ClientName) == "" {
		return fmt.Errorf("invoice client name cannot be empty")
	}

	if strings.TrimSpace(inv.Currency) == "" {
		return fmt.Errorf("invoice currency cannot be empty")
	}

	if inv.InvoiceDate.IsZero() {
		return fmt.Errorf("invoice date cannot be zero")
	}

	return nil
}

// String returns a string representation of the Invoice.
func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice{ID: %s, Client: %s, Amount: %s %s, Status: %s}",
		inv.InvoiceID, inv.ClientName, inv.InvoiceAmount.String(), inv.Currency, inv.Status)
}

// MarshalJSON implements custom JSON marshaling for Invoice.
func (inv *Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		InvoiceDate   string `json:"invoice_date"`
		DueDate       string `json:"due_date"`
		InvoiceAmount string `json:"invoice_amount"`
		*Alias
	}{
		InvoiceDate:   inv.InvoiceDate.Format(DateLayout),
		DueDate:       inv.DueDate.Format(DateLayout),
		InvoiceAmount: inv.InvoiceAmount.String(),
		Alias:         (*Alias)(inv),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Invoice.
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	type Alias Invoice
	aux := &struct {
		InvoiceDate   string `json:"invoice_date"`
		DueDate       string `json:"due_date"`
		InvoiceAmount string `json:"invoice_amount"`
		*Alias
	}{
		Alias: (*Alias)(inv),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	inv.InvoiceAmount, err = decimal.NewFromString(aux.InvoiceAmount)
	if err != nil {
		return fmt.Errorf("invalid invoice amount format: %w", err)
	}

	inv.InvoiceDate, err = ParseDate(aux.InvoiceDate)
	if err != nil {
		return fmt.Errorf("invalid invoice date format: %w", err)
	}

	inv.DueDate, err = ParseDate(aux.DueDate)
	if err != nil {
		return fmt.Errorf("invalid due date format: %w", err)
	}

	return nil
}

// Remittance represents a remittance advice record stating which invoice a
// payment settles.
type Remittance struct {
	RemittanceID     string          `json:"remittance_id" csv:"Remittance_ID"`
	PayerName        string          `json:"payer_name" csv:"Payer_Name"`
	InvoiceReference string          `json:"invoice_reference" csv:"Invoice_Reference"`
	PaymentAmount    decimal.Decimal `json:"payment_amount" csv:"Payment_Amount"`
	Notes            string          `json:"notes" csv:"Notes"`
}

// NewRemittance creates a new Remittance instance.
func NewRemittance(remittanceID, payerName, invoiceReference string, paymentAmount decimal.Decimal, notes string) *Remittance {
	return &Remittance{
		RemittanceID:     remittanceID,
		PayerName:        payerName,
		InvoiceReference: invoiceReference,
		PaymentAmount:    paymentAmount,
		Notes:            notes,
	}
}

// Validate performs basic validation on the Remittance.
func (r *Remittance) Validate() error {
	if strings.TrimSpace(r.RemittanceID) == "" {
		return fmt.Errorf("remittance ID cannot be empty")
	}

	if strings.TrimSpace(r.PayerName) == "" {
		return fmt.Errorf("remittance payer name cannot be empty")
	}

	if strings.TrimSpace(r.InvoiceReference) == "" {
		return fmt.Errorf("remittance invoice reference cannot be empty")
	}

	return nil
}

// String returns a string representation of the Remittance.
func (r *Remittance) String() string {
	return fmt.Sprintf("Remittance{ID: %s, Payer: %s, Invoice: %s, Amount: %s}",
		r.RemittanceID, r.PayerName, r.InvoiceReference, r.PaymentAmount.String())
}

// MarshalJSON implements custom JSON marshaling for Remittance.
func (r *Remittance) MarshalJSON() ([]byte, error) {
	type Alias Remittance
	return json.Marshal(&struct {
		PaymentAmount string `json:"payment_amount"`
		*Alias
	}{
		PaymentAmount: r.PaymentAmount.String(),
		Alias:         (*Alias)(r),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Remittance.
func (r *Remittance) UnmarshalJSON(data []byte) error {
	type Alias Remittance
	aux := &struct {
		PaymentAmount string `json:"payment_amount"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	r.PaymentAmount, err = decimal.NewFromString(aux.PaymentAmount)
	if err != nil {
		return fmt.Errorf("invalid payment amount format: %w", err)
	}

	return nil
}

// PostingStatusAutoPosted is the only posting status the engine emits; a
// MatchedPosting exists only for payments the engine decided to auto-post.
const PostingStatusAutoPosted = "Auto-posted"

// MatchedPosting is the engine's output record for a successfully matched
// payment. Unmatched payments never produce a MatchedPosting; they stay in the
// caller's unmatched collection as the original BankTransaction records.
type MatchedPosting struct {
	PaymentRef       string          `json:"payment_ref" csv:"Payment_Ref"`
	PayerName        string          `json:"payer_name" csv:"Payer_Name"`
	MatchedInvoice   string          `json:"matched_invoice" csv:"Matched_Invoice"`
	MatchType        string          `json:"match_type" csv:"Match_Type"`
	Confidence       string          `json:"confidence" csv:"Confidence"`
	PostingStatus    string          `json:"posting_status" csv:"Posting_Status"`
	BankAmount       decimal.Decimal `json:"bank_amount" csv:"Bank_Amount"`
	InvoiceAmount    decimal.Decimal `json:"invoice_amount" csv:"Invoice_Amount"`
	AmountDifference decimal.Decimal `json:"amount_difference" csv:"Amount_Difference"`
}

// String returns a string representation of the MatchedPosting.
func (p *MatchedPosting) String() string {
	return fmt.Sprintf("MatchedPosting{Ref: %s, Invoice: %s, Type: %s, Confidence: %s, Diff: %s}",
		p.PaymentRef, p.MatchedInvoice, p.MatchType, p.Confidence, p.AmountDifference.String())
}

// MarshalJSON implements custom JSON marshaling for MatchedPosting.
func (p *MatchedPosting) MarshalJSON() ([]byte, error) {
	type Alias MatchedPosting
	return json.Marshal(&struct {
		BankAmount       string `json:"bank_amount"`
		InvoiceAmount    string `json:"invoice_amount"`
		AmountDifference string `json:"amount_difference"`
		*Alias
	}{
		BankAmount:       p.BankAmount.String(),
		InvoiceAmount:    p.InvoiceAmount.String(),
		AmountDifference: p.AmountDifference.String(),
		Alias:            (*Alias)(p),
	})
}

// Equals compares two MatchedPosting instances for equality.
func (p *MatchedPosting) Equals(other *MatchedPosting) bool {
	if other == nil {
		return false
	}

	return p.PaymentRef == other.PaymentRef &&
		p.PayerName == other.PayerName &&
		p.MatchedInvoice == other.MatchedInvoice &&
		p.MatchType == other.MatchType &&
		p.Confidence == other.Confidence &&
		p.PostingStatus == other.PostingStatus &&
		p.BankAmount.Equal(other.BankAmount) &&
		p.InvoiceAmount.Equal(other.InvoiceAmount) &&
		p.AmountDifference.Equal(other.AmountDifference)
}

// Utility functions for field parsing used by the CSV loader.

// ParseAmount parses a decimal amount from a raw CSV field, tolerating
// currency symbols and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDate attempts to parse a date from a raw CSV field using the formats
// commonly seen in bank and ERP extracts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		DateLayout,           // "2006-01-02"
		"01/02/2006",         // US style
		"02/01/2006",         // European style
		"2006-01-02 15:04:05",
		time.RFC3339,
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// CreateInvoiceFromCSV creates a validated Invoice from raw CSV field values.
func CreateInvoiceFromCSV(invoiceID, clientName, matterID, invoiceDateStr, amountStr, currency, dueDateStr, status string) (*Invoice, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice amount in CSV: %w", err)
	}

	// Dates may be absent from the export; Validate rejects a missing invoice
	// date while the due date stays optional.
	var invoiceDate, dueDate time.Time
	if strings.TrimSpace(invoiceDateStr) != "" {
		invoiceDate, err = ParseDate(invoiceDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid invoice date in CSV: %w", err)
		}
	}
	if strings.TrimSpace(dueDateStr) != "" {
		dueDate, err = ParseDate(dueDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid due date in CSV: %w", err)
		}
	}

	invoice := NewInvoice(
		strings.TrimSpace(invoiceID),
		strings.TrimSpace(clientName),
		strings.TrimSpace(matterID),
		invoiceDate,
		amount,
		strings.TrimSpace(currency),
		dueDate,
		strings.TrimSpace(status),
	)

	if err := invoice.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invoice data: %w", err)
	}

	return invoice, nil
}

// CreateBankTransactionFromCSV creates a validated BankTransaction from raw
// CSV field values.
func CreateBankTransactionFromCSV(valueDateStr, referenceNo, description, payerName, amountStr, currency string) (*BankTransaction, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in CSV: %w", err)
	}

	valueDate, err := ParseDate(valueDateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid value date in CSV: %w", err)
	}

	transaction := NewBankTransaction(
		valueDate,
		strings.TrimSpace(referenceNo),
		strings.TrimSpace(description),
		strings.TrimSpace(payerName),
		amount,
		strings.TrimSpace(currency),
	)

	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bank transaction data: %w", err)
	}

	return transaction, nil
}

// CreateRemittanceFromCSV creates a validated Remittance from raw CSV field
// values.
func CreateRemittanceFromCSV(remittanceID, payerName, invoiceReference, amountStr, notes string) (*Remittance, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount in CSV: %w", err)
	}

	remittance := NewRemittance(
		strings.TrimSpace(remittanceID),
		strings.TrimSpace(payerName),
		strings.TrimSpace(invoiceReference),
		amount,
		strings.TrimSpace(notes),
	)

	if err := remittance.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remittance data: %w", err)
	}

	return remittance, nil
}

package loader

import (
	"fmt"
	"strings"
)

// InvoiceParserConfig configures the column layout of invoice CSV exports.
type InvoiceParserConfig struct {
	InvoiceIDColumn   string            `json:"invoice_id_column"`
	ClientNameColumn  string            `json:"client_name_column"`
	MatterIDColumn    string            `json:"matter_id_column"`
	InvoiceDateColumn string            `json:"invoice_date_column"`
	AmountColumn      string            `json:"amount_column"`
	CurrencyColumn    string            `json:"currency_column"`
	DueDateColumn     string            `json:"due_date_column"`
	StatusColumn      string            `json:"status_column"`
	HasHeader         bool              `json:"has_header"`
	Delimiter         rune              `json:"delimiter"`
	ColumnAliases     map[string]string `json:"column_aliases,omitempty"`
}

// invoiceAmountFallbacks are header names accepted in place of the configured
// amount column. Some billing exports drop the currency annotation from the
// header.
var invoiceAmountFallbacks = []string{"Invoice_Amount"}

// DefaultInvoiceParserConfig returns the layout of the billing system's
// standard invoice export.
func DefaultInvoiceParserConfig() *InvoiceParserConfig {
	return &InvoiceParserConfig{
		InvoiceIDColumn:   "Invoice_ID",
		ClientNameColumn:  "Client_Name",
		MatterIDColumn:    "Matter_ID",
		InvoiceDateColumn: "Invoice_Date",
		AmountColumn:      "Invoice_Amount (USD)",
		CurrencyColumn:    "Currency",
		DueDateColumn:     "Due_Date",
		StatusColumn:      "Status",
		HasHeader:         true,
		Delimiter:         ',',
	}
}

// Validate checks if the invoice parser configuration is valid
func (ipc *InvoiceParserConfig) Validate() error {
	if strings.TrimSpace(ipc.InvoiceIDColumn) == "" {
		return fmt.Errorf("invoice ID column cannot be empty")
	}
	if strings.TrimSpace(ipc.ClientNameColumn) == "" {
		return fmt.Errorf("client name column cannot be empty")
	}
	if strings.TrimSpace(ipc.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}
	if strings.TrimSpace(ipc.CurrencyColumn) == "" {
		return fmt.Errorf("currency column cannot be empty")
	}
	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (ipc *InvoiceParserConfig) GetColumnName(standardName string) string {
	if alias, exists := ipc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "invoice_id":
		return ipc.InvoiceIDColumn
	case "client_name":
		return ipc.ClientNameColumn
	case "matter_id":
		return ipc.MatterIDColumn
	case "invoice_date":
		return ipc.InvoiceDateColumn
	case "amount":
		return ipc.AmountColumn
	case "currency":
		return ipc.CurrencyColumn
	case "due_date":
		return ipc.DueDateColumn
	case "status":
		return ipc.StatusColumn
	default:
		return standardName
	}
}

// BankParserConfig configures the column layout of bank statement exports.
type BankParserConfig struct {
	ValueDateColumn   string            `json:"value_date_column"`
	ReferenceNoColumn string            `json:"reference_no_column"`
	DescriptionColumn string            `json:"description_column"`
	PayerNameColumn   string            `json:"payer_name_column"`
	AmountColumn      string            `json:"amount_column"`
	CurrencyColumn    string            `json:"currency_column"`
	HasHeader         bool              `json:"has_header"`
	Delimiter         rune              `json:"delimiter"`
	ColumnAliases     map[string]string `json:"column_aliases,omitempty"`
}

// DefaultBankParserConfig returns the layout of the standard bank statement
// export.
func DefaultBankParserConfig() *BankParserConfig {
	return &BankParserConfig{
		ValueDateColumn:   "Value_Date",
		ReferenceNoColumn: "Reference_No",
		DescriptionColumn: "Description",
		PayerNameColumn:   "Payer_Name",
		AmountColumn:      "Amount",
		CurrencyColumn:    "Currency",
		HasHeader:         true,
		Delimiter:         ',',
	}
}

// Validate checks if the bank parser configuration is valid
func (bpc *BankParserConfig) Validate() error {
	if strings.TrimSpace(bpc.ReferenceNoColumn) == "" {
		return fmt.Errorf("reference number column cannot be empty")
	}
	if strings.TrimSpace(bpc.PayerNameColumn) == "" {
		return fmt.Errorf("payer name column cannot be empty")
	}
	if strings.TrimSpace(bpc.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}
	if strings.TrimSpace(bpc.CurrencyColumn) == "" {
		return fmt.Errorf("currency column cannot be empty")
	}
	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (bpc *BankParserConfig) GetColumnName(standardName string) string {
	if alias, exists := bpc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "value_date":
		return bpc.ValueDateColumn
	case "reference_no":
		return bpc.ReferenceNoColumn
	case "description":
		return bpc.DescriptionColumn
	case "payer_name":
		return bpc.PayerNameColumn
	case "amount":
		return bpc.AmountColumn
	case "currency":
		return bpc.CurrencyColumn
	default:
		return standardName
	}
}

// RemittanceParserConfig configures the column layout of remittance advice
// exports.
type RemittanceParserConfig struct {
	RemittanceIDColumn     string            `json:"remittance_id_column"`
	PayerNameColumn        string            `json:"payer_name_column"`
	InvoiceReferenceColumn string            `json:"invoice_reference_column"`
	PaymentAmountColumn    string            `json:"payment_amount_column"`
	NotesColumn            string            `json:"notes_column"`
	HasHeader              bool              `json:"has_header"`
	Delimiter              rune              `json:"delimiter"`
	ColumnAliases          map[string]string `json:"column_aliases,omitempty"`
}

// DefaultRemittanceParserConfig returns the layout of the standard remittance
// advice export.
func DefaultRemittanceParserConfig() *RemittanceParserConfig {
	return &RemittanceParserConfig{
		RemittanceIDColumn:     "Remittance_ID",
		PayerNameColumn:        "Payer_Name",
		InvoiceReferenceColumn: "Invoice_Reference",
		PaymentAmountColumn:    "Payment_Amount",
		NotesColumn:            "Notes",
		HasHeader:              true,
		Delimiter:              ',',
	}
}

// Validate checks if the remittance parser configuration is valid
func (rpc *RemittanceParserConfig) Validate() error {
	if strings.TrimSpace(rpc.RemittanceIDColumn) == "" {
		return fmt.Errorf("remittance ID column cannot be empty")
	}
	if strings.TrimSpace(rpc.PayerNameColumn) == "" {
		return fmt.Errorf("payer name column cannot be empty")
	}
	if strings.TrimSpace(rpc.InvoiceReferenceColumn) == "" {
		return fmt.Errorf("invoice reference column cannot be empty")
	}
	if strings.TrimSpace(rpc.PaymentAmountColumn) == "" {
		return fmt.Errorf("payment amount column cannot be empty")
	}
	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (rpc *RemittanceParserConfig) GetColumnName(standardName string) string {
	if alias, exists := rpc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "remittance_id":
		return rpc.RemittanceIDColumn
	case "payer_name":
		return rpc.PayerNameColumn
	case "invoice_reference":
		return rpc.InvoiceReferenceColumn
	case "payment_amount":
		return rpc.PaymentAmountColumn
	case "notes":
		return rpc.NotesColumn
	default:
		return standardName
	}
}

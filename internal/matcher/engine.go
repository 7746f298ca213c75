package matcher

import (
	"fmt"

	"golang-cashposting-service/internal/models"
)

// MatchingEngine is the core engine deciding which invoice a payment settles.
// It is stateless apart from its configuration: every call takes the full
// input collections explicitly, so concurrent use needs no synchronization.
type MatchingEngine struct {
	Config *MatchingConfig
}

// NewMatchingEngine creates a new matching engine with the specified
// configuration. A nil config selects the defaults.
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
	}
}

// MatchPayment runs the full decision pipeline for a single payment:
// reference matching first, fuzzy matching only on its failure. The second
// return value reports whether any match was found; on false the caller owns
// routing the payment to its unmatched collection. No exclusion set is passed
// to the fuzzy stage, so invoices referenced by other payments' successful
// matches in the same batch stay eligible (invoices are not removed from the
// pool; legitimate partial and repeated payments remain matchable).
func (me *MatchingEngine) MatchPayment(
	tx *models.BankTransaction,
	remittances []*models.Remittance,
	invoices []*models.Invoice,
) (*models.MatchedPosting, bool) {
	if ref, ok := me.MatchByReference(tx, remittances, invoices); ok {
		return me.buildPosting(tx, ref.Invoice, ref.MatchType, ref.Confidence), true
	}

	if fuzzy, ok := me.MatchFuzzy(tx, invoices, nil); ok {
		return me.buildPosting(tx, fuzzy.Invoice, fuzzy.MatchType, fuzzy.Confidence), true
	}

	return nil, false
}

// buildPosting assembles the output record for a matched payment.
func (me *MatchingEngine) buildPosting(tx *models.BankTransaction, invoice *models.Invoice, matchType string, confidence int) *models.MatchedPosting {
	return &models.MatchedPosting{
		PaymentRef:       tx.ReferenceNo,
		PayerName:        tx.PayerName,
		MatchedInvoice:   invoice.InvoiceID,
		MatchType:        matchType,
		Confidence:       fmt.Sprintf("%d%%", confidence),
		PostingStatus:    models.PostingStatusAutoPosted,
		BankAmount:       tx.Amount,
		InvoiceAmount:    invoice.InvoiceAmount,
		AmountDifference: tx.Amount.Sub(invoice.InvoiceAmount),
	}
}

// ValidateConfiguration validates the engine configuration.
func (me *MatchingEngine) ValidateConfiguration() error {
	return me.Config.Validate()
}

// GetConfiguration returns a copy of the current configuration.
func (me *MatchingEngine) GetConfiguration() *MatchingConfig {
	return me.Config.Clone()
}

// UpdateConfiguration replaces the engine configuration after validating it.
func (me *MatchingEngine) UpdateConfiguration(config *MatchingConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	me.Config = config.Clone()
	return nil
}

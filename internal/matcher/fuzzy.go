package matcher

import (
	"golang-cashposting-service/internal/models"
)

// FuzzyMatch is the outcome of the fuzzy matching stage.
type FuzzyMatch struct {
	Invoice    *models.Invoice
	MatchType  string
	Score      float64
	Confidence int // whole percent
}

// MatchFuzzy scores a payment directly against every invoice and keeps the
// best candidate, as the fallback when no remittance links the payment.
//
// Invoices in the exclusion set and invoices in a different currency are
// skipped unconditionally. Each remaining candidate gets a combined score of
// weighted name and amount similarity, and must exceed the configured floor
// to be eligible. Best-candidate tracking uses strict improvement: a later
// candidate with an equal score never replaces an earlier one, so ties
// resolve to input order. The classification of the retained candidate is
// recomputed alongside the score, so it always describes the winner.
func (me *MatchingEngine) MatchFuzzy(
	tx *models.BankTransaction,
	invoices []*models.Invoice,
	exclude map[string]struct{},
) (*FuzzyMatch, bool) {
	var (
		bestInvoice *models.Invoice
		bestType    string
		bestScore   float64
	)

	for _, invoice := range invoices {
		if _, skip := exclude[invoice.InvoiceID]; skip {
			continue
		}

		// No cross-currency fuzzy matching.
		if tx.Currency != invoice.Currency {
			continue
		}

		nameSim := me.NameSimilarity(tx.PayerName, invoice.ClientName)
		amountSim := me.AmountSimilarity(tx.Amount, invoice.InvoiceAmount)

		combined := nameSim*me.Config.NameWeight + amountSim*me.Config.AmountWeight

		if combined > bestScore && combined > me.Config.FuzzyMinScore {
			bestScore = combined
			bestInvoice = invoice
			bestType = me.classifyFuzzy(nameSim, amountSim)
		}
	}

	if bestInvoice == nil {
		return nil, false
	}

	confidence := int(bestScore * 100)
	if confidence > me.Config.FuzzyConfidenceCap {
		confidence = me.Config.FuzzyConfidenceCap
	}

	return &FuzzyMatch{
		Invoice:    bestInvoice,
		MatchType:  bestType,
		Score:      bestScore,
		Confidence: confidence,
	}, true
}

// classifyFuzzy labels a fuzzy candidate by which similarity carried it.
func (me *MatchingEngine) classifyFuzzy(nameSim, amountSim float64) string {
	switch {
	case nameSim > me.Config.FuzzyNameThreshold && amountSim > me.Config.FuzzyStrongAmountThreshold:
		return MatchFuzzyName
	case amountSim > me.Config.FuzzyAmountThreshold:
		return MatchFuzzyAmount
	default:
		return MatchContextual
	}
}

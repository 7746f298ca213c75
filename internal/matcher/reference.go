package matcher

import (
	"golang-cashposting-service/internal/models"
)

// ReferenceMatch is the outcome of the reference matching stage: the invoice
// the remittance cites, the remittance that linked it, and the resulting
// classification.
type ReferenceMatch struct {
	Invoice    *models.Invoice
	Remittance *models.Remittance
	MatchType  string
	Confidence int // whole percent
}

// MatchByReference links a payment to an invoice through a remittance advice.
//
// The remittance scan is first-match, not best-match: remittances are visited
// in input order and the first one whose payer-name and amount similarities
// both clear their thresholds is selected, even if a later remittance would
// score higher. The selected remittance's invoice reference is then resolved
// against the invoices by exact, case-sensitive ID equality, again taking the
// first hit in input order. Either scan coming up empty fails the stage.
func (me *MatchingEngine) MatchByReference(
	tx *models.BankTransaction,
	remittances []*models.Remittance,
	invoices []*models.Invoice,
) (*ReferenceMatch, bool) {
	var linked *models.Remittance

	for _, remittance := range remittances {
		nameSim := me.NameSimilarity(tx.PayerName, remittance.PayerName)
		amountSim := me.AmountSimilarity(tx.Amount, remittance.PaymentAmount)

		if nameSim > me.Config.RemittanceNameThreshold && amountSim > me.Config.RemittanceAmountThreshold {
			linked = remittance
			break
		}
	}

	if linked == nil {
		return nil, false
	}

	var matched *models.Invoice
	for _, invoice := range invoices {
		if invoice.InvoiceID == linked.InvoiceReference {
			matched = invoice
			break
		}
	}

	if matched == nil {
		return nil, false
	}

	nameSim := me.NameSimilarity(tx.PayerName, matched.ClientName)
	amountSim := me.AmountSimilarity(tx.Amount, matched.InvoiceAmount)

	matchType := MatchReference
	confidence := confidenceScore(me.Config.ReferenceConfidenceBase, me.Config.ReferenceConfidenceCap, amountSim, nameSim)
	if amountSim > me.Config.ExactAmountThreshold {
		matchType = MatchExact
		confidence = confidenceScore(me.Config.ExactConfidenceBase, me.Config.ExactConfidenceCap, amountSim, nameSim)
	}

	return &ReferenceMatch{
		Invoice:    matched,
		Remittance: linked,
		MatchType:  matchType,
		Confidence: confidence,
	}, true
}

// confidenceScore builds a whole-percent confidence from a base offset plus
// truncated similarity contributions, capped at limit.
func confidenceScore(base, limit int, amountSim, nameSim float64) int {
	score := base + int(amountSim*10) + int(nameSim*5)
	if score > limit {
		return limit
	}
	return score
}

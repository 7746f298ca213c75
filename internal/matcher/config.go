// Package matcher implements the payment-to-invoice matching engine.
//
// The engine decides, for a single bank payment, which open invoice it
// settles. It runs a two-stage pipeline:
//  1. Reference matching: link the payment to a remittance advice by payer
//     name and amount similarity, then follow the remittance's stated invoice
//     reference to the invoice.
//  2. Fuzzy matching (fallback): score the payment directly against every
//     invoice using a weighted combination of name and amount similarity.
//
// Matching is performed independently per payment over immutable input
// collections, so batches can safely be matched in parallel. All tunable
// thresholds, weights, and confidence parameters live in MatchingConfig.
//
// Example usage:
//
//	engine := matcher.NewMatchingEngine(matcher.DefaultMatchingConfig())
//	posting, ok := engine.MatchPayment(tx, remittances, invoices)
//	if !ok {
//		// route the payment to manual review
//	}
package matcher

import "fmt"

// Match types classify how a posting decision was reached. The values are the
// display forms carried into the exported posting record.
const (
	// MatchExact is a reference match whose amounts are nearly identical.
	MatchExact = "Exact"

	// MatchReference is a match established by following a remittance's
	// invoice reference, with a larger amount deviation than MatchExact.
	MatchReference = "Reference"

	// MatchFuzzyName is a fuzzy match driven primarily by name agreement.
	MatchFuzzyName = "Fuzzy (name)"

	// MatchFuzzyAmount is a fuzzy match driven primarily by amount agreement.
	MatchFuzzyAmount = "Fuzzy (amount)"

	// MatchContextual is a fuzzy match that cleared the combined-score floor
	// without strong name or amount evidence on its own.
	MatchContextual = "Contextual"
)

// MatchingConfig holds every tunable parameter of the matching pipeline.
// Thresholds are exposed as named fields rather than inline literals so the
// engine can be tuned and tested without code edits.
type MatchingConfig struct {
	// RemittanceNameThreshold is the minimum payer-name similarity for a
	// remittance to be linked to a payment (exclusive).
	RemittanceNameThreshold float64 `json:"remittance_name_threshold"`

	// RemittanceAmountThreshold is the minimum amount similarity for a
	// remittance to be linked to a payment (exclusive).
	RemittanceAmountThreshold float64 `json:"remittance_amount_threshold"`

	// ExactAmountThreshold is the amount similarity above which a reference
	// match is classified Exact instead of Reference (exclusive).
	ExactAmountThreshold float64 `json:"exact_amount_threshold"`

	// FuzzyMinScore is the combined-score floor a fuzzy candidate must exceed
	// to be eligible at all (exclusive).
	FuzzyMinScore float64 `json:"fuzzy_min_score"`

	// FuzzyNameThreshold and FuzzyStrongAmountThreshold together classify a
	// fuzzy match as name-driven (both exclusive).
	FuzzyNameThreshold         float64 `json:"fuzzy_name_threshold"`
	FuzzyStrongAmountThreshold float64 `json:"fuzzy_strong_amount_threshold"`

	// FuzzyAmountThreshold classifies a fuzzy match as amount-driven when the
	// name-driven test fails (exclusive).
	FuzzyAmountThreshold float64 `json:"fuzzy_amount_threshold"`

	// NameWeight and AmountWeight combine the two similarity scores into the
	// fuzzy candidate score. They should sum to approximately 1.0.
	NameWeight   float64 `json:"name_weight"`
	AmountWeight float64 `json:"amount_weight"`

	// ContainmentBoost is added to the name similarity ratio when one
	// normalized name is a non-empty substring of the other, clamped to 1.0.
	ContainmentBoost float64 `json:"containment_boost"`

	// Confidence bases and caps, in whole percent.
	ExactConfidenceBase     int `json:"exact_confidence_base"`
	ExactConfidenceCap      int `json:"exact_confidence_cap"`
	ReferenceConfidenceBase int `json:"reference_confidence_base"`
	ReferenceConfidenceCap  int `json:"reference_confidence_cap"`
	FuzzyConfidenceCap      int `json:"fuzzy_confidence_cap"`
}

// DefaultMatchingConfig returns the production configuration. The values are
// part of the engine's observable contract; tests pin behavior against them.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		RemittanceNameThreshold:    0.6,
		RemittanceAmountThreshold:  0.8,
		ExactAmountThreshold:       0.95,
		FuzzyMinScore:              0.7,
		FuzzyNameThreshold:         0.8,
		FuzzyStrongAmountThreshold: 0.9,
		FuzzyAmountThreshold:       0.85,
		NameWeight:                 0.4,
		AmountWeight:               0.6,
		ContainmentBoost:           0.2,
		ExactConfidenceBase:        85,
		ExactConfidenceCap:         99,
		ReferenceConfidenceBase:    80,
		ReferenceConfidenceCap:     98,
		FuzzyConfidenceCap:         98,
	}
}

// StrictMatchingConfig returns a configuration that only auto-posts on strong
// evidence, for runs where manual review capacity is plentiful.
func StrictMatchingConfig() *MatchingConfig {
	config := DefaultMatchingConfig()
	config.RemittanceNameThreshold = 0.75
	config.RemittanceAmountThreshold = 0.9
	config.FuzzyMinScore = 0.85
	return config
}

// RelaxedMatchingConfig returns a configuration for exploratory runs that
// tolerates weaker evidence before routing to manual review.
func RelaxedMatchingConfig() *MatchingConfig {
	config := DefaultMatchingConfig()
	config.RemittanceNameThreshold = 0.5
	config.RemittanceAmountThreshold = 0.7
	config.FuzzyMinScore = 0.6
	return config
}

// Validate checks if the matching configuration is valid.
func (mc *MatchingConfig) Validate() error {
	unitFields := map[string]float64{
		"remittance_name_threshold":     mc.RemittanceNameThreshold,
		"remittance_amount_threshold":   mc.RemittanceAmountThreshold,
		"exact_amount_threshold":        mc.ExactAmountThreshold,
		"fuzzy_min_score":               mc.FuzzyMinScore,
		"fuzzy_name_threshold":          mc.FuzzyNameThreshold,
		"fuzzy_strong_amount_threshold": mc.FuzzyStrongAmountThreshold,
		"fuzzy_amount_threshold":        mc.FuzzyAmountThreshold,
		"name_weight":                   mc.NameWeight,
		"amount_weight":                 mc.AmountWeight,
		"containment_boost":             mc.ContainmentBoost,
	}

	for name, value := range unitFields {
		if value < 0.0 || value > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0: %f", name, value)
		}
	}

	total := mc.NameWeight + mc.AmountWeight
	if total < 0.9 || total > 1.1 {
		return fmt.Errorf("name and amount weights should sum to approximately 1.0, got %f", total)
	}

	percentFields := map[string]int{
		"exact_confidence_base":     mc.ExactConfidenceBase,
		"exact_confidence_cap":      mc.ExactConfidenceCap,
		"reference_confidence_base": mc.ReferenceConfidenceBase,
		"reference_confidence_cap":  mc.ReferenceConfidenceCap,
		"fuzzy_confidence_cap":      mc.FuzzyConfidenceCap,
	}

	for name, value := range percentFields {
		if value < 0 || value > 100 {
			return fmt.Errorf("%s must be between 0 and 100: %d", name, value)
		}
	}

	if mc.ExactConfidenceBase > mc.ExactConfidenceCap {
		return fmt.Errorf("exact confidence base %d exceeds cap %d", mc.ExactConfidenceBase, mc.ExactConfidenceCap)
	}

	if mc.ReferenceConfidenceBase > mc.ReferenceConfidenceCap {
		return fmt.Errorf("reference confidence base %d exceeds cap %d", mc.ReferenceConfidenceBase, mc.ReferenceConfidenceCap)
	}

	return nil
}

// Clone creates a copy of the matching configuration.
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}

	clone := *mc
	return &clone
}

// String returns a human-readable description of the configuration.
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{RemitName: %.2f, RemitAmount: %.2f, FuzzyFloor: %.2f, Weights: %.1f/%.1f}",
		mc.RemittanceNameThreshold, mc.RemittanceAmountThreshold, mc.FuzzyMinScore, mc.NameWeight, mc.AmountWeight)
}

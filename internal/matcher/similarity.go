package matcher

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// businessSuffixes are the legal-entity suffixes stripped during name
// normalization. Checked in order; exactly one suffix is stripped per call.
var businessSuffixes = []string{
	" ltd", " ltd.", " limited", " inc", " inc.", " corp", " corp.",
	" llc", " pte", " pte.", " co", " co.", " group", " holdings",
}

// NormalizeName canonicalizes a payer or client name for comparison: the name
// is lowercased, trimmed, and at most one trailing business-entity suffix is
// removed. Stripping is not recursive; "acme co ltd" normalizes to "acme co".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	for _, suffix := range businessSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)])
			break
		}
	}

	return name
}

// NameSimilarity computes the similarity of two names in [0, 1]. Both inputs
// are normalized, then compared with a Ratcliff/Obershelp matching-blocks
// ratio. When one normalized name is a non-empty substring of the other the
// ratio gets the configured containment boost, clamped to 1.0; this rewards
// shortened or suffix-free renditions of the same party.
func (me *MatchingEngine) NameSimilarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)

	similarity := sequenceRatio(na, nb)

	contained := (na != "" && strings.Contains(nb, na)) ||
		(nb != "" && strings.Contains(na, nb))
	if contained {
		similarity = math.Min(1.0, similarity+me.Config.ContainmentBoost)
	}

	return similarity
}

// AmountSimilarity computes the similarity of two amounts in [0, 1]: 1.0 on
// exact equality, falling linearly to 0.0 at a 50% relative difference. The
// divisor is always y, making the metric directionally asymmetric; y == 0 with
// x != y returns 0.0 rather than dividing by zero.
func (me *MatchingEngine) AmountSimilarity(x, y decimal.Decimal) float64 {
	if x.Equal(y) {
		return 1.0
	}

	if y.IsZero() {
		return 0.0
	}

	relativeDiff := x.Sub(y).Abs().Div(y).InexactFloat64()
	return math.Max(0.0, 1.0-2.0*relativeDiff)
}

// sequenceRatio is the Ratcliff/Obershelp similarity of two strings: twice the
// number of characters in common matching blocks divided by the total length.
// Two empty strings are identical by definition (ratio 1.0).
func sequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(matchingBlockChars(ra, rb)) / float64(total)
}

// matchingBlockChars counts the characters covered by matching blocks: the
// longest common contiguous block, then recursively the pieces to its left
// and right. Ties on block length resolve to the earliest occurrence in a,
// then in b, which keeps the ratio deterministic.
func matchingBlockChars(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	return size +
		matchingBlockChars(a[:ai], b[:bi]) +
		matchingBlockChars(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest contiguous run of characters common to
// a and b, returning its start offsets and length.
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	// runLengths[j] holds the length of the common run ending at a[i-1], b[j].
	runLengths := make([]int, len(b))

	for i := range a {
		current := make([]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}

			length := 1
			if j > 0 {
				length = runLengths[j-1] + 1
			}
			current[j] = length

			if length > bestSize {
				bestA = i - length + 1
				bestB = j - length + 1
				bestSize = length
			}
		}
		runLengths = current
	}

	return bestA, bestB, bestSize
}

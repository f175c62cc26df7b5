package services

import (
	"strings"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
)

// SplitDrugTokens normalises a free-text cell value into ordered drug
// tokens: newlines count as spaces, runs of whitespace collapse, empty
// tokens are dropped. An empty value yields a nil slice.
func SplitDrugTokens(cell string) []string {
	return strings.Fields(cell)
}

// TokenPartition splits a cell's tokens into those with a recommendation
// and those without.
type TokenPartition struct {
	// Relocate holds tokens with an exact case-insensitive match in the
	// recommendation set, in original order.
	Relocate []string

	// Keep holds the remaining tokens, in original order.
	Keep []string
}

// PartitionTokens assigns every token to exactly one side: Relocate when
// the token's lowercase form equals a recommendation-set key, Keep
// otherwise. Relative order is preserved within each side.
func PartitionTokens(tokens []string, recs *domain.RecommendationSet) TokenPartition {
	var part TokenPartition
	for _, tok := range tokens {
		if _, ok := recs.Lookup(tok); ok {
			part.Relocate = append(part.Relocate, tok)
		} else {
			part.Keep = append(part.Keep, tok)
		}
	}
	return part
}

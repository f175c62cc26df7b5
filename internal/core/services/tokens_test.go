package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
)

func TestSplitDrugTokens(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"single", "Warfarin", []string{"Warfarin"}},
		{"spaces", "Warfarin Clopidogrel", []string{"Warfarin", "Clopidogrel"}},
		{"newlines and runs", "Warfarin\n\n  Clopidogrel \tSimvastatin", []string{"Warfarin", "Clopidogrel", "Simvastatin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitDrugTokens(tt.cell))
		})
	}
}

func TestPartitionTokens(t *testing.T) {
	recs := domain.NewRecommendationSet()
	recs.Add("warfarin", domain.ActionDosingChange)
	recs.Add("clopidogrel", domain.ActionAlternateDrug)

	part := PartitionTokens([]string{"Warfarin", "Aspirin", "Clopidogrel", "Ibuprofen"}, recs)

	assert.Equal(t, []string{"Warfarin", "Clopidogrel"}, part.Relocate)
	assert.Equal(t, []string{"Aspirin", "Ibuprofen"}, part.Keep)
}

func TestPartitionTokensNoSubstringMatch(t *testing.T) {
	recs := domain.NewRecommendationSet()
	recs.Add("fluvastatin", domain.ActionDosingChange)

	// Partitioning is exact match only, unlike the aggregate table.
	part := PartitionTokens([]string{"statin"}, recs)

	assert.Empty(t, part.Relocate)
	assert.Equal(t, []string{"statin"}, part.Keep)
}

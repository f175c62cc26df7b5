package services

import (
	"fmt"
	"strings"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// GeneResolver resolves the gene/allele annotation for a matched drug.
// Implemented by closing over the sample's raw document.
type GeneResolver func(drug string) string

// Recorder appends one column per processed sample to the cross-sample
// aggregate table.
type Recorder struct{}

// NewRecorder creates a new aggregate recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a column for the sample: the header cell receives the
// sample ID and every drug row receives a label resolved against the
// recommendation set.
//
// Matching is bidirectional substring, case-insensitive, first match
// wins in recommendation insertion order. This can mis-assign drugs
// whose names contain one another; the first hit is kept and no
// conflict is reported. The caller saves the workbook.
func (rec *Recorder) Record(wb driven.AggregateWorkbook, sampleID string, recs *domain.RecommendationSet, genes GeneResolver) error {
	column, err := wb.NextColumn()
	if err != nil {
		return fmt.Errorf("find next column: %w", err)
	}
	if err := wb.SetHeader(column, sampleID); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rows, err := wb.DrugRows()
	if err != nil {
		return fmt.Errorf("list drug rows: %w", err)
	}

	for _, row := range rows {
		label := domain.StandardPrecautionsLabel
		if match, ok := recs.MatchSubstring(row.Drug); ok {
			label = changeLabel(match.Actions)
			if genes != nil {
				if g := genes(match.Drug); g != "" {
					label = fmt.Sprintf("%s (%s)", label, g)
				}
			}
		}
		if err := wb.SetLabel(row.Row, column, label); err != nil {
			return fmt.Errorf("write label for %q: %w", row.Drug, err)
		}
	}

	logger.Debug("recorded sample %s in aggregate column %d", sampleID, column)
	return nil
}

// changeLabel renders an action set as an aggregate label. Actions
// iterate in fixed order, so a drug with both actions always reads
// "Dosage Change & Consider Alternate".
func changeLabel(s domain.ActionSet) string {
	parts := make([]string, 0, 2)
	for _, a := range s.Actions() {
		parts = append(parts, a.ChangeLabel())
	}
	return strings.Join(parts, " & ")
}

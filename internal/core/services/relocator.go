package services

import (
	"fmt"
	"strings"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// Move records one drug relocation for the run summary.
type Move struct {
	// Drug is the token as it appeared in the source cell.
	Drug string

	// Column is the destination column letter.
	Column string

	// Row is the mutated row.
	Row int
}

// Relocator restructures a report grid: drugs with recommendations move
// from the source column into the dosing / alternate target columns,
// cell styles travel with the content, and merged regions touching any
// affected column are dissolved first.
type Relocator struct {
	layout domain.GridLayout
}

// NewRelocator creates a relocator for the given grid layout.
func NewRelocator(layout domain.GridLayout) *Relocator {
	return &Relocator{layout: layout}
}

// Relocate mutates the workbook in memory and returns the moves made.
// Rows with an empty source cell are skipped entirely; rows outside the
// layout window are never touched. Per-row failures are logged and the
// row is skipped; only structural failures (merged-region dissolution)
// abort. The caller is responsible for saving.
func (r *Relocator) Relocate(wb driven.ReportWorkbook, recs *domain.RecommendationSet) ([]Move, error) {
	if err := wb.DissolveMergedRegions(r.layout.Columns()); err != nil {
		return nil, fmt.Errorf("%w: dissolve merged regions: %w", domain.ErrGridState, err)
	}

	var moves []Move
	for row := r.layout.FirstRow; row <= r.layout.LastRow; row++ {
		rowMoves, err := r.relocateRow(wb, recs, row)
		if err != nil {
			logger.Warn("row %d skipped: %v", row, err)
			continue
		}
		moves = append(moves, rowMoves...)
	}
	return moves, nil
}

// relocateRow processes a single row of the window.
func (r *Relocator) relocateRow(wb driven.ReportWorkbook, recs *domain.RecommendationSet, row int) ([]Move, error) {
	value, err := wb.CellValue(r.layout.SourceColumn, row)
	if err != nil {
		return nil, fmt.Errorf("read source cell: %w", err)
	}
	if value == "" {
		return nil, nil
	}

	// Snapshot the source style before any mutation in this row; the
	// earlier unmerge may already have rewritten per-cell styles.
	style, err := wb.StyleSnapshot(r.layout.SourceColumn, row)
	if err != nil {
		return nil, fmt.Errorf("snapshot source style: %w", err)
	}

	part := PartitionTokens(SplitDrugTokens(value), recs)

	var moves []Move
	for _, tok := range part.Relocate {
		actions, ok := recs.Lookup(tok)
		if !ok {
			continue
		}
		if actions.Has(domain.ActionDosingChange) {
			if err := r.appendToTarget(wb, r.layout.DosingColumn, row, tok, style); err != nil {
				return moves, err
			}
			moves = append(moves, Move{Drug: tok, Column: r.layout.DosingColumn, Row: row})
			logger.Debug("moved %q to column %s (dosing change)", tok, r.layout.DosingColumn)
		}
		if actions.Has(domain.ActionAlternateDrug) {
			if err := r.appendToTarget(wb, r.layout.AlternateColumn, row, tok, style); err != nil {
				return moves, err
			}
			moves = append(moves, Move{Drug: tok, Column: r.layout.AlternateColumn, Row: row})
			logger.Debug("moved %q to column %s (alternate drug)", tok, r.layout.AlternateColumn)
		}
	}

	// Rewrite the source cell with the drugs that stay and restore its
	// own pre-mutation style.
	if len(part.Keep) > 0 {
		err = wb.SetCellValue(r.layout.SourceColumn, row, strings.Join(part.Keep, " "))
	} else {
		err = wb.ClearCell(r.layout.SourceColumn, row)
	}
	if err != nil {
		return moves, fmt.Errorf("rewrite source cell: %w", err)
	}
	if err := wb.ApplyStyle(r.layout.SourceColumn, row, style); err != nil {
		return moves, fmt.Errorf("restore source style: %w", err)
	}

	return moves, nil
}

// appendToTarget appends a token to a target cell (newline-separated if
// the cell already has content) and applies the source cell's
// pre-mutation style to the target.
func (r *Relocator) appendToTarget(wb driven.ReportWorkbook, column string, row int, token string, style driven.StyleRef) error {
	current, err := wb.CellValue(column, row)
	if err != nil {
		return fmt.Errorf("read target %s%d: %w", column, row, err)
	}
	next := token
	if current != "" {
		next = current + "\n" + token
	}
	if err := wb.SetCellValue(column, row, next); err != nil {
		return fmt.Errorf("write target %s%d: %w", column, row, err)
	}
	if err := wb.ApplyStyle(column, row, style); err != nil {
		return fmt.Errorf("style target %s%d: %w", column, row, err)
	}
	return nil
}

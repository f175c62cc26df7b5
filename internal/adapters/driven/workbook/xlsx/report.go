package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// Ensure ReportWorkbook implements the interface.
var _ driven.ReportWorkbook = (*ReportWorkbook)(nil)

// ReportWorkbook is a per-sample report grid backed by an excelize file.
type ReportWorkbook struct {
	f      *excelize.File
	sheet  string
	layout domain.GridLayout
}

// DissolveMergedRegions unmerges every region intersecting one of the
// given columns and stamps the anchor cell's style across the freed
// rectangle.
func (w *ReportWorkbook) DissolveMergedRegions(columns []string) error {
	target := make(map[int]bool, len(columns))
	for _, c := range columns {
		n, err := excelize.ColumnNameToNumber(c)
		if err != nil {
			return fmt.Errorf("column %q: %w", c, err)
		}
		target[n] = true
	}

	merged, err := w.f.GetMergeCells(w.sheet)
	if err != nil {
		return fmt.Errorf("list merged cells: %w", err)
	}

	for _, region := range merged {
		start, end := region.GetStartAxis(), region.GetEndAxis()
		startCol, _, err := excelize.CellNameToCoordinates(start)
		if err != nil {
			return fmt.Errorf("parse region start %q: %w", start, err)
		}
		endCol, _, err := excelize.CellNameToCoordinates(end)
		if err != nil {
			return fmt.Errorf("parse region end %q: %w", end, err)
		}

		intersects := false
		for col := startCol; col <= endCol; col++ {
			if target[col] {
				intersects = true
				break
			}
		}
		if !intersects {
			continue
		}

		// Anchor style must be captured before the unmerge.
		anchorStyle, err := w.f.GetCellStyle(w.sheet, start)
		if err != nil {
			return fmt.Errorf("read anchor style %s: %w", start, err)
		}
		if err := w.f.UnmergeCell(w.sheet, start, end); err != nil {
			return fmt.Errorf("unmerge %s:%s: %w", start, end, err)
		}
		if err := w.f.SetCellStyle(w.sheet, start, end, anchorStyle); err != nil {
			return fmt.Errorf("restyle %s:%s: %w", start, end, err)
		}
	}
	return nil
}

// CellValue returns the string value of a cell, "" if unset.
func (w *ReportWorkbook) CellValue(column string, row int) (string, error) {
	value, err := w.f.GetCellValue(w.sheet, cellName(column, row))
	if err != nil {
		return "", fmt.Errorf("read %s%d: %w", column, row, err)
	}
	return value, nil
}

// SetCellValue writes a string value into a cell.
func (w *ReportWorkbook) SetCellValue(column string, row int, value string) error {
	return w.f.SetCellStr(w.sheet, cellName(column, row), value)
}

// ClearCell empties a cell's value, leaving its style in place.
func (w *ReportWorkbook) ClearCell(column string, row int) error {
	return w.f.SetCellStr(w.sheet, cellName(column, row), "")
}

// StyleSnapshot captures the cell's current style. Excelize style IDs
// reference immutable style records, so the snapshot cannot be altered
// by later cell mutations.
func (w *ReportWorkbook) StyleSnapshot(column string, row int) (driven.StyleRef, error) {
	id, err := w.f.GetCellStyle(w.sheet, cellName(column, row))
	if err != nil {
		return 0, fmt.Errorf("read style %s%d: %w", column, row, err)
	}
	return driven.StyleRef(id), nil
}

// ApplyStyle applies a previously captured style to a cell.
func (w *ReportWorkbook) ApplyStyle(column string, row int, style driven.StyleRef) error {
	cell := cellName(column, row)
	return w.f.SetCellStyle(w.sheet, cell, cell, int(style))
}

// Save persists the workbook to its original path.
func (w *ReportWorkbook) Save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Close releases the file handle without saving.
func (w *ReportWorkbook) Close() error {
	return w.f.Close()
}

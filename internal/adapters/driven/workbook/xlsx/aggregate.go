package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// Ensure AggregateWorkbook implements the interface.
var _ driven.AggregateWorkbook = (*AggregateWorkbook)(nil)

// AggregateWorkbook is the cross-sample summary table backed by an
// excelize file.
type AggregateWorkbook struct {
	f      *excelize.File
	sheet  string
	layout domain.AggregateLayout
}

// NextColumn returns 1 + the highest column index holding a non-empty
// header value. On a header row with no sample columns yet this is 2,
// immediately right of the drug-name column.
func (w *AggregateWorkbook) NextColumn() (int, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	last := 1
	if len(rows) >= w.layout.HeaderRow {
		header := rows[w.layout.HeaderRow-1]
		for i, value := range header {
			if strings.TrimSpace(value) != "" {
				last = i + 1
			}
		}
	}
	return last + 1, nil
}

// SetHeader writes a sample identifier into the header row.
func (w *AggregateWorkbook) SetHeader(column int, sampleID string) error {
	cell, err := excelize.CoordinatesToCellName(column, w.layout.HeaderRow)
	if err != nil {
		return fmt.Errorf("header cell: %w", err)
	}
	return w.f.SetCellStr(w.sheet, cell, sampleID)
}

// DrugRows returns the drug rows top to bottom. Rows with an empty drug
// cell are skipped.
func (w *AggregateWorkbook) DrugRows() ([]driven.DrugRow, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []driven.DrugRow
	for row := w.layout.FirstDrugRow; row <= len(rows); row++ {
		cells := rows[row-1]
		if len(cells) < w.layout.DrugColumn {
			continue
		}
		drug := strings.TrimSpace(cells[w.layout.DrugColumn-1])
		if drug == "" {
			continue
		}
		out = append(out, driven.DrugRow{Row: row, Drug: drug})
	}
	return out, nil
}

// SetLabel writes a label cell and copies the style of the cell in the
// preceding column of the same row, so formatting follows the table's
// horizontal trend rather than any fixed template.
func (w *AggregateWorkbook) SetLabel(row, column int, label string) error {
	cell, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return fmt.Errorf("label cell: %w", err)
	}
	prev, err := excelize.CoordinatesToCellName(column-1, row)
	if err != nil {
		return fmt.Errorf("previous cell: %w", err)
	}

	if err := w.f.SetCellStr(w.sheet, cell, label); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	style, err := w.f.GetCellStyle(w.sheet, prev)
	if err != nil {
		return fmt.Errorf("read style %s: %w", prev, err)
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}
	return nil
}

// Save persists the workbook to its original path.
func (w *AggregateWorkbook) Save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("save aggregate: %w", err)
	}
	return nil
}

// Close releases the file handle without saving.
func (w *AggregateWorkbook) Close() error {
	return w.f.Close()
}

// Package xlsx implements the workbook ports on top of excelize.
// Styles are excelize style IDs: immutable value snapshots that stay
// valid across later mutations, which is exactly what the relocation
// contract requires.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.WorkbookFactory = (*Factory)(nil)

// Factory opens xlsx workbooks.
type Factory struct{}

// NewFactory creates a workbook factory.
func NewFactory() *Factory {
	return &Factory{}
}

// OpenReport opens a per-sample report for relocation.
func (Factory) OpenReport(path string, layout domain.GridLayout) (driven.ReportWorkbook, error) {
	f, sheet, err := open(path)
	if err != nil {
		return nil, err
	}
	return &ReportWorkbook{f: f, sheet: sheet, layout: layout}, nil
}

// OpenAggregate opens the shared aggregate workbook.
func (Factory) OpenAggregate(path string, layout domain.AggregateLayout) (driven.AggregateWorkbook, error) {
	f, sheet, err := open(path)
	if err != nil {
		return nil, err
	}
	return &AggregateWorkbook{f: f, sheet: sheet, layout: layout}, nil
}

// OpenTemplate opens the report template for population.
func (Factory) OpenTemplate(path string, layout domain.TemplateLayout) (driven.TemplateWorkbook, error) {
	f, sheet, err := open(path)
	if err != nil {
		return nil, err
	}
	return &TemplateWorkbook{f: f, sheet: sheet, layout: layout}, nil
}

// open loads a workbook and resolves its active sheet.
func open(path string) (*excelize.File, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		_ = f.Close()
		return nil, "", fmt.Errorf("workbook %s has no active sheet", path)
	}
	return f, sheet, nil
}

// cellName builds an A1-style reference from a column letter and row.
func cellName(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

package driven

import "github.com/clinforge/pgxreport-cli/internal/core/domain"

// StyleRef is an opaque reference to an immutable cell style snapshot.
// Snapshots taken before a mutation remain valid afterwards; applying a
// snapshot never aliases live cell state.
type StyleRef int

// ReportWorkbook is a per-sample report grid opened for mutation.
// Implementations keep all changes in memory until Save.
type ReportWorkbook interface {
	// DissolveMergedRegions unmerges every merged region that intersects
	// one of the given columns. Each freed cell receives the style of the
	// region's anchor (top-left) cell.
	DissolveMergedRegions(columns []string) error

	// CellValue returns the string value of a cell, "" if unset.
	CellValue(column string, row int) (string, error)

	// SetCellValue writes a string value into a cell.
	SetCellValue(column string, row int, value string) error

	// ClearCell removes a cell's value, leaving its style in place.
	ClearCell(column string, row int) error

	// StyleSnapshot captures the cell's current style as a value.
	StyleSnapshot(column string, row int) (StyleRef, error)

	// ApplyStyle applies a previously captured style to a cell.
	ApplyStyle(column string, row int, style StyleRef) error

	// Save persists the workbook. In-memory mutations survive a failed
	// save; the caller decides whether to retry.
	Save() error

	// Close releases the underlying file handle without saving.
	Close() error
}

// DrugRow is one drug row of the aggregate table.
type DrugRow struct {
	// Row is the 1-based row index.
	Row int

	// Drug is the drug name as written in the table.
	Drug string
}

// AggregateWorkbook is the shared cross-sample summary table.
// Callers must serialize access; there is no locking discipline.
type AggregateWorkbook interface {
	// NextColumn returns 1 + the highest column index currently holding
	// a non-empty header value.
	NextColumn() (int, error)

	// SetHeader writes a sample identifier into the header row.
	SetHeader(column int, sampleID string) error

	// DrugRows returns the drug rows in fixed top-to-bottom order.
	DrugRows() ([]DrugRow, error)

	// SetLabel writes a label cell, copying the style of the cell in the
	// immediately preceding column of the same row.
	SetLabel(row, column int, label string) error

	// Save persists the workbook.
	Save() error

	// Close releases the underlying file handle without saving.
	Close() error
}

// TemplateWorkbook is a report template opened for gene/phenotype
// population.
type TemplateWorkbook interface {
	// SetHeaderCell writes a header cell value.
	SetHeaderCell(column string, row int, value string) error

	// GeneName returns the gene name in the given gene-table row, ""
	// when the row holds none.
	GeneName(row int) (string, error)

	// SetGeneCall writes genotype and phenotype into a gene-table row.
	SetGeneCall(row int, genotype, phenotype string) error

	// GeneCall reads back the genotype and phenotype of a row.
	GeneCall(row int) (genotype, phenotype string, err error)

	// SaveAs persists the populated template to a new path.
	SaveAs(path string) error

	// Close releases the underlying file handle without saving.
	Close() error
}

// WorkbookFactory opens workbooks. All handles must be released with
// Close (or Save where documented) on every exit path.
type WorkbookFactory interface {
	// OpenReport opens a per-sample report for relocation.
	OpenReport(path string, layout domain.GridLayout) (ReportWorkbook, error)

	// OpenAggregate opens the shared aggregate workbook.
	OpenAggregate(path string, layout domain.AggregateLayout) (AggregateWorkbook, error)

	// OpenTemplate opens the report template for population.
	OpenTemplate(path string, layout domain.TemplateLayout) (TemplateWorkbook, error)
}

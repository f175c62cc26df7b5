package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// Ensure TemplateWorkbook implements the interface.
var _ driven.TemplateWorkbook = (*TemplateWorkbook)(nil)

// TemplateWorkbook is the report template opened for gene/phenotype
// population.
type TemplateWorkbook struct {
	f      *excelize.File
	sheet  string
	layout domain.TemplateLayout
}

// SetHeaderCell writes a header cell value.
func (w *TemplateWorkbook) SetHeaderCell(column string, row int, value string) error {
	return w.f.SetCellStr(w.sheet, cellName(column, row), value)
}

// GeneName returns the trimmed gene name of a gene-table row.
func (w *TemplateWorkbook) GeneName(row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(w.layout.GeneColumn, row)
	if err != nil {
		return "", fmt.Errorf("gene cell: %w", err)
	}
	value, err := w.f.GetCellValue(w.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", cell, err)
	}
	return strings.TrimSpace(value), nil
}

// SetGeneCall writes genotype and phenotype into a gene-table row.
func (w *TemplateWorkbook) SetGeneCall(row int, genotype, phenotype string) error {
	genoCell, err := excelize.CoordinatesToCellName(w.layout.GenotypeColumn, row)
	if err != nil {
		return fmt.Errorf("genotype cell: %w", err)
	}
	phenoCell, err := excelize.CoordinatesToCellName(w.layout.PhenotypeColumn, row)
	if err != nil {
		return fmt.Errorf("phenotype cell: %w", err)
	}
	if err := w.f.SetCellStr(w.sheet, genoCell, genotype); err != nil {
		return fmt.Errorf("write %s: %w", genoCell, err)
	}
	if err := w.f.SetCellStr(w.sheet, phenoCell, phenotype); err != nil {
		return fmt.Errorf("write %s: %w", phenoCell, err)
	}
	return nil
}

// GeneCall reads back the genotype and phenotype of a row.
func (w *TemplateWorkbook) GeneCall(row int) (string, string, error) {
	genoCell, err := excelize.CoordinatesToCellName(w.layout.GenotypeColumn, row)
	if err != nil {
		return "", "", fmt.Errorf("genotype cell: %w", err)
	}
	phenoCell, err := excelize.CoordinatesToCellName(w.layout.PhenotypeColumn, row)
	if err != nil {
		return "", "", fmt.Errorf("phenotype cell: %w", err)
	}
	genotype, err := w.f.GetCellValue(w.sheet, genoCell)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", genoCell, err)
	}
	phenotype, err := w.f.GetCellValue(w.sheet, phenoCell)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", phenoCell, err)
	}
	return genotype, phenotype, nil
}

// SaveAs persists the populated template to a new path.
func (w *TemplateWorkbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save template as %s: %w", path, err)
	}
	return nil
}

// Close releases the file handle without saving.
func (w *TemplateWorkbook) Close() error {
	return w.f.Close()
}

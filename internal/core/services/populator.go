package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driving"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// Ensure Populator implements the interface.
var _ driving.TemplatePopulator = (*Populator)(nil)

// Populator fills the gene/phenotype portion of the report template from
// a sample's genotype CSV and writes the result as the sample's report
// workbook. Relocation assumes this step already ran.
type Populator struct {
	content      driven.ContentStore
	books        driven.WorkbookFactory
	layout       domain.TemplateLayout
	templatePath string
}

// NewPopulator creates a template populator.
func NewPopulator(content driven.ContentStore, books driven.WorkbookFactory, layout domain.TemplateLayout, templatePath string) *Populator {
	return &Populator{
		content:      content,
		books:        books,
		layout:       layout,
		templatePath: templatePath,
	}
}

// PopulateAll populates a report for every sample in the master sample
// list. Samples without a genotype CSV are counted as failed and the
// run continues.
func (p *Populator) PopulateAll(ctx context.Context) (*driving.RunSummary, error) {
	samples, err := p.content.SampleList(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sample list: %w", err)
	}

	summary := &driving.RunSummary{
		RunID: uuid.New().String(),
		Total: len(samples),
	}
	for _, sampleID := range samples {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := p.Populate(ctx, sampleID); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, driving.SampleFailure{
				SampleID: sampleID,
				Reason:   err.Error(),
			})
			logger.Error("populate %s failed: %v", sampleID, err)
			continue
		}
		summary.Processed++
	}

	logger.Info("populate complete: %d processed, %d failed", summary.Processed, summary.Failed)
	return summary, nil
}

// Populate fills the template for one sample and verifies the saved
// workbook by reading the gene rows back.
func (p *Populator) Populate(ctx context.Context, sampleID string) error {
	calls, err := p.content.ReadGeneCalls(ctx, sampleID)
	if err != nil {
		return fmt.Errorf("read genotype CSV: %w", err)
	}

	byGene := make(map[string]domain.GeneCall, len(calls))
	for _, call := range calls {
		byGene[call.Gene] = call
	}

	outPath := p.content.ReportPath(sampleID)
	if err := p.fillTemplate(sampleID, byGene, outPath); err != nil {
		return err
	}
	if err := p.verify(byGene, outPath); err != nil {
		return err
	}

	logger.Info("populated report for %s: %s", sampleID, outPath)
	return nil
}

// fillTemplate writes header cells and gene rows into a fresh copy of
// the template.
func (p *Populator) fillTemplate(sampleID string, byGene map[string]domain.GeneCall, outPath string) error {
	wb, err := p.books.OpenTemplate(p.templatePath, p.layout)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer wb.Close()

	for _, row := range p.layout.HeaderNARows {
		if err := wb.SetHeaderCell(p.layout.HeaderColumn, row, "N/A"); err != nil {
			return fmt.Errorf("write header row %d: %w", row, err)
		}
	}
	if err := wb.SetHeaderCell(p.layout.HeaderColumn, p.layout.SampleIDRow, sampleID); err != nil {
		return fmt.Errorf("write sample ID: %w", err)
	}

	for row := p.layout.GeneFirstRow; row <= p.layout.GeneLastRow; row++ {
		gene, err := wb.GeneName(row)
		if err != nil {
			return fmt.Errorf("read gene name row %d: %w", row, err)
		}
		call, ok := byGene[gene]
		if !ok {
			continue
		}
		if err := wb.SetGeneCall(row, call.Genotype, call.Phenotype); err != nil {
			return fmt.Errorf("write gene %s: %w", gene, err)
		}
		logger.Debug("updated %s: genotype=%s phenotype=%s", gene, call.Genotype, call.Phenotype)
	}

	if err := wb.SaveAs(outPath); err != nil {
		return fmt.Errorf("%w: save populated report: %w", domain.ErrPersistence, err)
	}
	return nil
}

// verify re-opens the saved workbook and checks every populated gene row
// round-tripped intact.
func (p *Populator) verify(byGene map[string]domain.GeneCall, path string) error {
	wb, err := p.books.OpenTemplate(path, p.layout)
	if err != nil {
		return fmt.Errorf("reopen for verification: %w", err)
	}
	defer wb.Close()

	for row := p.layout.GeneFirstRow; row <= p.layout.GeneLastRow; row++ {
		gene, err := wb.GeneName(row)
		if err != nil {
			return fmt.Errorf("verify row %d: %w", row, err)
		}
		call, ok := byGene[gene]
		if !ok {
			continue
		}
		genotype, phenotype, err := wb.GeneCall(row)
		if err != nil {
			return fmt.Errorf("verify gene %s: %w", gene, err)
		}
		if genotype != call.Genotype || phenotype != call.Phenotype {
			return fmt.Errorf("%w: gene %s saved as %q/%q, want %q/%q",
				domain.ErrGridState, gene, genotype, phenotype, call.Genotype, call.Phenotype)
		}
	}
	return nil
}

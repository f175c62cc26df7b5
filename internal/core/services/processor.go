package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driving"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// Ensure Processor implements the interface.
var _ driving.BatchProcessor = (*Processor)(nil)

// ProcessorConfig carries the layout and paths the processor needs.
type ProcessorConfig struct {
	// Grid is the per-sample report layout.
	Grid domain.GridLayout

	// Aggregate is the aggregate workbook layout.
	Aggregate domain.AggregateLayout

	// AggregatePath locates the shared aggregate workbook.
	AggregatePath string

	// Force reprocesses samples the journal has already recorded.
	// The aggregate table gains a duplicate column in that case.
	Force bool
}

// Processor drives the per-sample pipeline sequentially: read scraped
// content, extract recommendations, relocate drugs in a staged copy of
// the report, record the sample in the aggregate table, journal the
// outcome. One failing sample never aborts the batch.
type Processor struct {
	content   driven.ContentStore
	books     driven.WorkbookFactory
	journal   driven.RunJournal
	extractor *Extractor
	relocator *Relocator
	recorder  *Recorder
	cfg       ProcessorConfig
}

// NewProcessor creates a batch processor.
func NewProcessor(content driven.ContentStore, books driven.WorkbookFactory, journal driven.RunJournal, cfg ProcessorConfig) *Processor {
	return &Processor{
		content:   content,
		books:     books,
		journal:   journal,
		extractor: NewExtractor(),
		relocator: NewRelocator(cfg.Grid),
		recorder:  NewRecorder(),
		cfg:       cfg,
	}
}

// ProcessAll processes every sample that has both a report workbook and
// scraped content.
func (p *Processor) ProcessAll(ctx context.Context) (*driving.RunSummary, error) {
	samples, err := p.content.ListSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	return p.ProcessSamples(ctx, samples)
}

// ProcessSamples processes the given samples in order.
func (p *Processor) ProcessSamples(ctx context.Context, sampleIDs []string) (*driving.RunSummary, error) {
	summary := &driving.RunSummary{
		RunID: uuid.New().String(),
		Total: len(sampleIDs),
	}
	logger.Info("starting batch run %s: %d samples", summary.RunID, summary.Total)

	for _, sampleID := range sampleIDs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		logger.Section("sample " + sampleID)
		if err := p.processOne(ctx, sampleID); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, driving.SampleFailure{
				SampleID: sampleID,
				Reason:   err.Error(),
			})
			p.journalOutcome(ctx, sampleID, summary.RunID, driven.StatusFailed, err.Error())

			switch {
			case errors.Is(err, domain.ErrNoRecommendations):
				logger.Warn("sample %s: no recommendations found", sampleID)
			case errors.Is(err, domain.ErrAlreadyRecorded):
				logger.Warn("sample %s already recorded, skipping (use --force to reprocess)", sampleID)
			default:
				logger.Error("sample %s failed: %v", sampleID, err)
			}
			continue
		}

		summary.Processed++
		p.journalOutcome(ctx, sampleID, summary.RunID, driven.StatusProcessed, "")
	}

	logger.Info("batch run %s complete: %d processed, %d failed", summary.RunID, summary.Processed, summary.Failed)
	return summary, nil
}

// processOne runs the full pipeline for a single sample.
func (p *Processor) processOne(ctx context.Context, sampleID string) error {
	if !p.cfg.Force {
		recorded, err := p.journal.Recorded(ctx, sampleID)
		if err != nil {
			return fmt.Errorf("check journal: %w", err)
		}
		if recorded {
			return domain.ErrAlreadyRecorded
		}
	}

	doc, err := p.content.ReadDocument(ctx, sampleID)
	if err != nil {
		return fmt.Errorf("read scraped content: %w", err)
	}
	if doc.Empty() {
		return domain.ErrNoRecommendations
	}

	recs := p.extractor.Extract(doc)
	if recs.Len() == 0 {
		return domain.ErrNoRecommendations
	}
	for _, r := range recs.Recommendations() {
		for _, a := range r.Actions.Actions() {
			logger.Debug("recommendation: %s -> %s", r.Drug, a)
		}
	}

	moves, err := p.relocateReport(ctx, sampleID, recs)
	if err != nil {
		return err
	}
	for _, m := range moves {
		logger.Info("%s: moved %q to column %s (row %d)", sampleID, m.Drug, m.Column, m.Row)
	}
	if len(moves) == 0 {
		logger.Warn("sample %s: recommendations matched no drug in the report", sampleID)
	}

	if err := p.recordAggregate(sampleID, doc, recs); err != nil {
		return err
	}
	return nil
}

// relocateReport stages a copy of the report and mutates it.
func (p *Processor) relocateReport(ctx context.Context, sampleID string, recs *domain.RecommendationSet) ([]Move, error) {
	staged, err := p.content.StageReport(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("stage report: %w", err)
	}

	wb, err := p.books.OpenReport(staged, p.cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer wb.Close()

	moves, err := p.relocator.Relocate(wb, recs)
	if err != nil {
		return nil, fmt.Errorf("relocate: %w", err)
	}
	if err := wb.Save(); err != nil {
		// In-memory changes are not rolled back; the staged copy on
		// disk is simply stale.
		return nil, fmt.Errorf("%w: save report: %w", domain.ErrPersistence, err)
	}
	return moves, nil
}

// recordAggregate appends the sample's column to the aggregate table.
func (p *Processor) recordAggregate(sampleID string, doc domain.RawDocument, recs *domain.RecommendationSet) error {
	agg, err := p.books.OpenAggregate(p.cfg.AggregatePath, p.cfg.Aggregate)
	if err != nil {
		return fmt.Errorf("open aggregate: %w", err)
	}
	defer agg.Close()

	resolver := func(drug string) string {
		return p.extractor.Genes(doc, drug)
	}
	if err := p.recorder.Record(agg, sampleID, recs, resolver); err != nil {
		return fmt.Errorf("record aggregate: %w", err)
	}
	if err := agg.Save(); err != nil {
		return fmt.Errorf("%w: save aggregate: %w", domain.ErrPersistence, err)
	}
	return nil
}

// journalOutcome best-effort records a sample outcome.
func (p *Processor) journalOutcome(ctx context.Context, sampleID, runID string, status driven.JournalStatus, detail string) {
	err := p.journal.Record(ctx, driven.JournalEntry{
		SampleID: sampleID,
		RunID:    runID,
		Status:   status,
		Detail:   detail,
	})
	if err != nil {
		logger.Warn("journal write failed for %s: %v", sampleID, err)
	}
}

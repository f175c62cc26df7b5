package driven

import (
	"context"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
)

// ContentStore locates and reads the per-sample inputs: scraped content
// files, report workbooks and genotype CSVs.
type ContentStore interface {
	// ListSamples returns the IDs of samples that have both a report
	// workbook and at least one scraped content file, sorted.
	ListSamples(ctx context.Context) ([]string, error)

	// ReadDocument reads the newest scraped content file for a sample.
	// Returns domain.ErrSampleNotFound when none exists.
	ReadDocument(ctx context.Context, sampleID string) (domain.RawDocument, error)

	// ReportPath returns the path of the sample's report workbook (the
	// populate step's output, the relocation step's input).
	ReportPath(sampleID string) string

	// StageReport copies the sample's report workbook into the output
	// directory and returns the staged path. The original is never
	// mutated in place.
	StageReport(ctx context.Context, sampleID string) (string, error)

	// ReadGeneCalls reads the sample's genotype CSV.
	ReadGeneCalls(ctx context.Context, sampleID string) ([]domain.GeneCall, error)

	// SampleList reads the master sample list CSV, trying a sequence of
	// encodings, and returns the sample IDs in file order.
	SampleList(ctx context.Context) ([]string, error)
}

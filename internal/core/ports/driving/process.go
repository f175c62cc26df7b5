package driving

import "context"

// SampleFailure records why one sample failed during a batch run.
type SampleFailure struct {
	// SampleID identifies the failed sample.
	SampleID string

	// Reason is a human-readable failure description.
	Reason string
}

// RunSummary is the user-visible outcome of a batch run.
type RunSummary struct {
	// RunID uniquely identifies the run.
	RunID string

	// Total is the number of samples considered.
	Total int

	// Processed is the number of samples fully processed.
	Processed int

	// Failed is the number of samples that could not be processed.
	Failed int

	// Failures lists the failed samples in processing order.
	Failures []SampleFailure
}

// BatchProcessor drives the per-sample pipeline: extract recommendations,
// relocate drugs in the report grid, record the sample in the aggregate
// table. Samples are processed strictly one at a time.
type BatchProcessor interface {
	// ProcessAll processes every eligible sample. Per-sample failures
	// are isolated: one bad sample never aborts the batch.
	ProcessAll(ctx context.Context) (*RunSummary, error)

	// ProcessSamples processes the given samples in order.
	ProcessSamples(ctx context.Context, sampleIDs []string) (*RunSummary, error)
}

// TemplatePopulator fills the gene/phenotype portion of report templates
// from per-sample genotype CSVs. It runs before the batch processor; the
// grid mutator assumes this population already occurred.
type TemplatePopulator interface {
	// PopulateAll populates a report for every sample in the master
	// sample list that has a genotype CSV.
	PopulateAll(ctx context.Context) (*RunSummary, error)

	// Populate populates the report for a single sample.
	Populate(ctx context.Context, sampleID string) error
}

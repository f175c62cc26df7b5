package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// fakeContent serves documents and gene calls from memory.
type fakeContent struct {
	samples   []string
	docs      map[string]string
	geneCalls map[string][]domain.GeneCall
}

var _ driven.ContentStore = (*fakeContent)(nil)

func (f *fakeContent) ListSamples(context.Context) ([]string, error) {
	return f.samples, nil
}

func (f *fakeContent) ReadDocument(_ context.Context, sampleID string) (domain.RawDocument, error) {
	text, ok := f.docs[sampleID]
	if !ok {
		return domain.RawDocument{}, fmt.Errorf("%w: no scraped content for %s", domain.ErrSampleNotFound, sampleID)
	}
	return domain.NewRawDocument(sampleID, text), nil
}

func (f *fakeContent) ReportPath(sampleID string) string {
	return "reports/" + sampleID + ".xlsx"
}

func (f *fakeContent) StageReport(_ context.Context, sampleID string) (string, error) {
	return "output/" + sampleID + ".xlsx", nil
}

func (f *fakeContent) ReadGeneCalls(_ context.Context, sampleID string) ([]domain.GeneCall, error) {
	calls, ok := f.geneCalls[sampleID]
	if !ok {
		return nil, fmt.Errorf("%w: no genotype CSV for %s", domain.ErrSampleNotFound, sampleID)
	}
	return calls, nil
}

func (f *fakeContent) SampleList(context.Context) ([]string, error) {
	return f.samples, nil
}

// fakeFactory hands out pre-built fake workbooks by path.
type fakeFactory struct {
	reports   map[string]*fakeReport
	aggregate *fakeAggregate
}

var _ driven.WorkbookFactory = (*fakeFactory)(nil)

func (f *fakeFactory) OpenReport(path string, _ domain.GridLayout) (driven.ReportWorkbook, error) {
	wb, ok := f.reports[path]
	if !ok {
		return nil, fmt.Errorf("no report at %s", path)
	}
	return wb, nil
}

func (f *fakeFactory) OpenAggregate(string, domain.AggregateLayout) (driven.AggregateWorkbook, error) {
	return f.aggregate, nil
}

func (f *fakeFactory) OpenTemplate(string, domain.TemplateLayout) (driven.TemplateWorkbook, error) {
	return nil, errors.New("not used")
}

// memJournal is an in-memory RunJournal.
type memJournal struct {
	entries []driven.JournalEntry
}

var _ driven.RunJournal = (*memJournal)(nil)

func (m *memJournal) Recorded(_ context.Context, sampleID string) (bool, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].SampleID == sampleID {
			return m.entries[i].Status == driven.StatusProcessed, nil
		}
	}
	return false, nil
}

func (m *memJournal) Record(_ context.Context, entry driven.JournalEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memJournal) List(context.Context) ([]driven.JournalEntry, error) {
	out := make([]driven.JournalEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memJournal) Close() error { return nil }

const warfarinContent = `Warfarin
(opens in new window)
CPIC recommended clinical action for warfarin based on CYP2C9 *1/*3
Dosing Info
DPWG guidance follows`

func testProcessorConfig(force bool) ProcessorConfig {
	return ProcessorConfig{
		Grid:          testLayout(),
		Aggregate:     domain.DefaultAggregateLayout(),
		AggregatePath: "aggregate.xlsx",
		Force:         force,
	}
}

func TestProcessSamplesEndToEnd(t *testing.T) {
	content := &fakeContent{
		samples: []string{"S1"},
		docs:    map[string]string{"S1": warfarinContent},
	}
	report := newFakeReport()
	report.cells["C8"] = "Warfarin Aspirin"
	agg := newFakeAggregate(3,
		driven.DrugRow{Row: 2, Drug: "Warfarin"},
		driven.DrugRow{Row: 3, Drug: "Aspirin"},
	)
	factory := &fakeFactory{
		reports:   map[string]*fakeReport{"output/S1.xlsx": report},
		aggregate: agg,
	}
	journal := &memJournal{}

	p := NewProcessor(content, factory, journal, testProcessorConfig(false))
	summary, err := p.ProcessAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	// Report mutated, saved and closed.
	assert.Equal(t, "Warfarin", report.cells["E8"])
	assert.Equal(t, "Aspirin", report.cells["C8"])
	assert.True(t, report.saved)
	assert.True(t, report.closed)

	// Aggregate column appended with the gene annotation.
	assert.Equal(t, "S1", agg.headers[3])
	assert.Equal(t, "Dosage Change (CYP2C9)", agg.labels["2/3"])
	assert.Equal(t, "Standard Precautions", agg.labels["3/3"])
	assert.True(t, agg.saved)

	// Journal records the success.
	require.Len(t, journal.entries, 1)
	assert.Equal(t, driven.StatusProcessed, journal.entries[0].Status)
	assert.Equal(t, summary.RunID, journal.entries[0].RunID)
}

func TestProcessSamplesFailureIsolation(t *testing.T) {
	content := &fakeContent{
		samples: []string{"S1", "S2"},
		docs:    map[string]string{"S2": warfarinContent},
	}
	report := newFakeReport()
	report.cells["C8"] = "Warfarin"
	factory := &fakeFactory{
		reports:   map[string]*fakeReport{"output/S2.xlsx": report},
		aggregate: newFakeAggregate(2, driven.DrugRow{Row: 2, Drug: "Warfarin"}),
	}
	journal := &memJournal{}

	p := NewProcessor(content, factory, journal, testProcessorConfig(false))
	summary, err := p.ProcessAll(context.Background())
	require.NoError(t, err)

	// S1 has no scraped content; S2 still goes through.
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "S1", summary.Failures[0].SampleID)
	assert.Contains(t, summary.Failures[0].Reason, "sample not found")

	require.Len(t, journal.entries, 2)
	assert.Equal(t, driven.StatusFailed, journal.entries[0].Status)
	assert.Equal(t, driven.StatusProcessed, journal.entries[1].Status)
}

func TestProcessSamplesNoRecommendations(t *testing.T) {
	content := &fakeContent{
		samples: []string{"S1"},
		docs:    map[string]string{"S1": "Nothing recognisable here."},
	}
	factory := &fakeFactory{aggregate: newFakeAggregate(2)}
	journal := &memJournal{}

	p := NewProcessor(content, factory, journal, testProcessorConfig(false))
	summary, err := p.ProcessAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0].Reason, "no recommendations")
}

func TestProcessSamplesAtMostOnce(t *testing.T) {
	content := &fakeContent{
		samples: []string{"S1"},
		docs:    map[string]string{"S1": warfarinContent},
	}
	makeFactory := func() *fakeFactory {
		report := newFakeReport()
		report.cells["C8"] = "Warfarin"
		return &fakeFactory{
			reports:   map[string]*fakeReport{"output/S1.xlsx": report},
			aggregate: newFakeAggregate(2, driven.DrugRow{Row: 2, Drug: "Warfarin"}),
		}
	}
	journal := &memJournal{}

	p := NewProcessor(content, makeFactory(), journal, testProcessorConfig(false))
	summary, err := p.ProcessAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)

	// Second run skips: the sample is already in the aggregate table.
	second := makeFactory()
	p = NewProcessor(content, second, journal, testProcessorConfig(false))
	summary, err = p.ProcessAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Failures[0].Reason, "already recorded")
	assert.Empty(t, second.aggregate.headers)

	// Force reprocesses.
	third := makeFactory()
	p = NewProcessor(content, third, journal, testProcessorConfig(true))
	summary, err = p.ProcessAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, "S1", third.aggregate.headers[2])
}

func TestProcessSamplesContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := &fakeContent{samples: []string{"S1"}}
	p := NewProcessor(content, &fakeFactory{}, &memJournal{}, testProcessorConfig(false))

	summary, err := p.ProcessSamples(ctx, []string{"S1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Processed)
}

func TestProcessSamplesRecommendationMatchesNoGridRow(t *testing.T) {
	// Recommendation extracted, but the report grid has no matching drug:
	// the sample still counts as processed and lands in the aggregate.
	content := &fakeContent{
		samples: []string{"S1"},
		docs:    map[string]string{"S1": warfarinContent},
	}
	report := newFakeReport()
	report.cells["C8"] = "Aspirin"
	agg := newFakeAggregate(2, driven.DrugRow{Row: 2, Drug: "Warfarin"})
	factory := &fakeFactory{
		reports:   map[string]*fakeReport{"output/S1.xlsx": report},
		aggregate: agg,
	}

	p := NewProcessor(content, factory, &memJournal{}, testProcessorConfig(false))
	summary, err := p.ProcessAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, "Aspirin", report.cells["C8"])
	if !strings.Contains(agg.labels["2/2"], "Dosage Change") {
		t.Fatalf("aggregate label = %q, want dosage change", agg.labels["2/2"])
	}
}

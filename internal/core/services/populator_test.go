package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
)

// fakeTemplate is an in-memory TemplateWorkbook.
type fakeTemplate struct {
	factory *fakeTemplateFactory
	genes   map[int]string
	headers map[string]string
	calls   map[int][2]string
	savedTo string
	closed  bool
}

var _ driven.TemplateWorkbook = (*fakeTemplate)(nil)

func (f *fakeTemplate) SetHeaderCell(column string, row int, value string) error {
	f.headers[fmt.Sprintf("%s%d", column, row)] = value
	return nil
}

func (f *fakeTemplate) GeneName(row int) (string, error) {
	return f.genes[row], nil
}

func (f *fakeTemplate) SetGeneCall(row int, genotype, phenotype string) error {
	f.calls[row] = [2]string{genotype, phenotype}
	return nil
}

func (f *fakeTemplate) GeneCall(row int) (string, string, error) {
	call := f.calls[row]
	return call[0], call[1], nil
}

func (f *fakeTemplate) SaveAs(path string) error {
	f.savedTo = path
	if f.factory.corruptOnSave {
		for row := range f.calls {
			f.calls[row] = [2]string{"corrupted", "corrupted"}
		}
	}
	f.factory.saved[path] = f
	return nil
}

func (f *fakeTemplate) Close() error {
	f.closed = true
	return nil
}

// fakeTemplateFactory hands out fresh template copies and remembers what
// SaveAs persisted, so verification re-opens real state.
type fakeTemplateFactory struct {
	templatePath  string
	genes         map[int]string
	saved         map[string]*fakeTemplate
	corruptOnSave bool
}

var _ driven.WorkbookFactory = (*fakeTemplateFactory)(nil)

func newFakeTemplateFactory(templatePath string, genes map[int]string) *fakeTemplateFactory {
	return &fakeTemplateFactory{
		templatePath: templatePath,
		genes:        genes,
		saved:        make(map[string]*fakeTemplate),
	}
}

func (f *fakeTemplateFactory) OpenReport(string, domain.GridLayout) (driven.ReportWorkbook, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeTemplateFactory) OpenAggregate(string, domain.AggregateLayout) (driven.AggregateWorkbook, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeTemplateFactory) OpenTemplate(path string, _ domain.TemplateLayout) (driven.TemplateWorkbook, error) {
	if wb, ok := f.saved[path]; ok {
		return wb, nil
	}
	if path != f.templatePath {
		return nil, fmt.Errorf("no workbook at %s", path)
	}
	return &fakeTemplate{
		factory: f,
		genes:   f.genes,
		headers: make(map[string]string),
		calls:   make(map[int][2]string),
	}, nil
}

func testTemplateLayout() domain.TemplateLayout {
	return domain.TemplateLayout{
		HeaderNARows:    []int{2, 3, 4},
		SampleIDRow:     5,
		HeaderColumn:    "B",
		GeneFirstRow:    109,
		GeneLastRow:     111,
		GeneColumn:      1,
		GenotypeColumn:  2,
		PhenotypeColumn: 3,
	}
}

func TestPopulateFillsHeadersAndGeneRows(t *testing.T) {
	content := &fakeContent{
		geneCalls: map[string][]domain.GeneCall{
			"S1": {
				{Gene: "CYP2C9", Genotype: "*1/*3", Phenotype: "Intermediate Metabolizer"},
				{Gene: "CYP2C19", Genotype: "*2/*2", Phenotype: "Poor Metabolizer"},
			},
		},
	}
	factory := newFakeTemplateFactory("template.xlsx", map[int]string{
		109: "CYP2C9",
		110: "",
		111: "CYP2C19",
	})

	p := NewPopulator(content, factory, testTemplateLayout(), "template.xlsx")
	err := p.Populate(context.Background(), "S1")
	require.NoError(t, err)

	saved, ok := factory.saved["reports/S1.xlsx"]
	require.True(t, ok, "populated report not saved")

	assert.Equal(t, "N/A", saved.headers["B2"])
	assert.Equal(t, "N/A", saved.headers["B3"])
	assert.Equal(t, "N/A", saved.headers["B4"])
	assert.Equal(t, "S1", saved.headers["B5"])

	assert.Equal(t, [2]string{"*1/*3", "Intermediate Metabolizer"}, saved.calls[109])
	assert.Equal(t, [2]string{"*2/*2", "Poor Metabolizer"}, saved.calls[111])
	_, hasEmptyRow := saved.calls[110]
	assert.False(t, hasEmptyRow, "row without a gene name must stay untouched")
}

func TestPopulateSkipsGenesAbsentFromCSV(t *testing.T) {
	content := &fakeContent{
		geneCalls: map[string][]domain.GeneCall{
			"S1": {{Gene: "CYP2C9", Genotype: "*1/*1", Phenotype: "Normal Metabolizer"}},
		},
	}
	factory := newFakeTemplateFactory("template.xlsx", map[int]string{
		109: "CYP2C9",
		110: "TPMT",
	})

	p := NewPopulator(content, factory, testTemplateLayout(), "template.xlsx")
	require.NoError(t, p.Populate(context.Background(), "S1"))

	saved := factory.saved["reports/S1.xlsx"]
	require.NotNil(t, saved)
	assert.Contains(t, saved.calls, 109)
	assert.NotContains(t, saved.calls, 110)
}

func TestPopulateMissingGenotypeCSV(t *testing.T) {
	content := &fakeContent{}
	factory := newFakeTemplateFactory("template.xlsx", nil)

	p := NewPopulator(content, factory, testTemplateLayout(), "template.xlsx")
	err := p.Populate(context.Background(), "S1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSampleNotFound)
}

func TestPopulateVerificationCatchesCorruption(t *testing.T) {
	content := &fakeContent{
		geneCalls: map[string][]domain.GeneCall{
			"S1": {{Gene: "CYP2C9", Genotype: "*1/*3", Phenotype: "Intermediate Metabolizer"}},
		},
	}
	factory := newFakeTemplateFactory("template.xlsx", map[int]string{109: "CYP2C9"})
	factory.corruptOnSave = true

	p := NewPopulator(content, factory, testTemplateLayout(), "template.xlsx")
	err := p.Populate(context.Background(), "S1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGridState)
}

func TestPopulateAllIsolatesFailures(t *testing.T) {
	content := &fakeContent{
		samples: []string{"S1", "S2"},
		geneCalls: map[string][]domain.GeneCall{
			"S2": {{Gene: "CYP2C9", Genotype: "*1/*1", Phenotype: "Normal Metabolizer"}},
		},
	}
	factory := newFakeTemplateFactory("template.xlsx", map[int]string{109: "CYP2C9"})

	p := NewPopulator(content, factory, testTemplateLayout(), "template.xlsx")
	summary, err := p.PopulateAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "S1", summary.Failures[0].SampleID)
}

package domain

// GridLayout describes the fixed window of the per-sample report grid that
// relocation operates on. Rows outside [FirstRow, LastRow] are never
// touched.
type GridLayout struct {
	// FirstRow is the first row of the drug window (1-based, inclusive).
	FirstRow int

	// LastRow is the last row of the drug window (inclusive).
	LastRow int

	// SourceColumn holds the detected drugs (column letter).
	SourceColumn string

	// DosingColumn receives drugs with a dosing-change recommendation.
	DosingColumn string

	// AlternateColumn receives drugs with an alternate-drug recommendation.
	AlternateColumn string
}

// DefaultGridLayout matches the current report template.
func DefaultGridLayout() GridLayout {
	return GridLayout{
		FirstRow:        8,
		LastRow:         104,
		SourceColumn:    "C",
		DosingColumn:    "E",
		AlternateColumn: "F",
	}
}

// InWindow reports whether a row falls inside the drug window.
func (l GridLayout) InWindow(row int) bool {
	return row >= l.FirstRow && row <= l.LastRow
}

// Columns returns the three relocation columns. Merged regions touching
// any of these must be dissolved before content moves.
func (l GridLayout) Columns() []string {
	return []string{l.SourceColumn, l.DosingColumn, l.AlternateColumn}
}

// TemplateLayout describes the gene/phenotype portion of the report
// template that the populate step fills in before relocation runs.
type TemplateLayout struct {
	// HeaderNARows are the rows in HeaderColumn set to "N/A".
	HeaderNARows []int

	// SampleIDRow is the row in HeaderColumn that receives the sample ID.
	SampleIDRow int

	// HeaderColumn is the column letter for the header cells.
	HeaderColumn string

	// GeneFirstRow and GeneLastRow bound the gene table (inclusive).
	GeneFirstRow int
	GeneLastRow  int

	// GeneColumn, GenotypeColumn and PhenotypeColumn are 1-based column
	// indexes of the gene table.
	GeneColumn      int
	GenotypeColumn  int
	PhenotypeColumn int
}

// DefaultTemplateLayout matches the current report template.
func DefaultTemplateLayout() TemplateLayout {
	return TemplateLayout{
		HeaderNARows:    []int{2, 3, 4},
		SampleIDRow:     5,
		HeaderColumn:    "B",
		GeneFirstRow:    109,
		GeneLastRow:     131,
		GeneColumn:      1,
		GenotypeColumn:  2,
		PhenotypeColumn: 3,
	}
}

// GeneCall is one row of a sample's genotype CSV.
type GeneCall struct {
	Gene      string
	Genotype  string
	Phenotype string
}

// AggregateLayout describes the cross-sample summary workbook.
type AggregateLayout struct {
	// HeaderRow holds the sample identifiers.
	HeaderRow int

	// DrugColumn is the 1-based column holding drug names.
	DrugColumn int

	// FirstDrugRow is the first row holding a drug name.
	FirstDrugRow int
}

// DefaultAggregateLayout matches the current aggregate workbook.
func DefaultAggregateLayout() AggregateLayout {
	return AggregateLayout{
		HeaderRow:    1,
		DrugColumn:   2,
		FirstDrugRow: 2,
	}
}

// StandardPrecautionsLabel is written into aggregate rows whose drug has
// no recommendation for the sample.
const StandardPrecautionsLabel = "Standard Precautions"

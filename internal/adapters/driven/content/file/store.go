// Package file implements the content store over a directory layout:
// scraped content text files, per-sample report workbooks, genotype
// CSVs and the master sample list.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/core/ports/driven"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// contentInfix separates the sample ID from the scrape timestamp in
// content file names: "<sample>_processed_content_<timestamp>.txt".
const contentInfix = "_processed_content_"

// reportExt is the report workbook extension.
const reportExt = ".xlsx"

// Ensure Store implements the interface.
var _ driven.ContentStore = (*Store)(nil)

// Config locates the input and output directories.
type Config struct {
	// ScrapedDir holds scraped content text files.
	ScrapedDir string

	// ReportsDir holds populated per-sample report workbooks.
	ReportsDir string

	// OutputDir receives staged (mutated) report copies.
	OutputDir string

	// GenotypeDir holds per-sample genotype CSVs.
	GenotypeDir string

	// SampleListPath is the master sample list CSV.
	SampleListPath string
}

// Store is a filesystem-backed content store.
type Store struct {
	cfg Config
}

// NewStore creates a content store and ensures the output directory
// exists.
func NewStore(cfg Config) (*Store, error) {
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return &Store{cfg: cfg}, nil
}

// ListSamples returns the sorted IDs of samples that have both a report
// workbook and at least one scraped content file.
func (s *Store) ListSamples(_ context.Context) ([]string, error) {
	reports, err := os.ReadDir(s.cfg.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("read reports directory: %w", err)
	}
	haveReport := make(map[string]bool)
	for _, entry := range reports {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, reportExt) {
			continue
		}
		haveReport[strings.TrimSuffix(name, reportExt)] = true
	}

	scraped, err := os.ReadDir(s.cfg.ScrapedDir)
	if err != nil {
		return nil, fmt.Errorf("read scraped directory: %w", err)
	}
	var samples []string
	seen := make(map[string]bool)
	for _, entry := range scraped {
		name := entry.Name()
		idx := strings.Index(name, contentInfix)
		if entry.IsDir() || idx < 1 || !strings.HasSuffix(name, ".txt") {
			continue
		}
		id := name[:idx]
		if haveReport[id] && !seen[id] {
			samples = append(samples, id)
			seen[id] = true
		}
	}

	sort.Strings(samples)
	logger.Debug("found %d samples with both report and scraped content", len(samples))
	return samples, nil
}

// ReadDocument reads the newest scraped content file for a sample.
// Timestamps in the file names sort lexically, so the last glob match
// is the newest scrape.
func (s *Store) ReadDocument(_ context.Context, sampleID string) (domain.RawDocument, error) {
	pattern := filepath.Join(s.cfg.ScrapedDir, sampleID+contentInfix+"*.txt")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("glob scraped content: %w", err)
	}
	if len(matches) == 0 {
		return domain.RawDocument{}, fmt.Errorf("%w: no scraped content for %s", domain.ErrSampleNotFound, sampleID)
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.NewRawDocument(sampleID, string(data)), nil
}

// ReportPath returns the path of the sample's report workbook.
func (s *Store) ReportPath(sampleID string) string {
	return filepath.Join(s.cfg.ReportsDir, sampleID+reportExt)
}

// StageReport copies the sample's report into the output directory and
// returns the staged path. The original report is never mutated.
func (s *Store) StageReport(_ context.Context, sampleID string) (string, error) {
	src := s.ReportPath(sampleID)
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no report for %s", domain.ErrSampleNotFound, sampleID)
		}
		return "", fmt.Errorf("read report %s: %w", src, err)
	}

	dst := filepath.Join(s.cfg.OutputDir, sampleID+reportExt)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("stage report %s: %w", dst, err)
	}
	logger.Debug("staged report for %s at %s", sampleID, dst)
	return dst, nil
}

// ReadGeneCalls reads the sample's genotype CSV. Expected columns:
// "Gene Name", "Genotype", "Phenotype".
func (s *Store) ReadGeneCalls(_ context.Context, sampleID string) ([]domain.GeneCall, error) {
	path := filepath.Join(s.cfg.GenotypeDir, sampleID+".csv")
	records, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no genotype CSV for %s", domain.ErrSampleNotFound, sampleID)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Resolve column indexes from the header row.
	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	geneIdx, ok := col["Gene Name"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no \"Gene Name\" column", domain.ErrInvalidInput, path)
	}
	genoIdx, ok := col["Genotype"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no \"Genotype\" column", domain.ErrInvalidInput, path)
	}
	phenoIdx, ok := col["Phenotype"]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no \"Phenotype\" column", domain.ErrInvalidInput, path)
	}

	var calls []domain.GeneCall
	for _, record := range records[1:] {
		if geneIdx >= len(record) {
			continue
		}
		gene := strings.TrimSpace(record[geneIdx])
		if gene == "" {
			continue
		}
		call := domain.GeneCall{Gene: gene}
		if genoIdx < len(record) {
			call.Genotype = strings.TrimSpace(record[genoIdx])
		}
		if phenoIdx < len(record) {
			call.Phenotype = strings.TrimSpace(record[phenoIdx])
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// SampleList reads the master sample list CSV and returns the sample
// IDs from its second column, in file order, header skipped.
func (s *Store) SampleList(_ context.Context) ([]string, error) {
	records, err := readCSV(s.cfg.SampleListPath)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		id := strings.TrimSpace(record[1])
		if id == "" || seen[id] {
			continue
		}
		ids = append(ids, id)
		seen[id] = true
	}
	return ids, nil
}

// fallbackEncodings are tried in order when a CSV is not valid UTF-8.
// Exported spreadsheets are frequently cp1252 or latin1.
var fallbackEncodings = []encoding.Encoding{
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// readCSV reads all records from a CSV file, tolerating ragged rows and
// non-UTF-8 encodings.
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(data) {
		decoded, decErr := decodeFallback(data)
		if decErr != nil {
			return nil, fmt.Errorf("decode %s: %w", path, decErr)
		}
		data = decoded
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// decodeFallback decodes non-UTF-8 bytes with the first encoding that
// succeeds.
func decodeFallback(data []byte) ([]byte, error) {
	var lastErr error
	for _, enc := range fallbackEncodings {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

package services

import (
	"regexp"
	"strings"

	"github.com/clinforge/pgxreport-cli/internal/core/domain"
	"github.com/clinforge/pgxreport-cli/internal/logger"
)

// Marker vocabulary of the scraped CPIC pages. These are the only
// patterns the extractor recognises; anything else is "no information".
const (
	headerMarker    = "(opens in new window)"
	cpicTrigger     = "CPIC recommended clinical action for"
	dpwgMarker      = "DPWG"
	dosingMarker    = "Dosing Info"
	alternateMarker = "Alternate Drug"
)

// exclusionPhrases disqualify a line from being a drug-section header
// even when the marker line follows it. Compared case-insensitively.
var exclusionPhrases = []string{
	"learn more about",
	"read full",
	"see the",
	"cc by-sa",
	"pharmgkb",
	"see the full table",
}

// geneAllelePattern matches gene/allele annotations on a recommendation
// line, e.g. "CYP2C9 *1/*29".
var geneAllelePattern = regexp.MustCompile(`([A-Z0-9]+)\s+\*\d+/\*\d+`)

// Extractor scans a sample's scraped text and emits structured per-drug
// recommendations. It never fails on malformed text: unmatched patterns
// yield no information rather than errors.
type Extractor struct{}

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract performs a single left-to-right pass over the document.
//
// A drug section opens when a line is followed by the literal header
// marker and contains no exclusion phrase. Within a section, the CPIC
// trigger line for the current drug opens an action block; the block is
// scanned exhaustively (both actions may be recorded) until a DPWG line
// or the next header candidate. Drugs that end up with no actions are
// pruned.
func (e *Extractor) Extract(doc domain.RawDocument) *domain.RecommendationSet {
	recs := domain.NewRecommendationSet()
	lines := doc.Lines
	currentDrug := ""

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if isHeaderCandidate(lines, i) {
			currentDrug = recs.Register(line)
			logger.Debug("found drug section: %s", currentDrug)
			// Skip the "(opens in new window)" line as well.
			i++
			continue
		}

		if currentDrug != "" && strings.Contains(line, cpicTrigger) &&
			strings.Contains(strings.ToLower(line), currentDrug) {
			logger.Debug("found CPIC recommendation line for %s", currentDrug)

			j := i + 1
			for ; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if next == "" {
					continue
				}
				if strings.Contains(next, dpwgMarker) || isHeaderCandidate(lines, j) {
					break
				}
				switch {
				case strings.Contains(next, dosingMarker):
					recs.Add(currentDrug, domain.ActionDosingChange)
				case strings.Contains(next, alternateMarker):
					recs.Add(currentDrug, domain.ActionAlternateDrug)
				}
			}
			// Resume the outer scan at the stop line so a new header
			// candidate is recognised by the main loop.
			i = j - 1
		}
	}

	recs.Prune()
	return recs
}

// Genes resolves the gene/allele annotation for a drug by re-scanning
// the document: locate the drug's section header, then its CPIC trigger
// line, and collect every gene symbol on that line. Multiple genes are
// joined with ", ". Returns "" when nothing is found.
func (e *Extractor) Genes(doc domain.RawDocument, drug string) string {
	target := domain.NormalizeDrug(drug)
	if target == "" {
		return ""
	}

	lines := doc.Lines
	inSection := false
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)

		if !inSection {
			if strings.Contains(lower, target) && isHeaderCandidate(lines, i) {
				inSection = true
				// Skip the "(opens in new window)" line.
				i++
			}
			continue
		}

		if strings.Contains(line, cpicTrigger) && strings.Contains(lower, target) {
			matches := geneAllelePattern.FindAllStringSubmatch(line, -1)
			genes := make([]string, 0, len(matches))
			for _, m := range matches {
				genes = append(genes, m[1])
			}
			return strings.Join(genes, ", ")
		}

		// Next drug section: stop looking.
		if isHeaderCandidate(lines, i) {
			break
		}
	}
	return ""
}

// isHeaderCandidate reports whether lines[i] is a drug-section header:
// the immediately following line is exactly the header marker and the
// candidate contains no exclusion phrase.
func isHeaderCandidate(lines []string, i int) bool {
	if i >= len(lines)-1 {
		return false
	}
	line := strings.TrimSpace(lines[i])
	if line == "" {
		return false
	}
	if strings.TrimSpace(lines[i+1]) != headerMarker {
		return false
	}
	lower := strings.ToLower(line)
	for _, phrase := range exclusionPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

package domain

import "strings"

// RawDocument is the scraped clinical-annotation text for one sample.
// It is produced by the scraping collaborator and consumed read-only;
// the extractor never mutates it.
type RawDocument struct {
	// SampleID identifies the sample this text belongs to.
	SampleID string

	// Lines is the text split on newlines, in original order.
	Lines []string
}

// NewRawDocument builds a RawDocument from raw scraped content.
func NewRawDocument(sampleID, content string) RawDocument {
	return RawDocument{
		SampleID: sampleID,
		Lines:    strings.Split(content, "\n"),
	}
}

// Empty reports whether the document carries no text at all.
func (d RawDocument) Empty() bool {
	for _, line := range d.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

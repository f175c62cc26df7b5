package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSampleNotFound indicates no scraped content or report exists
	// for the requested sample.
	ErrSampleNotFound = errors.New("sample not found")

	// ErrNoRecommendations indicates extraction produced an empty set.
	// Callers treat this as "nothing to relocate", not a hard failure.
	ErrNoRecommendations = errors.New("no recommendations found")

	// ErrGridState indicates the report grid is not in the expected
	// shape (missing target columns, unreadable cells, style failures).
	ErrGridState = errors.New("grid state error")

	// ErrPersistence indicates a save failed after in-memory mutations
	// were applied. The mutations are not rolled back.
	ErrPersistence = errors.New("persistence error")

	// ErrAlreadyRecorded indicates a sample was already submitted to the
	// aggregate table. Submissions are at-most-once per sample.
	ErrAlreadyRecorded = errors.New("sample already recorded")
)

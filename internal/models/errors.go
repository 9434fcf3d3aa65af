package models

import "errors"

// Error taxonomy for the extraction and visualization pipeline. All of
// these are recovered before the transport boundary — handlers always
// emit a well-formed envelope.
var (
	// ErrExtractionFailed indicates the LLM call errored, returned
	// malformed JSON, or returned an empty structure after retries.
	ErrExtractionFailed = errors.New("structured extraction failed")

	// ErrInsufficientData indicates fewer than 2 usable data points
	// remained after dropping null or unparseable values.
	ErrInsufficientData = errors.New("insufficient data for chart")

	// ErrIntentMismatch indicates the guard could not convert a candidate
	// to the declared intent's shape.
	ErrIntentMismatch = errors.New("output shape does not match declared intent")

	// ErrNoDocuments indicates no documents have been ingested yet.
	ErrNoDocuments = errors.New("no documents ingested")

	// ErrSearchUnavailable indicates the web search collaborator is
	// disabled or unreachable.
	ErrSearchUnavailable = errors.New("web search unavailable")
)

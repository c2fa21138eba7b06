package domain

import "fmt"

// DataError reports a missing or malformed county dataset. Fatal at startup.
type DataError struct {
	Source string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Source, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// ModelError reports an unreadable model file or a feature schema that does
// not match the dataset. Fatal at startup.
type ModelError struct {
	Source string
	Err    error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Source, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ScoringError reports a record that lacks a feature the model expects.
// Only reachable when dataset schema validation was bypassed.
type ScoringError struct {
	CountyID string
	Feature  string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring county %q: missing feature %q", e.CountyID, e.Feature)
}

// Package model defines the shared types for classification runs and
// their persisted results.
package model

import (
	"sort"
	"time"
)

// RunStatus represents the current state of a classification run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunKind distinguishes observation-table runs from gridded runs.
type RunKind string

const (
	RunKindBatch RunKind = "batch"
	RunKindGrid  RunKind = "grid"
)

// Run records one batch or grid province-assignment invocation.
type Run struct {
	ID        string    `json:"id"`
	Kind      RunKind   `json:"kind"`
	Source    string    `json:"source"`   // boundary source path
	Registry  string    `json:"registry"` // numbering variant used
	Status    RunStatus `json:"status"`
	Summary   *Summary  `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Observation is a single query coordinate, in degrees.
type Observation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AssignmentOutcome mirrors the classifier outcome plus a per-row
// failure state for registry lookup errors that must not abort a batch.
type AssignmentOutcome string

const (
	AssignmentMatched   AssignmentOutcome = "matched"
	AssignmentNoMatch   AssignmentOutcome = "no_match"
	AssignmentAmbiguous AssignmentOutcome = "ambiguous"
	AssignmentFailed    AssignmentOutcome = "failed"
)

// Assignment is the classification result for one observation. Code and
// Num are meaningful only when Outcome is AssignmentMatched; Ambiguous
// keeps the distinct conflicting codes so batch reports can name them.
// Err carries a per-row lookup failure, surfaced rather than skipped.
type Assignment struct {
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	Outcome        AssignmentOutcome `json:"outcome"`
	Code           string            `json:"code,omitempty"`
	Num            int               `json:"num,omitempty"`
	AmbiguousCodes []string          `json:"ambiguous_codes,omitempty"`
	Err            string            `json:"err,omitempty"`
}

// Summary aggregates assignment outcomes for a run. Batch tools report
// the NoMatch/Ambiguous counts and the distinct provinces involved in
// ambiguous cases instead of failing the run.
type Summary struct {
	Total          int            `json:"total"`
	Matched        int            `json:"matched"`
	NoMatch        int            `json:"no_match"`
	Ambiguous      int            `json:"ambiguous"`
	Failed         int            `json:"failed"`
	CodeCounts     map[string]int `json:"code_counts,omitempty"`
	AmbiguousCodes []string       `json:"ambiguous_codes,omitempty"`
}

// Summarize folds a set of assignments into a Summary.
func Summarize(assignments []Assignment) *Summary {
	s := &Summary{
		Total:      len(assignments),
		CodeCounts: make(map[string]int),
	}
	ambiguous := make(map[string]bool)
	for _, a := range assignments {
		switch a.Outcome {
		case AssignmentMatched:
			s.Matched++
			s.CodeCounts[a.Code]++
		case AssignmentNoMatch:
			s.NoMatch++
		case AssignmentAmbiguous:
			s.Ambiguous++
			for _, code := range a.AmbiguousCodes {
				ambiguous[code] = true
			}
		case AssignmentFailed:
			s.Failed++
		}
	}
	for code := range ambiguous {
		s.AmbiguousCodes = append(s.AmbiguousCodes, code)
	}
	sort.Strings(s.AmbiguousCodes)
	return s
}

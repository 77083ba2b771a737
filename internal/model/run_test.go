package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	assignments := []Assignment{
		{Lat: 50, Lon: -40, Outcome: AssignmentMatched, Code: "NADR", Num: 4},
		{Lat: 52, Lon: -38, Outcome: AssignmentMatched, Code: "NADR", Num: 4},
		{Lat: 30, Lon: -70, Outcome: AssignmentMatched, Code: "NASW", Num: 6},
		{Lat: 0, Lon: 0, Outcome: AssignmentNoMatch},
		{Lat: 40, Lon: -55, Outcome: AssignmentAmbiguous, AmbiguousCodes: []string{"GFST", "NASW"}},
		{Lat: 41, Lon: -54, Outcome: AssignmentAmbiguous, AmbiguousCodes: []string{"NADR", "GFST"}},
		{Lat: 10, Lon: 10, Outcome: AssignmentFailed, Err: "code \"XXXX\" not in registry"},
	}

	s := Summarize(assignments)

	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 3, s.Matched)
	assert.Equal(t, 1, s.NoMatch)
	assert.Equal(t, 2, s.Ambiguous)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, map[string]int{"NADR": 2, "NASW": 1}, s.CodeCounts)
	assert.Equal(t, []string{"GFST", "NADR", "NASW"}, s.AmbiguousCodes)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.AmbiguousCodes)
	assert.Empty(t, s.CodeCounts)
}

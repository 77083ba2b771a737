package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-chem/longhurst-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RunKindBatch, "longhurst.xml", "longhurst")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunKindBatch, got.Kind)
	assert.Equal(t, "longhurst.xml", got.Source)
	assert.Equal(t, "longhurst", got.Registry)
	assert.Nil(t, got.Summary)

	summary := &model.Summary{Total: 3, Matched: 2, NoMatch: 1, CodeCounts: map[string]int{"NADR": 2}}
	require.NoError(t, s.CompleteRun(ctx, run.ID, summary))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 2, got.Summary.CodeCounts["NADR"])
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RunKindGrid, "longhurst.shp", "mit")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "boundary source vanished"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "boundary source vanished", got.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "no-such-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))

	err = s.CompleteRun(ctx, "no-such-run", &model.Summary{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))

	err = s.FailRun(ctx, "no-such-run", "nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrRunNotFound))
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	batch, err := s.CreateRun(ctx, model.RunKindBatch, "a.xml", "longhurst")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, model.RunKindGrid, "b.xml", "longhurst")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, batch.ID, &model.Summary{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, batch.ID, complete[0].ID)

	grids, err := s.ListRuns(ctx, RunFilter{Kind: model.RunKindGrid})
	require.NoError(t, err)
	require.Len(t, grids, 1)
	assert.Equal(t, model.RunKindGrid, grids[0].Kind)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteAssignments(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RunKindBatch, "a.xml", "longhurst")
	require.NoError(t, err)

	assignments := []model.Assignment{
		{Lat: 45, Lon: -30, Outcome: model.AssignmentMatched, Code: "NADR", Num: 4},
		{Lat: -60, Lon: 0, Outcome: model.AssignmentMatched, Code: "BPLR", Num: 0},
		{Lat: 0, Lon: 0, Outcome: model.AssignmentNoMatch},
		{Lat: 10, Lon: 10, Outcome: model.AssignmentAmbiguous, AmbiguousCodes: []string{"ETRA", "GUIN"}},
		{Lat: 70, Lon: 70, Outcome: model.AssignmentFailed, Err: "unknown province code"},
	}

	n, err := s.InsertAssignments(ctx, run.ID, assignments)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	got, err := s.ListAssignments(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, "NADR", got[0].Code)
	assert.Equal(t, 4, got[0].Num)

	// Zero survives the round trip for matched rows; NULL means unmatched.
	assert.Equal(t, "BPLR", got[1].Code)
	assert.Equal(t, 0, got[1].Num)

	assert.Equal(t, model.AssignmentNoMatch, got[2].Outcome)
	assert.Empty(t, got[2].Code)

	assert.Equal(t, []string{"ETRA", "GUIN"}, got[3].AmbiguousCodes)

	assert.Equal(t, model.AssignmentFailed, got[4].Outcome)
	assert.Equal(t, "unknown province code", got[4].Err)
}

func TestSQLiteInsertAssignmentsEmpty(t *testing.T) {
	s := newTestSQLite(t)
	n, err := s.InsertAssignments(context.Background(), "whatever", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// Package assign runs the province classifier over observation tables
// and regular grids, in parallel.
package assign

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ocean-chem/longhurst-cli/internal/longhurst"
	"github.com/ocean-chem/longhurst-cli/internal/model"
)

// Engine fans observations out over a bounded worker group. Each
// classification is independent and side-effect-free, so the only
// coordination is the group limit; results land at their input index.
type Engine struct {
	classifier *longhurst.Classifier
	workers    int
}

// New builds an engine. Workers below 1 are raised to 1.
func New(classifier *longhurst.Classifier, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{classifier: classifier, workers: workers}
}

// Run classifies every observation and returns assignments in input
// order plus an outcome summary. Registry lookup failures are recorded
// on the affected row and never abort the batch; the only terminal error
// is context cancellation.
func (e *Engine) Run(ctx context.Context, obs []model.Observation) ([]model.Assignment, *model.Summary, error) {
	assignments := make([]model.Assignment, len(obs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	var failed atomic.Int64
	for i, o := range obs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			assignments[i] = e.assignOne(o)
			if assignments[i].Outcome == model.AssignmentFailed {
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := model.Summarize(assignments)
	if failed.Load() > 0 {
		zap.L().Warn("assign: registry lookups failed for some rows",
			zap.Int64("failed", failed.Load()),
			zap.Int("total", len(obs)),
		)
	}
	return assignments, summary, nil
}

func (e *Engine) assignOne(o model.Observation) model.Assignment {
	a := model.Assignment{Lat: o.Lat, Lon: o.Lon}

	res, err := e.classifier.Classify(o.Lon, o.Lat)
	if err != nil {
		// Registry/boundary mismatch: surface the bad value on this row.
		a.Outcome = model.AssignmentFailed
		a.Err = err.Error()
		return a
	}

	switch res.Outcome {
	case longhurst.OutcomeMatched:
		a.Outcome = model.AssignmentMatched
		a.Code = res.Code
		a.Num = res.Num
	case longhurst.OutcomeAmbiguous:
		a.Outcome = model.AssignmentAmbiguous
		for _, m := range res.Matches {
			a.AmbiguousCodes = append(a.AmbiguousCodes, m.Code)
		}
	default:
		a.Outcome = model.AssignmentNoMatch
	}
	return a
}

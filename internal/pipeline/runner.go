package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ecomcli/internal/analytics"
	"ecomcli/internal/canonical"
	"ecomcli/internal/errors"
	"ecomcli/internal/normalize"
)

// Options configures a batch run.
type Options struct {
	// AsOf is the reference instant for recency; zero means run time.
	AsOf time.Time
	// RollingWindow is the trailing window width for rolling averages.
	RollingWindow int
	// Thresholds are the tier boundaries.
	Thresholds analytics.Thresholds
}

// Runner executes batch load cycles. Each run is a fresh, fully ordered
// pass over all steps; any step error aborts the run and the partial state
// is discarded (the previously published snapshot stays current).
type Runner struct {
	logger   *slog.Logger
	registry *canonical.Registry
	metrics  *Metrics
	steps    []Step

	lastResult atomic.Pointer[Result]
}

// NewRunner wires the standard step sequence.
func NewRunner(logger *slog.Logger, source RawSource, registry *canonical.Registry, metrics *Metrics, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Thresholds.Normalize()

	return &Runner{
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		steps: []Step{
			NewLoadStep(source),
			NewNormalizeStep(normalize.New(logger), metrics),
			NewDedupStep(logger),
			NewPublishStep(logger, registry),
			NewAggregateStep(analytics.NewAggregator(logger)),
			NewTrendStep(analytics.NewTrendAnalyzer(logger, opts.RollingWindow)),
			NewTierStep(opts.Thresholds),
			NewRFMStep(analytics.NewRFMCalculator(logger, opts.AsOf, opts.Thresholds)),
			NewAlertStep(analytics.NewAlertGenerator(logger, opts.Thresholds)),
		},
	}
}

// Run executes one batch cycle and returns its result. A step failure
// aborts the remaining steps and surfaces to the caller as a pipeline
// error; it is never swallowed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	state := &State{
		RunID:  runID,
		Result: &Result{RunID: runID},
	}

	r.logger.InfoContext(ctx, "batch run started", slog.String("run_id", runID))
	started := time.Now()

	for _, step := range r.steps {
		stepState := NewStepState(step.ID(), step.Name())
		stepState.Start()

		r.logger.InfoContext(ctx, "step started",
			slog.String("run_id", runID),
			slog.String("step", step.ID()),
		)

		if err := step.Run(ctx, state); err != nil {
			stepState.Fail(err)
			if r.metrics != nil {
				r.metrics.ObserveStep(step.ID(), stepState.Duration().Seconds())
				r.metrics.ObserveRun("failure")
			}
			r.logger.ErrorContext(ctx, "step failed, aborting run",
				slog.String("run_id", runID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()),
			)
			return nil, errors.NewPipelineError(step.ID(), err)
		}

		stepState.Complete()
		if r.metrics != nil {
			r.metrics.ObserveStep(step.ID(), stepState.Duration().Seconds())
		}
		r.logger.InfoContext(ctx, "step completed",
			slog.String("run_id", runID),
			slog.String("step", step.ID()),
			slog.Duration("duration", stepState.Duration()),
		)
	}

	state.Result.SnapshotVersion = state.Snapshot.Version
	state.Result.Stats = state.Stats
	state.Result.Counts = state.Snapshot.Counts()
	r.lastResult.Store(state.Result)
	if r.metrics != nil {
		r.metrics.ObserveRun("success")
	}

	r.logger.InfoContext(ctx, "batch run completed",
		slog.String("run_id", runID),
		slog.String("snapshot_version", state.Snapshot.Version),
		slog.Duration("duration", time.Since(started)),
		slog.Int("alerts", len(state.Result.Alerts)),
		slog.Int("rejected_rows", totalRejected(state.Stats)),
	)

	return state.Result, nil
}

// LastResult returns the result of the most recent successful run, or nil.
func (r *Runner) LastResult() *Result {
	return r.lastResult.Load()
}

// Registry returns the snapshot registry the runner publishes to.
func (r *Runner) Registry() *canonical.Registry {
	return r.registry
}

func totalRejected(stats []normalize.Stats) int {
	n := 0
	for _, st := range stats {
		n += st.Rejected
	}
	return n
}

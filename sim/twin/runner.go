// Package twin runs a complete seeding session: optional store reset, world
// build and commit, then day-by-day history generation with periodic commits.
package twin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/process"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
	"github.com/warehouse-twin/warehouse-twin/sim/world"
)

// Registry records runs outside the simulation transactions.
type Registry interface {
	StartRun(ctx context.Context, id uuid.UUID, seed int64, start time.Time, days int) error
	FinishRun(ctx context.Context, id uuid.UUID, status string, lastCommitted *time.Time) error
}

// Resetter clears a store before a run.
type Resetter interface {
	Reset(ctx context.Context) error
}

// HistoryProber reports whether a store already holds a committed twin.
type HistoryProber interface {
	HasHistory(ctx context.Context) (bool, error)
}

// ErrStoreNotEmpty is returned when a run without Reset targets a store that
// already holds a history. IDs restart at 1 on every run, so writing over it
// would mix two histories.
var ErrStoreNotEmpty = errors.New("store already holds a twin history")

// Run statuses written to the Registry.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunError reports a failed run together with the valid history prefix.
type RunError struct {
	Committed     bool      // false when no simulated day was committed
	LastCommitted time.Time // last simulated day covered by a commit
	Err           error
}

func (e *RunError) Error() string {
	if !e.Committed {
		return fmt.Sprintf("run failed with no simulated day committed: %v", e.Err)
	}
	return fmt.Sprintf("run failed; history committed through %s: %v", e.LastCommitted.Format(sim.DateLayout), e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Options tune a Runner.
type Options struct {
	Reset bool                   // clear the backend first (requires a Resetter backend)
	Trace *trace.SimulationTrace // may be nil
}

// Result summarizes a finished run.
type Result struct {
	RunID         uuid.UUID
	World         *sim.World
	Session       *sim.Session
	Ticks         int // simulated days in the committed history
	Retries       int
	LastCommitted time.Time
	Metrics       *sim.RunMetrics
}

// Runner owns one run of the twin against a backend.
type Runner struct {
	cfg     *sim.Config
	backend sim.Backend
	opts    Options
	RunID   uuid.UUID
}

// NewRunner creates a Runner. The configuration is validated by Run.
func NewRunner(cfg *sim.Config, backend sim.Backend, opts Options) *Runner {
	return &Runner{cfg: cfg, backend: backend, opts: opts, RunID: uuid.New()}
}

// Run validates the configuration, builds and commits the world, then
// simulates DefaultDays days. A persistence failure rolls back to the last
// commit, rewinds the RNG to the matching checkpoint and replays, up to
// MaxRetries times.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := r.cfg.StartTime()
	if err != nil {
		return nil, err
	}
	days := r.cfg.Simulation.DefaultDays
	log := logrus.WithField("run", r.RunID.String())

	if r.opts.Reset {
		resetter, ok := r.backend.(Resetter)
		if !ok {
			return nil, fmt.Errorf("backend %T cannot be reset", r.backend)
		}
		log.Info("resetting store")
		if err := resetter.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
	} else if prober, ok := r.backend.(HistoryProber); ok {
		populated, err := prober.HasHistory(ctx)
		if err != nil {
			return nil, fmt.Errorf("probe store: %w", err)
		}
		if populated {
			return nil, fmt.Errorf("%w; run again with reset", ErrStoreNotEmpty)
		}
	}
	registry, _ := r.backend.(Registry)
	if registry != nil {
		if err := registry.StartRun(ctx, r.RunID, r.cfg.Simulation.RandomSeed, start, days); err != nil {
			return nil, err
		}
	}

	res, runErr := r.run(ctx, log, start, days)
	if registry != nil {
		status := StatusCompleted
		var last *time.Time
		if runErr != nil {
			status = StatusFailed
			var re *RunError
			if errors.As(runErr, &re) && re.Committed {
				last = &re.LastCommitted
			}
		} else if res.Ticks > 0 {
			last = &res.LastCommitted
		}
		if err := registry.FinishRun(ctx, r.RunID, status, last); err != nil {
			log.Warnf("recording run outcome: %v", err)
		}
	}
	return res, runErr
}

func (r *Runner) run(ctx context.Context, log *logrus.Entry, start time.Time, days int) (*Result, error) {
	maxRetries := r.cfg.Simulation.MaxRetries
	rng := sim.NewRNG(sim.NewSimulationKey(r.cfg.Simulation.RandomSeed))
	session := sim.NewSession(r.backend)
	res := &Result{RunID: r.RunID, Session: session}

	// Phase 1: static world.
	log.Infof("building world (seed %d)", r.cfg.Simulation.RandomSeed)
	origin := rng.Checkpoint()
	var w *sim.World
	for attempt := 0; ; attempt++ {
		var err error
		w, err = world.NewWorldBuilder(session, rng, r.cfg).BuildAll(ctx, start)
		if err == nil {
			err = session.Commit(ctx)
		}
		if err == nil {
			break
		}
		if !sim.IsRetryable(err) || attempt >= maxRetries {
			return res, &RunError{Err: fmt.Errorf("world build: %w", err)}
		}
		log.Warnf("world build failed, retrying (%d/%d): %v", attempt+1, maxRetries, err)
		res.Retries++
		if rbErr := session.Rollback(ctx); rbErr != nil {
			log.Warnf("rollback: %v", rbErr)
		}
		rng.Restore(origin)
	}
	res.World = w

	// Phase 2: history.
	engine := sim.NewEngine(session, w, process.NewPipeline(rng, r.cfg, r.opts.Trace)...)
	checkpoint := rng.Checkpoint()
	mark := r.opts.Trace.Mark()
	done := 0
	committed := false
	var lastCommitted time.Time
	engine.OnCommit = func(date time.Time) {
		checkpoint = rng.Checkpoint()
		mark = r.opts.Trace.Mark()
		committed = true
		lastCommitted = date
		log.Infof("committed through %s (%d/%d days)", date.Format(sim.DateLayout), dayIndex(start, date)+1, days)
	}

	retries := 0
	for done < days {
		runStart := start.AddDate(0, 0, done)
		out, err := engine.Run(ctx, runStart, days-done, r.cfg.Simulation.CommitInterval)
		if err == nil {
			res.Ticks = done + out.Ticks
			break
		}
		if !sim.IsRetryable(err) || retries >= maxRetries {
			if committed {
				res.Ticks = dayIndex(start, lastCommitted) + 1
			}
			return res, &RunError{Committed: committed, LastCommitted: lastCommitted, Err: err}
		}
		retries++
		res.Retries++
		log.Warnf("persistence failure, replaying from last commit (%d/%d): %v", retries, maxRetries, err)
		if rbErr := session.Rollback(ctx); rbErr != nil {
			log.Warnf("rollback: %v", rbErr)
		}
		rng.Restore(checkpoint)
		r.opts.Trace.Truncate(mark)
		if committed {
			done = dayIndex(start, lastCommitted) + 1
		} else {
			done = 0
		}
	}

	res.LastCommitted = lastCommitted
	asOf := start.AddDate(0, 0, days)
	res.Metrics = sim.CollectMetrics(session, days, asOf)
	log.WithFields(logrus.Fields{
		"ticks":   res.Ticks,
		"retries": res.Retries,
		"stats":   fmt.Sprintf("%+v", session.Stats()),
	}).Info("run complete")
	return res, nil
}

// dayIndex returns the zero-based simulated day of date.
func dayIndex(start, date time.Time) int {
	return int(date.Sub(start).Hours() / 24)
}

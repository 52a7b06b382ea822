package sim

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine advances the twin one day at a time through a fixed, ordered
// processor pipeline.
type Engine struct {
	session    *Session
	world      *World
	processors []Processor

	// OnCommit, if set, is called after every successful commit with the
	// last simulated date the commit covers.
	OnCommit func(date time.Time)
}

// RunResult describes how far a run got.
type RunResult struct {
	Ticks         int       // ticks executed, committed or not
	Committed     bool      // at least one commit succeeded during the run
	LastCommitted time.Time // last simulated date covered by a commit
}

// NewEngine creates an Engine. The processor order is fixed here and is the
// order Tick executes them in.
func NewEngine(session *Session, world *World, processors ...Processor) *Engine {
	return &Engine{
		session:    session,
		world:      world,
		processors: append([]Processor(nil), processors...),
	}
}

// Processors returns the pipeline names in execution order.
func (e *Engine) Processors() []string {
	names := make([]string, len(e.processors))
	for i, p := range e.processors {
		names[i] = p.Name()
	}
	return names
}

// Tick runs every processor for date in order, then flushes once.
// A processor error aborts the tick before the flush; it is returned as a
// *ProcessorError wrapping the original error.
func (e *Engine) Tick(ctx context.Context, date time.Time) error {
	sc := &SimulationContext{Date: date, Session: e.session, World: e.world}
	for _, p := range e.processors {
		if err := p.Execute(sc); err != nil {
			return &ProcessorError{Processor: p.Name(), Date: date, Err: err}
		}
	}
	return e.session.Flush(ctx)
}

// Run executes days ticks starting at start, committing after every
// commitInterval ticks and once more at the end if any tick is uncommitted.
// On error the result still reports the last committed date.
func (e *Engine) Run(ctx context.Context, start time.Time, days, commitInterval int) (RunResult, error) {
	var res RunResult
	if commitInterval <= 0 {
		commitInterval = 1
	}
	sinceCommit := 0
	date := start
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		date = start.AddDate(0, 0, i)
		if err := e.Tick(ctx, date); err != nil {
			return res, err
		}
		res.Ticks++
		sinceCommit++
		logrus.Debugf("[day %s] tick complete", date.Format(DateLayout))
		if sinceCommit == commitInterval {
			if err := e.commit(ctx, date, &res); err != nil {
				return res, err
			}
			sinceCommit = 0
		}
	}
	if sinceCommit > 0 {
		if err := e.commit(ctx, date, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (e *Engine) commit(ctx context.Context, date time.Time, res *RunResult) error {
	if err := e.session.Commit(ctx); err != nil {
		return err
	}
	res.Committed = true
	res.LastCommitted = date
	logrus.WithFields(logrus.Fields{
		"date":  date.Format(DateLayout),
		"ticks": res.Ticks,
	}).Info("committed")
	if e.OnCommit != nil {
		e.OnCommit(date)
	}
	return nil
}

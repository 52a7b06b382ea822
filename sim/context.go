package sim

import "time"

// SimulationContext bundles what a processor may touch for one simulated day.
// World is read-only; Session is the only write path.
type SimulationContext struct {
	Date    time.Time
	Session *Session
	World   *World
}

// Processor mutates transactional state for exactly one simulated day.
// Implementations must only write rows dated sc.Date and must not flush.
type Processor interface {
	Name() string
	Execute(sc *SimulationContext) error
}

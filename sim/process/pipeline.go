package process

import (
	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// NewPipeline returns the four processors in execution order:
// inbound, outbound, replenishment, sensor. tr may be nil.
func NewPipeline(rng *sim.RNG, cfg *sim.Config, tr *trace.SimulationTrace) []sim.Processor {
	return []sim.Processor{
		NewInboundProcessor(rng, tr),
		NewOutboundProcessor(rng, cfg.Outbound, tr),
		NewReplenishmentProcessor(rng, cfg.Replenishment, tr),
		NewSensorProcessor(rng, cfg.Sensors),
	}
}

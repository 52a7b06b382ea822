package process

import (
	"math"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// SensorProcessor emits observations. Every active device considers every
// positive balance in its warehouse: docks are scanned with the dock
// probability, other locations with the default one. A scan reports
// true·(1+noise); no scan may still emit a missing row at the device's
// missing rate.
type SensorProcessor struct {
	rng *sim.RNG
	cfg sim.SensorsConfig
}

// NewSensorProcessor creates the processor that emits device observations.
func NewSensorProcessor(rng *sim.RNG, cfg sim.SensorsConfig) *SensorProcessor {
	return &SensorProcessor{rng: rng, cfg: cfg}
}

// Name implements sim.Processor.
func (p *SensorProcessor) Name() string { return "sensor" }

// Execute scans positive balances with every active device of each warehouse.
func (p *SensorProcessor) Execute(sc *sim.SimulationContext) error {
	if len(sc.World.Devices) == 0 {
		return nil
	}
	stock := make(map[sim.ID][]*sim.InventoryBalance) // warehouse -> positive balances
	for _, b := range sim.Rows[*sim.InventoryBalance](sc.Session) {
		if b.OnHand <= 0 {
			continue
		}
		loc, ok := sc.World.Location(b.LocationID)
		if !ok {
			continue
		}
		stock[loc.WarehouseID] = append(stock[loc.WarehouseID], b)
	}

	for _, dev := range sc.World.Devices {
		if dev.Status != sim.DeviceActive {
			continue
		}
		for _, b := range stock[dev.WarehouseID] {
			loc, _ := sc.World.Location(b.LocationID)
			prob := p.cfg.ScanProbabilities.Default
			if loc.Type == sim.LocationDock {
				prob = p.cfg.ScanProbabilities.Dock
			}
			if p.rng.Bernoulli(prob) {
				sc.Session.Add(p.scan(sc, dev, b))
				continue
			}
			if p.rng.Bernoulli(dev.MissingRate) {
				sc.Session.Add(&sim.Observation{
					ObservedAt:         sc.Date,
					DeviceID:           dev.ID,
					ProductID:          b.ProductID,
					LocationID:         b.LocationID,
					Type:               sim.ObservationScan,
					IsMissing:          true,
					ReportedNoiseSigma: dev.NoiseSigma,
				})
			}
		}
	}
	return nil
}

func (p *SensorProcessor) scan(sc *sim.SimulationContext, dev *sim.SensorDevice, b *sim.InventoryBalance) *sim.Observation {
	reading := NoisyReading(p.rng, p.cfg.NoiseModel, dev.NoiseSigma, b.OnHand)
	return &sim.Observation{
		ObservedAt:         sc.Date,
		DeviceID:           dev.ID,
		ProductID:          b.ProductID,
		LocationID:         b.LocationID,
		Type:               sim.ObservationScan,
		ObservedQty:        &reading.Qty,
		Confidence:         reading.Confidence,
		ReportedNoiseSigma: reading.Sigma,
	}
}

// Reading is one noisy sensor measurement.
type Reading struct {
	Qty        float64
	Confidence float64
	Sigma      float64 // relative sigma actually applied
}

// NoisyReading draws noise ~ N(noise_mean, σ) with σ = max(deviceSigma,
// min_sigma_units/true), reports max(min_observed_qty, true·(1+noise)) and a
// confidence of base − |noise|·multiplier clamped to [min_confidence, 1].
func NoisyReading(rng *sim.RNG, nm sim.NoiseModel, deviceSigma, trueQty float64) Reading {
	sigma := deviceSigma
	if trueQty > 0 {
		sigma = math.Max(deviceSigma, nm.MinSigmaUnits/trueQty)
	}
	noise := rng.Gauss(nm.NoiseMean, sigma)
	qty := math.Max(nm.MinObservedQty, trueQty*(1+noise))
	conf := nm.BaseConfidence - math.Abs(noise)*nm.NoiseMultiplier
	conf = math.Min(1, math.Max(nm.MinConfidence, conf))
	return Reading{Qty: qty, Confidence: conf, Sigma: sigma}
}

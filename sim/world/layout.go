package world

import (
	"fmt"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// DefaultDockBuilder creates a single receiving dock per warehouse.
type DefaultDockBuilder struct {
	session *sim.Session
	rng     *sim.RNG
	cfg     sim.InfrastructureConfig
}

// NewDockBuilder creates the default DockBuilder.
func NewDockBuilder(session *sim.Session, rng *sim.RNG, cfg sim.InfrastructureConfig) *DefaultDockBuilder {
	return &DefaultDockBuilder{session: session, rng: rng, cfg: cfg}
}

// BuildDocks stages a single dock with a sampled capacity.
func (d *DefaultDockBuilder) BuildDocks(wh *sim.Warehouse) error {
	d.session.Add(&sim.Location{
		WarehouseID:   wh.ID,
		Code:          "DOCK-01",
		Type:          sim.LocationDock,
		CapacityUnits: d.rng.UniformInt(d.cfg.DockCapacity.Min, d.cfg.DockCapacity.Max),
	})
	return nil
}

// DefaultZoneBuilder creates lettered zones, numbered aisles within each zone,
// and attaches sensor devices to aisles.
type DefaultZoneBuilder struct {
	session *sim.Session
	rng     *sim.RNG
	cfg     sim.InfrastructureConfig
	weights []float64
}

// NewZoneBuilder creates the default ZoneBuilder.
func NewZoneBuilder(session *sim.Session, rng *sim.RNG, cfg sim.InfrastructureConfig) *DefaultZoneBuilder {
	weights := make([]float64, cfg.SensorProfiles.Len())
	for i := range weights {
		_, p := cfg.SensorProfiles.At(i)
		weights[i] = p.Weight
	}
	return &DefaultZoneBuilder{session: session, rng: rng, cfg: cfg, weights: weights}
}

// BuildZones stages zones, their aisles and any aisle sensor devices.
func (z *DefaultZoneBuilder) BuildZones(wh *sim.Warehouse) error {
	zones := z.rng.UniformInt(z.cfg.ZonesPerWarehouse.Min, z.cfg.ZonesPerWarehouse.Max)
	if zones > 26 {
		return sim.NewInvariantError("layout", "%d zones exceed the lettered range", zones)
	}
	for i := 0; i < zones; i++ {
		zone := &sim.Location{
			WarehouseID:   wh.ID,
			Code:          fmt.Sprintf("ZONE-%c", 'A'+i),
			Type:          sim.LocationZone,
			CapacityUnits: z.rng.UniformInt(z.cfg.ZoneCapacity.Min, z.cfg.ZoneCapacity.Max),
		}
		z.session.Add(zone)

		aisles := z.rng.UniformInt(z.cfg.AislesPerZone.Min, z.cfg.AislesPerZone.Max)
		for a := 0; a < aisles; a++ {
			z.session.Add(&sim.Location{
				WarehouseID:   wh.ID,
				ParentID:      zone.ID,
				Code:          fmt.Sprintf("%s-AISLE-%02d", zone.Code, a+1),
				Type:          sim.LocationAisle,
				CapacityUnits: z.rng.UniformInt(z.cfg.AisleCapacity.Min, z.cfg.AisleCapacity.Max),
			})
			if z.rng.Bernoulli(z.cfg.SensorAttachProbability) {
				if err := z.attachDevice(wh); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (z *DefaultZoneBuilder) attachDevice(wh *sim.Warehouse) error {
	idx := z.rng.WeightedIndex(z.weights)
	if idx < 0 {
		return sim.NewInvariantError("layout", "no sensor profile with positive weight")
	}
	name, profile := z.cfg.SensorProfiles.At(idx)
	sigma := z.rng.Uniform(profile.NoiseSigma.Min, profile.NoiseSigma.Max)
	missing := z.rng.Uniform(profile.MissingRate.Min, profile.MissingRate.Max)
	if !profile.NoiseSigma.Contains(sigma) || !profile.MissingRate.Contains(missing) {
		return sim.NewInvariantError("layout", "%s profile sample sigma=%f missing=%f out of bounds", name, sigma, missing)
	}
	z.session.Add(&sim.SensorDevice{
		WarehouseID: wh.ID,
		Type:        sim.DeviceType(name),
		Status:      sim.DeviceActive,
		NoiseSigma:  sigma,
		MissingRate: missing,
	})
	return nil
}

package world

import (
	"fmt"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// SelectMode picks the transport mode for a lane: truck below truckMaxKm,
// air below airMaxKm, ocean otherwise.
func SelectMode(distanceKm, truckMaxKm, airMaxKm int) sim.TransportMode {
	switch {
	case distanceKm < truckMaxKm:
		return sim.ModeTruck
	case distanceKm < airMaxKm:
		return sim.ModeAir
	default:
		return sim.ModeOcean
	}
}

// LogisticsBuilder creates one lead-time model per transport mode and a route
// for every (supplier, warehouse) pair.
type LogisticsBuilder struct {
	session *sim.Session
	rng     *sim.RNG
	cfg     sim.LogisticsConfig
	byMode  map[sim.TransportMode]*sim.LeadtimeModel
}

// NewLogisticsBuilder creates a builder for lead-time models and routes.
func NewLogisticsBuilder(session *sim.Session, rng *sim.RNG, cfg sim.LogisticsConfig) *LogisticsBuilder {
	return &LogisticsBuilder{session: session, rng: rng, cfg: cfg, byMode: make(map[sim.TransportMode]*sim.LeadtimeModel)}
}

// CreateLeadtimeModels stages the configured models in declaration order.
func (b *LogisticsBuilder) CreateLeadtimeModels() ([]*sim.LeadtimeModel, error) {
	models := make([]*sim.LeadtimeModel, 0, b.cfg.Models.Len())
	for i := 0; i < b.cfg.Models.Len(); i++ {
		name, mc := b.cfg.Models.At(i)
		if !sim.IsValidTransportMode(name) {
			return models, fmt.Errorf("%w: unknown transport mode %q", sim.ErrInvalidConfig, name)
		}
		m := &sim.LeadtimeModel{
			Mode:             sim.TransportMode(name),
			Family:           sim.DistFamily(mc.Family),
			P1:               mc.P1,
			P2:               mc.P2,
			PRareDelay:       mc.PRareDelay,
			RareDelayAddDays: mc.RareDelayAddDays,
		}
		b.session.Add(m)
		b.byMode[m.Mode] = m
		models = append(models, m)
	}
	return models, nil
}

// CreateRoutes stages one route per (supplier, warehouse) with a sampled
// distance and the mode chosen by SelectMode. Lead-time models must exist.
func (b *LogisticsBuilder) CreateRoutes(suppliers []*sim.Supplier, warehouses []*sim.Warehouse) ([]*sim.Route, error) {
	routes := make([]*sim.Route, 0, len(suppliers)*len(warehouses))
	for _, s := range suppliers {
		for _, wh := range warehouses {
			distance := b.rng.UniformInt(b.cfg.DistanceKm.Min, b.cfg.DistanceKm.Max)
			mode := SelectMode(distance, b.cfg.TruckMaxKm, b.cfg.AirMaxKm)
			model, ok := b.byMode[mode]
			if !ok {
				return routes, fmt.Errorf("route %s -> %s: no lead-time model for %s", s.Name, wh.Name, mode)
			}
			r := &sim.Route{
				SupplierID:      s.ID,
				WarehouseID:     wh.ID,
				DistanceKm:      distance,
				Mode:            mode,
				LeadtimeModelID: model.ID,
			}
			b.session.Add(r)
			routes = append(routes, r)
		}
	}
	return routes, nil
}

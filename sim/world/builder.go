package world

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// WorldBuilder composes the catalog, infrastructure, logistics and opening
// stock builders into one deterministic build.
type WorldBuilder struct {
	session *sim.Session
	rng     *sim.RNG
	cfg     *sim.Config

	// Docks and Zones default to the config-driven builders. Tests may replace them.
	Docks DockBuilder
	Zones ZoneBuilder
}

// NewWorldBuilder creates a WorldBuilder using the default layout builders.
func NewWorldBuilder(session *sim.Session, rng *sim.RNG, cfg *sim.Config) *WorldBuilder {
	return &WorldBuilder{
		session: session,
		rng:     rng,
		cfg:     cfg,
		Docks:   NewDockBuilder(session, rng, cfg.Infrastructure),
		Zones:   NewZoneBuilder(session, rng, cfg.Infrastructure),
	}
}

// BuildAll stages and flushes the whole static world plus opening stock dated
// asOf, and returns its snapshot. The caller owns the commit.
func (b *WorldBuilder) BuildAll(ctx context.Context, asOf time.Time) (*sim.World, error) {
	catalog := NewCatalogBuilder(b.session, b.rng, b.cfg.Catalog)
	products, err := catalog.CreateProducts(b.cfg.World.ProductCount)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	suppliers, err := catalog.CreateSuppliers(b.cfg.World.SupplierCount)
	if err != nil {
		return nil, fmt.Errorf("suppliers: %w", err)
	}
	if err := b.session.Flush(ctx); err != nil {
		return nil, err
	}

	infra := NewInfrastructureBuilder(b.session, b.cfg.Infrastructure.Regions, b.Docks, b.Zones)
	warehouses, err := infra.CreateWarehouses(ctx, b.cfg.World.WarehouseCount)
	if err != nil {
		return nil, fmt.Errorf("warehouses: %w", err)
	}

	logistics := NewLogisticsBuilder(b.session, b.rng, b.cfg.Logistics)
	if _, err := logistics.CreateLeadtimeModels(); err != nil {
		return nil, fmt.Errorf("lead-time models: %w", err)
	}
	routes, err := logistics.CreateRoutes(suppliers, warehouses)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	if err := b.session.Flush(ctx); err != nil {
		return nil, err
	}

	world := sim.NewWorld(b.session)
	stocked, err := SeedOpeningStock(b.session, b.rng, world, b.cfg.Infrastructure.OpeningStock, asOf)
	if err != nil {
		return nil, fmt.Errorf("opening stock: %w", err)
	}
	if err := b.session.Flush(ctx); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"warehouses": len(warehouses),
		"locations":  len(world.Locations),
		"devices":    len(world.Devices),
		"products":   len(products),
		"suppliers":  len(suppliers),
		"routes":     len(routes),
		"balances":   stocked,
	}).Info("world built")
	return world, nil
}

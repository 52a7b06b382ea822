package world

import (
	"context"
	"fmt"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// DockBuilder creates the docks of one warehouse.
type DockBuilder interface {
	BuildDocks(wh *sim.Warehouse) error
}

// ZoneBuilder creates the zones, aisles and sensor devices of one warehouse.
type ZoneBuilder interface {
	BuildZones(wh *sim.Warehouse) error
}

// InfrastructureBuilder creates warehouses and delegates their layout.
// Its contract is the region cycling and naming rule plus the per-warehouse
// call sequence: flush, docks, then zones.
type InfrastructureBuilder struct {
	session *sim.Session
	regions sim.OrderedMap[string]
	docks   DockBuilder
	zones   ZoneBuilder
}

// NewInfrastructureBuilder creates an InfrastructureBuilder. regions maps
// region name to timezone in cycling order.
func NewInfrastructureBuilder(session *sim.Session, regions sim.OrderedMap[string], docks DockBuilder, zones ZoneBuilder) *InfrastructureBuilder {
	return &InfrastructureBuilder{session: session, regions: regions, docks: docks, zones: zones}
}

// WarehouseName returns WH-<REGION>-<NN> for the zero-based index i.
func WarehouseName(region string, i int) string {
	return fmt.Sprintf("WH-%s-%02d", region, i+1)
}

// CreateWarehouses creates count warehouses. Warehouse i gets
// regions[i mod len(regions)]. Each warehouse is flushed before its docks
// and zones are built.
func (b *InfrastructureBuilder) CreateWarehouses(ctx context.Context, count int) ([]*sim.Warehouse, error) {
	if count > 0 && b.regions.Len() == 0 {
		return nil, fmt.Errorf("%w: no warehouse regions configured", sim.ErrInvalidConfig)
	}
	warehouses := make([]*sim.Warehouse, 0, count)
	for i := 0; i < count; i++ {
		region, tz := b.regions.At(i % b.regions.Len())
		wh := &sim.Warehouse{
			Name:     WarehouseName(region, i),
			Region:   region,
			Timezone: tz,
		}
		b.session.Add(wh)
		if err := b.session.Flush(ctx); err != nil {
			return warehouses, fmt.Errorf("flush warehouse %s: %w", wh.Name, err)
		}
		if err := b.docks.BuildDocks(wh); err != nil {
			return warehouses, fmt.Errorf("docks for %s: %w", wh.Name, err)
		}
		if err := b.zones.BuildZones(wh); err != nil {
			return warehouses, fmt.Errorf("zones for %s: %w", wh.Name, err)
		}
		warehouses = append(warehouses, wh)
	}
	return warehouses, nil
}

package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/process"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// fixedReplenishment reviews the whole catalog with a deterministic 3-day
// processing time. The fixture's truck model adds exactly 2 transit days.
func fixedReplenishment() sim.ReplenishmentConfig {
	cfg := sim.DefaultConfig().Replenishment
	cfg.ReviewCatalogFraction = 1
	cfg.ReorderPoint = 20
	cfg.TargetLevel = 100
	cfg.LeadTime = sim.LeadTimePolicy{MeanDays: 3, StdDays: 0, MinDays: 1}
	return cfg
}

func TestReplenishment_AtOrBelowReorderPoint_IssuesPO(t *testing.T) {
	tests := []struct {
		name    string
		onHand  float64
		stocked bool
		wantQty float64
	}{
		{"below reorder point", 15, true, 85},
		{"exactly at reorder point", 20, true, 80},
		{"no balance row", 0, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1, 1)
			if tt.stocked {
				f.stock(f.dock, f.products[0], tt.onHand, 0)
			}
			tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
			date := day("2024-01-10")

			require.NoError(t, process.NewReplenishmentProcessor(sim.NewRNG(1), fixedReplenishment(), tr).Execute(f.ctx(date)))

			pos := sim.Rows[*sim.PurchaseOrder](f.session)
			require.Len(t, pos, 1)
			po := pos[0]
			assert.Equal(t, sim.POSubmitted, po.Status)
			assert.Equal(t, f.supplier.ID, po.SupplierID)
			assert.Equal(t, f.route.ID, po.RouteID)
			assert.Equal(t, 5, po.LeadTimeDays)
			assert.Equal(t, date.AddDate(0, 0, 5), po.ExpectedAt)

			lines := sim.Rows[*sim.POLine](f.session)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantQty, lines[0].QtyOrdered)

			shipments := sim.Rows[*sim.Shipment](f.session)
			require.Len(t, shipments, 1)
			sh := shipments[0]
			assert.Equal(t, sim.DirectionInbound, sh.Direction)
			assert.Equal(t, sim.ShipmentInTransit, sh.Status)
			assert.Equal(t, sim.ModeTruck, sh.Mode)
			assert.Equal(t, date.AddDate(0, 0, 3), sh.PlannedDeparture)
			assert.Equal(t, po.ExpectedAt, sh.PlannedArrival)

			require.Len(t, tr.Replenishments, 1)
			assert.Equal(t, "truck", tr.Replenishments[0].Mode)
			assert.Equal(t, tt.wantQty, tr.Replenishments[0].OrderQty)
		})
	}
}

func TestReplenishment_AboveReorderPoint_NoPO(t *testing.T) {
	f := newFixture(1, 1)
	f.stock(f.dock, f.products[0], 21, 0)

	require.NoError(t, process.NewReplenishmentProcessor(sim.NewRNG(1), fixedReplenishment(), nil).Execute(f.ctx(day("2024-01-10"))))

	assert.Zero(t, f.session.Count(sim.KindPurchaseOrder))
}

func TestReplenishment_OpenPO_NoDuplicate(t *testing.T) {
	f := newFixture(1, 1)
	f.stock(f.dock, f.products[0], 5, 0)
	p := process.NewReplenishmentProcessor(sim.NewRNG(1), fixedReplenishment(), nil)

	require.NoError(t, p.Execute(f.ctx(day("2024-01-10"))))
	require.NoError(t, p.Execute(f.ctx(day("2024-01-11"))))
	assert.Equal(t, 1, f.session.Count(sim.KindPurchaseOrder))

	// Once the PO is closed the pair can be reordered.
	po, ok := sim.Lookup[*sim.PurchaseOrder](f.session, 1)
	require.True(t, ok)
	po.Status = sim.POClosed
	f.session.Update(po)
	require.NoError(t, p.Execute(f.ctx(day("2024-01-12"))))
	assert.Equal(t, 2, f.session.Count(sim.KindPurchaseOrder))
}

func TestReplenishment_NoSuppliers_NoPO(t *testing.T) {
	f := newFixture(1, 1)
	f.world.Suppliers = nil

	require.NoError(t, process.NewReplenishmentProcessor(sim.NewRNG(1), fixedReplenishment(), nil).Execute(f.ctx(day("2024-01-10"))))

	assert.Zero(t, f.session.Count(sim.KindPurchaseOrder))
}

func TestReplenishment_MissingDock_Errors(t *testing.T) {
	f := newFixture(1, 1)
	f.world.Warehouses = append(f.world.Warehouses, &sim.Warehouse{ID: 99, Name: "WH-GHOST-99"})

	err := process.NewReplenishmentProcessor(sim.NewRNG(1), fixedReplenishment(), nil).Execute(f.ctx(day("2024-01-10")))

	assert.ErrorIs(t, err, sim.ErrMissingDock)
}

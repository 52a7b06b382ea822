package process_test

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/process"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// quietOutbound returns an outbound config that creates no new demand.
func quietOutbound() sim.OutboundConfig {
	cfg := sim.DefaultConfig().Outbound
	cfg.PoissonMean = 0
	return cfg
}

func (f *fixture) order(created, promised string, status sim.OrderStatus, ordered, allocated float64) (*sim.Order, *sim.OrderLine) {
	o := &sim.Order{
		WarehouseID: f.wh.ID,
		Status:      status,
		CreatedAt:   day(created),
		PromisedAt:  day(promised),
		SLAPriority: 1,
	}
	f.session.Add(o)
	l := &sim.OrderLine{
		OrderID:             o.ID,
		ProductID:           f.products[0].ID,
		QtyOrdered:          ordered,
		QtyAllocated:        allocated,
		ServiceLevelPenalty: decimal.NewFromInt(10),
	}
	f.session.Add(l)
	return o, l
}

func TestActiveCount(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{0, 0.2, 0},
		{50, 0.2, 10},
		{3, 0.2, 1},
		{10, 0, 1},
		{5, 1, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d*%v", tt.n, tt.fraction), func(t *testing.T) {
			assert.Equal(t, tt.want, process.ActiveCount(tt.n, tt.fraction))
		})
	}
}

func TestOutbound_PriorDayAllocation_ShipsAndDelivers(t *testing.T) {
	// GIVEN an order allocated yesterday against reserved dock stock
	f := newFixture(1, 1)
	b := f.stock(f.dock, f.products[0], 10, 5)
	o, l := f.order("2024-01-01", "2024-01-04", sim.OrderAllocated, 5, 5)
	p := process.NewOutboundProcessor(sim.NewRNG(1), quietOutbound(), nil)

	// WHEN the processor runs the next day
	require.NoError(t, p.Execute(f.ctx(day("2024-01-02"))))

	// THEN the stock is issued and the order ships in full
	assert.Equal(t, 5.0, l.QtyShipped)
	assert.Equal(t, 5.0, b.OnHand)
	assert.Zero(t, b.Reserved)
	assert.Equal(t, sim.OrderShipped, o.Status)

	shipments := sim.Find(f.session, func(sh *sim.Shipment) bool { return sh.Direction == sim.DirectionOutbound })
	require.Len(t, shipments, 1)
	sh := shipments[0]
	assert.Equal(t, o.ID, sh.OrderID)
	assert.Equal(t, sim.ShipmentInTransit, sh.Status)
	assert.Equal(t, day("2024-01-03"), sh.PlannedArrival)

	moves := sim.Find(f.session, func(m *sim.InventoryMove) bool { return m.Type == sim.MoveOutbound })
	require.Len(t, moves, 1)
	assert.Equal(t, sim.ReasonShipment, moves[0].ReasonCode)

	// AND the shipment is delivered on its planned arrival
	require.NoError(t, p.Execute(f.ctx(day("2024-01-03"))))
	assert.Equal(t, sim.ShipmentDelivered, sh.Status)
	require.NotNil(t, sh.ActualArrival)
	assert.Equal(t, day("2024-01-03"), *sh.ActualArrival)
}

func TestOutbound_SameDayAllocation_NotShipped(t *testing.T) {
	f := newFixture(1, 1)
	f.stock(f.dock, f.products[0], 10, 5)
	o, l := f.order("2024-01-02", "2024-01-05", sim.OrderAllocated, 5, 5)

	require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(1), quietOutbound(), nil).Execute(f.ctx(day("2024-01-02"))))

	assert.Zero(t, l.QtyShipped)
	assert.Equal(t, sim.OrderAllocated, o.Status)
}

func TestOutbound_Backorders_FilledOldestFirst(t *testing.T) {
	f := newFixture(1, 1)
	f.stock(f.dock, f.products[0], 6, 0)
	o1, l1 := f.order("2024-01-01", "2024-01-04", sim.OrderNew, 5, 0)
	o2, l2 := f.order("2024-01-01", "2024-01-04", sim.OrderNew, 5, 0)
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})

	require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(1), quietOutbound(), tr).Execute(f.ctx(day("2024-01-02"))))

	assert.Equal(t, 5.0, l1.QtyAllocated)
	assert.Equal(t, 1.0, l2.QtyAllocated)
	assert.Equal(t, sim.OrderAllocated, o1.Status)
	assert.Equal(t, sim.OrderAllocated, o2.Status)
	require.Len(t, tr.Fulfillments, 2)
	for _, rec := range tr.Fulfillments {
		assert.True(t, rec.Backorder)
	}
}

func TestOutbound_StaleOrder_Cancelled(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		status sim.OrderStatus
	}{
		{"on the last backorder day", "2024-01-08", sim.OrderNew},
		{"one day past the backorder window", "2024-01-09", sim.OrderCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Promised 2024-01-01, backorder window 7 days.
			f := newFixture(1, 1)
			o, _ := f.order("2023-12-29", "2024-01-01", sim.OrderNew, 10, 0)

			require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(1), quietOutbound(), nil).Execute(f.ctx(day(tt.date))))

			assert.Equal(t, tt.status, o.Status)
		})
	}
}

func TestOutbound_PartialShipThenCancel_KeepsShippedQty(t *testing.T) {
	f := newFixture(1, 1)
	b := f.stock(f.dock, f.products[0], 3, 3)
	o, l := f.order("2023-12-29", "2024-01-01", sim.OrderAllocated, 10, 3)

	require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(1), quietOutbound(), nil).Execute(f.ctx(day("2024-01-10"))))

	assert.Equal(t, sim.OrderCancelled, o.Status)
	assert.Equal(t, 3.0, l.QtyShipped)
	assert.Equal(t, 3.0, l.QtyAllocated)
	assert.Zero(t, b.OnHand)
	assert.Zero(t, b.Reserved)
}

func TestOutbound_CreateDemand_AllocatesAvailableStock(t *testing.T) {
	f := newFixture(1, 3)
	for _, p := range f.products {
		f.stock(f.dock, p, 1000, 0)
	}
	cfg := sim.DefaultConfig().Outbound
	cfg.ActiveCatalogFraction = 1
	cfg.PoissonMean = 3
	date := day("2024-01-01")

	require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(9), cfg, nil).Execute(f.ctx(date)))

	orders := sim.Rows[*sim.Order](f.session)
	require.NotEmpty(t, orders)
	lines := sim.Rows[*sim.OrderLine](f.session)
	require.Len(t, lines, len(orders), "one line per order")
	customer := regexp.MustCompile(`^CUST-\d{5}$`)
	for i, o := range orders {
		assert.Equal(t, date, o.CreatedAt)
		assert.Equal(t, date.AddDate(0, 0, cfg.PromiseDays), o.PromisedAt)
		assert.Equal(t, sim.OrderAllocated, o.Status)
		assert.Equal(t, f.wh.Region, o.RequestedShipFromRegion)
		assert.True(t, cfg.SLAPriority.Contains(o.SLAPriority))
		assert.Regexp(t, customer, o.CustomerName)

		l := lines[i]
		assert.Equal(t, o.ID, l.OrderID)
		assert.True(t, cfg.OrderQty.Contains(int(l.QtyOrdered)))
		assert.Equal(t, l.QtyOrdered, l.QtyAllocated)
		assert.True(t, decimal.NewFromInt(10).Equal(l.ServiceLevelPenalty))
	}

	reserved := 0.0
	for _, b := range sim.Rows[*sim.InventoryBalance](f.session) {
		reserved += b.Reserved
	}
	allocated := 0.0
	for _, l := range lines {
		allocated += l.QtyAllocated
	}
	assert.Equal(t, allocated, reserved)
}

func TestOutbound_CreateDemand_NoStock_LeavesOpenQty(t *testing.T) {
	f := newFixture(1, 1)
	cfg := sim.DefaultConfig().Outbound
	cfg.ActiveCatalogFraction = 1
	cfg.PoissonMean = 20
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})

	require.NoError(t, process.NewOutboundProcessor(sim.NewRNG(2), cfg, tr).Execute(f.ctx(day("2024-01-01"))))

	lines := sim.Rows[*sim.OrderLine](f.session)
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.Zero(t, l.QtyAllocated)
	}
	for _, o := range sim.Rows[*sim.Order](f.session) {
		assert.Equal(t, sim.OrderNew, o.Status)
	}
	assert.Len(t, tr.Fulfillments, len(lines), "first-day allocations are traced even when empty")
	assert.Zero(t, trace.Summarize(tr).FillRate)
}

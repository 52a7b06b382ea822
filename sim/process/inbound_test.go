package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/process"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// stagePO stages a submitted PO for 40 units of the first product with an
// in-transit shipment arriving on arrival.
func stagePO(f *fixture, arrival string) (*sim.PurchaseOrder, *sim.POLine, *sim.Shipment) {
	po := &sim.PurchaseOrder{
		SupplierID:             f.supplier.ID,
		DestinationWarehouseID: f.wh.ID,
		RouteID:                f.route.ID,
		LeadtimeModelID:        f.route.LeadtimeModelID,
		Status:                 sim.POSubmitted,
		CreatedAt:              day("2024-01-01"),
		ExpectedAt:             day(arrival),
		LeadTimeDays:           4,
	}
	f.session.Add(po)
	line := &sim.POLine{PurchaseOrderID: po.ID, ProductID: f.products[0].ID, QtyOrdered: 40}
	f.session.Add(line)
	sh := &sim.Shipment{
		Direction:              sim.DirectionInbound,
		DestinationWarehouseID: f.wh.ID,
		PurchaseOrderID:        po.ID,
		RouteID:                f.route.ID,
		Mode:                   sim.ModeTruck,
		Status:                 sim.ShipmentInTransit,
		PlannedDeparture:       day("2024-01-02"),
		PlannedArrival:         day(arrival),
	}
	f.session.Add(sh)
	return po, line, sh
}

func TestInbound_ReliableSupplier_ReceivesAtDock(t *testing.T) {
	// GIVEN a fully reliable supplier with a shipment due today
	f := newFixture(1, 1)
	po, line, sh := stagePO(f, "2024-01-05")
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})

	// WHEN the inbound processor runs on the arrival date
	err := process.NewInboundProcessor(sim.NewRNG(1), tr).Execute(f.ctx(day("2024-01-05")))

	// THEN the PO is received in full at the dock
	require.NoError(t, err)
	b := f.session.Balance(f.dock.ID, f.products[0].ID)
	require.NotNil(t, b)
	assert.Equal(t, 40.0, b.OnHand)
	assert.Equal(t, 40.0, line.QtyReceived)
	assert.Equal(t, sim.POReceived, po.Status)
	assert.Equal(t, sim.ShipmentDelivered, sh.Status)
	require.NotNil(t, sh.ActualArrival)
	assert.Equal(t, day("2024-01-05"), *sh.ActualArrival)
	require.NotNil(t, sh.ActualDeparture)
	assert.Equal(t, day("2024-01-02"), *sh.ActualDeparture)

	moves := sim.Rows[*sim.InventoryMove](f.session)
	require.Len(t, moves, 1)
	assert.Equal(t, sim.MoveInbound, moves[0].Type)
	assert.Equal(t, sim.ReasonReceipt, moves[0].ReasonCode)
	assert.Equal(t, po.ID, moves[0].RefID)

	require.Len(t, tr.Receipts, 1)
	assert.True(t, tr.Receipts[0].Delivered)
	assert.Equal(t, 40.0, tr.Receipts[0].Units)
}

func TestInbound_UnreliableSupplier_Exception(t *testing.T) {
	f := newFixture(0, 1)
	po, line, sh := stagePO(f, "2024-01-05")

	err := process.NewInboundProcessor(sim.NewRNG(1), nil).Execute(f.ctx(day("2024-01-06")))

	require.NoError(t, err)
	assert.Equal(t, sim.ShipmentException, sh.Status)
	assert.Nil(t, sh.ActualArrival)
	assert.Equal(t, sim.POClosed, po.Status)
	assert.Zero(t, line.QtyReceived)
	assert.Nil(t, f.session.Balance(f.dock.ID, f.products[0].ID))
}

func TestInbound_NotYetDue_Untouched(t *testing.T) {
	f := newFixture(1, 1)
	po, _, sh := stagePO(f, "2024-01-05")

	require.NoError(t, process.NewInboundProcessor(sim.NewRNG(1), nil).Execute(f.ctx(day("2024-01-04"))))

	assert.Equal(t, sim.ShipmentInTransit, sh.Status)
	assert.Equal(t, sim.POSubmitted, po.Status)
}

func TestInbound_DeliveredShipment_NotReceivedTwice(t *testing.T) {
	f := newFixture(1, 1)
	stagePO(f, "2024-01-05")
	p := process.NewInboundProcessor(sim.NewRNG(1), nil)

	require.NoError(t, p.Execute(f.ctx(day("2024-01-05"))))
	require.NoError(t, p.Execute(f.ctx(day("2024-01-06"))))

	assert.Equal(t, 40.0, f.session.Balance(f.dock.ID, f.products[0].ID).OnHand)
}

// Package process implements the four daily processors of the twin:
// inbound receipts, outbound demand, replenishment and sensor observation.
// They run in that order, all drawing from the one shared RNG.
package process

import (
	"fmt"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// InboundProcessor receives in-transit inbound shipments whose planned
// arrival has been reached. With probability equal to the supplier's
// reliability the PO is received in full at the warehouse dock; otherwise the
// shipment becomes an exception and the PO is closed with nothing received.
type InboundProcessor struct {
	rng   *sim.RNG
	trace *trace.SimulationTrace
}

// NewInboundProcessor creates the processor that receives due inbound shipments.
func NewInboundProcessor(rng *sim.RNG, tr *trace.SimulationTrace) *InboundProcessor {
	return &InboundProcessor{rng: rng, trace: tr}
}

// Name implements sim.Processor.
func (p *InboundProcessor) Name() string { return "inbound" }

// Execute receives every in-transit inbound shipment planned to arrive by sc.Date.
func (p *InboundProcessor) Execute(sc *sim.SimulationContext) error {
	arriving := sim.Find(sc.Session, func(sh *sim.Shipment) bool {
		return sh.Direction == sim.DirectionInbound &&
			sh.Status == sim.ShipmentInTransit &&
			!sh.PlannedArrival.After(sc.Date)
	})
	if len(arriving) == 0 {
		return nil
	}
	ledger := sim.NewLedger(sc.Session)
	for _, sh := range arriving {
		if err := p.receive(sc, ledger, sh); err != nil {
			return fmt.Errorf("shipment %d: %w", sh.ID, err)
		}
	}
	return nil
}

func (p *InboundProcessor) receive(sc *sim.SimulationContext, ledger *sim.Ledger, sh *sim.Shipment) error {
	po, ok := sim.Lookup[*sim.PurchaseOrder](sc.Session, sh.PurchaseOrderID)
	if !ok {
		return fmt.Errorf("purchase order %d not found", sh.PurchaseOrderID)
	}
	supplier, ok := sc.World.Supplier(po.SupplierID)
	if !ok {
		return fmt.Errorf("supplier %d not found", po.SupplierID)
	}
	dock, err := sc.World.Dock(sh.DestinationWarehouseID)
	if err != nil {
		return err
	}

	date := sc.Date
	if !p.rng.Bernoulli(supplier.ReliabilityScore) {
		sh.Status = sim.ShipmentException
		po.Status = sim.POClosed
		sc.Session.Update(sh)
		sc.Session.Update(po)
		p.trace.RecordReceipt(trace.ReceiptRecord{
			Date: date, ShipmentID: int64(sh.ID), WarehouseID: int64(sh.DestinationWarehouseID),
		})
		return nil
	}

	units := 0.0
	lines := sim.Find(sc.Session, func(l *sim.POLine) bool { return l.PurchaseOrderID == po.ID })
	for _, line := range lines {
		qty := line.QtyOrdered - line.QtyReceived
		if qty <= 0 {
			continue
		}
		if _, err := ledger.Receive(dock.ID, line.ProductID, qty, date, sim.MoveInbound, sim.ReasonReceipt, po.ID); err != nil {
			return err
		}
		line.QtyReceived += qty
		sc.Session.Update(line)
		units += qty
	}
	departed := sh.PlannedDeparture
	sh.ActualDeparture = &departed
	sh.ActualArrival = &date
	sh.Status = sim.ShipmentDelivered
	po.Status = sim.POReceived
	sc.Session.Update(sh)
	sc.Session.Update(po)
	p.trace.RecordReceipt(trace.ReceiptRecord{
		Date: date, ShipmentID: int64(sh.ID), WarehouseID: int64(sh.DestinationWarehouseID),
		Delivered: true, Units: units,
	})
	return nil
}

package process

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// OutboundProcessor runs the daily demand cycle for every warehouse:
//
//  1. deliver outbound shipments due today
//  2. ship everything allocated on earlier days
//  3. cancel open demand more than backorder_max_days past its promise
//  4. fill open backorders oldest first
//  5. create today's orders for an active slice of the catalog and allocate them
//
// Demand that cannot be allocated stays open on its line and accrues the
// configured per-unit penalty.
type OutboundProcessor struct {
	rng     *sim.RNG
	cfg     sim.OutboundConfig
	penalty decimal.Decimal
	trace   *trace.SimulationTrace
}

// NewOutboundProcessor creates the demand and shipping processor.
func NewOutboundProcessor(rng *sim.RNG, cfg sim.OutboundConfig, tr *trace.SimulationTrace) *OutboundProcessor {
	return &OutboundProcessor{
		rng:     rng,
		cfg:     cfg,
		penalty: decimal.NewFromFloat(cfg.MissedSalePenaltyPerUnit).Round(2),
		trace:   tr,
	}
}

// Name implements sim.Processor.
func (p *OutboundProcessor) Name() string { return "outbound" }

// ActiveCount returns max(1, floor(n·fraction)), or 0 for an empty catalog.
func ActiveCount(n int, fraction float64) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Floor(float64(n) * fraction))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// Execute ships earlier allocations, settles backorders and creates the day's demand.
func (p *OutboundProcessor) Execute(sc *sim.SimulationContext) error {
	ledger := sim.NewLedger(sc.Session)
	p.deliver(sc)

	open := openOrders(sc.Session)
	linesByOrder := make(map[sim.ID][]*sim.OrderLine)
	if len(open) > 0 {
		for _, l := range sim.Find(sc.Session, func(l *sim.OrderLine) bool { return isOpenOrder(open, l.OrderID) }) {
			linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], l)
		}
	}
	for _, o := range open {
		if err := p.ship(sc, ledger, o, linesByOrder[o.ID]); err != nil {
			return fmt.Errorf("ship order %d: %w", o.ID, err)
		}
	}
	for _, o := range open {
		if err := p.cancelIfStale(sc, ledger, o, linesByOrder[o.ID]); err != nil {
			return fmt.Errorf("cancel order %d: %w", o.ID, err)
		}
	}
	for _, o := range open {
		if !o.Status.IsOpen() {
			continue
		}
		if err := p.fill(sc, ledger, o, linesByOrder[o.ID], true); err != nil {
			return fmt.Errorf("backorder %d: %w", o.ID, err)
		}
	}
	return p.createDemand(sc, ledger)
}

func openOrders(s *sim.Session) []*sim.Order {
	return sim.Find(s, func(o *sim.Order) bool { return o.Status.IsOpen() })
}

func isOpenOrder(open []*sim.Order, id sim.ID) bool {
	// open is in ID order
	lo, hi := 0, len(open)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case open[mid].ID == id:
			return true
		case open[mid].ID < id:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}

// deliver completes outbound shipments whose planned arrival has been reached.
func (p *OutboundProcessor) deliver(sc *sim.SimulationContext) {
	due := sim.Find(sc.Session, func(sh *sim.Shipment) bool {
		return sh.Direction == sim.DirectionOutbound &&
			sh.Status == sim.ShipmentInTransit &&
			!sh.PlannedArrival.After(sc.Date)
	})
	for _, sh := range due {
		date := sc.Date
		sh.ActualArrival = &date
		sh.Status = sim.ShipmentDelivered
		sc.Session.Update(sh)
	}
}

// ship issues all stock allocated to the order and creates one outbound
// shipment covering it. Allocations made today are not shipped until tomorrow.
func (p *OutboundProcessor) ship(sc *sim.SimulationContext, ledger *sim.Ledger, o *sim.Order, lines []*sim.OrderLine) error {
	if !o.CreatedAt.Before(sc.Date) {
		return nil
	}
	dock, err := sc.World.Dock(o.WarehouseID)
	if err != nil {
		return err
	}
	shipped := false
	for _, l := range lines {
		qty := l.QtyAllocated - l.QtyShipped
		if qty <= 0 {
			continue
		}
		if err := ledger.Issue(dock.ID, l.ProductID, qty, sc.Date, sim.ReasonShipment, o.ID); err != nil {
			return err
		}
		l.QtyShipped += qty
		sc.Session.Update(l)
		shipped = true
	}
	if !shipped {
		return nil
	}
	date := sc.Date
	sc.Session.Add(&sim.Shipment{
		Direction:         sim.DirectionOutbound,
		OriginWarehouseID: o.WarehouseID,
		OrderID:           o.ID,
		Mode:              sim.ModeTruck,
		Status:            sim.ShipmentInTransit,
		PlannedDeparture:  date,
		PlannedArrival:    date.AddDate(0, 0, 1),
		ActualDeparture:   &date,
	})
	if fullyShipped(lines) {
		o.Status = sim.OrderShipped
		sc.Session.Update(o)
	}
	return nil
}

func fullyShipped(lines []*sim.OrderLine) bool {
	for _, l := range lines {
		if l.QtyShipped < l.QtyOrdered {
			return false
		}
	}
	return true
}

// cancelIfStale cancels an order whose promise is more than BackorderMaxDays
// behind today. Reserved but unshipped stock is released.
func (p *OutboundProcessor) cancelIfStale(sc *sim.SimulationContext, ledger *sim.Ledger, o *sim.Order, lines []*sim.OrderLine) error {
	if !o.Status.IsOpen() {
		return nil
	}
	deadline := o.PromisedAt.AddDate(0, 0, p.cfg.BackorderMaxDays)
	if !sc.Date.After(deadline) {
		return nil
	}
	dock, err := sc.World.Dock(o.WarehouseID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		held := l.QtyAllocated - l.QtyShipped
		if held <= 0 {
			continue
		}
		b := sc.Session.Balance(dock.ID, l.ProductID)
		if b == nil {
			return fmt.Errorf("release for product %d: %w", l.ProductID, sim.ErrMissingBalance)
		}
		if err := ledger.Release(b, held, sc.Date); err != nil {
			return err
		}
		l.QtyAllocated = l.QtyShipped
		sc.Session.Update(l)
	}
	o.Status = sim.OrderCancelled
	sc.Session.Update(o)
	logrus.Debugf("[day %s] cancelled order %d promised %s", sc.Date.Format(sim.DateLayout), o.ID, o.PromisedAt.Format(sim.DateLayout))
	return nil
}

// fill allocates available dock stock to the open quantity of each line.
func (p *OutboundProcessor) fill(sc *sim.SimulationContext, ledger *sim.Ledger, o *sim.Order, lines []*sim.OrderLine, backorder bool) error {
	dock, err := sc.World.Dock(o.WarehouseID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		open := l.OpenQty()
		if open <= 0 {
			continue
		}
		b := ledger.EnsureBalance(dock.ID, l.ProductID, sc.Date)
		got := ledger.Reserve(b, open, sc.Date)
		if backorder && got == 0 {
			continue
		}
		if got > 0 {
			l.QtyAllocated += got
			sc.Session.Update(l)
			if o.Status == sim.OrderNew {
				o.Status = sim.OrderAllocated
				sc.Session.Update(o)
			}
		}
		p.trace.RecordFulfillment(trace.FulfillmentRecord{
			Date:        sc.Date,
			WarehouseID: int64(o.WarehouseID),
			ProductID:   int64(l.ProductID),
			OrderID:     int64(o.ID),
			Requested:   open,
			Allocated:   got,
			Backorder:   backorder,
		})
	}
	return nil
}

// createDemand draws today's orders: for every (warehouse, active product) a
// Poisson number of single-line orders.
func (p *OutboundProcessor) createDemand(sc *sim.SimulationContext, ledger *sim.Ledger) error {
	products := sc.World.Products
	k := ActiveCount(len(products), p.cfg.ActiveCatalogFraction)
	if k == 0 {
		return nil
	}
	active := p.rng.Sample(len(products), k)
	created := 0
	for _, wh := range sc.World.Warehouses {
		for _, idx := range active {
			product := products[idx]
			n := p.rng.Poisson(p.cfg.PoissonMean)
			for j := 0; j < n; j++ {
				qty := float64(p.rng.UniformInt(p.cfg.OrderQty.Min, p.cfg.OrderQty.Max))
				order := &sim.Order{
					WarehouseID:             wh.ID,
					CustomerName:            fmt.Sprintf("CUST-%05d", p.rng.UniformInt(1, p.cfg.CustomerPool)),
					Status:                  sim.OrderNew,
					CreatedAt:               sc.Date,
					PromisedAt:              sc.Date.AddDate(0, 0, p.cfg.PromiseDays),
					SLAPriority:             p.rng.UniformInt(p.cfg.SLAPriority.Min, p.cfg.SLAPriority.Max),
					RequestedShipFromRegion: wh.Region,
				}
				sc.Session.Add(order)
				line := &sim.OrderLine{
					OrderID:             order.ID,
					ProductID:           product.ID,
					QtyOrdered:          qty,
					ServiceLevelPenalty: p.penalty,
				}
				sc.Session.Add(line)
				if err := p.fill(sc, ledger, order, []*sim.OrderLine{line}, false); err != nil {
					return fmt.Errorf("allocate order %d: %w", order.ID, err)
				}
				created++
			}
		}
	}
	logrus.Debugf("[day %s] outbound: %d active products, %d orders", sc.Date.Format(sim.DateLayout), k, created)
	return nil
}

package process

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/trace"
)

// ReplenishmentProcessor reviews a slice of the catalog each day and raises a
// purchase order for every reviewed (warehouse, product) whose dock on-hand is
// at or below the reorder point and which has no open inbound PO.
//
// Lead time is drawn once, here: supplier processing time from the policy
// plus a transit sample from the route's lead-time model.
type ReplenishmentProcessor struct {
	rng      *sim.RNG
	cfg      sim.ReplenishmentConfig
	trace    *trace.SimulationTrace
	samplers map[sim.ID]sim.TransitSampler // by lead-time model ID
}

// NewReplenishmentProcessor creates the reorder-point review processor.
func NewReplenishmentProcessor(rng *sim.RNG, cfg sim.ReplenishmentConfig, tr *trace.SimulationTrace) *ReplenishmentProcessor {
	return &ReplenishmentProcessor{rng: rng, cfg: cfg, trace: tr, samplers: make(map[sim.ID]sim.TransitSampler)}
}

// Name implements sim.Processor.
func (p *ReplenishmentProcessor) Name() string { return "replenishment" }

type pairKey struct {
	warehouse sim.ID
	product   sim.ID
}

// Execute reviews a sample of the catalog and issues purchase orders for low stock.
func (p *ReplenishmentProcessor) Execute(sc *sim.SimulationContext) error {
	products := sc.World.Products
	k := ActiveCount(len(products), p.cfg.ReviewCatalogFraction)
	if k == 0 {
		return nil
	}
	reviewed := p.rng.Sample(len(products), k)
	if len(sc.World.Suppliers) == 0 {
		logrus.Debugf("[day %s] replenishment: no suppliers", sc.Date.Format(sim.DateLayout))
		return nil
	}

	pending := openInbound(sc.Session)
	issued := 0
	for _, wh := range sc.World.Warehouses {
		dock, err := sc.World.Dock(wh.ID)
		if err != nil {
			return err
		}
		for _, idx := range reviewed {
			product := products[idx]
			onHand := 0.0
			if b := sc.Session.Balance(dock.ID, product.ID); b != nil {
				onHand = b.OnHand
			}
			if onHand > p.cfg.ReorderPoint || pending[pairKey{wh.ID, product.ID}] {
				continue
			}
			if err := p.issue(sc, wh, product, onHand); err != nil {
				return fmt.Errorf("reorder %s at %s: %w", product.SKU, wh.Name, err)
			}
			pending[pairKey{wh.ID, product.ID}] = true
			issued++
		}
	}
	if issued > 0 {
		logrus.Debugf("[day %s] replenishment: %d purchase orders", sc.Date.Format(sim.DateLayout), issued)
	}
	return nil
}

// openInbound returns the (warehouse, product) pairs with a submitted PO.
func openInbound(s *sim.Session) map[pairKey]bool {
	open := make(map[sim.ID]sim.ID) // PO -> warehouse
	for _, po := range sim.Find(s, func(po *sim.PurchaseOrder) bool { return po.Status == sim.POSubmitted }) {
		open[po.ID] = po.DestinationWarehouseID
	}
	pending := make(map[pairKey]bool)
	if len(open) == 0 {
		return pending
	}
	for _, l := range sim.Rows[*sim.POLine](s) {
		if wh, ok := open[l.PurchaseOrderID]; ok {
			pending[pairKey{wh, l.ProductID}] = true
		}
	}
	return pending
}

func (p *ReplenishmentProcessor) issue(sc *sim.SimulationContext, wh *sim.Warehouse, product *sim.Product, onHand float64) error {
	supplier := sc.World.Suppliers[p.rng.Intn(len(sc.World.Suppliers))]
	route, ok := sc.World.Route(supplier.ID, wh.ID)
	if !ok {
		return fmt.Errorf("no route from supplier %d", supplier.ID)
	}
	sampler, err := p.sampler(sc.World, route.LeadtimeModelID)
	if err != nil {
		return err
	}
	processing := sim.ProcessingLeadTime(p.rng, p.cfg.LeadTime)
	leadTime := processing + sampler.Sample(p.rng)
	qty := p.cfg.TargetLevel - onHand
	if qty <= 0 {
		return sim.NewInvariantError("replenishment", "order qty %v for on_hand %v", qty, onHand)
	}

	date := sc.Date
	arrival := date.AddDate(0, 0, leadTime)
	po := &sim.PurchaseOrder{
		SupplierID:             supplier.ID,
		DestinationWarehouseID: wh.ID,
		RouteID:                route.ID,
		LeadtimeModelID:        route.LeadtimeModelID,
		Status:                 sim.POSubmitted,
		CreatedAt:              date,
		ExpectedAt:             arrival,
		LeadTimeDays:           leadTime,
	}
	sc.Session.Add(po)
	sc.Session.Add(&sim.POLine{
		PurchaseOrderID: po.ID,
		ProductID:       product.ID,
		QtyOrdered:      qty,
	})
	sc.Session.Add(&sim.Shipment{
		Direction:              sim.DirectionInbound,
		DestinationWarehouseID: wh.ID,
		PurchaseOrderID:        po.ID,
		RouteID:                route.ID,
		Mode:                   route.Mode,
		Status:                 sim.ShipmentInTransit,
		PlannedDeparture:       date.AddDate(0, 0, processing),
		PlannedArrival:         arrival,
	})
	p.trace.RecordReplenishment(trace.ReplenishmentRecord{
		Date:         date,
		WarehouseID:  int64(wh.ID),
		ProductID:    int64(product.ID),
		SupplierID:   int64(supplier.ID),
		OnHand:       onHand,
		OrderQty:     qty,
		Mode:         string(route.Mode),
		LeadTimeDays: leadTime,
	})
	return nil
}

func (p *ReplenishmentProcessor) sampler(world *sim.World, modelID sim.ID) (sim.TransitSampler, error) {
	if s, ok := p.samplers[modelID]; ok {
		return s, nil
	}
	m, ok := world.LeadtimeModel(modelID)
	if !ok {
		return nil, fmt.Errorf("lead-time model %d not found", modelID)
	}
	s, err := sim.NewTransitSampler(m)
	if err != nil {
		return nil, err
	}
	p.samplers[modelID] = s
	return s, nil
}

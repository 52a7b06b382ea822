// Package testutil provides shared test infrastructure for the twin's
// sub-packages: a small deterministic configuration, a backend with injectable
// failures and assertions over the generated state.
//
// It imports sim and memstore, so only external test packages may use it.
package testutil

import (
	"context"
	"math"
	"testing"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/memstore"
)

// SmallConfig returns the default configuration shrunk to a world that builds
// and simulates in milliseconds.
func SmallConfig() *sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Simulation.DefaultDays = 20
	cfg.Simulation.CommitInterval = 5
	cfg.World.WarehouseCount = 2
	cfg.World.ProductCount = 10
	cfg.World.SupplierCount = 3
	cfg.Infrastructure.ZonesPerWarehouse = sim.IntRange{Min: 1, Max: 2}
	cfg.Infrastructure.AislesPerZone = sim.IntRange{Min: 1, Max: 2}
	cfg.Infrastructure.SensorAttachProbability = 1
	cfg.Outbound.ActiveCatalogFraction = 0.5
	cfg.Replenishment.ReviewCatalogFraction = 0.5
	cfg.Replenishment.ReorderPoint = 60
	return cfg
}

// FlakyBackend wraps a memstore.Store and fails chosen calls. Keys are the
// 1-based call number of Write or Commit; each injected error fires once.
type FlakyBackend struct {
	*memstore.Store

	FailWrites  map[int]error
	FailCommits map[int]error

	writes  int
	commits int
}

// NewFlakyBackend returns a FlakyBackend over an empty store.
func NewFlakyBackend() *FlakyBackend {
	return &FlakyBackend{
		Store:       memstore.New(),
		FailWrites:  make(map[int]error),
		FailCommits: make(map[int]error),
	}
}

func (b *FlakyBackend) Write(ctx context.Context, rows []sim.Record) error {
	b.writes++
	if err, ok := b.FailWrites[b.writes]; ok {
		delete(b.FailWrites, b.writes)
		return err
	}
	return b.Store.Write(ctx, rows)
}

func (b *FlakyBackend) Commit(ctx context.Context) error {
	b.commits++
	if err, ok := b.FailCommits[b.commits]; ok {
		delete(b.FailCommits, b.commits)
		return err
	}
	return b.Store.Commit(ctx)
}

// WriteCalls returns the number of Write calls seen, failed ones included.
func (b *FlakyBackend) WriteCalls() int { return b.writes }

const eps = 1e-9

// AssertInvariants checks the state invariants of a session: non-negative
// balances with on_hand >= reserved, order line quantities nested as
// shipped <= allocated <= ordered, consistent shipment and PO status, and
// well-formed observations.
func AssertInvariants(t *testing.T, s *sim.Session) {
	t.Helper()
	for _, b := range sim.Rows[*sim.InventoryBalance](s) {
		if b.Reserved < -eps || b.OnHand+eps < b.Reserved {
			t.Errorf("balance %d: on_hand %v reserved %v", b.ID, b.OnHand, b.Reserved)
		}
	}

	linesByOrder := make(map[sim.ID][]*sim.OrderLine)
	for _, l := range sim.Rows[*sim.OrderLine](s) {
		if l.QtyShipped < -eps || l.QtyAllocated+eps < l.QtyShipped || l.QtyOrdered+eps < l.QtyAllocated {
			t.Errorf("order line %d: ordered %v allocated %v shipped %v", l.ID, l.QtyOrdered, l.QtyAllocated, l.QtyShipped)
		}
		linesByOrder[l.OrderID] = append(linesByOrder[l.OrderID], l)
	}
	for _, o := range sim.Rows[*sim.Order](s) {
		if o.PromisedAt.Before(o.CreatedAt) {
			t.Errorf("order %d promised before created", o.ID)
		}
		if o.Status != sim.OrderShipped {
			continue
		}
		for _, l := range linesByOrder[o.ID] {
			if math.Abs(l.QtyShipped-l.QtyOrdered) > eps {
				t.Errorf("shipped order %d has line %d with %v of %v shipped", o.ID, l.ID, l.QtyShipped, l.QtyOrdered)
			}
		}
	}

	for _, sh := range sim.Rows[*sim.Shipment](s) {
		if sh.PlannedArrival.Before(sh.PlannedDeparture) {
			t.Errorf("shipment %d arrives before it departs", sh.ID)
		}
		delivered := sh.Status == sim.ShipmentDelivered
		if delivered != (sh.ActualArrival != nil) {
			t.Errorf("shipment %d: status %s with actual arrival set=%v", sh.ID, sh.Status, sh.ActualArrival != nil)
		}
	}

	poLines := make(map[sim.ID][]*sim.POLine)
	for _, l := range sim.Rows[*sim.POLine](s) {
		if l.QtyReceived < -eps || l.QtyReceived > l.QtyOrdered+eps {
			t.Errorf("po line %d: received %v of %v", l.ID, l.QtyReceived, l.QtyOrdered)
		}
		poLines[l.PurchaseOrderID] = append(poLines[l.PurchaseOrderID], l)
	}
	for _, po := range sim.Rows[*sim.PurchaseOrder](s) {
		if po.LeadTimeDays < 0 || po.ExpectedAt.Before(po.CreatedAt) {
			t.Errorf("purchase order %d: lead time %d", po.ID, po.LeadTimeDays)
		}
		if po.Status != sim.POReceived {
			continue
		}
		for _, l := range poLines[po.ID] {
			if math.Abs(l.QtyReceived-l.QtyOrdered) > eps {
				t.Errorf("received po %d has line %d with %v of %v", po.ID, l.ID, l.QtyReceived, l.QtyOrdered)
			}
		}
	}

	for _, o := range sim.Rows[*sim.Observation](s) {
		if o.IsMissing {
			if o.ObservedQty != nil {
				t.Errorf("missing observation %d carries a quantity", o.ID)
			}
			continue
		}
		if o.ObservedQty == nil || *o.ObservedQty < 0 {
			t.Errorf("observation %d: bad quantity", o.ID)
		}
		if o.Confidence < 0 || o.Confidence > 1 {
			t.Errorf("observation %d: confidence %v", o.ID, o.Confidence)
		}
	}
}

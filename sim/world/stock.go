package world

import (
	"time"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// SeedOpeningStock receives an opening quantity, uniform in bounds, of every
// product at every warehouse dock. A zero draw leaves the pair without a
// balance. Returns the number of balances created.
func SeedOpeningStock(session *sim.Session, rng *sim.RNG, world *sim.World, bounds sim.IntRange, asOf time.Time) (int, error) {
	if bounds.Max <= 0 {
		return 0, nil
	}
	ledger := sim.NewLedger(session)
	created := 0
	for _, wh := range world.Warehouses {
		dock, err := world.Dock(wh.ID)
		if err != nil {
			return created, err
		}
		for _, p := range world.Products {
			qty := rng.UniformInt(bounds.Min, bounds.Max)
			if qty <= 0 {
				continue
			}
			if _, err := ledger.Receive(dock.ID, p.ID, float64(qty), asOf, sim.MoveAdjustment, sim.ReasonOpening, 0); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

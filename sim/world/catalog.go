// Package world builds the static world: catalog, warehouses with their
// layout and sensors, the logistics network, and opening stock.
//
// Every builder draws from the single shared RNG in a fixed order and stages
// rows into the shared session, so a fixed seed and configuration reproduce
// the same world.
package world

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

// CatalogBuilder creates products and suppliers.
type CatalogBuilder struct {
	session *sim.Session
	rng     *sim.RNG
	cfg     sim.CatalogConfig
	skus    map[string]bool
}

// NewCatalogBuilder creates a CatalogBuilder.
func NewCatalogBuilder(session *sim.Session, rng *sim.RNG, cfg sim.CatalogConfig) *CatalogBuilder {
	return &CatalogBuilder{session: session, rng: rng, cfg: cfg, skus: make(map[string]bool)}
}

// CreateProducts stages count products. Category is uniform over the declared
// categories; shelf life is uniform within the category's bounds.
func (b *CatalogBuilder) CreateProducts(count int) ([]*sim.Product, error) {
	categories := b.cfg.CategoryShelfLife
	if count > 0 && categories.Len() == 0 {
		return nil, fmt.Errorf("%w: no product categories configured", sim.ErrInvalidConfig)
	}
	products := make([]*sim.Product, 0, count)
	for i := 0; i < count; i++ {
		category, bounds := categories.At(b.rng.Intn(categories.Len()))
		shelfLife := b.rng.UniformInt(bounds.MinDays, bounds.MaxDays)
		if shelfLife < bounds.MinDays || shelfLife > bounds.MaxDays {
			return products, sim.NewInvariantError("catalog", "shelf life %d outside [%d, %d] for %s",
				shelfLife, bounds.MinDays, bounds.MaxDays, category)
		}
		sku := b.nextSKU(category)
		cost := decimal.NewFromFloat(b.rng.Uniform(b.cfg.UnitCost.Min, b.cfg.UnitCost.Max)).Round(2)

		p := &sim.Product{
			SKU:           sku,
			Name:          fmt.Sprintf("%s item %03d", category, i+1),
			Category:      category,
			UnitCost:      cost,
			ShelfLifeDays: shelfLife,
		}
		b.session.Add(p)
		products = append(products, p)
	}
	return products, nil
}

// nextSKU draws a unique <CAT3>-<8 digits> code.
func (b *CatalogBuilder) nextSKU(category string) string {
	prefix := strings.ToUpper(category)
	prefix = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, prefix)
	prefix = (prefix + "XXX")[:3]
	for {
		sku := fmt.Sprintf("%s-%08d", prefix, b.rng.Intn(100_000_000))
		if !b.skus[sku] {
			b.skus[sku] = true
			return sku
		}
	}
}

// CreateSuppliers stages count suppliers with a uniformly chosen region and
// reliability uniform in the configured bound.
func (b *CatalogBuilder) CreateSuppliers(count int) ([]*sim.Supplier, error) {
	regions := b.cfg.SupplierRegions
	if count > 0 && len(regions) == 0 {
		return nil, fmt.Errorf("%w: no supplier regions configured", sim.ErrInvalidConfig)
	}
	bounds := b.cfg.SupplierReliability
	suppliers := make([]*sim.Supplier, 0, count)
	for i := 0; i < count; i++ {
		region := regions[b.rng.Intn(len(regions))]
		reliability := b.rng.Uniform(bounds.Min, bounds.Max)
		if !bounds.Contains(reliability) {
			return suppliers, sim.NewInvariantError("catalog", "reliability %f outside [%f, %f]",
				reliability, bounds.Min, bounds.Max)
		}
		s := &sim.Supplier{
			Name:             fmt.Sprintf("Supplier %02d (%s)", i+1, region),
			Region:           region,
			ReliabilityScore: reliability,
		}
		b.session.Add(s)
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read-side formulas applied by consumers of the generated state.

// WeightedEstimate returns Σ(qty·confidence)/Σconfidence over the non-missing
// observations. ok is false when no observation carries positive confidence.
func WeightedEstimate(obs []*Observation) (estimate float64, ok bool) {
	var num, den float64
	for _, o := range obs {
		if o.IsMissing || o.ObservedQty == nil || o.Confidence <= 0 {
			continue
		}
		num += *o.ObservedQty * o.Confidence
		den += o.Confidence
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// Reconciliation compares a sensor estimate against the book balance.
type Reconciliation struct {
	OnHand      float64
	Estimate    float64
	Discrepancy float64 // Estimate - OnHand
	Observed    int     // observations contributing to Estimate
	Missing     int
}

// Reconcile computes the confidence-weighted estimate for a balance.
// ok is false when no observation contributes.
func Reconcile(b *InventoryBalance, obs []*Observation) (Reconciliation, bool) {
	r := Reconciliation{OnHand: b.OnHand}
	for _, o := range obs {
		if o.IsMissing {
			r.Missing++
		} else {
			r.Observed++
		}
	}
	est, ok := WeightedEstimate(obs)
	if !ok {
		return r, false
	}
	r.Estimate = est
	r.Discrepancy = est - b.OnHand
	return r, true
}

// ObservationsInWindow filters obs to (location, product) within [from, to).
func ObservationsInWindow(obs []*Observation, locationID, productID ID, from, to time.Time) []*Observation {
	var out []*Observation
	for _, o := range obs {
		if o.LocationID != locationID || o.ProductID != productID {
			continue
		}
		if o.ObservedAt.Before(from) || !o.ObservedAt.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// LineExposure returns (qty_ordered − qty_allocated) · service_level_penalty.
func LineExposure(l *OrderLine) decimal.Decimal {
	open := l.OpenQty()
	if open <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(open).Mul(l.ServiceLevelPenalty)
}

// PenaltyExposure sums LineExposure over lines of open orders promised at or
// before horizon.
func PenaltyExposure(orders map[ID]*Order, lines []*OrderLine, horizon time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		o, ok := orders[l.OrderID]
		if !ok || !o.Status.IsOpen() || o.PromisedAt.After(horizon) {
			continue
		}
		total = total.Add(LineExposure(l))
	}
	return total
}

// Tracks run-wide outcomes of the twin: demand fill, replenishment, logistics
// and sensor coverage.

package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// RunMetrics aggregates the state of a session for final reporting.
type RunMetrics struct {
	Days            int     `json:"days"`
	Orders          int     `json:"orders"`
	OrderLines      int     `json:"order_lines"`
	CancelledOrders int     `json:"cancelled_orders"`
	UnitsOrdered    float64 `json:"units_ordered"`
	UnitsAllocated  float64 `json:"units_allocated"`
	UnitsShipped    float64 `json:"units_shipped"`
	FillRate        float64 `json:"fill_rate"` // allocated / ordered

	PurchaseOrders     int                   `json:"purchase_orders"`
	POsByMode          map[TransportMode]int `json:"pos_by_mode"`
	MeanLeadTimeDays   float64               `json:"mean_lead_time_days"`
	P90LeadTimeDays    float64               `json:"p90_lead_time_days"`
	ShipmentsDelivered int                   `json:"shipments_delivered"`
	ShipmentsException int                   `json:"shipments_exception"`
	ShipmentsInTransit int                   `json:"shipments_in_transit"`

	Observations        int     `json:"observations"`
	MissingObservations int     `json:"missing_observations"`
	MeanConfidence      float64 `json:"mean_confidence"`

	OnHandUnits     float64         `json:"on_hand_units"`
	ReservedUnits   float64         `json:"reserved_units"`
	PenaltyExposure decimal.Decimal `json:"penalty_exposure"`
}

// CollectMetrics computes RunMetrics from the live rows of s. Penalty exposure
// covers open lines promised at or before asOf.
func CollectMetrics(s *Session, days int, asOf time.Time) *RunMetrics {
	m := &RunMetrics{Days: days, POsByMode: make(map[TransportMode]int)}

	orders := make(map[ID]*Order)
	for _, o := range Rows[*Order](s) {
		orders[o.ID] = o
		m.Orders++
		if o.Status == OrderCancelled {
			m.CancelledOrders++
		}
	}
	lines := Rows[*OrderLine](s)
	for _, l := range lines {
		m.OrderLines++
		m.UnitsOrdered += l.QtyOrdered
		m.UnitsAllocated += l.QtyAllocated
		m.UnitsShipped += l.QtyShipped
	}
	if m.UnitsOrdered > 0 {
		m.FillRate = m.UnitsAllocated / m.UnitsOrdered
	}
	m.PenaltyExposure = PenaltyExposure(orders, lines, asOf)

	routes := make(map[ID]*Route)
	for _, r := range Rows[*Route](s) {
		routes[r.ID] = r
	}
	var leadTimes []int
	for _, po := range Rows[*PurchaseOrder](s) {
		m.PurchaseOrders++
		if r, ok := routes[po.RouteID]; ok {
			m.POsByMode[r.Mode]++
		}
		leadTimes = append(leadTimes, po.LeadTimeDays)
	}
	m.MeanLeadTimeDays = CalculateMean(leadTimes)
	m.P90LeadTimeDays = CalculatePercentile(leadTimes, 90)

	for _, sh := range Rows[*Shipment](s) {
		if sh.Direction != DirectionInbound {
			continue
		}
		switch sh.Status {
		case ShipmentDelivered:
			m.ShipmentsDelivered++
		case ShipmentException:
			m.ShipmentsException++
		case ShipmentInTransit:
			m.ShipmentsInTransit++
		}
	}

	var confidences []float64
	for _, o := range Rows[*Observation](s) {
		m.Observations++
		if o.IsMissing {
			m.MissingObservations++
			continue
		}
		confidences = append(confidences, o.Confidence)
	}
	m.MeanConfidence = CalculateMean(confidences)

	for _, b := range Rows[*InventoryBalance](s) {
		m.OnHandUnits += b.OnHand
		m.ReservedUnits += b.Reserved
	}
	return m
}

// Print displays aggregated metrics at the end of a run.
func (m *RunMetrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Simulated Days       : %d\n", m.Days)
	fmt.Printf("Orders               : %d (%d cancelled, %d lines)\n", m.Orders, m.CancelledOrders, m.OrderLines)
	if m.UnitsOrdered > 0 {
		fmt.Printf("Units Ordered        : %.0f\n", m.UnitsOrdered)
		fmt.Printf("Units Shipped        : %.0f\n", m.UnitsShipped)
		fmt.Printf("Fill Rate            : %.2f%%\n", m.FillRate*100)
	}
	fmt.Printf("Penalty Exposure     : %s\n", m.PenaltyExposure.StringFixed(2))
	fmt.Printf("Purchase Orders      : %d (truck=%d air=%d ocean=%d)\n", m.PurchaseOrders,
		m.POsByMode[ModeTruck], m.POsByMode[ModeAir], m.POsByMode[ModeOcean])
	if m.PurchaseOrders > 0 {
		fmt.Printf("Lead Time (days)     : mean %.2f, p90 %.2f\n", m.MeanLeadTimeDays, m.P90LeadTimeDays)
	}
	fmt.Printf("Inbound Shipments    : %d delivered, %d exception, %d in transit\n",
		m.ShipmentsDelivered, m.ShipmentsException, m.ShipmentsInTransit)
	fmt.Printf("Observations         : %d (%d missing)\n", m.Observations, m.MissingObservations)
	if m.Observations > m.MissingObservations {
		fmt.Printf("Mean Confidence      : %.3f\n", m.MeanConfidence)
	}
	fmt.Printf("Stock On Hand        : %.0f units (%.0f reserved)\n", m.OnHandUnits, m.ReservedUnits)
}

// SaveToFile writes the metrics as indented JSON.
func (m *RunMetrics) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Package trace provides decision-trace recording for replenishment and
// fulfilment analysis.
// This package has no dependencies on sim/ or its sub-packages: it stores pure data types.
package trace

import "time"

// ReplenishmentRecord captures a single purchase-order decision.
type ReplenishmentRecord struct {
	Date         time.Time
	WarehouseID  int64
	ProductID    int64
	SupplierID   int64
	OnHand       float64
	OrderQty     float64
	Mode         string
	LeadTimeDays int
}

// FulfillmentRecord captures allocation of one order line at creation or backorder fill.
type FulfillmentRecord struct {
	Date        time.Time
	WarehouseID int64
	ProductID   int64
	OrderID     int64
	Requested   float64
	Allocated   float64
	Backorder   bool // true when filling a line created on an earlier day
}

// ReceiptRecord captures the outcome of an arriving inbound shipment.
type ReceiptRecord struct {
	Date        time.Time
	ShipmentID  int64
	WarehouseID int64
	Delivered   bool // false when the shipment became an exception
	Units       float64
}

package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a row within its Kind. IDs are assigned by the Session from a
// per-kind sequence, so a fixed seed yields the same IDs on every run.
type ID int64

// Kind names a table of the twin's store.
type Kind string

const (
	KindWarehouse     Kind = "warehouse"
	KindLocation      Kind = "location"
	KindProduct       Kind = "product"
	KindSupplier      Kind = "supplier"
	KindSensorDevice  Kind = "sensor_device"
	KindLeadtimeModel Kind = "leadtime_model"
	KindRoute         Kind = "route"
	KindBalance       Kind = "inventory_balance"
	KindMove          Kind = "inventory_move"
	KindOrder         Kind = "order"
	KindOrderLine     Kind = "order_line"
	KindPurchaseOrder Kind = "purchase_order"
	KindPOLine        Kind = "po_line"
	KindShipment      Kind = "shipment"
	KindObservation   Kind = "observation"
)

// Record is implemented by every persisted entity.
type Record interface {
	Kind() Kind
	RecordID() ID
	// Clone returns a shallow copy. Pointer fields are never mutated in place,
	// so a shallow copy is a safe snapshot.
	Clone() Record
	setID(ID)
}

// === Enumerations ===

type LocationType string

const (
	LocationDock  LocationType = "dock"
	LocationZone  LocationType = "zone"
	LocationAisle LocationType = "aisle"
)

type DeviceType string

const (
	DeviceCamera       DeviceType = "camera"
	DeviceRFIDReader   DeviceType = "rfid_reader"
	DeviceWeightSensor DeviceType = "weight_sensor"
	DeviceScanner      DeviceType = "scanner"
)

// IsValidDeviceType reports whether name is a known sensor device type.
func IsValidDeviceType(name string) bool {
	switch DeviceType(name) {
	case DeviceCamera, DeviceRFIDReader, DeviceWeightSensor, DeviceScanner:
		return true
	}
	return false
}

type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "active"
	DeviceOffline     DeviceStatus = "offline"
	DeviceMaintenance DeviceStatus = "maintenance"
)

type TransportMode string

const (
	ModeTruck TransportMode = "truck"
	ModeAir   TransportMode = "air"
	ModeOcean TransportMode = "ocean"
)

// IsValidTransportMode reports whether name is a known transport mode.
func IsValidTransportMode(name string) bool {
	switch TransportMode(name) {
	case ModeTruck, ModeAir, ModeOcean:
		return true
	}
	return false
}

type DistFamily string

const (
	DistNormal    DistFamily = "normal"
	DistLogNormal DistFamily = "lognormal"
)

type OrderStatus string

const (
	OrderNew       OrderStatus = "new"
	OrderAllocated OrderStatus = "allocated"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

// IsOpen reports whether the order still carries demand that may be filled.
func (s OrderStatus) IsOpen() bool {
	return s == OrderNew || s == OrderAllocated
}

type POStatus string

const (
	POSubmitted POStatus = "submitted"
	POReceived  POStatus = "received"
	POClosed    POStatus = "closed"
)

type ShipmentDirection string

const (
	DirectionInbound  ShipmentDirection = "inbound"
	DirectionOutbound ShipmentDirection = "outbound"
	DirectionTransfer ShipmentDirection = "transfer"
)

type ShipmentStatus string

const (
	ShipmentPlanned   ShipmentStatus = "planned"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentException ShipmentStatus = "exception"
)

// IsTerminal reports whether no further status change is allowed.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentDelivered || s == ShipmentException
}

type MoveType string

const (
	MoveInbound    MoveType = "inbound"
	MoveOutbound   MoveType = "outbound"
	MoveAdjustment MoveType = "adjustment"
)

type ObservationType string

const ObservationScan ObservationType = "scan"

// === Static entities ===

// Warehouse is a physical site. Its name is derived from region and sequence number.
type Warehouse struct {
	ID       ID
	Name     string
	Region   string
	Timezone string
}

// Location is a dock, zone or aisle inside exactly one warehouse.
type Location struct {
	ID            ID
	WarehouseID   ID
	ParentID      ID // zero when the location has no parent
	Code          string
	Type          LocationType
	CapacityUnits int
}

// Product is catalog master data. ShelfLifeDays never changes once assigned.
type Product struct {
	ID            ID
	SKU           string
	Name          string
	Category      string
	UnitCost      decimal.Decimal
	ShelfLifeDays int
}

type Supplier struct {
	ID               ID
	Name             string
	Region           string
	ReliabilityScore float64
}

// SensorDevice is attached to a warehouse. Its noise profile is fixed at creation.
type SensorDevice struct {
	ID          ID
	WarehouseID ID
	Type        DeviceType
	Status      DeviceStatus
	NoiseSigma  float64
	MissingRate float64
}

// LeadtimeModel parameterizes transit time for one transport mode.
// For DistNormal P1/P2 are mean/std days; for DistLogNormal they are mu/sigma of ln(days).
type LeadtimeModel struct {
	ID               ID
	Mode             TransportMode
	Family           DistFamily
	P1               float64
	P2               float64
	PRareDelay       float64
	RareDelayAddDays float64
}

// Route is the supply lane from a supplier to a warehouse.
type Route struct {
	ID              ID
	SupplierID      ID
	WarehouseID     ID
	DistanceKm      int
	Mode            TransportMode
	LeadtimeModelID ID
}

// === Transactional entities ===

// InventoryBalance is the current-state projection for one (location, product).
// Available is derived, never stored.
type InventoryBalance struct {
	ID         ID
	LocationID ID
	ProductID  ID
	OnHand     float64
	Reserved   float64
	UpdatedAt  time.Time
}

// Available returns on-hand stock not yet reserved for an order.
func (b *InventoryBalance) Available() float64 {
	return b.OnHand - b.Reserved
}

// InventoryMove is the immutable audit row written for every balance change.
type InventoryMove struct {
	ID             ID
	ProductID      ID
	FromLocationID ID
	ToLocationID   ID
	Type           MoveType
	Qty            float64
	OccurredAt     time.Time
	ReasonCode     string
	RefID          ID
}

type Order struct {
	ID                      ID
	WarehouseID             ID
	CustomerName            string
	Status                  OrderStatus
	CreatedAt               time.Time
	PromisedAt              time.Time
	SLAPriority             int
	RequestedShipFromRegion string
}

// OrderLine quantities satisfy QtyOrdered >= QtyAllocated >= QtyShipped >= 0.
type OrderLine struct {
	ID                  ID
	OrderID             ID
	ProductID           ID
	QtyOrdered          float64
	QtyAllocated        float64
	QtyShipped          float64
	ServiceLevelPenalty decimal.Decimal // per open unit
}

// OpenQty returns the unallocated demand on the line.
func (l *OrderLine) OpenQty() float64 {
	return l.QtyOrdered - l.QtyAllocated
}

type PurchaseOrder struct {
	ID                     ID
	SupplierID             ID
	DestinationWarehouseID ID
	RouteID                ID
	LeadtimeModelID        ID
	Status                 POStatus
	CreatedAt              time.Time
	ExpectedAt             time.Time
	LeadTimeDays           int
}

type POLine struct {
	ID              ID
	PurchaseOrderID ID
	ProductID       ID
	QtyOrdered      float64
	QtyReceived     float64
}

// Shipment moves goods in one direction. Delivered and exception are terminal.
type Shipment struct {
	ID                     ID
	Direction              ShipmentDirection
	OriginWarehouseID      ID
	DestinationWarehouseID ID
	OrderID                ID
	PurchaseOrderID        ID
	RouteID                ID
	Mode                   TransportMode
	Status                 ShipmentStatus
	PlannedDeparture       time.Time
	PlannedArrival         time.Time
	ActualDeparture        *time.Time
	ActualArrival          *time.Time
}

// Observation is an append-only sensor reading. ObservedQty is nil when IsMissing.
type Observation struct {
	ID                 ID
	ObservedAt         time.Time
	DeviceID           ID
	ProductID          ID
	LocationID         ID
	Type               ObservationType
	ObservedQty        *float64
	Confidence         float64
	IsMissing          bool
	ReportedNoiseSigma float64
}

// === Record implementations ===

func (w *Warehouse) Kind() Kind    { return KindWarehouse }
func (w *Warehouse) RecordID() ID  { return w.ID }
func (w *Warehouse) Clone() Record { c := *w; return &c }
func (w *Warehouse) setID(id ID)   { w.ID = id }

func (l *Location) Kind() Kind    { return KindLocation }
func (l *Location) RecordID() ID  { return l.ID }
func (l *Location) Clone() Record { c := *l; return &c }
func (l *Location) setID(id ID)   { l.ID = id }

func (p *Product) Kind() Kind    { return KindProduct }
func (p *Product) RecordID() ID  { return p.ID }
func (p *Product) Clone() Record { c := *p; return &c }
func (p *Product) setID(id ID)   { p.ID = id }

func (s *Supplier) Kind() Kind    { return KindSupplier }
func (s *Supplier) RecordID() ID  { return s.ID }
func (s *Supplier) Clone() Record { c := *s; return &c }
func (s *Supplier) setID(id ID)   { s.ID = id }

func (d *SensorDevice) Kind() Kind    { return KindSensorDevice }
func (d *SensorDevice) RecordID() ID  { return d.ID }
func (d *SensorDevice) Clone() Record { c := *d; return &c }
func (d *SensorDevice) setID(id ID)   { d.ID = id }

func (m *LeadtimeModel) Kind() Kind    { return KindLeadtimeModel }
func (m *LeadtimeModel) RecordID() ID  { return m.ID }
func (m *LeadtimeModel) Clone() Record { c := *m; return &c }
func (m *LeadtimeModel) setID(id ID)   { m.ID = id }

func (r *Route) Kind() Kind    { return KindRoute }
func (r *Route) RecordID() ID  { return r.ID }
func (r *Route) Clone() Record { c := *r; return &c }
func (r *Route) setID(id ID)   { r.ID = id }

func (b *InventoryBalance) Kind() Kind    { return KindBalance }
func (b *InventoryBalance) RecordID() ID  { return b.ID }
func (b *InventoryBalance) Clone() Record { c := *b; return &c }
func (b *InventoryBalance) setID(id ID)   { b.ID = id }

func (m *InventoryMove) Kind() Kind    { return KindMove }
func (m *InventoryMove) RecordID() ID  { return m.ID }
func (m *InventoryMove) Clone() Record { c := *m; return &c }
func (m *InventoryMove) setID(id ID)   { m.ID = id }

func (o *Order) Kind() Kind    { return KindOrder }
func (o *Order) RecordID() ID  { return o.ID }
func (o *Order) Clone() Record { c := *o; return &c }
func (o *Order) setID(id ID)   { o.ID = id }

func (l *OrderLine) Kind() Kind    { return KindOrderLine }
func (l *OrderLine) RecordID() ID  { return l.ID }
func (l *OrderLine) Clone() Record { c := *l; return &c }
func (l *OrderLine) setID(id ID)   { l.ID = id }

func (p *PurchaseOrder) Kind() Kind    { return KindPurchaseOrder }
func (p *PurchaseOrder) RecordID() ID  { return p.ID }
func (p *PurchaseOrder) Clone() Record { c := *p; return &c }
func (p *PurchaseOrder) setID(id ID)   { p.ID = id }

func (l *POLine) Kind() Kind    { return KindPOLine }
func (l *POLine) RecordID() ID  { return l.ID }
func (l *POLine) Clone() Record { c := *l; return &c }
func (l *POLine) setID(id ID)   { l.ID = id }

func (s *Shipment) Kind() Kind    { return KindShipment }
func (s *Shipment) RecordID() ID  { return s.ID }
func (s *Shipment) Clone() Record { c := *s; return &c }
func (s *Shipment) setID(id ID)   { s.ID = id }

func (o *Observation) Kind() Kind    { return KindObservation }
func (o *Observation) RecordID() ID  { return o.ID }
func (o *Observation) Clone() Record { c := *o; return &c }
func (o *Observation) setID(id ID)   { o.ID = id }

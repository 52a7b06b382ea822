package sim

import "fmt"

type routeKey struct {
	supplier  ID
	warehouse ID
}

// World is a read-only snapshot of the static entities, built once after the
// world build commits. Rows are copies: mutating them does not touch the session.
type World struct {
	Warehouses     []*Warehouse
	Locations      []*Location
	Products       []*Product
	Suppliers      []*Supplier
	Devices        []*SensorDevice
	LeadtimeModels []*LeadtimeModel
	Routes         []*Route

	docks     map[ID]*Location
	locations map[ID]*Location
	suppliers map[ID]*Supplier
	models    map[ID]*LeadtimeModel
	routes    map[routeKey]*Route
	devices   map[ID][]*SensorDevice
}

// NewWorld snapshots the static tables of s.
func NewWorld(s *Session) *World {
	w := &World{
		Warehouses:     cloneRows(Rows[*Warehouse](s)),
		Locations:      cloneRows(Rows[*Location](s)),
		Products:       cloneRows(Rows[*Product](s)),
		Suppliers:      cloneRows(Rows[*Supplier](s)),
		Devices:        cloneRows(Rows[*SensorDevice](s)),
		LeadtimeModels: cloneRows(Rows[*LeadtimeModel](s)),
		Routes:         cloneRows(Rows[*Route](s)),
		docks:          make(map[ID]*Location),
		locations:      make(map[ID]*Location),
		suppliers:      make(map[ID]*Supplier),
		models:         make(map[ID]*LeadtimeModel),
		routes:         make(map[routeKey]*Route),
		devices:        make(map[ID][]*SensorDevice),
	}
	for _, l := range w.Locations {
		w.locations[l.ID] = l
		if l.Type == LocationDock {
			if _, ok := w.docks[l.WarehouseID]; !ok {
				w.docks[l.WarehouseID] = l
			}
		}
	}
	for _, sup := range w.Suppliers {
		w.suppliers[sup.ID] = sup
	}
	for _, m := range w.LeadtimeModels {
		w.models[m.ID] = m
	}
	for _, r := range w.Routes {
		w.routes[routeKey{r.SupplierID, r.WarehouseID}] = r
	}
	for _, d := range w.Devices {
		w.devices[d.WarehouseID] = append(w.devices[d.WarehouseID], d)
	}
	return w
}

func cloneRows[T Record](rows []T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.Clone().(T)
	}
	return out
}

// Dock returns the receiving dock of a warehouse.
func (w *World) Dock(warehouseID ID) (*Location, error) {
	d, ok := w.docks[warehouseID]
	if !ok {
		return nil, fmt.Errorf("warehouse %d: %w", warehouseID, ErrMissingDock)
	}
	return d, nil
}

// Location returns a location by ID.
func (w *World) Location(id ID) (*Location, bool) {
	l, ok := w.locations[id]
	return l, ok
}

// Supplier returns a supplier by ID.
func (w *World) Supplier(id ID) (*Supplier, bool) {
	s, ok := w.suppliers[id]
	return s, ok
}

// LeadtimeModel returns a lead-time model by ID.
func (w *World) LeadtimeModel(id ID) (*LeadtimeModel, bool) {
	m, ok := w.models[id]
	return m, ok
}

// Route returns the lane from supplier to warehouse.
func (w *World) Route(supplierID, warehouseID ID) (*Route, bool) {
	r, ok := w.routes[routeKey{supplierID, warehouseID}]
	return r, ok
}

// DevicesIn returns the sensor devices attached to a warehouse in ID order.
func (w *World) DevicesIn(warehouseID ID) []*SensorDevice {
	return w.devices[warehouseID]
}

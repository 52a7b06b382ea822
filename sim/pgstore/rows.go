package pgstore

import (
	"fmt"
	"strings"

	"github.com/warehouse-twin/warehouse-twin/sim"
)

var tableFor = map[sim.Kind]string{
	sim.KindWarehouse:     "warehouses",
	sim.KindLocation:      "locations",
	sim.KindProduct:       "products",
	sim.KindSupplier:      "suppliers",
	sim.KindSensorDevice:  "sensor_devices",
	sim.KindLeadtimeModel: "leadtime_models",
	sim.KindRoute:         "routes",
	sim.KindBalance:       "inventory_balances",
	sim.KindMove:          "inventory_moves",
	sim.KindOrder:         "orders",
	sim.KindOrderLine:     "order_lines",
	sim.KindPurchaseOrder: "purchase_orders",
	sim.KindPOLine:        "po_lines",
	sim.KindShipment:      "shipments",
	sim.KindObservation:   "observations",
}

// columnsFor lists the non-id columns of each table in argument order.
var columnsFor = map[sim.Kind][]string{
	sim.KindWarehouse:     {"name", "region", "timezone"},
	sim.KindLocation:      {"warehouse_id", "parent_id", "code", "type", "capacity_units"},
	sim.KindProduct:       {"sku", "name", "category", "unit_cost", "shelf_life_days"},
	sim.KindSupplier:      {"name", "region", "reliability_score"},
	sim.KindSensorDevice:  {"warehouse_id", "device_type", "status", "noise_sigma", "missing_rate"},
	sim.KindLeadtimeModel: {"mode", "dist_family", "p1", "p2", "p_rare_delay", "rare_delay_add_days"},
	sim.KindRoute:         {"supplier_id", "warehouse_id", "distance_km", "mode", "leadtime_model_id"},
	sim.KindBalance:       {"location_id", "product_id", "on_hand", "reserved", "updated_at"},
	sim.KindMove:          {"product_id", "from_location_id", "to_location_id", "move_type", "qty", "occurred_at", "reason_code", "ref_id"},
	sim.KindOrder:         {"warehouse_id", "customer_name", "status", "created_at", "promised_at", "sla_priority", "requested_ship_from_region"},
	sim.KindOrderLine:     {"order_id", "product_id", "qty_ordered", "qty_allocated", "qty_shipped", "service_level_penalty"},
	sim.KindPurchaseOrder: {"supplier_id", "destination_warehouse_id", "route_id", "leadtime_model_id", "status", "created_at", "expected_at", "lead_time_days"},
	sim.KindPOLine:        {"purchase_order_id", "product_id", "qty_ordered", "qty_received"},
	sim.KindShipment:      {"direction", "origin_warehouse_id", "destination_warehouse_id", "order_id", "purchase_order_id", "route_id", "mode", "status", "planned_departure", "planned_arrival", "actual_departure", "actual_arrival"},
	sim.KindObservation:   {"observed_at", "device_id", "product_id", "location_id", "obs_type", "observed_qty", "confidence", "is_missing", "reported_noise_sigma"},
}

// upsertSQL caches one INSERT ... ON CONFLICT statement per kind.
var upsertSQL = buildUpserts()

func buildUpserts() map[sim.Kind]string {
	out := make(map[sim.Kind]string, len(columnsFor))
	for kind, cols := range columnsFor {
		placeholders := make([]string, len(cols)+1)
		sets := make([]string, len(cols))
		placeholders[0] = "$1"
		for i, c := range cols {
			placeholders[i+1] = fmt.Sprintf("$%d", i+2)
			sets[i] = c + " = EXCLUDED." + c
		}
		out[kind] = fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
			tableFor[kind], strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))
	}
	return out
}

// nullID maps the zero ID to SQL NULL.
func nullID(id sim.ID) *int64 {
	if id == 0 {
		return nil
	}
	v := int64(id)
	return &v
}

// upsert returns the statement and arguments that write r.
func upsert(r sim.Record) (string, []any, error) {
	sql, ok := upsertSQL[r.Kind()]
	if !ok {
		return "", nil, fmt.Errorf("no table for kind %q", r.Kind())
	}
	var args []any
	switch v := r.(type) {
	case *sim.Warehouse:
		args = []any{v.Name, v.Region, v.Timezone}
	case *sim.Location:
		args = []any{int64(v.WarehouseID), nullID(v.ParentID), v.Code, string(v.Type), v.CapacityUnits}
	case *sim.Product:
		args = []any{v.SKU, v.Name, v.Category, v.UnitCost, v.ShelfLifeDays}
	case *sim.Supplier:
		args = []any{v.Name, v.Region, v.ReliabilityScore}
	case *sim.SensorDevice:
		args = []any{int64(v.WarehouseID), string(v.Type), string(v.Status), v.NoiseSigma, v.MissingRate}
	case *sim.LeadtimeModel:
		args = []any{string(v.Mode), string(v.Family), v.P1, v.P2, v.PRareDelay, v.RareDelayAddDays}
	case *sim.Route:
		args = []any{int64(v.SupplierID), int64(v.WarehouseID), v.DistanceKm, string(v.Mode), int64(v.LeadtimeModelID)}
	case *sim.InventoryBalance:
		args = []any{int64(v.LocationID), int64(v.ProductID), v.OnHand, v.Reserved, v.UpdatedAt}
	case *sim.InventoryMove:
		args = []any{int64(v.ProductID), nullID(v.FromLocationID), nullID(v.ToLocationID), string(v.Type), v.Qty, v.OccurredAt, v.ReasonCode, nullID(v.RefID)}
	case *sim.Order:
		args = []any{int64(v.WarehouseID), v.CustomerName, string(v.Status), v.CreatedAt, v.PromisedAt, v.SLAPriority, v.RequestedShipFromRegion}
	case *sim.OrderLine:
		args = []any{int64(v.OrderID), int64(v.ProductID), v.QtyOrdered, v.QtyAllocated, v.QtyShipped, v.ServiceLevelPenalty}
	case *sim.PurchaseOrder:
		args = []any{int64(v.SupplierID), int64(v.DestinationWarehouseID), int64(v.RouteID), int64(v.LeadtimeModelID), string(v.Status), v.CreatedAt, v.ExpectedAt, v.LeadTimeDays}
	case *sim.POLine:
		args = []any{int64(v.PurchaseOrderID), int64(v.ProductID), v.QtyOrdered, v.QtyReceived}
	case *sim.Shipment:
		args = []any{string(v.Direction), nullID(v.OriginWarehouseID), nullID(v.DestinationWarehouseID), nullID(v.OrderID), nullID(v.PurchaseOrderID), nullID(v.RouteID),
			string(v.Mode), string(v.Status), v.PlannedDeparture, v.PlannedArrival, v.ActualDeparture, v.ActualArrival}
	case *sim.Observation:
		args = []any{v.ObservedAt, int64(v.DeviceID), int64(v.ProductID), int64(v.LocationID), string(v.Type), v.ObservedQty, v.Confidence, v.IsMissing, v.ReportedNoiseSigma}
	default:
		return "", nil, fmt.Errorf("unsupported record %T", r)
	}
	return sql, append([]any{int64(r.RecordID())}, args...), nil
}

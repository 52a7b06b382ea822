package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorld_IndexesStaticTables(t *testing.T) {
	s := NewSession(newRecordingBackend())
	wh := &Warehouse{Name: "WH-1"}
	s.Add(wh)
	dock := &Location{WarehouseID: wh.ID, Code: "DOCK-01", Type: LocationDock}
	s.Add(dock)
	s.Add(&Location{WarehouseID: wh.ID, Code: "ZONE-A", Type: LocationZone})
	sup := &Supplier{Name: "S"}
	s.Add(sup)
	m := &LeadtimeModel{Mode: ModeAir, Family: DistNormal}
	s.Add(m)
	r := &Route{SupplierID: sup.ID, WarehouseID: wh.ID, LeadtimeModelID: m.ID}
	s.Add(r)
	s.Add(&SensorDevice{WarehouseID: wh.ID, Type: DeviceCamera})

	w := NewWorld(s)

	got, err := w.Dock(wh.ID)
	require.NoError(t, err)
	assert.Equal(t, "DOCK-01", got.Code)
	route, ok := w.Route(sup.ID, wh.ID)
	require.True(t, ok)
	assert.Equal(t, m.ID, route.LeadtimeModelID)
	_, ok = w.Route(wh.ID, sup.ID)
	assert.False(t, ok)
	assert.Len(t, w.DevicesIn(wh.ID), 1)
	assert.Len(t, w.Locations, 2)
}

func TestWorld_Dock_Missing_ErrMissingDock(t *testing.T) {
	s := NewSession(newRecordingBackend())
	wh := &Warehouse{}
	s.Add(wh)
	s.Add(&Location{WarehouseID: wh.ID, Type: LocationZone})

	_, err := NewWorld(s).Dock(wh.ID)
	assert.ErrorIs(t, err, ErrMissingDock)
}

func TestNewWorld_SnapshotIsDetachedFromSession(t *testing.T) {
	s := NewSession(newRecordingBackend())
	p := &Product{SKU: "GRO-00000001"}
	s.Add(p)
	w := NewWorld(s)

	p.SKU = "changed"
	assert.Equal(t, "GRO-00000001", w.Products[0].SKU)
}

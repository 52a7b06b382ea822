package world_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-twin/warehouse-twin/sim"
	"github.com/warehouse-twin/warehouse-twin/sim/world"
)

// recordingLayout implements DockBuilder and ZoneBuilder and logs each call
// together with whether the warehouse had been flushed.
type recordingLayout struct {
	session *sim.Session
	calls   []string
	failOn  string
}

func (r *recordingLayout) BuildDocks(wh *sim.Warehouse) error {
	r.calls = append(r.calls, fmt.Sprintf("docks:%s:flushed=%v", wh.Name, r.session.Pending() == 0))
	return nil
}

func (r *recordingLayout) BuildZones(wh *sim.Warehouse) error {
	r.calls = append(r.calls, "zones:"+wh.Name)
	if wh.Name == r.failOn {
		return errors.New("layout failure")
	}
	return nil
}

func twoRegions() sim.OrderedMap[string] {
	regions := sim.NewOrderedMap[string]()
	regions.Set("EU-WEST", "UTC+1")
	regions.Set("US-EAST", "UTC-5")
	return regions
}

func TestCreateWarehouses_CyclesRegionsInOrder(t *testing.T) {
	s := newSession()
	layout := &recordingLayout{session: s}

	warehouses, err := world.NewInfrastructureBuilder(s, twoRegions(), layout, layout).
		CreateWarehouses(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, warehouses, 3)
	tests := []struct {
		name, region, tz string
	}{
		{"WH-EU-WEST-01", "EU-WEST", "UTC+1"},
		{"WH-US-EAST-02", "US-EAST", "UTC-5"},
		{"WH-EU-WEST-03", "EU-WEST", "UTC+1"},
	}
	for i, want := range tests {
		assert.Equal(t, want.name, warehouses[i].Name)
		assert.Equal(t, want.region, warehouses[i].Region)
		assert.Equal(t, want.tz, warehouses[i].Timezone)
		assert.NotZero(t, warehouses[i].ID)
	}
	assert.Equal(t, []string{
		"docks:WH-EU-WEST-01:flushed=true", "zones:WH-EU-WEST-01",
		"docks:WH-US-EAST-02:flushed=true", "zones:WH-US-EAST-02",
		"docks:WH-EU-WEST-03:flushed=true", "zones:WH-EU-WEST-03",
	}, layout.calls)
}

func TestCreateWarehouses_LayoutError_Stops(t *testing.T) {
	s := newSession()
	layout := &recordingLayout{session: s, failOn: "WH-US-EAST-02"}

	warehouses, err := world.NewInfrastructureBuilder(s, twoRegions(), layout, layout).
		CreateWarehouses(context.Background(), 3)

	require.Error(t, err)
	assert.Len(t, warehouses, 1)
	assert.Len(t, layout.calls, 4)
}

func TestCreateWarehouses_NoRegions_InvalidConfig(t *testing.T) {
	s := newSession()
	layout := &recordingLayout{session: s}
	_, err := world.NewInfrastructureBuilder(s, sim.NewOrderedMap[string](), layout, layout).
		CreateWarehouses(context.Background(), 1)
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestDefaultLayout_DockZonesAislesAndSensors(t *testing.T) {
	cfg := sim.DefaultConfig().Infrastructure
	cfg.ZonesPerWarehouse = sim.IntRange{Min: 2, Max: 2}
	cfg.AislesPerZone = sim.IntRange{Min: 3, Max: 3}
	cfg.SensorAttachProbability = 1
	s := newSession()
	rng := sim.NewRNG(5)
	wh := &sim.Warehouse{Name: "WH-X-01"}
	s.Add(wh)

	require.NoError(t, world.NewDockBuilder(s, rng, cfg).BuildDocks(wh))
	require.NoError(t, world.NewZoneBuilder(s, rng, cfg).BuildZones(wh))

	locs := sim.Rows[*sim.Location](s)
	require.Len(t, locs, 1+2+6)
	assert.Equal(t, "DOCK-01", locs[0].Code)
	assert.Equal(t, sim.LocationDock, locs[0].Type)
	assert.Equal(t, "ZONE-A", locs[1].Code)
	assert.Equal(t, "ZONE-A-AISLE-01", locs[2].Code)
	assert.Equal(t, locs[1].ID, locs[2].ParentID)
	for _, l := range locs {
		switch l.Type {
		case sim.LocationDock:
			assert.True(t, cfg.DockCapacity.Contains(l.CapacityUnits))
		case sim.LocationZone:
			assert.True(t, cfg.ZoneCapacity.Contains(l.CapacityUnits))
		case sim.LocationAisle:
			assert.True(t, cfg.AisleCapacity.Contains(l.CapacityUnits))
		}
	}

	devices := sim.Rows[*sim.SensorDevice](s)
	assert.Len(t, devices, 6, "one device per aisle at probability 1")
	for _, d := range devices {
		assert.True(t, sim.IsValidDeviceType(string(d.Type)))
		assert.Equal(t, sim.DeviceActive, d.Status)
		profile, err := cfg.SensorProfiles.Lookup(string(d.Type))
		require.NoError(t, err)
		assert.True(t, profile.NoiseSigma.Contains(d.NoiseSigma))
		assert.True(t, profile.MissingRate.Contains(d.MissingRate))
	}
}

func TestDefaultLayout_ZeroAttachProbability_NoDevices(t *testing.T) {
	cfg := sim.DefaultConfig().Infrastructure
	cfg.SensorAttachProbability = 0
	s := newSession()
	wh := &sim.Warehouse{}
	s.Add(wh)

	require.NoError(t, world.NewZoneBuilder(s, sim.NewRNG(5), cfg).BuildZones(wh))
	assert.Zero(t, s.Count(sim.KindSensorDevice))
}

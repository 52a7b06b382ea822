package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_EmptyPath_ReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ShippedDefaultFile_MatchesBuiltIn(t *testing.T) {
	path := filepath.Join("..", "configs", "default.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("configs/default.yaml not found")
	}
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_PartialFile_LayersOverDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
simulation:
  random_seed: 7
world:
  product_count: 12
`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Simulation.RandomSeed)
	assert.Equal(t, 12, cfg.World.ProductCount)
	assert.Equal(t, 10, cfg.Simulation.CommitInterval, "unset keys keep their defaults")
	assert.Equal(t, 3, cfg.World.WarehouseCount)
}

func TestParseConfig_UnknownKey_Rejected(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"top level", "simulaton:\n  random_seed: 1\n"},
		{"nested", "outbound:\n  poison_mean: 2\n"},
		{"inside ordered mapping value", "catalog:\n  category_shelf_life:\n    dairy: {min_days: 1, max_dayz: 5}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestParseConfig_OrderedMapping_PreservesDeclarationOrder(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
infrastructure:
  regions:
    EU-WEST: UTC+1
    US-EAST: UTC-5
    APAC-SG: Asia/Singapore
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"EU-WEST", "US-EAST", "APAC-SG"}, cfg.Infrastructure.Regions.Keys())
	tz, err := cfg.Infrastructure.Regions.Lookup("US-EAST")
	require.NoError(t, err)
	assert.Equal(t, "UTC-5", tz)
}

func TestParseConfig_DuplicateMappingKey_Rejected(t *testing.T) {
	_, err := ParseConfig([]byte(`
catalog:
  category_shelf_life:
    dairy: {min_days: 1, max_days: 5}
    dairy: {min_days: 2, max_days: 6}
`))
	assert.Error(t, err)
}

func TestOrderedMap_UnknownKey_ErrUnknownKey(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, m.Keys(), "overwrite keeps original position")
	v, err := m.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = m.Lookup("zzz")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestConfig_Validate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"probability above one", func(c *Config) { c.Outbound.ActiveCatalogFraction = 1.5 }},
		{"negative scan probability", func(c *Config) { c.Sensors.ScanProbabilities.Dock = -0.1 }},
		{"reliability min above max", func(c *Config) { c.Catalog.SupplierReliability = FloatRange{Min: 0.9, Max: 0.8} }},
		{"reliability above one", func(c *Config) { c.Catalog.SupplierReliability = FloatRange{Min: 0.9, Max: 1.2} }},
		{"shelf life min above max", func(c *Config) {
			c.Catalog.CategoryShelfLife.Set("dairy", ShelfLifeRange{MinDays: 20, MaxDays: 10})
		}},
		{"zero commit interval", func(c *Config) { c.Simulation.CommitInterval = 0 }},
		{"negative days", func(c *Config) { c.Simulation.DefaultDays = -1 }},
		{"bad start date", func(c *Config) { c.Simulation.StartDate = "01/02/2024" }},
		{"target not above reorder point", func(c *Config) { c.Replenishment.TargetLevel = c.Replenishment.ReorderPoint }},
		{"truck threshold above air", func(c *Config) { c.Logistics.TruckMaxKm = 7000 }},
		{"unknown device type", func(c *Config) {
			c.Infrastructure.SensorProfiles.Set("lidar", SensorProfile{Weight: 1})
		}},
		{"unknown transport mode", func(c *Config) {
			c.Logistics.Models.Set("rail", LeadtimeModelConfig{Family: "normal"})
		}},
		{"unknown distribution family", func(c *Config) {
			c.Logistics.Models.Set("air", LeadtimeModelConfig{Family: "weibull"})
		}},
		{"unknown timezone", func(c *Config) { c.Infrastructure.Regions.Set("MARS-1", "Mars/Olympus") }},
		{"no regions", func(c *Config) { c.Infrastructure.Regions = NewOrderedMap[string]() }},
		{"min sigma units zero", func(c *Config) { c.Sensors.NoiseModel.MinSigmaUnits = 0 }},
		{"NaN poisson mean", func(c *Config) { c.Outbound.PoissonMean = math.NaN() }},
		{"infinite poisson mean", func(c *Config) { c.Outbound.PoissonMean = math.Inf(1) }},
		{"NaN missed sale penalty", func(c *Config) { c.Outbound.MissedSalePenaltyPerUnit = math.NaN() }},
		{"NaN reorder point", func(c *Config) { c.Replenishment.ReorderPoint = math.NaN() }},
		{"infinite target level", func(c *Config) { c.Replenishment.TargetLevel = math.Inf(1) }},
		{"NaN lead time mean", func(c *Config) { c.Replenishment.LeadTime.MeanDays = math.NaN() }},
		{"NaN lead time std", func(c *Config) { c.Replenishment.LeadTime.StdDays = math.NaN() }},
		{"NaN transit p1", func(c *Config) {
			m, _ := c.Logistics.Models.Lookup("truck")
			m.P1 = math.NaN()
			c.Logistics.Models.Set("truck", m)
		}},
		{"NaN lognormal p1", func(c *Config) {
			c.Logistics.Models.Set("ocean", LeadtimeModelConfig{Family: "lognormal", P1: math.NaN(), P2: 0.2})
		}},
		{"infinite rare delay", func(c *Config) {
			m, _ := c.Logistics.Models.Lookup("air")
			m.RareDelayAddDays = math.Inf(1)
			c.Logistics.Models.Set("air", m)
		}},
		{"NaN noise mean", func(c *Config) { c.Sensors.NoiseModel.NoiseMean = math.NaN() }},
		{"NaN noise multiplier", func(c *Config) { c.Sensors.NoiseModel.NoiseMultiplier = math.NaN() }},
		{"NaN min sigma units", func(c *Config) { c.Sensors.NoiseModel.MinSigmaUnits = math.NaN() }},
		{"NaN device weight", func(c *Config) {
			p, _ := c.Infrastructure.SensorProfiles.Lookup("camera")
			p.Weight = math.NaN()
			c.Infrastructure.SensorProfiles.Set("camera", p)
		}},
		{"infinite unit cost", func(c *Config) { c.Catalog.UnitCost = FloatRange{Min: 1, Max: math.Inf(1)} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseConfig_NaNValues_FailValidation(t *testing.T) {
	tests := []string{
		"outbound:\n  poisson_mean: .nan\n",
		"replenishment:\n  reorder_point: .nan\n",
		"replenishment:\n  lead_time:\n    mean_days: .nan\n",
		"outbound:\n  poisson_mean: .inf\n",
	}
	for _, doc := range tests {
		t.Run(doc, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(doc))
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseTimezone_AcceptsOffsetsAndIANANames(t *testing.T) {
	tests := []struct {
		tz      string
		offset  int
		wantErr bool
	}{
		{"UTC+1", 3600, false},
		{"UTC-5", -5 * 3600, false},
		{"UTC+05:30", 5*3600 + 30*60, false},
		{"UTC", 0, false},
		{"UTC+15", 0, true},
		{"Not/AZone", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, off := time.Date(2024, 1, 15, 12, 0, 0, 0, loc).Zone()
			assert.Equal(t, tt.offset, off)
		})
	}
}

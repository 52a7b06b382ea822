package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar format used for start dates and log lines.
const DateLayout = "2006-01-02"

// IntRange is an inclusive integer bound.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is an inclusive float bound.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies within the bound.
func (r IntRange) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Contains reports whether v lies within the bound.
func (r FloatRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// ShelfLifeRange bounds the shelf life of one category.
type ShelfLifeRange struct {
	MinDays int `yaml:"min_days"`
	MaxDays int `yaml:"max_days"`
}

// Config is the full simulation configuration. Groups mirror the components
// that consume them.
type Config struct {
	Simulation     SimulationConfig     `yaml:"simulation"`
	World          WorldSizing          `yaml:"world"`
	Catalog        CatalogConfig        `yaml:"catalog"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Logistics      LogisticsConfig      `yaml:"logistics"`
	Outbound       OutboundConfig       `yaml:"outbound"`
	Replenishment  ReplenishmentConfig  `yaml:"replenishment"`
	Sensors        SensorsConfig        `yaml:"sensors"`
}

// SimulationConfig groups run sizing and cadence.
type SimulationConfig struct {
	RandomSeed     int64  `yaml:"random_seed"`
	StartDate      string `yaml:"start_date"`
	DefaultDays    int    `yaml:"default_days"`
	CommitInterval int    `yaml:"commit_interval"`
	MaxRetries     int    `yaml:"max_retries"` // replays of a day after a persistence failure
}

// WorldSizing groups entity counts for the static world.
type WorldSizing struct {
	WarehouseCount int `yaml:"warehouse_count"`
	ProductCount   int `yaml:"product_count"`
	SupplierCount  int `yaml:"supplier_count"`
}

type CatalogConfig struct {
	CategoryShelfLife   OrderedMap[ShelfLifeRange] `yaml:"category_shelf_life"`
	UnitCost            FloatRange                 `yaml:"unit_cost"`
	SupplierRegions     []string                   `yaml:"supplier_regions"`
	SupplierReliability FloatRange                 `yaml:"supplier_reliability"`
}

// SensorProfile describes the noise characteristics of one device type.
type SensorProfile struct {
	Weight      float64    `yaml:"weight"` // relative selection weight when attaching devices
	NoiseSigma  FloatRange `yaml:"noise_sigma"`
	MissingRate FloatRange `yaml:"missing_rate"`
}

type InfrastructureConfig struct {
	Regions                 OrderedMap[string]        `yaml:"regions"` // region -> timezone
	DockCapacity            IntRange                  `yaml:"dock_capacity"`
	ZonesPerWarehouse       IntRange                  `yaml:"zones_per_warehouse"`
	ZoneCapacity            IntRange                  `yaml:"zone_capacity"`
	AislesPerZone           IntRange                  `yaml:"aisles_per_zone"`
	AisleCapacity           IntRange                  `yaml:"aisle_capacity"`
	SensorAttachProbability float64                   `yaml:"sensor_attach_probability"`
	SensorProfiles          OrderedMap[SensorProfile] `yaml:"sensor_profiles"` // device type -> profile
	OpeningStock            IntRange                  `yaml:"opening_stock"`   // dock units per product; 0..0 disables
}

// LeadtimeModelConfig parameterizes one transport mode's transit time.
type LeadtimeModelConfig struct {
	Family           string  `yaml:"family"`
	P1               float64 `yaml:"p1"`
	P2               float64 `yaml:"p2"`
	PRareDelay       float64 `yaml:"p_rare_delay"`
	RareDelayAddDays float64 `yaml:"rare_delay_add_days"`
}

type LogisticsConfig struct {
	Models     OrderedMap[LeadtimeModelConfig] `yaml:"models"` // transport mode -> model
	DistanceKm IntRange                        `yaml:"distance_km"`
	TruckMaxKm int                             `yaml:"truck_max_km"`
	AirMaxKm   int                             `yaml:"air_max_km"`
}

type OutboundConfig struct {
	ActiveCatalogFraction    float64  `yaml:"active_catalog_fraction"`
	PoissonMean              float64  `yaml:"poisson_mean"`
	OrderQty                 IntRange `yaml:"order_qty"`
	MissedSalePenaltyPerUnit float64  `yaml:"missed_sale_penalty_per_unit"`
	PromiseDays              int      `yaml:"promise_days"`
	BackorderMaxDays         int      `yaml:"backorder_max_days"`
	SLAPriority              IntRange `yaml:"sla_priority"`
	CustomerPool             int      `yaml:"customer_pool"`
}

// LeadTimePolicy is the supplier processing time added before transit.
type LeadTimePolicy struct {
	MeanDays float64 `yaml:"mean_days"`
	StdDays  float64 `yaml:"std_days"`
	MinDays  int     `yaml:"min_days"`
}

type ReplenishmentConfig struct {
	ReviewCatalogFraction float64        `yaml:"review_catalog_fraction"`
	ReorderPoint          float64        `yaml:"reorder_point"`
	TargetLevel           float64        `yaml:"target_level"`
	LeadTime              LeadTimePolicy `yaml:"lead_time"`
}

type ScanProbabilities struct {
	Dock    float64 `yaml:"dock"`
	Default float64 `yaml:"default"`
}

type NoiseModel struct {
	MinSigmaUnits   float64 `yaml:"min_sigma_units"`
	NoiseMean       float64 `yaml:"noise_mean"`
	MinObservedQty  float64 `yaml:"min_observed_qty"`
	MinConfidence   float64 `yaml:"min_confidence"`
	BaseConfidence  float64 `yaml:"base_confidence"`
	NoiseMultiplier float64 `yaml:"noise_multiplier"`
}

type SensorsConfig struct {
	ScanProbabilities ScanProbabilities `yaml:"scan_probabilities"`
	NoiseModel        NoiseModel        `yaml:"noise_model"`
}

// DefaultConfig returns the built-in configuration. A loaded file is layered over it.
func DefaultConfig() *Config {
	categories := NewOrderedMap[ShelfLifeRange]()
	categories.Set("grocery", ShelfLifeRange{MinDays: 7, MaxDays: 60})
	categories.Set("beverages", ShelfLifeRange{MinDays: 90, MaxDays: 365})
	categories.Set("pharma", ShelfLifeRange{MinDays: 180, MaxDays: 730})
	categories.Set("household", ShelfLifeRange{MinDays: 365, MaxDays: 1095})
	categories.Set("electronics", ShelfLifeRange{MinDays: 730, MaxDays: 1825})

	regions := NewOrderedMap[string]()
	regions.Set("NA-EAST", "America/New_York")
	regions.Set("EU-WEST", "Europe/London")
	regions.Set("APAC-SG", "Asia/Singapore")

	profiles := NewOrderedMap[SensorProfile]()
	profiles.Set(string(DeviceCamera), SensorProfile{Weight: 0.5, NoiseSigma: FloatRange{0.05, 0.15}, MissingRate: FloatRange{0.02, 0.10}})
	profiles.Set(string(DeviceRFIDReader), SensorProfile{Weight: 0.3, NoiseSigma: FloatRange{0.01, 0.05}, MissingRate: FloatRange{0.01, 0.05}})
	profiles.Set(string(DeviceWeightSensor), SensorProfile{Weight: 0.15, NoiseSigma: FloatRange{0.02, 0.08}, MissingRate: FloatRange{0.01, 0.03}})
	profiles.Set(string(DeviceScanner), SensorProfile{Weight: 0.05, NoiseSigma: FloatRange{0.005, 0.02}, MissingRate: FloatRange{0, 0.02}})

	models := NewOrderedMap[LeadtimeModelConfig]()
	models.Set(string(ModeTruck), LeadtimeModelConfig{Family: string(DistNormal), P1: 2, P2: 0.5, PRareDelay: 0.02, RareDelayAddDays: 3})
	models.Set(string(ModeAir), LeadtimeModelConfig{Family: string(DistNormal), P1: 1, P2: 0.3, PRareDelay: 0.01, RareDelayAddDays: 2})
	models.Set(string(ModeOcean), LeadtimeModelConfig{Family: string(DistLogNormal), P1: 3.2, P2: 0.2, PRareDelay: 0.05, RareDelayAddDays: 10})

	return &Config{
		Simulation: SimulationConfig{
			RandomSeed:     42,
			StartDate:      "2024-01-01",
			DefaultDays:    365,
			CommitInterval: 10,
			MaxRetries:     2,
		},
		World: WorldSizing{WarehouseCount: 3, ProductCount: 50, SupplierCount: 5},
		Catalog: CatalogConfig{
			CategoryShelfLife:   categories,
			UnitCost:            FloatRange{Min: 5, Max: 500},
			SupplierRegions:     []string{"NA-EAST", "EU-WEST", "APAC-SG", "NA-WEST", "EU-CENTRAL"},
			SupplierReliability: FloatRange{Min: 0.7, Max: 0.99},
		},
		Infrastructure: InfrastructureConfig{
			Regions:                 regions,
			DockCapacity:            IntRange{Min: 5000, Max: 20000},
			ZonesPerWarehouse:       IntRange{Min: 2, Max: 5},
			ZoneCapacity:            IntRange{Min: 10000, Max: 50000},
			AislesPerZone:           IntRange{Min: 2, Max: 6},
			AisleCapacity:           IntRange{Min: 500, Max: 2000},
			SensorAttachProbability: 0.2,
			SensorProfiles:          profiles,
			OpeningStock:            IntRange{Min: 50, Max: 200},
		},
		Logistics: LogisticsConfig{
			Models:     models,
			DistanceKm: IntRange{Min: 50, Max: 12000},
			TruckMaxKm: 1500,
			AirMaxKm:   6000,
		},
		Outbound: OutboundConfig{
			ActiveCatalogFraction:    0.2,
			PoissonMean:              2.0,
			OrderQty:                 IntRange{Min: 1, Max: 10},
			MissedSalePenaltyPerUnit: 10.0,
			PromiseDays:              3,
			BackorderMaxDays:         7,
			SLAPriority:              IntRange{Min: 1, Max: 3},
			CustomerPool:             500,
		},
		Replenishment: ReplenishmentConfig{
			ReviewCatalogFraction: 0.10,
			ReorderPoint:          20,
			TargetLevel:           100,
			LeadTime:              LeadTimePolicy{MeanDays: 3, StdDays: 1, MinDays: 1},
		},
		Sensors: SensorsConfig{
			ScanProbabilities: ScanProbabilities{Dock: 0.90, Default: 0.05},
			NoiseModel: NoiseModel{
				MinSigmaUnits:   1.0,
				NoiseMean:       0.0,
				MinObservedQty:  0.0,
				MinConfidence:   0.1,
				BaseConfidence:  1.0,
				NoiseMultiplier: 10.0,
			},
		},
	}
}

// LoadConfig reads a YAML configuration file and layers it over DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML bytes over DefaultConfig. It does not validate.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing config: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// StartTime parses Simulation.StartDate as a UTC midnight.
func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.Simulation.StartDate)
	if err != nil {
		return time.Time{}, invalidf("start_date %q must be YYYY-MM-DD", c.Simulation.StartDate)
	}
	return t, nil
}

// Validate checks every bound and returns the first violation, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	checks := []func() error{
		c.validateSimulation,
		c.validateCatalog,
		c.validateInfrastructure,
		c.validateLogistics,
		c.validateOutbound,
		c.validateReplenishment,
		c.validateSensors,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSimulation() error {
	s := c.Simulation
	if _, err := c.StartTime(); err != nil {
		return err
	}
	if s.DefaultDays < 0 {
		return invalidf("simulation.default_days must be non-negative, got %d", s.DefaultDays)
	}
	if s.CommitInterval <= 0 {
		return invalidf("simulation.commit_interval must be positive, got %d", s.CommitInterval)
	}
	if s.MaxRetries < 0 {
		return invalidf("simulation.max_retries must be non-negative, got %d", s.MaxRetries)
	}
	w := c.World
	if w.WarehouseCount < 0 || w.ProductCount < 0 || w.SupplierCount < 0 {
		return invalidf("world counts must be non-negative, got warehouses=%d products=%d suppliers=%d",
			w.WarehouseCount, w.ProductCount, w.SupplierCount)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	cat := c.Catalog
	if c.World.ProductCount > 0 && cat.CategoryShelfLife.Len() == 0 {
		return invalidf("catalog.category_shelf_life must declare at least one category")
	}
	for _, name := range cat.CategoryShelfLife.Keys() {
		r, _ := cat.CategoryShelfLife.Lookup(name)
		if r.MinDays < 1 {
			return invalidf("catalog.category_shelf_life[%s].min_days must be >= 1, got %d", name, r.MinDays)
		}
		if r.MinDays > r.MaxDays {
			return invalidf("catalog.category_shelf_life[%s]: min_days %d exceeds max_days %d", name, r.MinDays, r.MaxDays)
		}
	}
	if err := validateFloatRange("catalog.unit_cost", cat.UnitCost, 0, math.Inf(1)); err != nil {
		return err
	}
	if c.World.SupplierCount > 0 && len(cat.SupplierRegions) == 0 {
		return invalidf("catalog.supplier_regions must not be empty")
	}
	return validateFloatRange("catalog.supplier_reliability", cat.SupplierReliability, 0, 1)
}

func (c *Config) validateInfrastructure() error {
	inf := c.Infrastructure
	if c.World.WarehouseCount > 0 && inf.Regions.Len() == 0 {
		return invalidf("infrastructure.regions must declare at least one region")
	}
	for _, region := range inf.Regions.Keys() {
		tz, _ := inf.Regions.Lookup(region)
		if _, err := ParseTimezone(tz); err != nil {
			return invalidf("infrastructure.regions[%s]: unknown timezone %q", region, tz)
		}
	}
	ranges := []struct {
		name string
		r    IntRange
		min  int
	}{
		{"infrastructure.dock_capacity", inf.DockCapacity, 1},
		{"infrastructure.zones_per_warehouse", inf.ZonesPerWarehouse, 1},
		{"infrastructure.zone_capacity", inf.ZoneCapacity, 1},
		{"infrastructure.aisles_per_zone", inf.AislesPerZone, 0},
		{"infrastructure.aisle_capacity", inf.AisleCapacity, 1},
		{"infrastructure.opening_stock", inf.OpeningStock, 0},
	}
	for _, rc := range ranges {
		if err := validateIntRange(rc.name, rc.r, rc.min); err != nil {
			return err
		}
	}
	if inf.ZonesPerWarehouse.Max > 26 {
		return invalidf("infrastructure.zones_per_warehouse.max must be <= 26, got %d", inf.ZonesPerWarehouse.Max)
	}
	if err := validateProbability("infrastructure.sensor_attach_probability", inf.SensorAttachProbability); err != nil {
		return err
	}
	if inf.SensorAttachProbability > 0 && inf.SensorProfiles.Len() == 0 {
		return invalidf("infrastructure.sensor_profiles must declare at least one device type")
	}
	totalWeight := 0.0
	for _, name := range inf.SensorProfiles.Keys() {
		if !IsValidDeviceType(name) {
			return invalidf("infrastructure.sensor_profiles: unknown device type %q; valid: camera, rfid_reader, weight_sensor, scanner", name)
		}
		p, _ := inf.SensorProfiles.Lookup(name)
		prefix := "infrastructure.sensor_profiles[" + name + "]"
		if err := validateNonNegative(prefix+".weight", p.Weight); err != nil {
			return err
		}
		totalWeight += p.Weight
		if err := validateFloatRange(prefix+".noise_sigma", p.NoiseSigma, 0, math.Inf(1)); err != nil {
			return err
		}
		if err := validateFloatRange(prefix+".missing_rate", p.MissingRate, 0, 1); err != nil {
			return err
		}
	}
	if inf.SensorProfiles.Len() > 0 && totalWeight <= 0 {
		return invalidf("infrastructure.sensor_profiles: at least one weight must be positive")
	}
	return nil
}

func (c *Config) validateLogistics() error {
	l := c.Logistics
	for _, mode := range []TransportMode{ModeTruck, ModeAir, ModeOcean} {
		if !l.Models.Has(string(mode)) {
			return invalidf("logistics.models must define %q", mode)
		}
	}
	for _, name := range l.Models.Keys() {
		if !IsValidTransportMode(name) {
			return invalidf("logistics.models: unknown transport mode %q; valid: truck, air, ocean", name)
		}
		m, _ := l.Models.Lookup(name)
		prefix := "logistics.models[" + name + "]"
		switch DistFamily(m.Family) {
		case DistNormal, DistLogNormal:
		default:
			return invalidf("%s: unknown family %q; valid: normal, lognormal", prefix, m.Family)
		}
		if err := validateNonNegative(prefix+".p2", m.P2); err != nil {
			return err
		}
		if DistFamily(m.Family) == DistNormal {
			if err := validateNonNegative(prefix+".p1", m.P1); err != nil {
				return err
			}
		} else if err := validateFinite(prefix+".p1", m.P1); err != nil {
			return err
		}
		if err := validateProbability(prefix+".p_rare_delay", m.PRareDelay); err != nil {
			return err
		}
		if err := validateNonNegative(prefix+".rare_delay_add_days", m.RareDelayAddDays); err != nil {
			return err
		}
	}
	if err := validateIntRange("logistics.distance_km", l.DistanceKm, 1); err != nil {
		return err
	}
	if l.TruckMaxKm <= 0 || l.AirMaxKm <= 0 {
		return invalidf("logistics thresholds must be positive, got truck_max_km=%d air_max_km=%d", l.TruckMaxKm, l.AirMaxKm)
	}
	if l.TruckMaxKm > l.AirMaxKm {
		return invalidf("logistics.truck_max_km %d exceeds air_max_km %d", l.TruckMaxKm, l.AirMaxKm)
	}
	return nil
}

func (c *Config) validateOutbound() error {
	o := c.Outbound
	if err := validateProbability("outbound.active_catalog_fraction", o.ActiveCatalogFraction); err != nil {
		return err
	}
	if err := validateNonNegative("outbound.poisson_mean", o.PoissonMean); err != nil {
		return err
	}
	if err := validateIntRange("outbound.order_qty", o.OrderQty, 1); err != nil {
		return err
	}
	if err := validateNonNegative("outbound.missed_sale_penalty_per_unit", o.MissedSalePenaltyPerUnit); err != nil {
		return err
	}
	if o.PromiseDays < 0 || o.BackorderMaxDays < 0 {
		return invalidf("outbound day counts must be non-negative, got promise_days=%d backorder_max_days=%d", o.PromiseDays, o.BackorderMaxDays)
	}
	if err := validateIntRange("outbound.sla_priority", o.SLAPriority, 1); err != nil {
		return err
	}
	if o.CustomerPool < 1 {
		return invalidf("outbound.customer_pool must be positive, got %d", o.CustomerPool)
	}
	return nil
}

func (c *Config) validateReplenishment() error {
	r := c.Replenishment
	if err := validateProbability("replenishment.review_catalog_fraction", r.ReviewCatalogFraction); err != nil {
		return err
	}
	if err := validateNonNegative("replenishment.reorder_point", r.ReorderPoint); err != nil {
		return err
	}
	if err := validateNonNegative("replenishment.target_level", r.TargetLevel); err != nil {
		return err
	}
	if r.TargetLevel <= r.ReorderPoint {
		return invalidf("replenishment.target_level %f must exceed reorder_point %f", r.TargetLevel, r.ReorderPoint)
	}
	lt := r.LeadTime
	if err := validateNonNegative("replenishment.lead_time.mean_days", lt.MeanDays); err != nil {
		return err
	}
	if err := validateNonNegative("replenishment.lead_time.std_days", lt.StdDays); err != nil {
		return err
	}
	if lt.MinDays < 0 {
		return invalidf("replenishment.lead_time.min_days must be non-negative, got %d", lt.MinDays)
	}
	return nil
}

func (c *Config) validateSensors() error {
	s := c.Sensors
	if err := validateProbability("sensors.scan_probabilities.dock", s.ScanProbabilities.Dock); err != nil {
		return err
	}
	if err := validateProbability("sensors.scan_probabilities.default", s.ScanProbabilities.Default); err != nil {
		return err
	}
	n := s.NoiseModel
	if err := validateNonNegative("sensors.noise_model.min_sigma_units", n.MinSigmaUnits); err != nil {
		return err
	}
	if n.MinSigmaUnits == 0 {
		return invalidf("sensors.noise_model.min_sigma_units must be positive, got %f", n.MinSigmaUnits)
	}
	if err := validateFinite("sensors.noise_model.noise_mean", n.NoiseMean); err != nil {
		return err
	}
	if err := validateNonNegative("sensors.noise_model.min_observed_qty", n.MinObservedQty); err != nil {
		return err
	}
	if err := validateProbability("sensors.noise_model.min_confidence", n.MinConfidence); err != nil {
		return err
	}
	if err := validateProbability("sensors.noise_model.base_confidence", n.BaseConfidence); err != nil {
		return err
	}
	if err := validateNonNegative("sensors.noise_model.noise_multiplier", n.NoiseMultiplier); err != nil {
		return err
	}
	return nil
}

func validateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return invalidf("%s must be in [0, 1], got %f", name, p)
	}
	return nil
}

// validateFinite rejects NaN and infinities, which slip past ordered comparisons.
func validateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidf("%s must be a finite number, got %f", name, v)
	}
	return nil
}

func validateNonNegative(name string, v float64) error {
	if err := validateFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return invalidf("%s must be non-negative, got %f", name, v)
	}
	return nil
}

func validateIntRange(name string, r IntRange, floor int) error {
	if r.Min < floor {
		return invalidf("%s.min must be >= %d, got %d", name, floor, r.Min)
	}
	if r.Min > r.Max {
		return invalidf("%s: min %d exceeds max %d", name, r.Min, r.Max)
	}
	return nil
}

func validateFloatRange(name string, r FloatRange, lo, hi float64) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Max, 1) {
		return invalidf("%s must be finite", name)
	}
	if r.Min < lo || r.Max > hi {
		return invalidf("%s must lie within [%g, %g], got [%g, %g]", name, lo, hi, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return invalidf("%s: min %g exceeds max %g", name, r.Min, r.Max)
	}
	return nil
}

var utcOffsetPattern = regexp.MustCompile(`^UTC([+-])(\d{1,2})(?::(\d{2}))?$`)

// ParseTimezone accepts an IANA name ("Europe/London") or a fixed offset ("UTC+1", "UTC-05:30").
func ParseTimezone(tz string) (*time.Location, error) {
	if m := utcOffsetPattern.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("offset out of range in %q", tz)
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(tz, offset), nil
	}
	return time.LoadLocation(tz)
}

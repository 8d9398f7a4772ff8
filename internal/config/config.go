package config

import (
	"os"
	"time"

	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDisks       = 3
	DefaultTotalEnergy = 4
	DefaultCapacity    = 4
	DefaultRadius      = 40.0
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultMaxSpeed    = 2000.0
	DefaultDt          = 1.0 / 60
	DefaultSeed        = 1
	DefaultCollisions  = 6000
	DefaultReportEvery = 100
)

const (
	InitialConcentrated = "concentrated"
	InitialEven         = "even"
	InitialExplicit     = "explicit"
)

type Config struct {
	Disks       int          `yaml:"disks"`
	TotalEnergy int          `yaml:"total_energy"`
	Capacity    int          `yaml:"capacity"`
	Radius      float64      `yaml:"radius"`
	Arena       ArenaConfig  `yaml:"arena"`
	Boundary    string       `yaml:"boundary"`
	MaxSpeed    float64      `yaml:"max_speed"`
	Dt          float64      `yaml:"dt"`
	Policy      string       `yaml:"policy"`
	Initial     string       `yaml:"initial"`
	Energies    []int        `yaml:"energies,omitempty"`
	Seed        uint64       `yaml:"seed"`
	Budget      BudgetConfig `yaml:"budget"`
	ReportEvery int64        `yaml:"report_every"`
}

type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type BudgetConfig struct {
	Collisions    int64         `yaml:"collisions"`
	WallClock     time.Duration `yaml:"wall_clock"`
	MaxSteps      int           `yaml:"max_steps"`
	SnapshotEvery int64         `yaml:"snapshot_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Disks:       DefaultDisks,
		TotalEnergy: DefaultTotalEnergy,
		Capacity:    DefaultCapacity,
		Radius:      DefaultRadius,
		Arena:       ArenaConfig{Width: DefaultWidth, Height: DefaultHeight},
		Boundary:    physics.BoundaryReflect,
		MaxSpeed:    DefaultMaxSpeed,
		Dt:          DefaultDt,
		Policy:      exchange.NameUniform,
		Initial:     InitialConcentrated,
		Seed:        DefaultSeed,
		Budget:      BudgetConfig{Collisions: DefaultCollisions, SnapshotEvery: 1},
		ReportEvery: DefaultReportEvery,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Energies != nil {
		out.Energies = append([]int(nil), c.Energies...)
	}
	return &out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// InitialEnergies resolves the starting energy of every disk.
func (c *Config) InitialEnergies() ([]int, error) {
	switch c.Initial {
	case InitialConcentrated:
		return gas.Concentrated(c.Disks, c.TotalEnergy, c.Capacity), nil
	case InitialEven:
		return gas.Even(c.Disks, c.TotalEnergy), nil
	case InitialExplicit:
		return append([]int(nil), c.Energies...), nil
	default:
		return nil, gas.Configf("unknown initial distribution: %s", c.Initial)
	}
}

// Validate reports the first problem with c. Every error wraps
// gas.ErrConfiguration.
func (c *Config) Validate() error {
	switch {
	case c.Disks <= 0:
		return gas.Configf("disks must be positive, got %d", c.Disks)
	case c.TotalEnergy < 0:
		return gas.Configf("total_energy must not be negative, got %d", c.TotalEnergy)
	case c.Capacity < 0:
		return gas.Configf("capacity must not be negative, got %d", c.Capacity)
	case c.Disks*c.Capacity < c.TotalEnergy:
		return gas.Configf("%d disks of capacity %d cannot hold %d units", c.Disks, c.Capacity, c.TotalEnergy)
	case c.Radius <= 0:
		return gas.Configf("radius must be positive, got %f", c.Radius)
	case c.Dt <= 0:
		return gas.Configf("dt must be positive, got %f", c.Dt)
	case c.MaxSpeed < 0:
		return gas.Configf("max_speed must not be negative, got %f", c.MaxSpeed)
	}

	if _, err := physics.NewBoundary(c.Boundary, c.Arena.Width, c.Arena.Height); err != nil {
		return gas.Configf("%v", err)
	}
	if c.Boundary == physics.BoundaryReflect && (c.Arena.Width < 2*c.Radius || c.Arena.Height < 2*c.Radius) {
		return gas.Configf("arena %gx%g is smaller than a disk of radius %g", c.Arena.Width, c.Arena.Height, c.Radius)
	}

	// The name itself is resolved against the experiment registry, which
	// also checks the policy against the capacity.
	if c.Policy == "" {
		return gas.Configf("policy must be set")
	}

	energies, err := c.InitialEnergies()
	if err != nil {
		return err
	}
	if len(energies) != c.Disks {
		return gas.Configf("%d initial energies for %d disks", len(energies), c.Disks)
	}
	sum := 0
	for i, e := range energies {
		if e < 0 || e > c.Capacity {
			return gas.Configf("initial energy %d of disk %d outside [0,%d]", e, i, c.Capacity)
		}
		sum += e
	}
	if sum != c.TotalEnergy {
		return gas.Configf("initial energies sum to %d, want %d", sum, c.TotalEnergy)
	}

	b := c.Budget
	if b.Collisions < 0 || b.WallClock < 0 || b.MaxSteps < 0 || b.SnapshotEvery < 0 || c.ReportEvery < 0 {
		return gas.Configf("budget values must not be negative")
	}
	if b.Collisions == 0 && b.WallClock == 0 && b.MaxSteps == 0 {
		return gas.Configf("budget needs collisions, wall_clock or max_steps")
	}
	return nil
}

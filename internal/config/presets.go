package config

import (
	"sort"

	"github.com/san-kum/coingas/internal/exchange"
)

// Presets reproduce the setups the coin exchange experiments were first run with.
var Presets = map[string]*Config{
	"six": withDefaults(func(c *Config) {
		c.Disks, c.TotalEnergy, c.Capacity = 6, 8, 8
		c.Initial = InitialExplicit
		c.Energies = []int{1, 1, 1, 1, 2, 2}
		c.Policy = exchange.NameAsymmetric
		c.MaxSpeed = 200
	}),
	"three": withDefaults(func(c *Config) {
		c.Disks, c.TotalEnergy, c.Capacity = 3, 4, 4
		c.Initial = InitialConcentrated
		c.Policy = exchange.NameSymmetric
	}),
	"six-concentrated": withDefaults(func(c *Config) {
		c.Disks, c.TotalEnergy, c.Capacity = 6, 8, 8
		c.Initial = InitialConcentrated
		c.Policy = exchange.NameUniform
		c.Budget.Collisions = 20000
	}),
}

func withDefaults(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

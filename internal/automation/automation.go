// Package automation runs scripted sequences of simulations described in YAML.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/experiment"
	"github.com/san-kum/coingas/internal/reference"
	"github.com/san-kum/coingas/internal/sim"
	"github.com/san-kum/coingas/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. It starts from Preset, or Config when set, or the
// defaults, and then applies the non-zero overrides.
type ScenarioStep struct {
	Name       string  `yaml:"name"`
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Policy     string  `yaml:"policy"`
	Seed       *uint64 `yaml:"seed"`
	Collisions int64   `yaml:"collisions"`
	Save       bool    `yaml:"save"`
}

// StepResult pairs a finished step with its comparison against the
// microstate count for its configuration.
type StepResult struct {
	Name       string
	Config     *config.Config
	Result     *sim.Result
	Comparison reference.Comparison
	RunID      string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Resolve builds the configuration of a step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Policy != "" {
		cfg.Policy = s.Policy
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if s.Collisions > 0 {
		cfg.Budget.Collisions = s.Collisions
	}
	return cfg, nil
}

// RunScenario executes all steps in order. A nil store skips saving.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry, logger.With("step", name))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if table, err := reference.Boltzmann(cfg.Disks, cfg.TotalEnergy, cfg.Capacity); err == nil {
			sr.Comparison = reference.Compare(result.Final, table)
		}

		if step.Save && store != nil {
			id, err := store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}

		results = append(results, sr)
	}

	return results, nil
}

// Sweep runs a base configuration across values of one integer parameter.
type Sweep struct {
	Base   *config.Config
	Param  string
	Values []int
}

type SweepResult struct {
	Value      int
	Result     *sim.Result
	Comparison reference.Comparison
}

var sweepParams = map[string]func(*config.Config, int){
	"disks":        func(c *config.Config, v int) { c.Disks = v },
	"total_energy": func(c *config.Config, v int) { c.TotalEnergy = v },
	"capacity":     func(c *config.Config, v int) { c.Capacity = v },
}

// RunSweep measures how far each run ends from its microstate count.
func RunSweep(ctx context.Context, sweep *Sweep, registry *experiment.Registry, logger *log.Logger) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.Param)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	results := make([]SweepResult, 0, len(sweep.Values))
	for i, v := range sweep.Values {
		cfg := sweep.Base.Clone()
		set(cfg, v)

		exp, err := experiment.New(cfg, registry, logger)
		if err != nil {
			return results, fmt.Errorf("%s=%d: %w", sweep.Param, v, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%d: %w", sweep.Param, v, err)
		}

		table, err := reference.Boltzmann(cfg.Disks, cfg.TotalEnergy, cfg.Capacity)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			Value:      v,
			Result:     result,
			Comparison: reference.Compare(result.Final, table),
		})
		logger.Info("sweep", "step", i+1, "of", len(sweep.Values), sweep.Param, v)
	}

	return results, nil
}

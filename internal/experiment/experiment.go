// Package experiment turns a configuration into a ready-to-run world.
package experiment

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
	"github.com/san-kum/coingas/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Independent random streams derived from the seed. Placement does not share
// a stream with the policy, so every policy sees the same initial disks.
const (
	streamPlacement = 1
	streamPolicy    = 2
)

const maxPlacementAttempts = 10000

type Experiment struct {
	cfg    *config.Config
	world  *physics.World
	runner *sim.Runner
}

// New validates cfg and builds its world and runner. A nil registry uses
// NewRegistry.
func New(cfg *config.Config, registry *Registry, logger *log.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}

	root := gas.NewSource(cfg.Seed)
	placement := gas.Split(root, streamPlacement)
	policySrc := gas.Split(root, streamPolicy)

	policy, err := registry.GetPolicy(cfg.Policy, policySrc)
	if err != nil {
		return nil, gas.Configf("%v", err)
	}
	// Only a bounded policy respects the capacity by construction. The others
	// can push a disk past it whenever a pair holds more than C units.
	if !exchange.Bounded(policy) && cfg.Capacity < cfg.TotalEnergy {
		return nil, gas.Configf("policy %s needs capacity >= total_energy (%d < %d)", cfg.Policy, cfg.Capacity, cfg.TotalEnergy)
	}
	boundary, err := registry.GetBoundary(cfg.Boundary, cfg.Arena.Width, cfg.Arena.Height)
	if err != nil {
		return nil, err
	}

	energies, err := cfg.InitialEnergies()
	if err != nil {
		return nil, err
	}
	disks, err := Place(cfg, energies, placement)
	if err != nil {
		return nil, err
	}

	world := physics.NewWorld(disks, physics.NewResolver(policy, cfg.Capacity), boundary)
	runner := sim.New(world, metrics.NewOccupancy(cfg.Capacity), logger)
	for _, m := range registry.DefaultMetrics(cfg.Capacity) {
		runner.AddMetric(m)
	}

	return &Experiment{cfg: cfg, world: world, runner: runner}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.runner.Run(ctx, e.Budget())
}

// Budget translates the configured limits for the runner.
func (e *Experiment) Budget() sim.Budget {
	return BudgetFor(e.cfg)
}

func BudgetFor(cfg *config.Config) sim.Budget {
	return sim.Budget{
		Collisions:    cfg.Budget.Collisions,
		WallClock:     cfg.Budget.WallClock,
		MaxSteps:      cfg.Budget.MaxSteps,
		Dt:            cfg.Dt,
		SnapshotEvery: cfg.Budget.SnapshotEvery,
		ReportEvery:   cfg.ReportEvery,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) World() *physics.World  { return e.world }
func (e *Experiment) Runner() *sim.Runner    { return e.runner }

// Place draws non-overlapping positions inside the arena by rejection and
// velocity components uniformly from [-MaxSpeed, MaxSpeed].
func Place(cfg *config.Config, energies []int, src gas.Source) ([]gas.Disk, error) {
	r := cfg.Radius
	w, h := cfg.Arena.Width, cfg.Arena.Height
	if w < 2*r || h < 2*r {
		side := 4 * r * math.Ceil(math.Sqrt(float64(cfg.Disks)))
		w, h = side, side
	}

	disks := make([]gas.Disk, 0, cfg.Disks)
	for i := 0; i < cfg.Disks; i++ {
		d := gas.Disk{Radius: r, Energy: energies[i]}

		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			d.Pos = r2.Vec{
				X: r + src.Float64()*(w-2*r),
				Y: r + src.Float64()*(h-2*r),
			}
			placed = true
			for _, other := range disks {
				if gas.Overlaps(d, other) {
					placed = false
					break
				}
			}
		}
		if !placed {
			return nil, gas.Configf("cannot place disk %d of radius %g in a %gx%g arena without overlap", i, r, w, h)
		}

		d.Vel = r2.Vec{
			X: (2*src.Float64() - 1) * cfg.MaxSpeed,
			Y: (2*src.Float64() - 1) * cfg.MaxSpeed,
		}
		disks = append(disks, d)
	}
	return disks, nil
}

// Compare runs cfg once per policy. All runs start from the same disks.
func Compare(ctx context.Context, cfg *config.Config, policies []string, registry *Registry, logger *log.Logger) (map[string]*sim.Result, error) {
	logger = orDiscard(logger)
	results := make(map[string]*sim.Result, len(policies))
	for _, name := range policies {
		c := cfg.Clone()
		c.Policy = name

		exp, err := New(c, registry, logger.With("policy", name))
		if err != nil {
			return results, fmt.Errorf("policy %s: %w", name, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("policy %s: %w", name, err)
		}
		results[name] = res
	}
	return results, nil
}

// Ensemble runs cfg for numRuns consecutive seeds starting at cfg.Seed.
func Ensemble(ctx context.Context, cfg *config.Config, numRuns, workers int, registry *Registry, logger *log.Logger) ([]*sim.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = orDiscard(logger)
	build := func(seed uint64) (*sim.Runner, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp, err := New(c, registry, logger.With("seed", seed))
		if err != nil {
			return nil, err
		}
		return exp.Runner(), nil
	}
	return sim.NewEnsemble(build, numRuns, cfg.Seed, workers).Run(ctx, BudgetFor(cfg))
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

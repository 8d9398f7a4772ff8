package experiment_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/experiment"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/reference"
	"github.com/san-kum/coingas/internal/sim"
)

// threeDisks is the 3 disk, 4 unit, capacity 4 gas in a box small enough to
// collide often.
func threeDisks() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Disks, cfg.TotalEnergy, cfg.Capacity = 3, 4, 4
	cfg.Initial = config.InitialConcentrated
	cfg.Arena = config.ArenaConfig{Width: 400, Height: 400}
	cfg.Radius = 40
	cfg.MaxSpeed = 2000
	cfg.Dt = 1.0 / 240
	cfg.Seed = 7
	cfg.ReportEvery = 0
	cfg.Budget = config.BudgetConfig{Collisions: 20000, SnapshotEvery: 100}
	return cfg
}

var _ = Describe("Experiment", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = threeDisks()
	})

	Describe("construction", func() {
		It("rejects an invalid configuration before stepping", func() {
			cfg.Disks = 0
			_, err := experiment.New(cfg, nil, nil)
			Expect(errors.Is(err, gas.ErrConfiguration)).To(BeTrue())
		})

		It("places disks without overlap", func() {
			cfg.Disks, cfg.TotalEnergy, cfg.Capacity = 8, 8, 8
			exp, err := experiment.New(cfg, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			disks := exp.World().Disks()
			Expect(disks).To(HaveLen(8))
			for i := range disks {
				Expect(disks[i].Pos.X).To(BeNumerically(">=", cfg.Radius))
				Expect(disks[i].Pos.X).To(BeNumerically("<=", cfg.Arena.Width-cfg.Radius))
				for j := i + 1; j < len(disks); j++ {
					Expect(gas.Overlaps(disks[i], disks[j])).To(BeFalse(), "disks %d and %d overlap", i, j)
				}
			}
			Expect(gas.TotalEnergy(disks)).To(Equal(8))
		})

		It("fails when the arena cannot fit the disks", func() {
			cfg.Disks, cfg.TotalEnergy, cfg.Capacity = 40, 4, 4
			cfg.Arena = config.ArenaConfig{Width: 200, Height: 200}
			_, err := experiment.New(cfg, nil, nil)
			Expect(errors.Is(err, gas.ErrConfiguration)).To(BeTrue())
		})

		It("starts every policy from the same disks", func() {
			var first []gas.Disk
			for _, name := range exchange.Names() {
				c := cfg.Clone()
				c.Policy = name
				exp, err := experiment.New(c, nil, nil)
				Expect(err).NotTo(HaveOccurred())

				disks := append([]gas.Disk(nil), exp.World().Disks()...)
				if first == nil {
					first = disks
					continue
				}
				Expect(disks).To(Equal(first))
			}
		})
	})

	Describe("policy comparison", Ordered, func() {
		var results map[string]*sim.Result

		BeforeAll(func() {
			var err error
			results, err = experiment.Compare(context.Background(), threeDisks(), exchange.Names(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})

		It("runs every policy past the collision budget", func() {
			for name, res := range results {
				Expect(res.Collisions).To(BeNumerically(">=", 5800), name)
				Expect(res.StopReason).To(Equal(sim.StopCollisions), name)
				Expect(res.Metrics["kinetic_drift"]).To(BeNumerically("<", 1e-6), name)
			}
		})

		It("keeps level 0 above level 1 under uniform redistribution", func() {
			res := results[exchange.NameUniform]
			Expect(res.Occupancy(0)).To(BeNumerically(">", res.Occupancy(1)))
		})

		It("converges to the microstate count under uniform redistribution", func() {
			table, err := reference.Boltzmann(3, 4, 4)
			Expect(err).NotTo(HaveOccurred())

			cmp := reference.Compare(results[exchange.NameUniform].Final, table)
			Expect(cmp.MaxAbsError).To(BeNumerically("<", 0.1))
			Expect(cmp.Monotone).To(BeTrue())
		})

		It("inverts levels 0 and 1 under the coin flip policies", func() {
			for _, name := range []string{exchange.NameAsymmetric, exchange.NameSymmetric} {
				res := results[name]
				Expect(res.Occupancy(1)).To(BeNumerically(">", res.Occupancy(0)), name)
			}
		})

		It("reports a series whose occupancies always sum to the disk count", func() {
			for name, res := range results {
				Expect(res.Series).NotTo(BeEmpty(), name)
				for _, snap := range res.Series {
					sum := 0.0
					for _, v := range snap.Occupancy {
						sum += v
					}
					Expect(sum).To(BeNumerically("~", 3, 1e-9), name)
				}
			}
		})
	})

	Describe("ensemble", func() {
		It("returns one result per seed", func() {
			cfg.Budget = config.BudgetConfig{Collisions: 500, SnapshotEvery: 50}
			results, err := experiment.Ensemble(context.Background(), cfg, 3, 2, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			for _, res := range results {
				Expect(res.Collisions).To(BeNumerically(">=", 500))
			}
			Expect(sim.Mean(results)).To(HaveLen(5))
		})
	})
})

package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
)

func factory(seed uint64) (*Runner, error) {
	world := physics.NewWorld(crowdedDisks(), physics.NewResolver(exchange.NewUniform(gas.NewSource(seed)), 4), physics.Reflect{Width: 60, Height: 60})
	return New(world, metrics.NewOccupancy(4), nil), nil
}

func TestEnsembleMatchesSequential(t *testing.T) {
	b := Budget{Dt: 0.005, MaxSteps: 1000}

	results, err := NewEnsemble(factory, 4, 10, 2).Run(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, res := range results {
		r, _ := factory(10 + uint64(i))
		want, err := r.Run(context.Background(), b)
		if err != nil {
			t.Fatal(err)
		}
		if res.Collisions != want.Collisions {
			t.Errorf("seed %d: %d collisions in ensemble, %d sequentially", 10+i, res.Collisions, want.Collisions)
		}
		for k := range want.Final.Occupancy {
			if res.Occupancy(k) != want.Occupancy(k) {
				t.Errorf("seed %d level %d: %v != %v", 10+i, k, res.Occupancy(k), want.Occupancy(k))
			}
		}
	}

	mean := Mean(results)
	if len(mean) != 5 {
		t.Fatalf("mean has %d levels", len(mean))
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("boom")
	build := func(seed uint64) (*Runner, error) {
		if seed == 2 {
			return nil, boom
		}
		return factory(seed)
	}

	_, err := NewEnsemble(build, 3, 1, 0).Run(context.Background(), Budget{Dt: 0.005, MaxSteps: 10})
	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

func TestMeanEmpty(t *testing.T) {
	if Mean(nil) != nil {
		t.Error("expected nil mean for no results")
	}
}
